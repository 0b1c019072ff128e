package model

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 事件投递状态
const (
	EventStatusPending = "pending"
	EventStatusSuccess = "success"
	EventStatusFailed  = "failed"
)

// EventModel 待投递的领域事件(发件箱)
// 与历史记录在同一事务内写入
type EventModel struct {
	ID         string         `gorm:"primaryKey;type:varchar(64)"`
	RecordKind string         `gorm:"type:varchar(32);not null;index"`
	RecordID   string         `gorm:"type:varchar(64);not null;index"`
	Type       string         `gorm:"type:varchar(32);not null;index"` // record.created/record.updated/record.status_changed
	Data       datatypes.JSON `gorm:"not null"`                        // 序列化后的事件数据
	Status     string         `gorm:"type:varchar(32);not null;default:'pending';index"`
	RetryCount int            `gorm:"type:int;default:0"`
	LastError  string         `gorm:"type:text"`
	// NextAttemptAt 下一次可投递的时间,失败后按退避推迟
	NextAttemptAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt     time.Time `gorm:"not null;index"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName 指定表名
func (EventModel) TableName() string {
	return "events"
}

// BeforeCreate 新事件立即可投递
func (em *EventModel) BeforeCreate(tx *gorm.DB) error {
	if em.NextAttemptAt.IsZero() {
		em.NextAttemptAt = em.CreatedAt
		if em.NextAttemptAt.IsZero() {
			em.NextAttemptAt = time.Now()
		}
	}
	em.NextAttemptAt = em.NextAttemptAt.UTC()
	return nil
}

// Validate 验证事件模型
func (em *EventModel) Validate() error {
	if em.ID == "" {
		return errors.New("event ID is required")
	}
	if em.RecordID == "" {
		return errors.New("record ID is required")
	}
	if em.Type == "" {
		return errors.New("event type is required")
	}
	if len(em.Data) == 0 {
		return errors.New("event data is required")
	}
	if em.Status == "" {
		em.Status = EventStatusPending
	}
	return nil
}
