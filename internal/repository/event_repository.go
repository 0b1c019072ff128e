package repository

import (
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"gorm.io/gorm"
)

// EventRepository 事件仓储接口
type EventRepository interface {
	Save(event *model.EventModel) error
	FindByRecord(kind string, recordID string) ([]*model.EventModel, error)
	FindPending(now time.Time, limit int) ([]*model.EventModel, error)
	MarkDelivered(id string) error
	MarkFailed(id string, lastErr string, final bool, nextAttempt time.Time) error
}

// eventRepository 事件仓储实现
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓储
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Save 保存事件
func (r *eventRepository) Save(event *model.EventModel) error {
	return r.db.Save(event).Error
}

// FindByRecord 根据记录查找事件
func (r *eventRepository) FindByRecord(kind string, recordID string) ([]*model.EventModel, error) {
	var events []*model.EventModel
	err := r.db.Where("record_kind = ? AND record_id = ?", kind, recordID).Order("created_at ASC").Find(&events).Error
	return events, err
}

// FindPending 查找 now 时已到期的待投递事件,退避中的事件不占用批次
func (r *eventRepository) FindPending(now time.Time, limit int) ([]*model.EventModel, error) {
	var events []*model.EventModel
	query := r.db.Where("status = ? AND next_attempt_at <= ?", model.EventStatusPending, now.UTC()).
		Order("next_attempt_at ASC").Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

// MarkDelivered 标记事件投递成功
func (r *eventRepository) MarkDelivered(id string) error {
	return r.db.Model(&model.EventModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     model.EventStatusSuccess,
		"last_error": "",
		"updated_at": time.Now(),
	}).Error
}

// MarkFailed 记录一次投递失败,final 为 true 时不再重试,否则 nextAttempt 之后再投递
func (r *eventRepository) MarkFailed(id string, lastErr string, final bool, nextAttempt time.Time) error {
	status := model.EventStatusPending
	if final {
		status = model.EventStatusFailed
	}
	return r.db.Model(&model.EventModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":          status,
		"last_error":      lastErr,
		"retry_count":     gorm.Expr("retry_count + 1"),
		"next_attempt_at": nextAttempt.UTC(),
		"updated_at":      time.Now(),
	}).Error
}
