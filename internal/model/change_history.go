package model

import (
	"errors"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"gorm.io/datatypes"
)

// ChangeHistoryModel 审批记录变更历史数据模型,只追加不修改
// Sequence 为自增主键,保证同一时间戳下的插入顺序
type ChangeHistoryModel struct {
	Sequence        int64                                  `gorm:"primaryKey;autoIncrement"`
	ID              string                                 `gorm:"type:varchar(64);not null;uniqueIndex"`
	RecordKind      string                                 `gorm:"type:varchar(32);not null;index:idx_history_record,priority:1"`
	RecordID        string                                 `gorm:"type:varchar(64);not null;index:idx_history_record,priority:2"`
	ChangedByUserID string                                 `gorm:"type:varchar(64);not null;index"`
	ChangedAt       time.Time                              `gorm:"not null;index"`
	ChangeType      string                                 `gorm:"type:varchar(32);not null"` // Created/Updated/StatusChanged
	Transition      string                                 `gorm:"type:varchar(32)"`
	OldValues       datatypes.JSONType[*workflow.Snapshot] `gorm:"not null"`
	NewValues       datatypes.JSONType[*workflow.Snapshot] `gorm:"not null"`
	Notes           string                                 `gorm:"type:text"`
}

// TableName 指定表名
func (ChangeHistoryModel) TableName() string {
	return "change_history"
}

// Validate 验证历史模型
func (m *ChangeHistoryModel) Validate() error {
	if m.ID == "" {
		return errors.New("history ID is required")
	}
	if m.RecordKind == "" || m.RecordID == "" {
		return errors.New("record reference is required")
	}
	if m.ChangedByUserID == "" {
		return errors.New("changed by user is required")
	}
	if m.ChangeType == "" {
		return errors.New("change type is required")
	}
	return nil
}

// NewChangeHistoryModel 由历史条目构建数据模型
func NewChangeHistoryModel(e workflow.HistoryEntry) *ChangeHistoryModel {
	return &ChangeHistoryModel{
		ID:              e.ID,
		RecordKind:      string(e.Kind),
		RecordID:        e.RecordID,
		ChangedByUserID: e.ChangedBy,
		ChangedAt:       e.ChangedAt,
		ChangeType:      string(e.ChangeType),
		Transition:      string(e.Transition),
		OldValues:       datatypes.NewJSONType(e.OldValues),
		NewValues:       datatypes.NewJSONType(e.NewValues),
		Notes:           e.Notes,
	}
}

// ToEntry 转换为历史条目
func (m *ChangeHistoryModel) ToEntry() workflow.HistoryEntry {
	return workflow.HistoryEntry{
		ID:         m.ID,
		Kind:       workflow.Kind(m.RecordKind),
		RecordID:   m.RecordID,
		ChangedBy:  m.ChangedByUserID,
		ChangedAt:  m.ChangedAt,
		ChangeType: workflow.ChangeType(m.ChangeType),
		Transition: workflow.Transition(m.Transition),
		OldValues:  m.OldValues.Data(),
		NewValues:  m.NewValues.Data(),
		Notes:      m.Notes,
		Sequence:   m.Sequence,
	}
}
