package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/google/uuid"
)

// HistoryEvent 历史记录的对外表示,用于接口响应、webhook 和 websocket 推送
type HistoryEvent struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	RecordKind string             `json:"record_kind"`
	RecordID   string             `json:"record_id"`
	ChangedBy  string             `json:"changed_by_user_id"`
	ChangedAt  time.Time          `json:"changed_at"`
	ChangeType string             `json:"change_type"`
	Transition string             `json:"transition,omitempty"`
	OldValues  *workflow.Snapshot `json:"old_values,omitempty"`
	NewValues  *workflow.Snapshot `json:"new_values,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	Sequence   int64              `json:"sequence,omitempty"`
}

// EventType 历史类型对应的事件类型,如 record.status_changed
func EventType(ct workflow.ChangeType) string {
	switch ct {
	case workflow.ChangeCreated:
		return "record.created"
	case workflow.ChangeUpdated:
		return "record.updated"
	case workflow.ChangeStatusChanged:
		return "record.status_changed"
	}
	return "record." + strings.ToLower(string(ct))
}

// NewHistoryEvent 由历史条目构建事件
func NewHistoryEvent(e workflow.HistoryEntry) HistoryEvent {
	return HistoryEvent{
		ID:         e.ID,
		Type:       EventType(e.ChangeType),
		RecordKind: string(e.Kind),
		RecordID:   e.RecordID,
		ChangedBy:  e.ChangedBy,
		ChangedAt:  e.ChangedAt,
		ChangeType: string(e.ChangeType),
		Transition: string(e.Transition),
		OldValues:  e.OldValues,
		NewValues:  e.NewValues,
		Notes:      e.Notes,
		Sequence:   e.Sequence,
	}
}

// NewHistoryEventModel 构建发件箱事件
func NewHistoryEventModel(e workflow.HistoryEntry) (*EventModel, error) {
	data, err := json.Marshal(NewHistoryEvent(e))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history event: %w", err)
	}
	now := time.Now()
	return &EventModel{
		ID:         uuid.NewString(),
		RecordKind: string(e.Kind),
		RecordID:   e.RecordID,
		Type:       EventType(e.ChangeType),
		Data:       data,
		Status:     EventStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}
