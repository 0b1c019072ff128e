package workflow

import "time"

// ChangeType 历史记录类型
type ChangeType string

const (
	ChangeCreated       ChangeType = "Created"
	ChangeUpdated       ChangeType = "Updated"
	ChangeStatusChanged ChangeType = "StatusChanged"
)

// SnapshotVersion 快照结构版本
const SnapshotVersion = 1

// StatusSnapshot 状态快照
type StatusSnapshot struct {
	ApprovalStatus    Status            `json:"approval_status"`
	OperationalStatus OperationalStatus `json:"operational_status"`
}

// Snapshot 变更前后的快照
// StatusChanged 只包含 Status,Created/Updated 包含 Fields 和当时的 Status
type Snapshot struct {
	Version int               `json:"v"`
	Status  *StatusSnapshot   `json:"status,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// HistoryEntry 变更历史,写入后不可修改
type HistoryEntry struct {
	ID         string
	Kind       Kind
	RecordID   string
	ChangedBy  string
	ChangedAt  time.Time
	ChangeType ChangeType
	Transition Transition
	OldValues  *Snapshot
	NewValues  *Snapshot
	Notes      string

	// Sequence 由存储层在追加时分配,同一批次内保持输入顺序
	Sequence int64
}

// Change 一次变更的上下文
type Change struct {
	ID    string
	Actor string
	At    time.Time
	Notes string
}

func statusSnapshot(s State) *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Status: &StatusSnapshot{
			ApprovalStatus:    s.ApprovalStatus,
			OperationalStatus: s.OperationalStatus,
		},
	}
}

func fieldSnapshot(s State, fields map[string]string) *Snapshot {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	snap := statusSnapshot(s)
	snap.Fields = copied
	return snap
}

// RecordTransition 生成状态转换历史
func RecordTransition(rec Record, t Transition, before, after State, c Change) HistoryEntry {
	return HistoryEntry{
		ID:         c.ID,
		Kind:       rec.GetKind(),
		RecordID:   rec.GetID(),
		ChangedBy:  c.Actor,
		ChangedAt:  c.At,
		ChangeType: ChangeStatusChanged,
		Transition: t,
		OldValues:  statusSnapshot(before),
		NewValues:  statusSnapshot(after),
		Notes:      c.Notes,
	}
}

// RecordEdit 生成字段编辑历史,编辑不改变状态
func RecordEdit(rec Record, before map[string]string, c Change) HistoryEntry {
	state := rec.GetWorkflowState()
	return HistoryEntry{
		ID:         c.ID,
		Kind:       rec.GetKind(),
		RecordID:   rec.GetID(),
		ChangedBy:  c.Actor,
		ChangedAt:  c.At,
		ChangeType: ChangeUpdated,
		OldValues:  fieldSnapshot(state, before),
		NewValues:  fieldSnapshot(state, rec.MutableFields()),
		Notes:      c.Notes,
	}
}

// RecordCreate 生成创建历史
func RecordCreate(rec Record, c Change) HistoryEntry {
	return HistoryEntry{
		ID:         c.ID,
		Kind:       rec.GetKind(),
		RecordID:   rec.GetID(),
		ChangedBy:  c.Actor,
		ChangedAt:  c.At,
		ChangeType: ChangeCreated,
		NewValues:  fieldSnapshot(rec.GetWorkflowState(), rec.MutableFields()),
		Notes:      c.Notes,
	}
}
