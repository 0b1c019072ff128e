package workflow

import "time"

// State 记录的工作流状态字段
// 只能由引擎在校验通过后通过 SetWorkflowState 写回
type State struct {
	ApprovalStatus    Status
	OperationalStatus OperationalStatus
	ApprovalNotes     string
	ApprovedAt        *time.Time
	UpdatedAt         time.Time
}

// Record 受审批状态机管理的记录
type Record interface {
	GetID() string
	GetKind() Kind
	GetVersion() int64
	SetVersion(v int64)
	GetWorkflowState() State
	SetWorkflowState(s State)
	// HasApprover 审批人或审批组至少设置了一个
	HasApprover() bool
	// MutableFields 可编辑字段的稳定字符串编码,用于 Updated/Created 快照
	MutableFields() map[string]string
	Clone() Record
}
