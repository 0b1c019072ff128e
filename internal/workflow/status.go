package workflow

import (
	"fmt"
	"strings"
)

// Status 审批生命周期状态
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusPendingApproval Status = "PendingApproval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusSuspended       Status = "Suspended"
	StatusClosed          Status = "Closed"
)

// Valid 判断状态是否合法
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusSuspended, StatusClosed:
		return true
	}
	return false
}

// Editable 只有草稿和已拒绝状态允许编辑字段
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// Terminal 终态不允许任何转换
func (s Status) Terminal() bool {
	return s == StatusClosed
}

// OperationalStatus 运营状态,由审批转换派生,供排班和报表读取
type OperationalStatus string

const (
	OperationalDraft  OperationalStatus = "Draft"
	OperationalActive OperationalStatus = "Active"
	OperationalClosed OperationalStatus = "Closed"
)

// Transition 状态转换名称
type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionApprove Transition = "approve"
	TransitionReject  Transition = "reject"
	TransitionSuspend Transition = "suspend"
	TransitionClose   Transition = "close"
)

// Transitions 所有支持的转换,按生命周期顺序
var Transitions = []Transition{
	TransitionSubmit,
	TransitionApprove,
	TransitionReject,
	TransitionSuspend,
	TransitionClose,
}

// ParseTransition 解析转换名称(大小写不敏感)
func ParseTransition(raw string) (Transition, error) {
	t := Transition(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Transitions {
		if t == known {
			return t, nil
		}
	}
	return "", NewError(CodeInvalidTransition, fmt.Sprintf("unknown transition %q", raw))
}

// Kind 记录类型
type Kind string

const (
	KindWbs      Kind = "wbs"
	KindForecast Kind = "forecasts"
	KindBudget   Kind = "budgets"
)

// Kinds 所有记录类型
var Kinds = []Kind{KindWbs, KindForecast, KindBudget}

// ParseKind 解析记录类型
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", NewError(CodeNotFound, fmt.Sprintf("unknown record type %q", raw))
}
