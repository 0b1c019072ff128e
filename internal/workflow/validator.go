package workflow

import (
	"fmt"
	"strings"
	"time"
)

// rule 状态表中的一行
type rule struct {
	from []Status
	to   Status
	// operational 为空表示运营状态不变
	operational OperationalStatus
}

var stateTable = map[Transition]rule{
	TransitionSubmit:  {from: []Status{StatusDraft, StatusRejected}, to: StatusPendingApproval},
	TransitionApprove: {from: []Status{StatusPendingApproval}, to: StatusApproved, operational: OperationalActive},
	TransitionReject:  {from: []Status{StatusPendingApproval}, to: StatusRejected},
	TransitionSuspend: {from: []Status{StatusApproved}, to: StatusSuspended, operational: OperationalDraft},
	TransitionClose: {
		from:        []Status{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusSuspended},
		to:          StatusClosed,
		operational: OperationalClosed,
	},
}

// Target 返回转换的目标状态
func Target(t Transition) (Status, bool) {
	r, ok := stateTable[t]
	return r.to, ok
}

// Allowed 判断某状态下是否允许某转换(不检查前置条件)
func Allowed(current Status, t Transition) bool {
	r, ok := stateTable[t]
	if !ok {
		return false
	}
	for _, s := range r.from {
		if s == current {
			return true
		}
	}
	return false
}

// AvailableTransitions 当前状态可执行的转换
func AvailableTransitions(current Status) []Transition {
	var out []Transition
	for _, t := range Transitions {
		if Allowed(current, t) {
			out = append(out, t)
		}
	}
	return out
}

// Validate 校验转换是否合法
// reject 的备注检查先于状态检查,缺少备注时无论当前状态都返回 PreconditionFailed
func Validate(rec Record, t Transition, notes string) error {
	if _, ok := stateTable[t]; !ok {
		return NewError(CodeInvalidTransition, fmt.Sprintf("unknown transition %q", t))
	}
	if t == TransitionReject && strings.TrimSpace(notes) == "" {
		return NewError(CodePreconditionFailed, "notes are required to reject a record")
	}

	current := rec.GetWorkflowState().ApprovalStatus
	if !Allowed(current, t) {
		return invalidTransition(current, t)
	}

	if t == TransitionSubmit && !rec.HasApprover() {
		return NewError(CodePreconditionFailed, "an approver or approver group must be assigned before submitting")
	}
	return nil
}

// ValidateEdit 只有 Draft 和 Rejected 状态允许编辑
func ValidateEdit(rec Record) error {
	current := rec.GetWorkflowState().ApprovalStatus
	if !current.Editable() {
		return NewError(CodeImmutableInCurrentState, fmt.Sprintf("record in %s status cannot be edited", current))
	}
	return nil
}

// Next 按状态表计算转换后的状态,调用前必须先 Validate
func Next(prev State, t Transition, notes string, now time.Time) State {
	r := stateTable[t]
	next := prev
	next.ApprovalStatus = r.to
	if r.operational != "" {
		next.OperationalStatus = r.operational
	}
	notes = strings.TrimSpace(notes)
	switch t {
	case TransitionApprove:
		approvedAt := now
		next.ApprovedAt = &approvedAt
		next.ApprovalNotes = notes
	case TransitionReject:
		next.ApprovalNotes = notes
	case TransitionSuspend, TransitionClose:
		if notes != "" {
			next.ApprovalNotes = notes
		}
	}
	next.UpdatedAt = now
	return next
}
