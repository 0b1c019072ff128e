package workflowtest

import "github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"

// Item 测试用记录
type Item struct {
	ID              string
	K               workflow.Kind
	Title           string
	ApproverID      string
	ApproverGroupID string
	State           workflow.State
	Version         int64
}

// NewItem 创建指定状态的测试记录
func NewItem(id string, status workflow.Status, approver string) *Item {
	op := workflow.OperationalDraft
	switch status {
	case workflow.StatusApproved:
		op = workflow.OperationalActive
	case workflow.StatusClosed:
		op = workflow.OperationalClosed
	}
	return &Item{
		ID:         id,
		K:          workflow.KindWbs,
		Title:      "item " + id,
		ApproverID: approver,
		State: workflow.State{
			ApprovalStatus:    status,
			OperationalStatus: op,
		},
	}
}

func (i *Item) GetID() string {
	return i.ID
}

func (i *Item) GetKind() workflow.Kind {
	if i.K == "" {
		return workflow.KindWbs
	}
	return i.K
}

func (i *Item) GetVersion() int64 {
	return i.Version
}

func (i *Item) SetVersion(v int64) {
	i.Version = v
}

func (i *Item) GetWorkflowState() workflow.State {
	return i.State
}

func (i *Item) SetWorkflowState(s workflow.State) {
	i.State = s
}

func (i *Item) HasApprover() bool {
	return i.ApproverID != "" || i.ApproverGroupID != ""
}

func (i *Item) MutableFields() map[string]string {
	return map[string]string{
		"title":             i.Title,
		"approver_id":       i.ApproverID,
		"approver_group_id": i.ApproverGroupID,
	}
}

func (i *Item) Clone() workflow.Record {
	c := *i
	if i.State.ApprovedAt != nil {
		t := *i.State.ApprovedAt
		c.State.ApprovedAt = &t
	}
	return &c
}
