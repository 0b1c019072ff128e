package model

import (
	"errors"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
)

// WorkflowFields 三类审批记录共用的字段
// UpdatedAt 由工作流引擎维护,关闭 gorm 的自动更新
type WorkflowFields struct {
	ID                string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TenantID          string     `gorm:"type:varchar(64);not null;index" json:"tenant_id"`
	ApprovalStatus    string     `gorm:"type:varchar(32);not null;index" json:"approval_status"`
	OperationalStatus string     `gorm:"type:varchar(32);not null" json:"operational_status"`
	OwnerID           string     `gorm:"type:varchar(64);index" json:"owner_id"`
	ApproverID        string     `gorm:"type:varchar(64);index" json:"approver_id,omitempty"`
	ApproverGroupID   string     `gorm:"type:varchar(64);index" json:"approver_group_id,omitempty"`
	ApprovalNotes     string     `gorm:"type:text" json:"approval_notes,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null;index;autoUpdateTime:false" json:"updated_at"`
	Version           int64      `gorm:"not null;default:0" json:"version"`
}

func (f *WorkflowFields) GetID() string {
	return f.ID
}

func (f *WorkflowFields) GetVersion() int64 {
	return f.Version
}

func (f *WorkflowFields) SetVersion(v int64) {
	f.Version = v
}

// GetWorkflowState 读取工作流状态
func (f *WorkflowFields) GetWorkflowState() workflow.State {
	return workflow.State{
		ApprovalStatus:    workflow.Status(f.ApprovalStatus),
		OperationalStatus: workflow.OperationalStatus(f.OperationalStatus),
		ApprovalNotes:     f.ApprovalNotes,
		ApprovedAt:        copyTime(f.ApprovedAt),
		UpdatedAt:         f.UpdatedAt,
	}
}

// SetWorkflowState 写回工作流状态,只能由引擎调用
func (f *WorkflowFields) SetWorkflowState(s workflow.State) {
	f.ApprovalStatus = string(s.ApprovalStatus)
	f.OperationalStatus = string(s.OperationalStatus)
	f.ApprovalNotes = s.ApprovalNotes
	f.ApprovedAt = copyTime(s.ApprovedAt)
	f.UpdatedAt = s.UpdatedAt
}

// HasApprover 审批人或审批组是否已指定
func (f *WorkflowFields) HasApprover() bool {
	return f.ApproverID != "" || f.ApproverGroupID != ""
}

// validateFields 校验公共字段
func (f *WorkflowFields) validateFields() error {
	if f.ID == "" {
		return errors.New("record ID is required")
	}
	if f.TenantID == "" {
		return errors.New("tenant ID is required")
	}
	if f.ApprovalStatus != "" && !workflow.Status(f.ApprovalStatus).Valid() {
		return errors.New("approval status is invalid")
	}
	return nil
}

// approverFields 审批相关的可编辑字段
func (f *WorkflowFields) approverFields(out map[string]string) map[string]string {
	out["owner_id"] = f.OwnerID
	out["approver_id"] = f.ApproverID
	out["approver_group_id"] = f.ApproverGroupID
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
