package model

import (
	"errors"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/shopspring/decimal"
)

// WBS 类型
const (
	WbsTypeBillable        = "Billable"
	WbsTypeNonBillable     = "NonBillable"
	WbsTypeBidAndProposal  = "BidAndProposal"
	WbsTypeOverhead        = "Overhead"
	WbsTypeGeneralAndAdmin = "GeneralAndAdmin"
)

var wbsTypes = map[string]bool{
	WbsTypeBillable:        true,
	WbsTypeNonBillable:     true,
	WbsTypeBidAndProposal:  true,
	WbsTypeOverhead:        true,
	WbsTypeGeneralAndAdmin: true,
}

// WbsElement 工作分解结构元素
type WbsElement struct {
	WorkflowFields
	ProjectID     string          `gorm:"type:varchar(64);not null;index" json:"project_id"`
	Code          string          `gorm:"type:varchar(64);not null;index" json:"code"`
	Description   string          `gorm:"type:text" json:"description"`
	Type          string          `gorm:"type:varchar(32);not null" json:"type"`
	ValidFrom     time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo       *time.Time      `json:"valid_to,omitempty"`
	BudgetedHours decimal.Decimal `gorm:"type:numeric(12,2)" json:"budgeted_hours"`
}

// TableName 指定表名
func (WbsElement) TableName() string {
	return "wbs_elements"
}

func (w *WbsElement) GetKind() workflow.Kind {
	return workflow.KindWbs
}

// MutableFields 可编辑字段快照
func (w *WbsElement) MutableFields() map[string]string {
	return w.approverFields(map[string]string{
		"project_id":     w.ProjectID,
		"code":           w.Code,
		"description":    w.Description,
		"type":           w.Type,
		"valid_from":     formatDate(w.ValidFrom),
		"valid_to":       formatOptionalDate(w.ValidTo),
		"budgeted_hours": w.BudgetedHours.StringFixed(2),
	})
}

func (w *WbsElement) Clone() workflow.Record {
	c := *w
	c.ApprovedAt = copyTime(w.ApprovedAt)
	c.ValidTo = copyTime(w.ValidTo)
	return &c
}

// Validate 验证 WBS 元素
func (w *WbsElement) Validate() error {
	if err := w.validateFields(); err != nil {
		return err
	}
	if w.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if w.Code == "" {
		return errors.New("WBS code is required")
	}
	if !wbsTypes[w.Type] {
		return errors.New("WBS type is invalid")
	}
	if w.ValidTo != nil && w.ValidTo.Before(w.ValidFrom) {
		return errors.New("valid_to must not be before valid_from")
	}
	if w.BudgetedHours.IsNegative() {
		return errors.New("budgeted hours must not be negative")
	}
	return nil
}
