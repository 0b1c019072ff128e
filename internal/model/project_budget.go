package model

import (
	"errors"
	"strconv"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/shopspring/decimal"
)

// ProjectBudget 项目财年预算
type ProjectBudget struct {
	WorkflowFields
	ProjectID          string          `gorm:"type:varchar(64);not null;index" json:"project_id"`
	FiscalYear         int             `gorm:"not null;index" json:"fiscal_year"`
	Name               string          `gorm:"type:varchar(200);not null" json:"name"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	TotalBudgetedHours decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_budgeted_hours"`
	Notes              string          `gorm:"type:text" json:"notes,omitempty"`
}

// TableName 指定表名
func (ProjectBudget) TableName() string {
	return "project_budgets"
}

func (b *ProjectBudget) GetKind() workflow.Kind {
	return workflow.KindBudget
}

// MutableFields 可编辑字段快照
func (b *ProjectBudget) MutableFields() map[string]string {
	return b.approverFields(map[string]string{
		"project_id":           b.ProjectID,
		"fiscal_year":          strconv.Itoa(b.FiscalYear),
		"name":                 b.Name,
		"description":          b.Description,
		"total_budgeted_hours": b.TotalBudgetedHours.StringFixed(2),
		"notes":                b.Notes,
	})
}

func (b *ProjectBudget) Clone() workflow.Record {
	c := *b
	c.ApprovedAt = copyTime(b.ApprovedAt)
	return &c
}

// Validate 验证项目预算
func (b *ProjectBudget) Validate() error {
	if err := b.validateFields(); err != nil {
		return err
	}
	if b.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if b.Name == "" {
		return errors.New("budget name is required")
	}
	if b.FiscalYear < 2000 || b.FiscalYear > 2100 {
		return errors.New("fiscal year is out of range")
	}
	if b.TotalBudgetedHours.IsNegative() {
		return errors.New("total budgeted hours must not be negative")
	}
	return nil
}
