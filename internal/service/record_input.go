package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/utils"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// recordInput 各类型记录的可编辑字段输入
type recordInput interface {
	apply(rec workflow.Record) error
	header() *RecordHeader
}

// RecordHeader 创建和编辑请求共有的字段
// @Description 审批记录的公共字段
type RecordHeader struct {
	TenantID        *string `json:"tenant_id,omitempty" example:"tenant-01"`       // 租户 ID,仅创建时有效
	OwnerID         *string `json:"owner_id,omitempty" example:"user-001"`         // 负责人 ID
	ApproverID      *string `json:"approver_id,omitempty" example:"user-002"`      // 审批人 ID
	ApproverGroupID *string `json:"approver_group_id,omitempty" example:"finance"` // 审批组 ID
	ChangeNotes     string  `json:"change_notes,omitempty" example:"初始版本"`         // 变更说明,写入历史
}

func (h *RecordHeader) header() *RecordHeader {
	return h
}

func (h *RecordHeader) applyHeader(f *model.WorkflowFields) {
	if h.OwnerID != nil {
		f.OwnerID = strings.TrimSpace(*h.OwnerID)
	}
	if h.ApproverID != nil {
		f.ApproverID = strings.TrimSpace(*h.ApproverID)
	}
	if h.ApproverGroupID != nil {
		f.ApproverGroupID = strings.TrimSpace(*h.ApproverGroupID)
	}
}

// WbsInput WBS 元素字段
// @Description WBS 元素的可编辑字段,编辑时只更新提供的字段
type WbsInput struct {
	RecordHeader
	ProjectID     *string          `json:"project_id,omitempty" example:"prj-001"`
	Code          *string          `json:"code,omitempty" example:"1.2.3"`
	Description   *string          `json:"description,omitempty" example:"系统集成"`
	Type          *string          `json:"type,omitempty" example:"Billable"` // Billable/NonBillable/BidAndProposal/Overhead/GeneralAndAdmin
	ValidFrom     *string          `json:"valid_from,omitempty" example:"2025-01-01"`
	ValidTo       *string          `json:"valid_to,omitempty" example:"2025-12-31"` // 空字符串表示清除
	BudgetedHours *decimal.Decimal `json:"budgeted_hours,omitempty" swaggertype:"string" example:"320.00"`
}

func (in *WbsInput) apply(rec workflow.Record) error {
	w, ok := rec.(*model.WbsElement)
	if !ok {
		return fmt.Errorf("record is not a WBS element")
	}
	in.applyHeader(&w.WorkflowFields)
	setString(&w.ProjectID, in.ProjectID)
	setString(&w.Code, in.Code)
	setString(&w.Description, in.Description)
	setString(&w.Type, in.Type)
	if in.ValidFrom != nil {
		t, err := time.Parse(dateLayout, *in.ValidFrom)
		if err != nil {
			return fmt.Errorf("valid_from must be a date (YYYY-MM-DD)")
		}
		w.ValidFrom = t
	}
	if in.ValidTo != nil {
		if *in.ValidTo == "" {
			w.ValidTo = nil
		} else {
			t, err := time.Parse(dateLayout, *in.ValidTo)
			if err != nil {
				return fmt.Errorf("valid_to must be a date (YYYY-MM-DD)")
			}
			w.ValidTo = &t
		}
	}
	if in.BudgetedHours != nil {
		w.BudgetedHours = *in.BudgetedHours
	}
	return w.Validate()
}

// ForecastInput 工时预测字段
// @Description 工时预测的可编辑字段
type ForecastInput struct {
	RecordHeader
	AssignmentID    *string          `json:"assignment_id,omitempty" example:"asg-001"`
	Year            *int             `json:"year,omitempty" example:"2025"`
	Month           *int             `json:"month,omitempty" example:"3"`
	Week            *int             `json:"week,omitempty" example:"2"`
	ForecastedHours *decimal.Decimal `json:"forecasted_hours,omitempty" swaggertype:"string" example:"40.00"`
	Notes           *string          `json:"notes,omitempty"`
}

func (in *ForecastInput) apply(rec workflow.Record) error {
	f, ok := rec.(*model.Forecast)
	if !ok {
		return fmt.Errorf("record is not a forecast")
	}
	in.applyHeader(&f.WorkflowFields)
	setString(&f.AssignmentID, in.AssignmentID)
	if in.Year != nil {
		f.Year = *in.Year
	}
	if in.Month != nil {
		f.Month = *in.Month
	}
	if in.Week != nil {
		week := *in.Week
		if week == 0 {
			f.Week = nil
		} else {
			f.Week = &week
		}
	}
	if in.ForecastedHours != nil {
		f.ForecastedHours = *in.ForecastedHours
	}
	setString(&f.Notes, in.Notes)
	return f.Validate()
}

// BudgetInput 项目预算字段
// @Description 项目预算的可编辑字段
type BudgetInput struct {
	RecordHeader
	ProjectID          *string          `json:"project_id,omitempty" example:"prj-001"`
	FiscalYear         *int             `json:"fiscal_year,omitempty" example:"2025"`
	Name               *string          `json:"name,omitempty" example:"FY25 基线预算"`
	Description        *string          `json:"description,omitempty"`
	TotalBudgetedHours *decimal.Decimal `json:"total_budgeted_hours,omitempty" swaggertype:"string" example:"12000.00"`
	Notes              *string          `json:"notes,omitempty"`
}

func (in *BudgetInput) apply(rec workflow.Record) error {
	b, ok := rec.(*model.ProjectBudget)
	if !ok {
		return fmt.Errorf("record is not a project budget")
	}
	in.applyHeader(&b.WorkflowFields)
	setString(&b.ProjectID, in.ProjectID)
	if in.FiscalYear != nil {
		b.FiscalYear = *in.FiscalYear
	}
	setString(&b.Name, in.Name)
	setString(&b.Description, in.Description)
	if in.TotalBudgetedHours != nil {
		b.TotalBudgetedHours = *in.TotalBudgetedHours
	}
	setString(&b.Notes, in.Notes)
	return b.Validate()
}

// decodeInput 按记录类型解析请求体,拒绝未知字段
func decodeInput(kind workflow.Kind, body []byte) (recordInput, error) {
	var in recordInput
	switch kind {
	case workflow.KindWbs:
		in = &WbsInput{}
	case workflow.KindForecast:
		in = &ForecastInput{}
	case workflow.KindBudget:
		in = &BudgetInput{}
	default:
		return nil, workflow.NewError(workflow.CodeNotFound, fmt.Sprintf("unknown record type %q", kind))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(in); err != nil {
		return nil, &workflow.Error{Code: workflow.CodePreconditionFailed, Message: "invalid request body", Err: err}
	}
	if err := utils.ValidateNotes(in.header().ChangeNotes); err != nil {
		return nil, invalidRequest(err)
	}
	return in, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
