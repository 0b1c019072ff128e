package model

import (
	"errors"
	"strconv"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/shopspring/decimal"
)

// Forecast 人员工时预测
type Forecast struct {
	WorkflowFields
	AssignmentID    string          `gorm:"type:varchar(64);not null;index" json:"assignment_id"`
	Year            int             `gorm:"not null;index:idx_forecast_period" json:"year"`
	Month           int             `gorm:"not null;index:idx_forecast_period" json:"month"`
	Week            *int            `json:"week,omitempty"`
	ForecastedHours decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"forecasted_hours"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
}

// TableName 指定表名
func (Forecast) TableName() string {
	return "forecasts"
}

func (f *Forecast) GetKind() workflow.Kind {
	return workflow.KindForecast
}

// MutableFields 可编辑字段快照
func (f *Forecast) MutableFields() map[string]string {
	week := ""
	if f.Week != nil {
		week = strconv.Itoa(*f.Week)
	}
	return f.approverFields(map[string]string{
		"assignment_id":    f.AssignmentID,
		"year":             strconv.Itoa(f.Year),
		"month":            strconv.Itoa(f.Month),
		"week":             week,
		"forecasted_hours": f.ForecastedHours.StringFixed(2),
		"notes":            f.Notes,
	})
}

func (f *Forecast) Clone() workflow.Record {
	c := *f
	c.ApprovedAt = copyTime(f.ApprovedAt)
	if f.Week != nil {
		w := *f.Week
		c.Week = &w
	}
	return &c
}

// Validate 验证工时预测
func (f *Forecast) Validate() error {
	if err := f.validateFields(); err != nil {
		return err
	}
	if f.AssignmentID == "" {
		return errors.New("assignment ID is required")
	}
	if f.Year < 2000 || f.Year > 2100 {
		return errors.New("year is out of range")
	}
	if f.Month < 1 || f.Month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if f.Week != nil && (*f.Week < 1 || *f.Week > 5) {
		return errors.New("week must be between 1 and 5")
	}
	if f.ForecastedHours.IsNegative() {
		return errors.New("forecasted hours must not be negative")
	}
	return nil
}
