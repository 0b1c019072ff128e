package repository

import (
	"fmt"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"gorm.io/gorm"
)

// recordBinding 记录类型到 gorm 模型的绑定
type recordBinding struct {
	kind     workflow.Kind
	newModel func() workflow.Record
	first    func(db *gorm.DB, id string) (workflow.Record, error)
	find     func(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]workflow.Record, error)
}

func bind[T any, P interface {
	*T
	workflow.Record
}](kind workflow.Kind) recordBinding {
	return recordBinding{
		kind: kind,
		newModel: func() workflow.Record {
			return P(new(T))
		},
		first: func(db *gorm.DB, id string) (workflow.Record, error) {
			var m T
			if err := db.Where("id = ?", id).First(&m).Error; err != nil {
				return nil, err
			}
			return P(&m), nil
		},
		find: func(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]workflow.Record, error) {
			var rows []T
			if err := db.Scopes(scope).Find(&rows).Error; err != nil {
				return nil, err
			}
			out := make([]workflow.Record, len(rows))
			for i := range rows {
				out[i] = P(&rows[i])
			}
			return out, nil
		},
	}
}

var bindings = map[workflow.Kind]recordBinding{
	workflow.KindWbs:      bind[model.WbsElement](workflow.KindWbs),
	workflow.KindForecast: bind[model.Forecast](workflow.KindForecast),
	workflow.KindBudget:   bind[model.ProjectBudget](workflow.KindBudget),
}

func bindingFor(kind workflow.Kind) (recordBinding, error) {
	b, ok := bindings[kind]
	if !ok {
		return recordBinding{}, workflow.NewError(workflow.CodeNotFound, fmt.Sprintf("unknown record type %q", kind))
	}
	return b, nil
}

// NewRecord 创建指定类型的空记录
func NewRecord(kind workflow.Kind) (workflow.Record, error) {
	b, err := bindingFor(kind)
	if err != nil {
		return nil, err
	}
	return b.newModel(), nil
}

// RecordModels 所有审批记录的 gorm 模型,用于迁移
func RecordModels() []interface{} {
	return []interface{}{
		&model.WbsElement{},
		&model.Forecast{},
		&model.ProjectBudget{},
	}
}
