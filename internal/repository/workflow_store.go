package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"gorm.io/gorm"
)

// WorkflowStore 审批记录仓储,实现 workflow.Store
type WorkflowStore interface {
	workflow.Store
	// FindPendingApproval 待审批收件箱,approverID 与 groupID 为空时返回全部待审批记录
	FindPendingApproval(ctx context.Context, kind workflow.Kind, approverID, groupID string) ([]workflow.Record, error)
}

// workflowStore 基于 gorm 的实现
type workflowStore struct {
	db *gorm.DB
}

// NewWorkflowStore 创建审批记录仓储
func NewWorkflowStore(db *gorm.DB) WorkflowStore {
	return &workflowStore{db: db}
}

// Transaction 在数据库事务中执行 fn
func (s *workflowStore) Transaction(ctx context.Context, fn func(tx workflow.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// Get 根据类型和 ID 查找记录
func (s *workflowStore) Get(ctx context.Context, kind workflow.Kind, id string) (workflow.Record, error) {
	return (&gormTx{db: s.db.WithContext(ctx)}).Load(ctx, kind, id)
}

// History 查找记录历史,最新的在前
func (s *workflowStore) History(ctx context.Context, kind workflow.Kind, id string) ([]workflow.HistoryEntry, error) {
	var rows []*model.ChangeHistoryModel
	err := s.db.WithContext(ctx).
		Where("record_kind = ? AND record_id = ?", string(kind), id).
		Order("changed_at DESC").
		Order("sequence DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]workflow.HistoryEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.ToEntry()
	}
	return entries, nil
}

// FindPendingApproval 查找待审批记录
func (s *workflowStore) FindPendingApproval(ctx context.Context, kind workflow.Kind, approverID, groupID string) ([]workflow.Record, error) {
	b, err := bindingFor(kind)
	if err != nil {
		return nil, err
	}
	return b.find(s.db.WithContext(ctx), func(db *gorm.DB) *gorm.DB {
		db = db.Where("approval_status = ?", string(workflow.StatusPendingApproval))
		switch {
		case approverID != "" && groupID != "":
			db = db.Where("approver_id = ? OR approver_group_id = ?", approverID, groupID)
		case approverID != "":
			db = db.Where("approver_id = ?", approverID)
		case groupID != "":
			db = db.Where("approver_group_id = ?", groupID)
		}
		return db.Order("updated_at ASC")
	})
}

// gormTx 事务内操作
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Load(ctx context.Context, kind workflow.Kind, id string) (workflow.Record, error) {
	b, err := bindingFor(kind)
	if err != nil {
		return nil, err
	}
	rec, err := b.first(t.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, workflow.NewError(workflow.CodeNotFound, fmt.Sprintf("%s record %s not found", kind, id))
	}
	return rec, err
}

// LoadMany 使用一次 IN 查询加载记录
func (t *gormTx) LoadMany(ctx context.Context, kind workflow.Kind, ids []string) (map[string]workflow.Record, error) {
	b, err := bindingFor(kind)
	if err != nil {
		return nil, err
	}
	recs, err := b.find(t.db, func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]workflow.Record, len(recs))
	for _, rec := range recs {
		out[rec.GetID()] = rec
	}
	return out, nil
}

func (t *gormTx) Insert(ctx context.Context, rec workflow.Record) error {
	return t.db.Create(rec).Error
}

// Save 乐观锁更新,版本号不匹配时返回 ConcurrentModification
func (t *gormTx) Save(ctx context.Context, rec workflow.Record) error {
	expected := rec.GetVersion()
	rec.SetVersion(expected + 1)

	result := t.db.Model(rec).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(rec)
	if result.Error != nil {
		rec.SetVersion(expected)
		return result.Error
	}
	if result.RowsAffected == 0 {
		rec.SetVersion(expected)
		return workflow.NewError(workflow.CodeConcurrentModification,
			fmt.Sprintf("%s record %s was modified concurrently", rec.GetKind(), rec.GetID()))
	}
	return nil
}

// AppendHistory 追加历史并在同一事务内写入发件箱事件
func (t *gormTx) AppendHistory(ctx context.Context, entries ...workflow.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*model.ChangeHistoryModel, len(entries))
	events := make([]*model.EventModel, len(entries))
	for i, e := range entries {
		rows[i] = model.NewChangeHistoryModel(e)
		if err := rows[i].Validate(); err != nil {
			return fmt.Errorf("invalid history entry: %w", err)
		}
		event, err := model.NewHistoryEventModel(e)
		if err != nil {
			return err
		}
		events[i] = event
	}
	if err := t.db.Create(&rows).Error; err != nil {
		return err
	}
	return t.db.Create(&events).Error
}
