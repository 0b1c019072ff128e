package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine 工作流状态转换引擎
// 引擎本身不做权限校验,调用方在进入引擎前完成授权
type Engine struct {
	store Store
	now   func() time.Time
	newID func() string
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator 设置历史记录 ID 生成器
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine 创建引擎
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TransitionRequest 单条记录状态转换请求
type TransitionRequest struct {
	Kind       Kind
	ID         string
	Transition Transition
	Actor      string
	Notes      string
}

// TransitionResult 转换结果
type TransitionResult struct {
	Record  Record
	History HistoryEntry
}

// EditRequest 字段编辑请求
type EditRequest struct {
	Kind  Kind
	ID    string
	Actor string
	Notes string
	// Apply 修改可编辑字段,返回错误时不落库
	Apply func(rec Record) error
}

// Apply 对单条记录执行状态转换
// 记录变更和历史在同一事务内提交
func (e *Engine) Apply(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if err := requireActor(req.Actor); err != nil {
		return nil, err
	}

	var result *TransitionResult
	err := e.store.Transaction(ctx, func(tx Tx) error {
		rec, err := tx.Load(ctx, req.Kind, req.ID)
		if err != nil {
			return err
		}
		entry, err := e.transition(rec, req.Transition, req.Actor, req.Notes)
		if err != nil {
			return err
		}
		if err := tx.Save(ctx, rec); err != nil {
			return Infrastructure("failed to save record", err)
		}
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return Infrastructure("failed to append history", err)
		}
		result = &TransitionResult{Record: rec, History: entry}
		return nil
	})
	if err != nil {
		return nil, Infrastructure("transition transaction failed", err)
	}
	return result, nil
}

// Edit 编辑 Draft 或 Rejected 状态记录的字段
// 字段没有变化时不写历史
func (e *Engine) Edit(ctx context.Context, req EditRequest) (Record, error) {
	if err := requireActor(req.Actor); err != nil {
		return nil, err
	}
	if req.Apply == nil {
		return nil, NewError(CodePreconditionFailed, "no changes supplied")
	}

	var updated Record
	err := e.store.Transaction(ctx, func(tx Tx) error {
		rec, err := tx.Load(ctx, req.Kind, req.ID)
		if err != nil {
			return err
		}
		if err := ValidateEdit(rec); err != nil {
			return err
		}

		before := rec.MutableFields()
		if err := req.Apply(rec); err != nil {
			var werr *Error
			if errors.As(err, &werr) {
				return err
			}
			return &Error{Code: CodePreconditionFailed, Message: "invalid field value", Err: err}
		}
		if sameFields(before, rec.MutableFields()) {
			updated = rec
			return nil
		}

		now := e.now().UTC()
		state := rec.GetWorkflowState()
		state.UpdatedAt = now
		rec.SetWorkflowState(state)

		entry := RecordEdit(rec, before, e.change(req.Actor, req.Notes, now))
		if err := tx.Save(ctx, rec); err != nil {
			return Infrastructure("failed to save record", err)
		}
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return Infrastructure("failed to append history", err)
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, Infrastructure("edit transaction failed", err)
	}
	return updated, nil
}

// Create 以 Draft 状态创建记录并写入 Created 历史
func (e *Engine) Create(ctx context.Context, rec Record, actor, notes string) (Record, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if rec.GetID() == "" {
		return nil, NewError(CodePreconditionFailed, "record id is required")
	}

	now := e.now().UTC()
	rec.SetWorkflowState(State{
		ApprovalStatus:    StatusDraft,
		OperationalStatus: OperationalDraft,
		UpdatedAt:         now,
	})
	rec.SetVersion(0)

	err := e.store.Transaction(ctx, func(tx Tx) error {
		if err := tx.Insert(ctx, rec); err != nil {
			return Infrastructure("failed to insert record", err)
		}
		entry := RecordCreate(rec, e.change(actor, notes, now))
		if err := tx.AppendHistory(ctx, entry); err != nil {
			return Infrastructure("failed to append history", err)
		}
		return nil
	})
	if err != nil {
		return nil, Infrastructure("create transaction failed", err)
	}
	return rec, nil
}

// Get 获取记录
func (e *Engine) Get(ctx context.Context, kind Kind, id string) (Record, error) {
	rec, err := e.store.Get(ctx, kind, id)
	if err != nil {
		return nil, Infrastructure("failed to load record", err)
	}
	return rec, nil
}

// History 获取记录历史,最新的在前
func (e *Engine) History(ctx context.Context, kind Kind, id string) ([]HistoryEntry, error) {
	if _, err := e.Get(ctx, kind, id); err != nil {
		return nil, err
	}
	entries, err := e.store.History(ctx, kind, id)
	if err != nil {
		return nil, Infrastructure("failed to load history", err)
	}
	return entries, nil
}

// transition 在内存中校验并变更记录,返回对应的历史条目
func (e *Engine) transition(rec Record, t Transition, actor, notes string) (HistoryEntry, error) {
	if err := Validate(rec, t, notes); err != nil {
		return HistoryEntry{}, err
	}
	now := e.now().UTC()
	before := rec.GetWorkflowState()
	after := Next(before, t, notes, now)
	rec.SetWorkflowState(after)
	return RecordTransition(rec, t, before, after, e.change(actor, notes, now)), nil
}

func (e *Engine) change(actor, notes string, at time.Time) Change {
	return Change{
		ID:    e.newID(),
		Actor: actor,
		At:    at,
		Notes: strings.TrimSpace(notes),
	}
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return NewError(CodePreconditionFailed, "an acting identity is required")
	}
	return nil
}

func sameFields(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}
