package workflow

import (
	"context"
	"fmt"
	"strings"
)

// BatchRequest 批量转换请求
type BatchRequest struct {
	Kind       Kind
	IDs        []string
	Transition Transition
	Actor      string
	Notes      string
}

// BatchFailure 单条记录的失败结果
type BatchFailure struct {
	ID    string    `json:"id"`
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// BatchResult 批量转换结果
// len(Successful)+len(Failed) 等于请求的 ID 数量
type BatchResult struct {
	Successful []string       `json:"successful"`
	Failed     []BatchFailure `json:"failed"`

	History []HistoryEntry `json:"-"`
}

// Batch 对多条记录执行同一个转换
//
// 记录按输入顺序依次处理,重复 ID 能看到前一次的内存变更。业务校验失败作为结果
// 返回并与成功的记录一起提交;持久化阶段出错时整个批次回滚,不返回部分结果。
func (e *Engine) Batch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if err := validateBatch(req); err != nil {
		return nil, err
	}

	var result *BatchResult
	err := e.store.Transaction(ctx, func(tx Tx) error {
		loaded, err := tx.LoadMany(ctx, req.Kind, uniqueIDs(req.IDs))
		if err != nil {
			return Infrastructure("failed to load batch records", err)
		}

		res := &BatchResult{
			Successful: make([]string, 0, len(req.IDs)),
			Failed:     make([]BatchFailure, 0),
		}
		var dirty []Record
		touched := make(map[string]bool)

		for _, id := range req.IDs {
			rec, ok := loaded[id]
			if !ok {
				res.fail(id, notFound(req.Kind, id))
				continue
			}
			entry, err := e.transition(rec, req.Transition, req.Actor, req.Notes)
			if err != nil {
				res.fail(id, err)
				continue
			}
			res.Successful = append(res.Successful, id)
			res.History = append(res.History, entry)
			if !touched[id] {
				touched[id] = true
				dirty = append(dirty, rec)
			}
		}

		for _, rec := range dirty {
			if err := tx.Save(ctx, rec); err != nil {
				return Infrastructure(fmt.Sprintf("failed to save record %s", rec.GetID()), err)
			}
		}
		if len(res.History) > 0 {
			if err := tx.AppendHistory(ctx, res.History...); err != nil {
				return Infrastructure("failed to append batch history", err)
			}
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, Infrastructure("batch transaction failed", err)
	}
	return result, nil
}

func (r *BatchResult) fail(id string, err error) {
	r.Failed = append(r.Failed, BatchFailure{
		ID:    id,
		Error: err.Error(),
		Code:  CodeOf(err),
	})
}

// validateBatch 不访问存储的前置检查
func validateBatch(req BatchRequest) error {
	if len(req.IDs) == 0 {
		return NewError(CodePreconditionFailed, "ids must not be empty")
	}
	if _, ok := Target(req.Transition); !ok {
		return NewError(CodeInvalidTransition, fmt.Sprintf("unknown transition %q", req.Transition))
	}
	if req.Transition == TransitionReject && strings.TrimSpace(req.Notes) == "" {
		return NewError(CodePreconditionFailed, "notes are required to reject records")
	}
	return requireActor(req.Actor)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
