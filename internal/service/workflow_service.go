package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/metrics"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/utils"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/service"

// WorkflowService 审批记录服务接口
type WorkflowService interface {
	Create(ctx context.Context, kind workflow.Kind, actor string, body []byte) (workflow.Record, error)
	Get(ctx context.Context, kind workflow.Kind, id string) (workflow.Record, error)
	Update(ctx context.Context, kind workflow.Kind, id string, actor string, body []byte) (workflow.Record, error)
	Transition(ctx context.Context, kind workflow.Kind, id string, transition workflow.Transition, actor string, req *TransitionRequest) error
	BulkTransition(ctx context.Context, kind workflow.Kind, transition workflow.Transition, actor string, req *BulkTransitionRequest) (*workflow.BatchResult, error)
	History(ctx context.Context, kind workflow.Kind, id string) ([]model.HistoryEvent, error)
	PendingApproval(ctx context.Context, kind workflow.Kind, approverID, groupID string) ([]workflow.Record, error)
}

// TransitionRequest 单条记录状态转换请求
// @Description 状态转换的请求参数,拒绝时 notes 必填
type TransitionRequest struct {
	Notes string `json:"notes" example:"工时与合同不符"` // 备注
}

// BulkTransitionRequest 批量状态转换请求
// @Description 批量状态转换的请求参数
type BulkTransitionRequest struct {
	IDs   []string `json:"ids" example:"id-1,id-2"` // 记录 ID 列表
	Notes string   `json:"notes" example:"季度末统一审批"` // 备注,批量拒绝时必填
}

// HistoryPublisher 历史事件实时推送
type HistoryPublisher interface {
	PublishHistory(event model.HistoryEvent)
}

type workflowService struct {
	engine    *workflow.Engine
	store     repository.WorkflowStore
	logger    logrus.FieldLogger
	publisher HistoryPublisher
	tracer    trace.Tracer
}

// NewWorkflowService 创建审批记录服务
func NewWorkflowService(engine *workflow.Engine, store repository.WorkflowStore, logger logrus.FieldLogger, publisher ...HistoryPublisher) WorkflowService {
	var pub HistoryPublisher
	if len(publisher) > 0 && publisher[0] != nil {
		pub = publisher[0]
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &workflowService{
		engine:    engine,
		store:     store,
		logger:    logger.WithField("component", "workflow_service"),
		publisher: pub,
		tracer:    otel.Tracer(tracerName),
	}
}

// Create 以 Draft 状态创建记录
func (s *workflowService) Create(ctx context.Context, kind workflow.Kind, actor string, body []byte) (workflow.Record, error) {
	ctx, span := s.tracer.Start(ctx, "WorkflowService.Create", trace.WithAttributes(
		attribute.String("workflow.kind", string(kind)),
	))
	defer span.End()

	in, err := decodeInput(kind, body)
	if err != nil {
		return nil, s.fail(span, err)
	}
	rec, err := repository.NewRecord(kind)
	if err != nil {
		return nil, s.fail(span, err)
	}

	fields := workflowFieldsOf(rec)
	fields.ID = uuid.NewString()
	fields.OwnerID = actor
	if h := in.header(); h.TenantID != nil {
		fields.TenantID = strings.TrimSpace(*h.TenantID)
	}
	if err := in.apply(rec); err != nil {
		return nil, s.fail(span, preconditionFailed(err))
	}

	created, err := s.engine.Create(ctx, rec, actor, in.header().ChangeNotes)
	if err != nil {
		return nil, s.fail(span, err)
	}

	metrics.RecordCreated(string(kind))
	s.logger.WithFields(logrus.Fields{
		"kind":      kind,
		"record_id": created.GetID(),
		"actor":     actor,
	}).Info("record created")
	s.publishLatest(ctx, kind, created.GetID())
	return created, nil
}

// Get 获取记录
func (s *workflowService) Get(ctx context.Context, kind workflow.Kind, id string) (workflow.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.engine.Get(ctx, kind, id)
}

// Update 编辑 Draft/Rejected 记录
func (s *workflowService) Update(ctx context.Context, kind workflow.Kind, id string, actor string, body []byte) (workflow.Record, error) {
	ctx, span := s.tracer.Start(ctx, "WorkflowService.Update", trace.WithAttributes(
		attribute.String("workflow.kind", string(kind)),
		attribute.String("workflow.record_id", id),
	))
	defer span.End()

	if err := checkID(id); err != nil {
		return nil, s.fail(span, err)
	}
	in, err := decodeInput(kind, body)
	if err != nil {
		return nil, s.fail(span, err)
	}

	updated, err := s.engine.Edit(ctx, workflow.EditRequest{
		Kind:  kind,
		ID:    id,
		Actor: actor,
		Notes: in.header().ChangeNotes,
		Apply: in.apply,
	})
	if err != nil {
		return nil, s.fail(span, err)
	}

	s.logger.WithFields(logrus.Fields{
		"kind":      kind,
		"record_id": id,
		"actor":     actor,
		"version":   updated.GetVersion(),
	}).Info("record updated")
	s.publishLatest(ctx, kind, id)
	return updated, nil
}

// Transition 单条记录状态转换
func (s *workflowService) Transition(ctx context.Context, kind workflow.Kind, id string, transition workflow.Transition, actor string, req *TransitionRequest) error {
	ctx, span := s.tracer.Start(ctx, "WorkflowService.Transition", trace.WithAttributes(
		attribute.String("workflow.kind", string(kind)),
		attribute.String("workflow.record_id", id),
		attribute.String("workflow.transition", string(transition)),
	))
	defer span.End()

	notes := ""
	if req != nil {
		notes = req.Notes
	}
	if err := checkID(id); err != nil {
		return s.fail(span, err)
	}
	if err := utils.ValidateNotes(notes); err != nil {
		return s.fail(span, invalidRequest(err))
	}

	result, err := s.engine.Apply(ctx, workflow.TransitionRequest{
		Kind:       kind,
		ID:         id,
		Transition: transition,
		Actor:      actor,
		Notes:      notes,
	})
	log := s.logger.WithFields(logrus.Fields{
		"kind":       kind,
		"record_id":  id,
		"transition": transition,
		"actor":      actor,
	})
	if err != nil {
		code := workflow.CodeOf(err)
		metrics.RecordTransition(string(kind), string(transition), string(code))
		if workflow.IsCallerError(err) {
			log.WithField("code", code).Info("transition rejected")
		} else {
			log.WithError(err).Error("transition failed, nothing committed")
		}
		return s.fail(span, err)
	}

	metrics.RecordTransition(string(kind), string(transition), "success")
	log.WithField("status", result.Record.GetWorkflowState().ApprovalStatus).Info("transition applied")
	s.publish(result.History)
	return nil
}

// BulkTransition 批量状态转换
func (s *workflowService) BulkTransition(ctx context.Context, kind workflow.Kind, transition workflow.Transition, actor string, req *BulkTransitionRequest) (*workflow.BatchResult, error) {
	if req == nil {
		req = &BulkTransitionRequest{}
	}
	ctx, span := s.tracer.Start(ctx, "WorkflowService.BulkTransition", trace.WithAttributes(
		attribute.String("workflow.kind", string(kind)),
		attribute.String("workflow.transition", string(transition)),
		attribute.Int("workflow.batch_size", len(req.IDs)),
	))
	defer span.End()

	metrics.RecordBatch(string(kind), string(transition), len(req.IDs))
	log := s.logger.WithFields(logrus.Fields{
		"kind":       kind,
		"transition": transition,
		"actor":      actor,
		"requested":  len(req.IDs),
	})

	if err := utils.ValidateBatch(req.IDs); err != nil {
		return nil, s.fail(span, invalidRequest(err))
	}
	if err := utils.ValidateNotes(req.Notes); err != nil {
		return nil, s.fail(span, invalidRequest(err))
	}

	result, err := s.engine.Batch(ctx, workflow.BatchRequest{
		Kind:       kind,
		IDs:        req.IDs,
		Transition: transition,
		Actor:      actor,
		Notes:      req.Notes,
	})
	if err != nil {
		if workflow.IsCallerError(err) {
			log.WithField("code", workflow.CodeOf(err)).Info("batch rejected")
		} else {
			metrics.RecordBatchRollback(string(kind), string(transition))
			log.WithError(err).Error("batch failed, whole batch rolled back")
		}
		return nil, s.fail(span, err)
	}

	for range result.Successful {
		metrics.RecordTransition(string(kind), string(transition), "success")
	}
	for _, f := range result.Failed {
		metrics.RecordTransition(string(kind), string(transition), string(f.Code))
	}
	span.SetAttributes(
		attribute.Int("workflow.succeeded", len(result.Successful)),
		attribute.Int("workflow.failed", len(result.Failed)),
	)
	log.WithFields(logrus.Fields{
		"succeeded": len(result.Successful),
		"failed":    len(result.Failed),
	}).Info("batch transition committed")

	for _, entry := range result.History {
		s.publish(entry)
	}
	return result, nil
}

// History 获取记录历史,最新的在前
func (s *workflowService) History(ctx context.Context, kind workflow.Kind, id string) ([]model.HistoryEvent, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	entries, err := s.engine.History(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	events := make([]model.HistoryEvent, len(entries))
	for i, e := range entries {
		events[i] = model.NewHistoryEvent(e)
	}
	return events, nil
}

// PendingApproval 待审批收件箱
func (s *workflowService) PendingApproval(ctx context.Context, kind workflow.Kind, approverID, groupID string) ([]workflow.Record, error) {
	recs, err := s.store.FindPendingApproval(ctx, kind, approverID, groupID)
	if err != nil {
		return nil, workflow.Infrastructure("failed to load pending approvals", err)
	}
	return recs, nil
}

// publish 推送实时历史事件,发件箱投递不依赖这里
func (s *workflowService) publish(entry workflow.HistoryEntry) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishHistory(model.NewHistoryEvent(entry))
}

func (s *workflowService) publishLatest(ctx context.Context, kind workflow.Kind, id string) {
	if s.publisher == nil {
		return
	}
	entries, err := s.store.History(ctx, kind, id)
	if err != nil || len(entries) == 0 {
		return
	}
	s.publish(entries[0])
}

func (s *workflowService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(workflow.CodeOf(err)))
	return err
}

func preconditionFailed(err error) error {
	var werr *workflow.Error
	if errors.As(err, &werr) {
		return err
	}
	return &workflow.Error{Code: workflow.CodePreconditionFailed, Message: fmt.Sprintf("invalid record: %v", err)}
}

// invalidRequest 把请求校验错误转换为 PreconditionFailed
func invalidRequest(err error) error {
	return &workflow.Error{Code: workflow.CodePreconditionFailed, Message: err.Error(), Err: err}
}

// checkID 格式不合法的 ID 不可能存在
func checkID(id string) error {
	if err := utils.ValidateRecordID(id); err != nil {
		return &workflow.Error{Code: workflow.CodeNotFound, Message: fmt.Sprintf("record %q not found", id), Err: err}
	}
	return nil
}

// workflowFieldsOf 取出模型内嵌的公共字段
func workflowFieldsOf(rec workflow.Record) *model.WorkflowFields {
	switch r := rec.(type) {
	case *model.WbsElement:
		return &r.WorkflowFields
	case *model.Forecast:
		return &r.WorkflowFields
	case *model.ProjectBudget:
		return &r.WorkflowFields
	}
	return &model.WorkflowFields{}
}
