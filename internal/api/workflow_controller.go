package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/service"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// RecordView 单条记录及其当前可执行的转换
// @Description 审批记录详情
type RecordView struct {
	Record               workflow.Record       `json:"record" swaggertype:"object"`
	AvailableTransitions []workflow.Transition `json:"available_transitions" swaggertype:"array,string" example:"submit,close"`
}

// WorkflowController 审批记录控制器,每种记录类型一个实例
type WorkflowController struct {
	kind    workflow.Kind
	service service.WorkflowService
}

// NewWorkflowController 创建审批记录控制器
func NewWorkflowController(kind workflow.Kind, svc service.WorkflowService) *WorkflowController {
	return &WorkflowController{kind: kind, service: svc}
}

// Create 创建记录
// @Summary 创建审批记录
// @Description 以 Draft 状态创建记录并写入 Created 历史
// @Tags records
// @Accept json
// @Produce json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param body body service.BudgetInput true "记录字段,按类型为 WbsInput/ForecastInput/BudgetInput"
// @Success 201 {object} Response{data=RecordView}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/{type} [post]
func (wc *WorkflowController) Create(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	rec, err := wc.service.Create(c.Request.Context(), wc.kind, auth.UserID(c), body)
	if err != nil {
		respondError(c, err)
		return
	}
	Created(c, viewOf(rec))
}

// Get 获取记录
// @Summary 获取审批记录
// @Tags records
// @Produce json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param id path string true "记录 ID"
// @Success 200 {object} Response{data=RecordView}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/{type}/{id} [get]
func (wc *WorkflowController) Get(c *gin.Context) {
	rec, err := wc.service.Get(c.Request.Context(), wc.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, viewOf(rec))
}

// Update 编辑记录
// @Summary 编辑审批记录
// @Description 只有 Draft 和 Rejected 状态的记录可以编辑,只更新提供的字段
// @Tags records
// @Accept json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param id path string true "记录 ID"
// @Param body body service.BudgetInput true "要修改的字段"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/{type}/{id} [put]
func (wc *WorkflowController) Update(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	if _, err := wc.service.Update(c.Request.Context(), wc.kind, c.Param("id"), auth.UserID(c), body); err != nil {
		respondError(c, err)
		return
	}
	NoContent(c)
}

// Transition 单条记录状态转换
// @Summary 状态转换
// @Description submit/approve/reject/suspend/close,reject 必须填写 notes
// @Tags transitions
// @Accept json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param id path string true "记录 ID"
// @Param transition path string true "转换" Enums(submit, approve, reject, suspend, close)
// @Param body body service.TransitionRequest false "备注"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/{type}/{id}/{transition} [post]
func (wc *WorkflowController) Transition(c *gin.Context) {
	t, err := workflow.ParseTransition(c.Param("transition"))
	if err != nil {
		respondError(c, err)
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	req := &service.TransitionRequest{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, req); err != nil {
			Error(c, http.StatusBadRequest, string(workflow.CodePreconditionFailed), "invalid request body: "+err.Error())
			return
		}
	}
	if err := wc.service.Transition(c.Request.Context(), wc.kind, c.Param("id"), t, auth.UserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	NoContent(c)
}

// BulkTransition 批量状态转换
// @Summary 批量状态转换
// @Description 业务校验失败的记录出现在 failed 中,其余记录照常提交;存储故障时整批回滚
// @Tags transitions
// @Accept json
// @Produce json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param transition path string true "转换" Enums(submit, approve, reject, suspend, close)
// @Param body body service.BulkTransitionRequest true "记录 ID 列表和备注"
// @Success 200 {object} Response{data=workflow.BatchResult}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/{type}/bulk/{transition} [post]
func (wc *WorkflowController) BulkTransition(c *gin.Context) {
	t, err := workflow.ParseTransition(c.Param("transition"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req service.BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, string(workflow.CodePreconditionFailed), "invalid request body: "+err.Error())
		return
	}
	result, err := wc.service.BulkTransition(c.Request.Context(), wc.kind, t, auth.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, result)
}

// History 获取记录历史
// @Summary 获取记录历史
// @Description 最新的在前
// @Tags records
// @Produce json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param id path string true "记录 ID"
// @Success 200 {object} Response{data=[]model.HistoryEvent}
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/{type}/{id}/history [get]
func (wc *WorkflowController) History(c *gin.Context) {
	events, err := wc.service.History(c.Request.Context(), wc.kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, events)
}

// PendingApproval 待审批收件箱
// @Summary 待审批记录
// @Description 不带参数时返回当前用户作为审批人的待审批记录
// @Tags records
// @Produce json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param approver_id query string false "审批人 ID"
// @Param approver_group_id query string false "审批组 ID"
// @Success 200 {object} Response{data=[]object}
// @Router /api/v1/{type}/pending-approval [get]
func (wc *WorkflowController) PendingApproval(c *gin.Context) {
	approverID := c.Query("approver_id")
	groupID := c.Query("approver_group_id")
	if approverID == "" && groupID == "" {
		approverID = auth.UserID(c)
	}

	recs, err := wc.service.PendingApproval(c.Request.Context(), wc.kind, approverID, groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	Success(c, recs)
}

func viewOf(rec workflow.Record) RecordView {
	available := workflow.AvailableTransitions(rec.GetWorkflowState().ApprovalStatus)
	if available == nil {
		available = []workflow.Transition{}
	}
	return RecordView{Record: rec, AvailableTransitions: available}
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		Error(c, http.StatusBadRequest, string(workflow.CodePreconditionFailed), "failed to read request body")
		return nil, false
	}
	if len(body) > maxBodyBytes {
		Error(c, http.StatusRequestEntityTooLarge, "request body too large", "")
		return nil, false
	}
	return body, true
}

// respondError 按工作流错误码返回错误,基础设施错误不向调用方暴露细节
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	code := workflow.CodeOf(err)
	status := StatusFor(code)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = ""
	}
	Error(c, status, string(code), detail)
}
