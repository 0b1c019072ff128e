package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/service"
	"github.com/gin-gonic/gin"
)

// 拒绝记录查询条数
const (
	defaultDeniedLimit = 100
	maxDeniedLimit     = 1000
)

// AuditLogView 一次权限判定
// @Description 授权审计记录
type AuditLogView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id" example:"intern"`
	Relation     string    `json:"relation" example:"approver"`
	ResourceType string    `json:"resource_type" example:"budgets"`
	ResourceID   string    `json:"resource_id,omitempty"`
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty" example:"relation approver not granted"`
	RequestID    string    `json:"request_id,omitempty"`
	IP           string    `json:"ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AuditController 授权审计日志控制器
type AuditController struct {
	service service.AuditLogService
}

// NewAuditController 创建授权审计日志控制器
func NewAuditController(svc service.AuditLogService) *AuditController {
	return &AuditController{service: svc}
}

// Denied 最近被拒绝的请求
// @Summary 被拒绝的授权请求
// @Tags audit
// @Produce json
// @Param limit query int false "返回条数,默认 100,最大 1000"
// @Success 200 {object} Response{data=[]AuditLogView}
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/audit/denied [get]
func (ac *AuditController) Denied(c *gin.Context) {
	limit := defaultDeniedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxDeniedLimit {
			_ = c.Error(&APIError{
				Code:    http.StatusBadRequest,
				Message: "invalid limit",
				Detail:  fmt.Sprintf("limit must be between 1 and %d", maxDeniedLimit),
			})
			return
		}
		limit = n
	}

	logs, err := ac.service.Denied(c.Request.Context(), limit)
	ac.respond(c, logs, err)
}

// ByUser 用户的授权审计记录
// @Summary 用户的授权审计记录
// @Tags audit
// @Produce json
// @Param user_id path string true "用户 ID"
// @Success 200 {object} Response{data=[]AuditLogView}
// @Router /api/v1/audit/users/{user_id} [get]
func (ac *AuditController) ByUser(c *gin.Context) {
	logs, err := ac.service.ByUser(c.Request.Context(), c.Param("user_id"))
	ac.respond(c, logs, err)
}

// ByResource 记录上的授权审计记录
// @Summary 记录上的授权审计记录
// @Tags audit
// @Produce json
// @Param type path string true "记录类型" Enums(wbs, forecasts, budgets)
// @Param id path string true "记录 ID"
// @Success 200 {object} Response{data=[]AuditLogView}
// @Router /api/v1/audit/resources/{type}/{id} [get]
func (ac *AuditController) ByResource(c *gin.Context) {
	logs, err := ac.service.ByResource(c.Request.Context(), c.Param("type"), c.Param("id"))
	ac.respond(c, logs, err)
}

func (ac *AuditController) respond(c *gin.Context, logs []*model.AuditLogModel, err error) {
	if err != nil {
		_ = c.Error(WrapError(err, http.StatusInternalServerError, "failed to query audit log"))
		return
	}
	views := make([]AuditLogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, AuditLogView{
			ID:           l.ID,
			UserID:       l.UserID,
			Relation:     l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			Allowed:      l.Allowed,
			Reason:       l.Reason,
			RequestID:    l.RequestID,
			IP:           l.IP,
			CreatedAt:    l.CreatedAt,
		})
	}
	Success(c, views)
}
