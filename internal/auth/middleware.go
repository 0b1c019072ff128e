package auth

import (
	"context"
	"net/http"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Decision 一次权限判定
type Decision struct {
	UserID     string
	Relation   string
	ObjectType string
	ObjectID   string
	ResourceID string
	Allowed    bool
	Reason     string
	RequestID  string
	IP         string
	UserAgent  string
	Method     string
	Path       string
}

// DecisionRecorder 权限判定审计
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, d Decision) error
}

// PermissionMiddleware 权限检查中间件,objectID 为记录类型名
func PermissionMiddleware(
	checker PermissionChecker,
	objectType string,
	objectID string,
	relation string,
	recorder DecisionRecorder,
) gin.HandlerFunc {
	return PermissionMiddlewareFunc(checker, objectType, objectID, func(*gin.Context) string { return relation }, recorder)
}

// PermissionMiddlewareFunc 所需关系由请求决定的权限检查中间件
func PermissionMiddlewareFunc(
	checker PermissionChecker,
	objectType string,
	objectID string,
	relationOf func(c *gin.Context) string,
	recorder DecisionRecorder,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthorized",
			})
			c.Abort()
			return
		}

		allowed, err := Authorize(c, checker, recorder, Decision{
			UserID:     userID,
			Relation:   relationOf(c),
			ObjectType: objectType,
			ObjectID:   objectID,
			ResourceID: c.Param("id"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": "permission check failed",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    403,
				"message": "forbidden",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Authorize 检查 d 描述的权限并写入审计,请求相关字段从 c 补全
func Authorize(c *gin.Context, checker PermissionChecker, recorder DecisionRecorder, d Decision) (bool, error) {
	d.RequestID = c.GetString("request_id")
	d.IP = c.ClientIP()
	d.UserAgent = c.Request.UserAgent()
	d.Method = c.Request.Method
	d.Path = c.FullPath()

	allowed, err := checker.CheckPermission(c.Request.Context(), d.UserID, d.Relation, d.ObjectType, d.ObjectID)
	if err != nil {
		d.Reason = "permission check failed: " + err.Error()
		record(c, recorder, d)
		return false, err
	}

	d.Allowed = allowed
	metrics.RecordPermissionCheck(d.Relation, allowed)
	if !allowed {
		d.Reason = "relation " + d.Relation + " not granted"
	}
	record(c, recorder, d)
	return allowed, nil
}

// record 审计失败不影响请求
func record(c *gin.Context, recorder DecisionRecorder, d Decision) {
	if recorder == nil {
		return
	}
	_ = recorder.RecordDecision(c.Request.Context(), d)
}
