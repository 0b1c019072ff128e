package api

import (
	"errors"
	"net/http"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
)

// APIError API 错误
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware 把处理器通过 c.Error 记录的错误转换为错误响应
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *APIError
		var werr *workflow.Error
		switch {
		case errors.As(err, &apiErr):
			Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
		case errors.As(err, &werr):
			Error(c, StatusFor(werr.Code), string(werr.Code), werr.Error())
		default:
			Error(c, http.StatusInternalServerError, "internal server error", err.Error())
		}
	}
}

// StatusFor 工作流错误码对应的 HTTP 状态码
func StatusFor(code workflow.ErrorCode) int {
	switch code {
	case workflow.CodeNotFound:
		return http.StatusNotFound
	case workflow.CodeInvalidTransition, workflow.CodePreconditionFailed, workflow.CodeImmutableInCurrentState:
		return http.StatusBadRequest
	case workflow.CodeConcurrentModification:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WrapError 包装错误
func WrapError(err error, code int, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Detail:  err.Error(),
	}
}
