package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// 上下文中的身份字段
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextEmail    = "email"
	ContextName     = "name"
	ContextRoles    = "roles"
	ContextGroups   = "groups"
)

// UserIDHeader Keycloak 未启用时用于识别调用者的请求头
const UserIDHeader = "X-User-ID"

// GroupsHeader 调用者所属审批组,逗号分隔
const GroupsHeader = "X-User-Groups"

// UserID 当前调用者 ID
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// Groups 当前调用者所属的组
func Groups(c *gin.Context) []string {
	return c.GetStringSlice(ContextGroups)
}

// HeaderIdentityMiddleware 从请求头读取调用者身份,仅用于开发和测试环境
func HeaderIdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing " + UserIDHeader + " header",
			})
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUsername, userID)
		c.Set(ContextGroups, splitGroups(c.GetHeader(GroupsHeader)))
		c.Next()
	}
}

func splitGroups(raw string) []string {
	groups := []string{}
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}
