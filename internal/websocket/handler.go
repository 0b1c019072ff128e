package websocket

import (
	"net/http"
	"strings"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
)

// Upgrader 按允许的来源校验 Origin,包含 "*" 时不校验
func Upgrader(allowedOrigins []string) gorillaWS.Upgrader {
	return gorillaWS.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// HistoryStreamHandler 订阅记录历史事件
//
// 查询参数 type 必填,id 可选。启用 Keycloak 时通过 token 参数认证,
// 否则使用上游身份中间件设置的用户。reader 判定写入 recorder。
func HistoryStreamHandler(hub *Hub, validator *auth.KeycloakTokenValidator, checker auth.PermissionChecker, recorder auth.DecisionRecorder, upgrader gorillaWS.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)
		if validator != nil {
			token := c.Query("token")
			if token == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "missing token"})
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "invalid token"})
				return
			}
			userID = claims.Subject
		}
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "unauthorized"})
			return
		}

		kind, err := workflow.ParseKind(c.Query("type"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "invalid record type", "detail": err.Error()})
			return
		}

		allowed, err := auth.Authorize(c, checker, recorder, auth.Decision{
			UserID:     userID,
			Relation:   auth.RelationReader,
			ObjectType: auth.ObjectType,
			ObjectID:   string(kind),
			ResourceID: c.Query("id"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "permission check failed", "detail": err.Error()})
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "forbidden"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade 已经写入了错误响应
			return
		}

		client := NewClient(uuid.NewString(), userID, string(kind), c.Query("id"), hub, conn)
		if !hub.Join(client) {
			_ = conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseGoingAway, "server shutting down"))
			conn.Close()
			return
		}

		go client.ReadPump()
		go client.WritePump()
	}
}
