package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthChecker 外部依赖的健康检查
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// ClientCounter 实时连接计数
type ClientCounter interface {
	GetClientCount() int
}

// HealthController 健康检查控制器
type HealthController struct {
	db      *gorm.DB
	openFGA HealthChecker
	clients ClientCounter
}

// NewHealthController 创建健康检查控制器,openFGA 为 nil 表示未启用
func NewHealthController(db *gorm.DB, openFGA HealthChecker, clients ClientCounter) *HealthController {
	return &HealthController{
		db:      db,
		openFGA: openFGA,
		clients: clients,
	}
}

// Check 健康检查
// @Summary 健康检查
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (hc *HealthController) Check(c *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if hc.db != nil {
		if err := hc.checkDatabase(c.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	if hc.openFGA != nil {
		if hc.openFGA.CheckHealth(c.Request.Context()) {
			checks["openfga"] = "healthy"
		} else {
			status = "unhealthy"
			checks["openfga"] = "unhealthy"
		}
	} else {
		checks["openfga"] = "disabled"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	body := gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}
	if hc.clients != nil {
		body["websocket_clients"] = hc.clients.GetClientCount()
	}
	c.JSON(httpStatus, body)
}

// checkDatabase 检查数据库连接
func (hc *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := hc.db.DB()
	if err != nil {
		return err
	}
	if sqlDB == nil {
		return errors.New("no sql connection")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
