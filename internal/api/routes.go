package api

import (
	_ "github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/docs" // 导入生成的 docs 包
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/service"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/websocket"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Config   *config.Config
	Logger   logrus.FieldLogger
	DB       *gorm.DB
	Workflow service.WorkflowService
	// Checker 为 nil 时不做权限检查
	Checker  auth.PermissionChecker
	Recorder auth.DecisionRecorder
	// AuditLog 为 nil 时不注册审计查询接口
	AuditLog service.AuditLogService
	// Validator 为 nil 时从请求头读取调用者身份
	Validator *auth.KeycloakTokenValidator
	Hub       *websocket.Hub
	OpenFGA   HealthChecker
}

// SetupRoutes 配置路由
func SetupRoutes(d RouterDeps) *gin.Engine {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	checker := d.Checker
	if checker == nil {
		checker = auth.AllowAllChecker{}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	if cfg.Tracing.Enabled {
		router.Use(TracingMiddleware(cfg.Tracing))
	}
	router.Use(RequestLogMiddleware(d.Logger))
	router.Use(SecurityHeadersMiddleware(config.IsProduction(cfg)))
	router.Use(CORSMiddleware(cfg.CORS))
	if cfg.RateLimit.Enabled {
		router.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	router.Use(ErrorHandlerMiddleware())

	var clients ClientCounter
	if d.Hub != nil {
		clients = d.Hub
	}
	healthController := NewHealthController(d.DB, d.OpenFGA, clients)
	router.GET("/health", healthController.Check)
	router.GET("/metrics", MetricsHandler)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	identity := auth.HeaderIdentityMiddleware()
	if d.Validator != nil {
		identity = auth.KeycloakAuthMiddleware(d.Validator)
	}

	if d.Hub != nil {
		stream := websocket.HistoryStreamHandler(d.Hub, d.Validator, checker, d.Recorder, websocket.Upgrader(cfg.CORS.AllowedOrigins))
		if d.Validator != nil {
			// 浏览器无法为 WebSocket 设置请求头,token 走查询参数
			router.GET("/ws/history", stream)
		} else {
			router.GET("/ws/history", identity, stream)
		}
	}

	v1 := router.Group("/api/v1", identity)
	for _, kind := range workflow.Kinds {
		registerRecordRoutes(v1, kind, d.Workflow, checker, d.Recorder)
	}
	if d.AuditLog != nil {
		registerAuditRoutes(v1, d.AuditLog, checker, d.Recorder)
	}

	return router
}

// registerRecordRoutes 注册一种记录类型的路由,权限对象为 workflow_resource:<type>
func registerRecordRoutes(v1 *gin.RouterGroup, kind workflow.Kind, svc service.WorkflowService, checker auth.PermissionChecker, recorder auth.DecisionRecorder) {
	ctrl := NewWorkflowController(kind, svc)
	perm := func(relation string) gin.HandlerFunc {
		return auth.PermissionMiddleware(checker, auth.ObjectType, string(kind), relation, recorder)
	}

	records := v1.Group("/" + string(kind))
	{
		records.POST("", perm(auth.RelationEditor), ctrl.Create)
		records.GET("/pending-approval", perm(auth.RelationReader), ctrl.PendingApproval)
		records.GET("/:id", perm(auth.RelationReader), ctrl.Get)
		records.PUT("/:id", perm(auth.RelationEditor), ctrl.Update)
		records.GET("/:id/history", perm(auth.RelationReader), ctrl.History)

		transitionPerm := auth.PermissionMiddlewareFunc(checker, auth.ObjectType, string(kind), auth.TransitionRelation, recorder)
		records.POST("/:id/:transition", transitionPerm, ctrl.Transition)
		records.POST("/bulk/:transition", transitionPerm, ctrl.BulkTransition)
	}
}

// registerAuditRoutes 注册授权审计查询路由,需要 audit_log:audit 的 viewer 关系
func registerAuditRoutes(v1 *gin.RouterGroup, svc service.AuditLogService, checker auth.PermissionChecker, recorder auth.DecisionRecorder) {
	ctrl := NewAuditController(svc)
	audit := v1.Group("/audit", auth.PermissionMiddleware(checker, auth.AuditObjectType, auth.AuditObjectID, auth.RelationViewer, recorder))
	{
		audit.GET("/denied", ctrl.Denied)
		audit.GET("/users/:user_id", ctrl.ByUser)
		audit.GET("/resources/:type/:id", ctrl.ByResource)
	}
}
