package container

import (
	"fmt"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/api"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/auth"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/database"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/integration"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/metrics"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/service"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/websocket"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// collectInterval 业务指标采集间隔
const collectInterval = 30 * time.Second

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、服务、客户端等
type Container struct {
	cfg        *config.Config
	configPath string
	logger     *logrus.Logger

	db         *gorm.DB
	store      repository.WorkflowStore
	workflow   service.WorkflowService
	auditLog   service.AuditLogService
	checker    auth.PermissionChecker
	fgaClient  *auth.OpenFGAClient
	validator  *auth.KeycloakTokenValidator
	hub        *websocket.Hub
	dispatcher *integration.EventDispatcher
	collector  *metrics.Collector
	watcher    *config.ConfigWatcher
	started    bool
}

// NewContainer 创建依赖注入容器
// configPath 非空时监听配置文件,日志级别随之热更新
func NewContainer(cfg *config.Config, configPath string) (*Container, error) {
	logger, err := api.NewLoggerFromConfig(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	api.SetLogger(logger)

	// 默认重试 3 次,初始间隔 1 秒,指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	c := &Container{
		cfg:        cfg,
		configPath: configPath,
		logger:     logger,
		db:         db,
		store:      repository.NewWorkflowStore(db),
		hub:        websocket.NewHub(logger),
	}

	c.workflow = service.NewWorkflowService(workflow.NewEngine(c.store), c.store, logger, c.hub)
	c.auditLog = service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)

	if err := c.initAuth(); err != nil {
		return nil, err
	}

	c.dispatcher = integration.NewEventDispatcher(repository.NewEventRepository(db), cfg.Events, logger)
	c.collector = metrics.NewCollector(db, collectInterval)
	if configPath != "" {
		c.watcher = config.NewConfigWatcher(cfg, configPath, logger)
		c.watcher.OnConfigChange(c.applyLogLevel)
	}

	return c, nil
}

func (c *Container) initAuth() error {
	cfg := c.cfg

	if cfg.OpenFGA.Enabled {
		fgaClient, err := auth.NewOpenFGAClientWithRetry(cfg.OpenFGA.APIURL, cfg.OpenFGA.StoreID, cfg.OpenFGA.ModelID, 3, time.Second)
		if err != nil {
			return fmt.Errorf("failed to initialize OpenFGA client: %w", err)
		}
		c.fgaClient = fgaClient
		c.checker = auth.NewCachedPermissionChecker(fgaClient, auth.NewPermissionCache(cfg.OpenFGA.CacheTTL))
	} else {
		c.logger.Warn("OpenFGA disabled, all permission checks are allowed")
		c.checker = auth.AllowAllChecker{}
	}

	if cfg.Keycloak.Enabled {
		c.validator = auth.NewKeycloakTokenValidator(cfg.Keycloak.Issuer, cfg.Keycloak.JWKSURL)
	} else {
		c.logger.Warn("Keycloak disabled, caller identity is read from the " + auth.UserIDHeader + " header")
	}
	return nil
}

// applyLogLevel 配置变更时更新日志级别
func (c *Container) applyLogLevel(newCfg *config.Config) {
	level, err := logrus.ParseLevel(newCfg.Log.Level)
	if err != nil {
		c.logger.WithField("level", newCfg.Log.Level).Warn("ignoring invalid log level")
		return
	}
	if level != c.logger.GetLevel() {
		c.logger.SetLevel(level)
		c.logger.WithField("level", level.String()).Info("log level changed")
	}
}

// Start 启动后台组件
func (c *Container) Start() error {
	c.started = true
	go c.hub.Run()
	c.collector.Start()
	if c.cfg.Events.Enabled {
		c.dispatcher.Start()
	}
	if c.watcher != nil {
		if err := c.watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
	}
	return nil
}

// Router 创建 HTTP 路由
func (c *Container) Router() *gin.Engine {
	deps := api.RouterDeps{
		Config:    c.cfg,
		Logger:    c.logger,
		DB:        c.db,
		Workflow:  c.workflow,
		Checker:   c.checker,
		Recorder:  c.auditLog,
		AuditLog:  c.auditLog,
		Validator: c.validator,
		Hub:       c.hub,
	}
	if c.fgaClient != nil {
		deps.OpenFGA = c.fgaClient
	}
	return api.SetupRoutes(deps)
}

// Config 获取配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Logger 获取日志记录器
func (c *Container) Logger() *logrus.Logger {
	return c.logger
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// WorkflowService 获取工作流服务
func (c *Container) WorkflowService() service.WorkflowService {
	return c.workflow
}

// AuditLogService 获取授权审计服务
func (c *Container) AuditLogService() service.AuditLogService {
	return c.auditLog
}

// Dispatcher 获取事件投递器
func (c *Container) Dispatcher() *integration.EventDispatcher {
	return c.dispatcher
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.started {
		if c.watcher != nil {
			c.watcher.Stop()
		}
		if c.cfg.Events.Enabled {
			c.dispatcher.Stop()
		}
		c.collector.Stop()
	}
	c.hub.Stop()

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
