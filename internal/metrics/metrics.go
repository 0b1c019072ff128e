package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 记录创建数
	recordsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_records_created_total",
			Help: "Total number of workflow records created",
		},
		[]string{"kind"},
	)

	// 状态转换数, result 为 success 或错误码
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total number of workflow transitions attempted",
		},
		[]string{"kind", "transition", "result"},
	)

	// 批量转换规模
	batchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_batch_size",
			Help:    "Number of ids submitted per batch transition",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"kind", "transition"},
	)

	// 批量转换回滚数
	batchRollbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_batch_rollbacks_total",
			Help: "Total number of batch transitions rolled back by infrastructure failures",
		},
		[]string{"kind", "transition"},
	)

	// 权限检查
	permissionChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"relation", "allowed"},
	)

	// 事件投递
	eventsDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_delivered_total",
			Help: "Total number of outbox event delivery attempts",
		},
		[]string{"result"},
	)

	// 数据库连接数
	databaseConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		},
	)

	databaseConnectionsIdle = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	databaseConnectionsMax = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		},
	)

	// 记录状态分布
	recordsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "workflow_records_by_status",
			Help: "Number of workflow records by approval status",
		},
		[]string{"kind", "status"},
	)

	// 待投递事件数
	pendingEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_events_pending",
			Help: "Number of outbox events waiting for delivery",
		},
	)
)

var (
	once sync.Once
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(recordsCreatedTotal)
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(batchSize)
	prometheus.MustRegister(batchRollbacksTotal)
	prometheus.MustRegister(permissionChecksTotal)
	prometheus.MustRegister(eventsDeliveredTotal)
	prometheus.MustRegister(databaseConnectionsActive)
	prometheus.MustRegister(databaseConnectionsIdle)
	prometheus.MustRegister(databaseConnectionsMax)
	prometheus.MustRegister(recordsByStatus)
	prometheus.MustRegister(pendingEvents)

	// Go 运行时指标可能已被默认注册,忽略重复注册错误
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordCreated 记录创建
func RecordCreated(kind string) {
	recordsCreatedTotal.WithLabelValues(kind).Inc()
}

// RecordTransition 记录一次状态转换结果
func RecordTransition(kind, transition, result string) {
	transitionsTotal.WithLabelValues(kind, transition, result).Inc()
}

// RecordBatch 记录批量转换规模
func RecordBatch(kind, transition string, size int) {
	batchSize.WithLabelValues(kind, transition).Observe(float64(size))
}

// RecordBatchRollback 记录批量回滚
func RecordBatchRollback(kind, transition string) {
	batchRollbacksTotal.WithLabelValues(kind, transition).Inc()
}

// RecordPermissionCheck 记录权限检查
func RecordPermissionCheck(relation string, allowed bool) {
	permissionChecksTotal.WithLabelValues(relation, fmt.Sprintf("%t", allowed)).Inc()
}

// RecordEventDelivery 记录事件投递结果
func RecordEventDelivery(result string) {
	eventsDeliveredTotal.WithLabelValues(result).Inc()
}

// UpdateDatabaseConnections 更新数据库连接数指标
func UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	databaseConnectionsActive.Set(float64(stats.OpenConnections - stats.Idle))
	databaseConnectionsIdle.Set(float64(stats.Idle))
	databaseConnectionsMax.Set(float64(stats.MaxOpenConnections))

	return nil
}

// UpdateRecordsByStatus 更新记录状态分布指标
func UpdateRecordsByStatus(kind, status string, count float64) {
	recordsByStatus.WithLabelValues(kind, status).Set(count)
}

// UpdatePendingEvents 更新待投递事件数
func UpdatePendingEvents(count float64) {
	pendingEvents.Set(count)
}
