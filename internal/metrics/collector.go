package metrics

import (
	"context"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/workflow"
	"gorm.io/gorm"
)

// statusTables 记录类型对应的表
var statusTables = map[workflow.Kind]string{
	workflow.KindWbs:      model.WbsElement{}.TableName(),
	workflow.KindForecast: model.Forecast{}.TableName(),
	workflow.KindBudget:   model.ProjectBudget{}.TableName(),
}

// Collector 指标收集器,定期刷新数据库相关的 gauge
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce()
		}
	}
}

type statusCount struct {
	ApprovalStatus string
	Count          int64
}

// CollectOnce 执行一次收集
func (c *Collector) CollectOnce() {
	_ = UpdateDatabaseConnections(c.db)

	db := c.db.WithContext(c.ctx)
	for kind, table := range statusTables {
		var rows []statusCount
		err := db.Table(table).
			Select("approval_status, count(*) as count").
			Group("approval_status").
			Scan(&rows).Error
		if err != nil {
			continue
		}
		for _, row := range rows {
			UpdateRecordsByStatus(string(kind), row.ApprovalStatus, float64(row.Count))
		}
	}

	var pending int64
	if err := db.Model(&model.EventModel{}).Where("status = ?", model.EventStatusPending).Count(&pending).Error; err == nil {
		UpdatePendingEvents(float64(pending))
	}
}
