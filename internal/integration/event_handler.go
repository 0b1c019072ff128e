package integration

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/config"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/metrics"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/repository"
	"github.com/sirupsen/logrus"
)

// EventDispatcher 发件箱事件投递器,轮询待投递事件并推送到 Webhook
type EventDispatcher struct {
	eventRepo    repository.EventRepository
	webhooks     []string
	httpClient   *http.Client
	workers      int
	batchSize    int
	maxRetries   int
	pollInterval time.Duration
	logger       logrus.FieldLogger
	now          func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewEventDispatcher 创建事件投递器
func NewEventDispatcher(eventRepo repository.EventRepository, cfg config.EventsConfig, logger logrus.FieldLogger) *EventDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &EventDispatcher{
		eventRepo:    eventRepo,
		webhooks:     cfg.Webhooks,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		workers:      cfg.Workers,
		batchSize:    cfg.BatchSize,
		maxRetries:   cfg.MaxRetries,
		pollInterval: cfg.PollInterval,
		logger:       logger.WithField("component", "event_dispatcher"),
		now:          time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start 启动轮询
func (d *EventDispatcher) Start() {
	go func() {
		defer close(d.done)
		ticker := time.NewTicker(d.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := d.DispatchOnce(context.Background()); err != nil {
					d.logger.WithError(err).Error("failed to load pending events")
				}
			case <-d.stop:
				return
			}
		}
	}()
}

// Stop 停止轮询并等待当前批次完成
func (d *EventDispatcher) Stop() {
	d.once.Do(func() {
		close(d.stop)
		<-d.done
	})
}

// DispatchOnce 投递一批到期的待投递事件,返回本次尝试投递的数量
func (d *EventDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	pending, err := d.eventRepo.FindPending(d.now(), d.batchSize)
	if err != nil {
		return 0, err
	}

	queue := make(chan *model.EventModel)
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for evt := range queue {
				d.deliver(ctx, evt)
			}
		}()
	}

	for _, evt := range pending {
		queue <- evt
	}
	close(queue)
	wg.Wait()

	return len(pending), nil
}

// backoff 第 n 次失败后的等待时间,按轮询间隔指数增长
func (d *EventDispatcher) backoff(failures int) time.Duration {
	return d.pollInterval << uint(failures-1)
}

// deliver 推送到所有 Webhook,全部成功才算投递成功
func (d *EventDispatcher) deliver(ctx context.Context, evt *model.EventModel) {
	log := d.logger.WithFields(logrus.Fields{
		"event_id":   evt.ID,
		"event_type": evt.Type,
		"record_id":  evt.RecordID,
	})

	var lastErr error
	for _, url := range d.webhooks {
		if err := d.sendWebhookRequest(ctx, url, evt); err != nil {
			lastErr = err
			log.WithError(err).WithField("webhook", url).Warn("webhook delivery failed")
		}
	}

	if lastErr == nil {
		if err := d.eventRepo.MarkDelivered(evt.ID); err != nil {
			log.WithError(err).Error("failed to mark event delivered")
			return
		}
		metrics.RecordEventDelivery("success")
		return
	}

	failures := evt.RetryCount + 1
	final := failures >= d.maxRetries
	if err := d.eventRepo.MarkFailed(evt.ID, lastErr.Error(), final, d.now().Add(d.backoff(failures))); err != nil {
		log.WithError(err).Error("failed to record delivery failure")
		return
	}
	if final {
		metrics.RecordEventDelivery("failed")
		log.WithField("retry_count", failures).Error("event delivery abandoned")
		return
	}
	metrics.RecordEventDelivery("retry")
}

// sendWebhookRequest 发送 Webhook 请求
func (d *EventDispatcher) sendWebhookRequest(ctx context.Context, url string, evt *model.EventModel) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(evt.Data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-ID", evt.ID)
	req.Header.Set("X-Event-Type", evt.Type)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status code: %d", resp.StatusCode)
	}
	return nil
}
