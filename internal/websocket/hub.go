package websocket

import (
	"encoding/json"
	"sync"

	"github.com/Aleut-Geoff-Vaughan/myScheduling-sub003/internal/model"
	"github.com/sirupsen/logrus"
)

// message 待广播的历史事件
type message struct {
	kind     string
	recordID string
	payload  []byte
}

// Hub 管理所有 WebSocket 连接,按订阅的记录类型和记录 ID 分发历史事件
type Hub struct {
	clients map[*Client]bool

	broadcast  chan message
	Register   chan *Client
	Unregister chan *Client
	stop       chan struct{}
	stopOnce   sync.Once

	logger logrus.FieldLogger

	// 保护 clients map
	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stop:       make(chan struct{}),
		logger:     logger.WithField("component", "websocket_hub"),
	}
}

// Run 运行 Hub,直到 Stop 被调用
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop 关闭所有连接并停止 Hub
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// PublishHistory 推送历史事件给订阅了该记录的客户端,不阻塞调用方
func (h *Hub) PublishHistory(event model.HistoryEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("failed to marshal history event")
		return
	}
	select {
	case h.broadcast <- message{kind: event.RecordKind, recordID: event.RecordID, payload: payload}:
	default:
		h.logger.WithFields(logrus.Fields{
			"record_kind": event.RecordKind,
			"record_id":   event.RecordID,
		}).Warn("websocket broadcast queue full, dropping event")
	}
}

func (h *Hub) deliver(msg message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if !client.Subscribed(msg.kind, msg.recordID) {
			continue
		}
		select {
		case client.Send <- msg.payload:
		default:
			// 发送缓冲已满的慢客户端直接断开
			close(client.Send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
	}
}

// Join 注册客户端,Hub 已停止时返回 false
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.stop:
		return false
	}
}

// GetClientCount 获取客户端数量
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
