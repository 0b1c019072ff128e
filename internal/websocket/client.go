package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// 写超时时间
	writeWait = 10 * time.Second

	// 读超时时间
	pongWait = 60 * time.Second

	// ping 周期 (必须小于 pongWait)
	pingPeriod = (pongWait * 9) / 10

	// 客户端只发送控制帧
	maxMessageSize = 4 * 1024
)

// Client WebSocket 客户端
type Client struct {
	ID     string
	UserID string

	// Kind 订阅的记录类型
	Kind string
	// RecordID 订阅的记录 ID,为空时接收该类型的全部事件
	RecordID string

	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// NewClient 创建新的客户端
func NewClient(id string, userID string, kind string, recordID string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Kind:     kind,
		RecordID: recordID,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}
}

// Subscribed 客户端是否订阅了该记录
func (c *Client) Subscribed(kind, recordID string) bool {
	if c.Kind != kind {
		return false
	}
	return c.RecordID == "" || c.RecordID == recordID
}

// ReadPump 从 WebSocket 连接读取消息,连接断开时注销客户端
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.stop:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).WithFields(logrus.Fields{
					"client_id": c.ID,
					"user_id":   c.UserID,
				}).Warn("websocket read error")
			}
			return
		}
	}
}

// WritePump 向 WebSocket 连接写入消息,每个历史事件单独一帧
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了 channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
