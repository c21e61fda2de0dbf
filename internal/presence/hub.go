package presence

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 推送事件名
const (
	EventBPNew           = "bp:new"
	EventGlucoseNew      = "glucose:new"
	EventSymptomNew      = "symptom:new"
	EventNewNotification = "new_notification"
	EventNewNudge        = "new_nudge"
)

// Envelope 推送消息封包
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client 单条 websocket 连接（写操作需要独占锁）
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub 在线连接登记表
// 同一用户允许多条连接（多设备），推送时逐条发送
// 生命周期由持有者显式管理，不做包级单例
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]*client // userID -> connID -> client
	logger  *zap.Logger
}

// NewHub 创建连接登记表
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[string]*client),
		logger:  logger,
	}
}

// Register 登记连接
func (h *Hub) Register(userID, connID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[string]*client)
	}
	h.clients[userID][connID] = &client{conn: conn}

	h.logger.Info("WebSocket connection registered",
		zap.String("user_id", userID),
		zap.String("conn_id", connID),
	)
}

// Unregister 注销连接（连接已断开或即将关闭）
func (h *Hub) Unregister(userID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	delete(conns, connID)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}

	h.logger.Info("WebSocket connection unregistered",
		zap.String("user_id", userID),
		zap.String("conn_id", connID),
	)
}

// IsOnline 用户是否有在线连接
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// Push 向单个用户的所有连接推送事件
// 用户离线不算错误；单条连接写失败只记日志
func (h *Hub) Push(userID, event string, data interface{}) {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[userID]))
	for _, c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	envelope := Envelope{Event: event, Data: data}
	for _, c := range targets {
		if err := c.writeJSON(envelope); err != nil {
			h.logger.Warn("WebSocket push failed",
				zap.String("user_id", userID),
				zap.String("event", event),
				zap.Error(err),
			)
		}
	}
}

// PushMany 向多个用户推送同一事件
func (h *Hub) PushMany(userIDs []string, event string, data interface{}) {
	for _, userID := range userIDs {
		h.Push(userID, event, data)
	}
}

// Broadcast 向所有在线连接推送事件
func (h *Hub) Broadcast(event string, data interface{}) {
	h.mu.RLock()
	targets := []*client{}
	for _, conns := range h.clients {
		for _, c := range conns {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	envelope := Envelope{Event: event, Data: data}
	for _, c := range targets {
		if err := c.writeJSON(envelope); err != nil {
			h.logger.Warn("WebSocket broadcast write failed", zap.Error(err))
		}
	}
}

// Shutdown 关闭所有连接并清空登记表
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	closed := 0
	for userID, conns := range h.clients {
		for connID, c := range conns {
			message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = c.conn.WriteMessage(websocket.CloseMessage, message)
			_ = c.conn.Close()
			delete(conns, connID)
			closed++
		}
		delete(h.clients, userID)
	}

	h.logger.Info("WebSocket hub shut down", zap.Int("closed_connections", closed))
}
