package presence

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 移动端 App 直连，无浏览器同源约束
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS 处理 GET /ws?userId=xxx 的升级请求
// 连接断开（读失败）即注销
func ServeWS(hub *Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			http.Error(w, "userId query parameter is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return
		}

		connID := uuid.New().String()
		hub.Register(userID, connID, conn)

		go func() {
			defer func() {
				hub.Unregister(userID, connID)
				_ = conn.Close()
			}()
			// 客户端不发业务消息，读循环只为感知断连
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
