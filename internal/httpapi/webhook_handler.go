package httpapi

import (
	"context"
	"encoding/xml"
	"net/http"

	"go.uber.org/zap"
)

// 服务内部出错时给发送者的兜底回复（网关侧永远收到 200）
const inboundErrorReply = "Something went wrong on our side, please try again in a moment."

// twimlResponse 聊天网关回复格式
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// ChatInbound 入站消息处理接口（service.ChatService 实现）
type ChatInbound interface {
	HandleInbound(ctx context.Context, from, body string) (string, error)
}

// WebhookHandler 聊天网关 webhook Handler
type WebhookHandler struct {
	chat   ChatInbound
	logger *zap.Logger
}

// NewWebhookHandler 创建 webhook Handler
func NewWebhookHandler(chat ChatInbound, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		chat:   chat,
		logger: logger,
	}
}

// HandleInbound 处理 POST /webhook（表单编码，字段 From / Body）
// 只有缺字段才 400；业务失败也回 200，避免网关重试风暴
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid form body"))
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" || body == "" {
		writeJSON(w, http.StatusBadRequest, Fail("From and Body are required"))
		return
	}

	reply, err := h.chat.HandleInbound(r.Context(), from, body)
	if err != nil {
		h.logger.Error("Inbound message handling failed",
			zap.String("from", from),
			zap.Error(err),
		)
		reply = inboundErrorReply
	}

	writeTwiML(w, reply)
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twimlResponse{Message: message})
}
