package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// MessageSender 出站消息发送接口（fanout 和聊天回复共用）
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) error
}

// ChatAPIResponse 聊天网关 API 响应
type ChatAPIResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// ChatClient 聊天网关客户端（Twilio 风格的消息 API）
type ChatClient struct {
	httpClient  *resty.Client
	accountSID  string
	fromAddress string
	logger      *zap.Logger
}

// NewChatClient 创建聊天网关客户端
func NewChatClient(baseURL, accountSID, authToken, fromAddress string, logger *zap.Logger) *ChatClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetBasicAuth(accountSID, authToken).
		SetHeader("Accept", "application/json")

	return &ChatClient{
		httpClient:  client,
		accountSID:  accountSID,
		fromAddress: fromAddress,
		logger:      logger,
	}
}

// SendMessage 向单个接收人发送消息
func (c *ChatClient) SendMessage(ctx context.Context, to, body string) error {
	if to == "" {
		return fmt.Errorf("to is required")
	}
	if body == "" {
		return fmt.Errorf("body is required")
	}

	var response ChatAPIResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   to,
			"From": c.fromAddress,
			"Body": body,
		}).
		SetResult(&response).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.accountSID))

	if err != nil {
		c.logger.Error("Chat API call failed",
			zap.Error(err),
			zap.String("to", to),
		)
		return fmt.Errorf("failed to call chat API: %w", err)
	}

	if resp.StatusCode() >= 400 {
		// 错误响应体不走 SetResult，单独解析
		var apiErr ChatAPIResponse
		_ = json.Unmarshal(resp.Body(), &apiErr)
		c.logger.Error("Chat API returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error_message", apiErr.ErrorMessage),
			zap.String("to", to),
		)
		return fmt.Errorf("chat API error: status=%d message=%s", resp.StatusCode(), apiErr.ErrorMessage)
	}

	c.logger.Info("Message sent",
		zap.String("to", to),
		zap.String("sid", response.SID),
		zap.String("status", response.Status),
	)

	return nil
}
