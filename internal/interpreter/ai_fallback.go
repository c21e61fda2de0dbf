package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"carelink-alert/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// aiInstruction 固定的语义解析指令：五种事件类型 + 期望的 JSON 形状
const aiInstruction = `You classify a short caregiver health message into exactly one event.
Event types: "bp", "glucose", "symptom", "status", "help". If none applies, use "unknown".
Reply with a single JSON object and nothing else:
{"type":"...","confidence":0.0,"systolic":null,"diastolic":null,"pulse":null,
"glucose_value":null,"glucose_context":null,"symptom_name":null,"symptom_severity":null}
glucose_context is one of "fasting","before_meal","after_meal","random".
symptom_severity is one of "mild","moderate","severe".
confidence is your certainty in [0,1]. Use null for fields that do not apply.`

// chatCompletionRequest OpenAI 风格的补全请求
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse OpenAI 风格的补全响应
type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// aiEventPayload AI 返回的事件 JSON（未知字段一律按 null 处理）
type aiEventPayload struct {
	Type            string   `json:"type"`
	Confidence      *float64 `json:"confidence"`
	Systolic        *int     `json:"systolic"`
	Diastolic       *int     `json:"diastolic"`
	Pulse           *int     `json:"pulse"`
	GlucoseValue    *int     `json:"glucose_value"`
	GlucoseContext  *string  `json:"glucose_context"`
	SymptomName     *string  `json:"symptom_name"`
	SymptomSeverity *string  `json:"symptom_severity"`
}

// AIFallback 第二层：AI 语义解析降级通道
// 只处理自由措辞；调用带硬超时并包在熔断器里，慢响应不能阻塞消息处理
type AIFallback struct {
	httpClient *resty.Client
	breaker    *gobreaker.CircuitBreaker
	model      string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewAIFallback 创建 AI 降级解析器
func NewAIFallback(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *AIFallback {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+apiKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "AI-Interpreter",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("AI fallback circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &AIFallback{
		httpClient: client,
		breaker:    breaker,
		model:      model,
		timeout:    timeout,
		logger:     logger,
	}
}

// Interpret 提交原文给 AI，返回解析事件
// 任何失败（网络、超时、熔断、JSON 解析）都返回 error，由上层降级
func (a *AIFallback) Interpret(ctx context.Context, text string) (*models.InterpretedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.call(ctx, text)
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.InterpretedEvent), nil
}

func (a *AIFallback) call(ctx context.Context, text string) (*models.InterpretedEvent, error) {
	request := chatCompletionRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: aiInstruction},
			{Role: "user", Content: text},
		},
	}

	var response chatCompletionResponse
	resp, err := a.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("failed to call AI provider: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("AI provider returned status %d", resp.StatusCode())
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("AI provider returned no choices")
	}

	payload, err := extractJSONObject(response.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return a.toEvent(payload, text), nil
}

// extractJSONObject 从回复中提取第一个 JSON 对象
// 模型偶尔会在 JSON 外包一段说明文字或代码块标记
func extractJSONObject(content string) (*aiEventPayload, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in AI response")
	}

	var payload aiEventPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI response: %w", err)
	}
	return &payload, nil
}

// toEvent 把 AI 载荷转换为事件，类型越界时降级为 unknown
func (a *AIFallback) toEvent(payload *aiEventPayload, text string) *models.InterpretedEvent {
	eventType := payload.Type
	if !models.ValidEventType(eventType) {
		a.logger.Warn("AI returned event type outside the closed enum",
			zap.String("type", payload.Type),
		)
		eventType = models.EventTypeUnknown
	}

	confidence := 0.0
	if payload.Confidence != nil {
		confidence = *payload.Confidence
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	if eventType == models.EventTypeUnknown {
		confidence = 0
	}

	return &models.InterpretedEvent{
		Type:            eventType,
		Confidence:      confidence,
		Systolic:        payload.Systolic,
		Diastolic:       payload.Diastolic,
		Pulse:           payload.Pulse,
		GlucoseValue:    payload.GlucoseValue,
		GlucoseContext:  payload.GlucoseContext,
		SymptomName:     payload.SymptomName,
		SymptomSeverity: payload.SymptomSeverity,
		OriginalText:    text,
		Note:            "ai: semantic fallback",
	}
}
