package interpreter

import (
	"context"

	"carelink-alert/internal/metrics"
	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// 第一层置信度达到该值时直接短路返回，不触发 AI 调用
const fastPathConfidence = 0.85

// SemanticFallback AI 语义降级通道接口
type SemanticFallback interface {
	Interpret(ctx context.Context, text string) (*models.InterpretedEvent, error)
}

// Interpreter 两层消息解析器
// 规则层优先；确定性的高置信匹配永远不被 AI 结果覆盖
// （对 BP/血糖这类安全相关路径，取精确率而非召回率）
type Interpreter struct {
	rules    *RuleInterpreter
	fallback SemanticFallback // 可为 nil（AI 未配置）
	logger   *zap.Logger
}

// NewInterpreter 创建解析器；fallback 传 nil 表示禁用 AI 层
func NewInterpreter(rules *RuleInterpreter, fallback SemanticFallback, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		rules:    rules,
		fallback: fallback,
		logger:   logger,
	}
}

// Interpret 解析自由文本，永不失败
// 最坏情况返回 {type: unknown, confidence: 0}
func (i *Interpreter) Interpret(ctx context.Context, text string) models.InterpretedEvent {
	ruleEvent := i.rules.Interpret(text)

	// 快路径：高置信的规则命中直接返回
	if ruleEvent.Confidence >= fastPathConfidence {
		metrics.MessagesInterpreted.WithLabelValues("rule", ruleEvent.Type).Inc()
		return ruleEvent
	}

	if i.fallback == nil {
		metrics.MessagesInterpreted.WithLabelValues("rule", ruleEvent.Type).Inc()
		return ruleEvent
	}

	aiEvent, err := i.fallback.Interpret(ctx, text)
	if err != nil {
		// AI 通道失败：静默降级，规则层结果原样返回
		i.logger.Warn("AI fallback failed, keeping tier-1 result",
			zap.String("tier1_type", ruleEvent.Type),
			zap.Error(err),
		)
		metrics.AIFallbackErrors.Inc()
		metrics.MessagesInterpreted.WithLabelValues("rule", ruleEvent.Type).Inc()
		return ruleEvent
	}

	// 置信度仲裁：高者胜出
	if aiEvent.Confidence > ruleEvent.Confidence {
		metrics.MessagesInterpreted.WithLabelValues("ai", aiEvent.Type).Inc()
		return *aiEvent
	}

	metrics.MessagesInterpreted.WithLabelValues("rule", ruleEvent.Type).Inc()
	return ruleEvent
}
