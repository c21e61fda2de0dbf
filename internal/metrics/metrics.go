package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 管线各阶段的 Prometheus 指标
var (
	// MessagesInterpreted 按解析层与事件类型统计入站消息
	MessagesInterpreted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carelink",
		Subsystem: "interpreter",
		Name:      "messages_total",
		Help:      "Inbound messages interpreted, by tier and resolved event type.",
	}, []string{"tier", "event_type"})

	// AIFallbackErrors AI 降级通道失败次数（超时、熔断、解析失败）
	AIFallbackErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "carelink",
		Subsystem: "interpreter",
		Name:      "ai_fallback_errors_total",
		Help:      "AI fallback calls that failed and degraded to the tier-1 result.",
	})

	// ReadingsPersisted 按类型统计已落库读数
	ReadingsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carelink",
		Subsystem: "pipeline",
		Name:      "readings_persisted_total",
		Help:      "Readings persisted, by reading type.",
	}, []string{"reading_type"})

	// AlertsCreated 按报警类型统计已创建报警
	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carelink",
		Subsystem: "evaluator",
		Name:      "alerts_created_total",
		Help:      "Emergency alerts created, by alert type.",
	}, []string{"alert_type"})

	// AlertsDeduplicated 被幂等键拦截的重复报警
	AlertsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "carelink",
		Subsystem: "evaluator",
		Name:      "alerts_deduplicated_total",
		Help:      "Alert evaluations suppressed by the idempotency window.",
	})

	// NotificationsSent 按结果统计出站通知
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carelink",
		Subsystem: "notifier",
		Name:      "notifications_total",
		Help:      "Per-recipient notification sends, by outcome.",
	}, []string{"outcome"})
)
