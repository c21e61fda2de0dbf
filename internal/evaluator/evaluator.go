package evaluator

import (
	"context"
	"fmt"
	"time"

	"carelink-alert/internal/metrics"
	"carelink-alert/internal/models"
	"carelink-alert/internal/stream"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 报警严重级别
const (
	SeverityNone     = "none"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Decision 阈值评估结论
type Decision struct {
	Severity  string // none, warning, critical
	AlertType string // 仅 Severity != none 时有值
	Reason    string
}

// AlertCreator 报警落库接口（repository 层实现）
type AlertCreator interface {
	CreateAlert(ctx context.Context, alert *models.EmergencyAlert) error
}

// Evaluator 阈值评估器
// 聊天通道和直连 API 共用同一张阈值表（只来自 AlertSettings），
// 临床危急线（血压 180/120）不可被配置放宽
type Evaluator struct {
	alerts    AlertCreator
	deduper   AlertDeduper
	publisher stream.AlertPublisher // 可为 nil
	logger    *zap.Logger
}

// NewEvaluator 创建评估器
func NewEvaluator(alerts AlertCreator, deduper AlertDeduper, publisher stream.AlertPublisher, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		alerts:    alerts,
		deduper:   deduper,
		publisher: publisher,
		logger:    logger,
	}
}

// Decide 纯评估：读数 + 配置 → 结论，无副作用
func Decide(reading *models.Reading, settings *models.AlertSettings) Decision {
	switch reading.Type {
	case models.ReadingTypeBP:
		return decideBP(reading.BP, settings)
	case models.ReadingTypeGlucose:
		return decideGlucose(reading.Glucose, settings)
	default:
		// 症状没有对应的报警类型，不产生报警
		return Decision{Severity: SeverityNone}
	}
}

func decideBP(r *models.BPReading, s *models.AlertSettings) Decision {
	// 危急线优先于一切配置
	if r.Systolic >= bpCrisisSystolic || r.Diastolic >= bpCrisisDiastolic {
		return Decision{
			Severity:  SeverityCritical,
			AlertType: models.AlertTypeHighBP,
			Reason:    fmt.Sprintf("Hypertensive crisis: %d/%d", r.Systolic, r.Diastolic),
		}
	}

	if s.NotifyOnHighBP && (r.Systolic >= s.BPHighSystolic || r.Diastolic >= s.BPHighDiastolic) {
		return Decision{
			Severity:  SeverityWarning,
			AlertType: models.AlertTypeHighBP,
			Reason:    fmt.Sprintf("High blood pressure: %d/%d", r.Systolic, r.Diastolic),
		}
	}

	if s.NotifyOnLowBP && (r.Systolic <= s.BPLowSystolic || r.Diastolic <= s.BPLowDiastolic) {
		return Decision{
			Severity:  SeverityWarning,
			AlertType: models.AlertTypeLowBP,
			Reason:    fmt.Sprintf("Low blood pressure: %d/%d", r.Systolic, r.Diastolic),
		}
	}

	return Decision{Severity: SeverityNone}
}

func decideGlucose(r *models.GlucoseReading, s *models.AlertSettings) Decision {
	if s.NotifyOnHighGlucose && r.Value >= s.GlucoseHighThreshold {
		return Decision{
			Severity:  SeverityWarning,
			AlertType: models.AlertTypeHighGlucose,
			Reason:    fmt.Sprintf("High glucose: %d mg/dL (%s)", r.Value, r.Context),
		}
	}

	if s.NotifyOnLowGlucose && r.Value <= s.GlucoseLowThreshold {
		return Decision{
			Severity:  SeverityWarning,
			AlertType: models.AlertTypeLowGlucose,
			Reason:    fmt.Sprintf("Low glucose: %d mg/dL (%s)", r.Value, r.Context),
		}
	}

	return Decision{Severity: SeverityNone}
}

// Evaluate 评估读数；需要报警时经幂等门创建 EmergencyAlert 并发布到下游流
// 返回创建的报警（被幂等门拦下或无需报警时为 nil）
func (e *Evaluator) Evaluate(ctx context.Context, reading *models.Reading, settings *models.AlertSettings) (*models.EmergencyAlert, Decision, error) {
	decision := Decide(reading, settings)
	if decision.Severity == SeverityNone {
		return nil, decision, nil
	}

	profileID := reading.ProfileID()
	readingID := reading.ReadingID()

	acquired, err := e.deduper.Acquire(ctx, profileID, decision.AlertType, reading.MeasuredAt())
	if err != nil {
		// 幂等门不可用时宁可重复也不丢报警
		e.logger.Warn("Alert deduper unavailable, creating alert anyway",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
	} else if !acquired {
		e.logger.Info("Alert suppressed by idempotency window",
			zap.String("profile_id", profileID),
			zap.String("alert_type", decision.AlertType),
		)
		metrics.AlertsDeduplicated.Inc()
		return nil, decision, nil
	}

	alert := &models.EmergencyAlert{
		AlertID:   uuid.New().String(),
		ProfileID: profileID,
		AlertType: decision.AlertType,
		Message:   decision.Reason,
		ReadingID: &readingID,
		Resolved:  false,
		CreatedAt: time.Now(),
	}

	if err := e.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, decision, fmt.Errorf("failed to create emergency alert: %w", err)
	}

	metrics.AlertsCreated.WithLabelValues(decision.AlertType).Inc()
	e.logger.Info("Emergency alert created",
		zap.String("alert_id", alert.AlertID),
		zap.String("alert_type", alert.AlertType),
		zap.String("profile_id", profileID),
		zap.String("severity", decision.Severity),
	)

	if e.publisher != nil {
		if err := e.publisher.PublishAlert(ctx, alert); err != nil {
			// 下游流只是旁路，发布失败不影响报警主流程
			e.logger.Warn("Failed to publish alert to stream",
				zap.String("alert_id", alert.AlertID),
				zap.Error(err),
			)
		}
	}

	return alert, decision, nil
}
