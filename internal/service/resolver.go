package service

import (
	"context"
	"fmt"
	"time"

	"carelink-alert/internal/evaluator"
	"carelink-alert/internal/metrics"
	"carelink-alert/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 直连 API 和解析事件共用的取值范围（超出视为录入错误而非极端读数）
const (
	minSystolic  = 50
	maxSystolic  = 300
	minDiastolic = 30
	maxDiastolic = 200
	minGlucose   = 20
	maxGlucose   = 900
)

// ReadingStore 读数落库接口（repository 层实现）
type ReadingStore interface {
	CreateBPReading(ctx context.Context, reading *models.BPReading) error
	CreateGlucoseReading(ctx context.Context, reading *models.GlucoseReading) error
	CreateSymptomReading(ctx context.Context, reading *models.SymptomReading) error
}

// ReadingResolver 读数解析落库器
// 入口（聊天解析事件 / 直连 API）在这里汇合成统一的 Reading，
// status 一律由纯函数计算，不接受外部提交
type ReadingResolver struct {
	readings ReadingStore
	logger   *zap.Logger
}

// NewReadingResolver 创建读数解析器
func NewReadingResolver(readings ReadingStore, logger *zap.Logger) *ReadingResolver {
	return &ReadingResolver{
		readings: readings,
		logger:   logger,
	}
}

// ResolveBP 落库一条血压读数
func (r *ReadingResolver) ResolveBP(ctx context.Context, profileID string, systolic, diastolic int, pulse *int, measuredAt time.Time) (*models.Reading, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	if systolic < minSystolic || systolic > maxSystolic {
		return nil, fmt.Errorf("systolic out of range: %d", systolic)
	}
	if diastolic < minDiastolic || diastolic > maxDiastolic {
		return nil, fmt.Errorf("diastolic out of range: %d", diastolic)
	}
	if systolic <= diastolic {
		return nil, fmt.Errorf("systolic must be greater than diastolic: %d/%d", systolic, diastolic)
	}

	if measuredAt.IsZero() {
		measuredAt = time.Now()
	}

	reading := &models.BPReading{
		ReadingID:  uuid.New().String(),
		ProfileID:  profileID,
		Systolic:   systolic,
		Diastolic:  diastolic,
		Pulse:      pulse,
		Status:     evaluator.BPStatus(systolic, diastolic),
		MeasuredAt: measuredAt,
		CreatedAt:  time.Now(),
	}

	if err := r.readings.CreateBPReading(ctx, reading); err != nil {
		return nil, err
	}

	metrics.ReadingsPersisted.WithLabelValues(models.ReadingTypeBP).Inc()
	r.logger.Info("BP reading persisted",
		zap.String("reading_id", reading.ReadingID),
		zap.String("profile_id", profileID),
		zap.String("status", reading.Status),
	)

	return &models.Reading{Type: models.ReadingTypeBP, BP: reading}, nil
}

// ResolveGlucose 落库一条血糖读数；context 为空时按 random 处理
func (r *ReadingResolver) ResolveGlucose(ctx context.Context, profileID string, value int, glucoseContext string, measuredAt time.Time) (*models.Reading, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	if value < minGlucose || value > maxGlucose {
		return nil, fmt.Errorf("glucose value out of range: %d", value)
	}

	if glucoseContext == "" {
		glucoseContext = models.GlucoseContextRandom
	}
	switch glucoseContext {
	case models.GlucoseContextFasting, models.GlucoseContextBeforeMeal,
		models.GlucoseContextAfterMeal, models.GlucoseContextRandom:
	default:
		return nil, fmt.Errorf("invalid glucose context: %s", glucoseContext)
	}

	if measuredAt.IsZero() {
		measuredAt = time.Now()
	}

	reading := &models.GlucoseReading{
		ReadingID:  uuid.New().String(),
		ProfileID:  profileID,
		Value:      value,
		Context:    glucoseContext,
		Status:     evaluator.GlucoseStatus(value, glucoseContext),
		MeasuredAt: measuredAt,
		CreatedAt:  time.Now(),
	}

	if err := r.readings.CreateGlucoseReading(ctx, reading); err != nil {
		return nil, err
	}

	metrics.ReadingsPersisted.WithLabelValues(models.ReadingTypeGlucose).Inc()
	r.logger.Info("Glucose reading persisted",
		zap.String("reading_id", reading.ReadingID),
		zap.String("profile_id", profileID),
		zap.String("status", reading.Status),
	)

	return &models.Reading{Type: models.ReadingTypeGlucose, Glucose: reading}, nil
}

// ResolveSymptom 落库一条症状记录；severity 为空时按 mild 处理
func (r *ReadingResolver) ResolveSymptom(ctx context.Context, profileID, name, severity string, notes *string, measuredAt time.Time) (*models.Reading, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	if name == "" {
		return nil, fmt.Errorf("symptom name is required")
	}

	if severity == "" {
		severity = models.SymptomMild
	}
	switch severity {
	case models.SymptomMild, models.SymptomModerate, models.SymptomSevere:
	default:
		return nil, fmt.Errorf("invalid symptom severity: %s", severity)
	}

	if measuredAt.IsZero() {
		measuredAt = time.Now()
	}

	reading := &models.SymptomReading{
		ReadingID:  uuid.New().String(),
		ProfileID:  profileID,
		Name:       name,
		Severity:   severity,
		Notes:      notes,
		MeasuredAt: measuredAt,
		CreatedAt:  time.Now(),
	}

	if err := r.readings.CreateSymptomReading(ctx, reading); err != nil {
		return nil, err
	}

	metrics.ReadingsPersisted.WithLabelValues(models.ReadingTypeSymptom).Inc()
	r.logger.Info("Symptom reading persisted",
		zap.String("reading_id", reading.ReadingID),
		zap.String("profile_id", profileID),
		zap.String("severity", severity),
	)

	return &models.Reading{Type: models.ReadingTypeSymptom, Symptom: reading}, nil
}

// FromEvent 把解析事件转成读数并落库
// 只接受三种读数事件；status/help/unknown 由聊天服务自行处理
func (r *ReadingResolver) FromEvent(ctx context.Context, profileID string, event *models.InterpretedEvent) (*models.Reading, error) {
	switch event.Type {
	case models.EventTypeBP:
		if event.Systolic == nil || event.Diastolic == nil {
			return nil, fmt.Errorf("bp event missing systolic/diastolic")
		}
		return r.ResolveBP(ctx, profileID, *event.Systolic, *event.Diastolic, event.Pulse, time.Time{})

	case models.EventTypeGlucose:
		if event.GlucoseValue == nil {
			return nil, fmt.Errorf("glucose event missing value")
		}
		glucoseContext := ""
		if event.GlucoseContext != nil {
			glucoseContext = *event.GlucoseContext
		}
		return r.ResolveGlucose(ctx, profileID, *event.GlucoseValue, glucoseContext, time.Time{})

	case models.EventTypeSymptom:
		if event.SymptomName == nil {
			return nil, fmt.Errorf("symptom event missing name")
		}
		severity := ""
		if event.SymptomSeverity != nil {
			severity = *event.SymptomSeverity
		}
		return r.ResolveSymptom(ctx, profileID, *event.SymptomName, severity, nil, time.Time{})

	default:
		return nil, fmt.Errorf("event type %s is not a reading", event.Type)
	}
}
