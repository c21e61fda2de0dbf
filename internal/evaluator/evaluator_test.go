package evaluator

import (
	"context"
	"testing"
	"time"

	"carelink-alert/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAlertStore struct {
	alerts []*models.EmergencyAlert
	err    error
}

func (f *fakeAlertStore) CreateAlert(ctx context.Context, alert *models.EmergencyAlert) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

type passDeduper struct{}

func (passDeduper) Acquire(ctx context.Context, profileID, alertType string, measuredAt time.Time) (bool, error) {
	return true, nil
}

func bpReading(profileID string, systolic, diastolic int) *models.Reading {
	return &models.Reading{
		Type: models.ReadingTypeBP,
		BP: &models.BPReading{
			ReadingID:  "reading-1",
			ProfileID:  profileID,
			Systolic:   systolic,
			Diastolic:  diastolic,
			Status:     BPStatus(systolic, diastolic),
			MeasuredAt: time.Now(),
		},
	}
}

func glucoseReading(profileID string, value int, context string) *models.Reading {
	return &models.Reading{
		Type: models.ReadingTypeGlucose,
		Glucose: &models.GlucoseReading{
			ReadingID:  "reading-2",
			ProfileID:  profileID,
			Value:      value,
			Context:    context,
			Status:     GlucoseStatus(value, context),
			MeasuredAt: time.Now(),
		},
	}
}

func TestDecide_BPHigh(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")

	d := Decide(bpReading("p1", 145, 92), settings)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, models.AlertTypeHighBP, d.AlertType)
}

func TestDecide_BPCriticalIgnoresNotifyFlags(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")
	settings.NotifyOnHighBP = false

	d := Decide(bpReading("p1", 185, 122), settings)
	assert.Equal(t, SeverityCritical, d.Severity)
	assert.Equal(t, models.AlertTypeHighBP, d.AlertType)
}

func TestDecide_BPHighDisabled(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")
	settings.NotifyOnHighBP = false

	d := Decide(bpReading("p1", 150, 95), settings)
	assert.Equal(t, SeverityNone, d.Severity)
}

func TestDecide_BPLow(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")

	d := Decide(bpReading("p1", 85, 55), settings)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, models.AlertTypeLowBP, d.AlertType)
}

func TestDecide_BPNormal(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")

	d := Decide(bpReading("p1", 118, 78), settings)
	assert.Equal(t, SeverityNone, d.Severity)
}

func TestDecide_GlucoseThresholds(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")

	d := Decide(glucoseReading("p1", 200, models.GlucoseContextAfterMeal), settings)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, models.AlertTypeHighGlucose, d.AlertType)

	d = Decide(glucoseReading("p1", 60, models.GlucoseContextFasting), settings)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, models.AlertTypeLowGlucose, d.AlertType)
}

func TestDecide_CustomThresholds(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")
	settings.BPHighSystolic = 130
	settings.BPHighDiastolic = 85

	// 统一阈值表：配置收紧后 135/80 也要报警
	d := Decide(bpReading("p1", 135, 80), settings)
	assert.Equal(t, SeverityWarning, d.Severity)
}

func TestDecide_SymptomNeverAlerts(t *testing.T) {
	settings := models.DefaultAlertSettings("p1")

	reading := &models.Reading{
		Type: models.ReadingTypeSymptom,
		Symptom: &models.SymptomReading{
			ReadingID:  "reading-3",
			ProfileID:  "p1",
			Name:       "chest pain",
			Severity:   models.SymptomSevere,
			MeasuredAt: time.Now(),
		},
	}

	d := Decide(reading, settings)
	assert.Equal(t, SeverityNone, d.Severity)
}

func TestEvaluate_CreatesAlert(t *testing.T) {
	store := &fakeAlertStore{}
	e := NewEvaluator(store, passDeduper{}, nil, zap.NewNop())
	settings := models.DefaultAlertSettings("p1")

	alert, decision, err := e.Evaluate(context.Background(), bpReading("p1", 150, 95), settings)
	require.NoError(t, err)
	require.NotNil(t, alert)

	assert.Equal(t, SeverityWarning, decision.Severity)
	assert.Equal(t, models.AlertTypeHighBP, alert.AlertType)
	assert.Equal(t, "p1", alert.ProfileID)
	assert.False(t, alert.Resolved)
	require.NotNil(t, alert.ReadingID)
	assert.Equal(t, "reading-1", *alert.ReadingID)
	assert.Len(t, store.alerts, 1)
}

func TestEvaluate_NoAlertOnNormalReading(t *testing.T) {
	store := &fakeAlertStore{}
	e := NewEvaluator(store, passDeduper{}, nil, zap.NewNop())
	settings := models.DefaultAlertSettings("p1")

	alert, decision, err := e.Evaluate(context.Background(), bpReading("p1", 118, 78), settings)
	require.NoError(t, err)
	assert.Nil(t, alert)
	assert.Equal(t, SeverityNone, decision.Severity)
	assert.Empty(t, store.alerts)
}

func TestEvaluate_SameReadingTwiceCreatesOneAlert(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := &fakeAlertStore{}
	deduper := NewRedisDeduper(client, "alert:dedup:", 10)
	e := NewEvaluator(store, deduper, nil, zap.NewNop())
	settings := models.DefaultAlertSettings("p1")

	reading := bpReading("p1", 150, 95)

	first, _, err := e.Evaluate(context.Background(), reading, settings)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, _, err := e.Evaluate(context.Background(), reading, settings)
	require.NoError(t, err)
	assert.Nil(t, second)

	assert.Len(t, store.alerts, 1)
}

func TestEvaluate_DifferentAlertTypesNotSuppressed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := &fakeAlertStore{}
	deduper := NewRedisDeduper(client, "alert:dedup:", 10)
	e := NewEvaluator(store, deduper, nil, zap.NewNop())
	settings := models.DefaultAlertSettings("p1")

	_, _, err := e.Evaluate(context.Background(), bpReading("p1", 150, 95), settings)
	require.NoError(t, err)
	_, _, err = e.Evaluate(context.Background(), glucoseReading("p1", 200, models.GlucoseContextRandom), settings)
	require.NoError(t, err)

	assert.Len(t, store.alerts, 2)
}

func TestEvaluate_DeduperDownStillAlerts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close() // 幂等门不可用

	store := &fakeAlertStore{}
	deduper := NewRedisDeduper(client, "alert:dedup:", 10)
	e := NewEvaluator(store, deduper, nil, zap.NewNop())
	settings := models.DefaultAlertSettings("p1")

	alert, _, err := e.Evaluate(context.Background(), bpReading("p1", 150, 95), settings)
	require.NoError(t, err)
	assert.NotNil(t, alert)
}
