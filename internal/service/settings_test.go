package service

import (
	"context"
	"testing"

	"carelink-alert/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSettingsGet_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(&fakeSettingsStore{}, zap.NewNop())

	settings, err := service.Get(context.Background(), uuid.New().String())

	require.NoError(t, err)
	assert.Equal(t, models.DefaultBPHighSystolic, settings.BPHighSystolic)
	assert.Equal(t, models.DefaultGlucoseLowThreshold, settings.GlucoseLowThreshold)
}

func TestSettingsPatch_PartialUpdate(t *testing.T) {
	store := &fakeSettingsStore{}
	service := NewSettingsService(store, zap.NewNop())
	profileID := uuid.New().String()

	high := 135
	notify := false
	patch := &models.AlertSettingsPatch{
		BPHighSystolic: &high,
		NotifyOnLowBP:  &notify,
	}

	settings, err := service.Patch(context.Background(), profileID, patch)

	require.NoError(t, err)
	assert.Equal(t, 135, settings.BPHighSystolic)
	assert.False(t, settings.NotifyOnLowBP)
	// 未出现在补丁里的字段保留默认值
	assert.Equal(t, models.DefaultBPHighDiastolic, settings.BPHighDiastolic)
	assert.True(t, settings.NotifyOnHighBP)
	require.NotNil(t, store.updated)
}

func TestSettingsPatch_EmergencyContacts(t *testing.T) {
	service := NewSettingsService(&fakeSettingsStore{}, zap.NewNop())

	contacts := []models.EmergencyContact{{Name: "Dr. Lee", Phone: "+15551112222"}}
	patch := &models.AlertSettingsPatch{EmergencyContacts: &contacts}

	settings, err := service.Patch(context.Background(), uuid.New().String(), patch)

	require.NoError(t, err)
	require.Len(t, settings.EmergencyContacts, 1)
	assert.Equal(t, "Dr. Lee", settings.EmergencyContacts[0].Name)
}

func TestSettingsPatch_RejectsInvertedThresholds(t *testing.T) {
	service := NewSettingsService(&fakeSettingsStore{}, zap.NewNop())

	low := 150
	patch := &models.AlertSettingsPatch{BPLowSystolic: &low}

	_, err := service.Patch(context.Background(), uuid.New().String(), patch)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bp_high_systolic must be greater than bp_low_systolic")
}

func TestSettingsPatch_RejectsContactWithoutPhone(t *testing.T) {
	service := NewSettingsService(&fakeSettingsStore{}, zap.NewNop())

	contacts := []models.EmergencyContact{{Name: "No Phone"}}
	patch := &models.AlertSettingsPatch{EmergencyContacts: &contacts}

	_, err := service.Patch(context.Background(), uuid.New().String(), patch)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "emergency contact phone is required")
}
