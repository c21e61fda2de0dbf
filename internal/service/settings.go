package service

import (
	"context"
	"fmt"

	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// SettingsStore 报警配置存取接口（repository 层实现）
type SettingsStore interface {
	GetOrCreate(ctx context.Context, profileID string) (*models.AlertSettings, error)
	Update(ctx context.Context, settings *models.AlertSettings) error
}

// SettingsService 报警配置服务
// PUT 是部分更新：只覆盖补丁里出现的字段，其余保留
type SettingsService struct {
	store  SettingsStore
	logger *zap.Logger
}

// NewSettingsService 创建配置服务
func NewSettingsService(store SettingsStore, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: logger,
	}
}

// Get 获取配置（不存在时返回默认值建的行）
func (s *SettingsService) Get(ctx context.Context, profileID string) (*models.AlertSettings, error) {
	return s.store.GetOrCreate(ctx, profileID)
}

// Patch 部分更新配置并返回更新后的完整行
func (s *SettingsService) Patch(ctx context.Context, profileID string, patch *models.AlertSettingsPatch) (*models.AlertSettings, error) {
	if patch == nil {
		return nil, fmt.Errorf("patch is required")
	}

	settings, err := s.store.GetOrCreate(ctx, profileID)
	if err != nil {
		return nil, err
	}

	patch.Apply(settings)

	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Alert settings updated", zap.String("profile_id", profileID))
	return settings, nil
}

func validateSettings(s *models.AlertSettings) error {
	if s.BPHighSystolic <= s.BPLowSystolic {
		return fmt.Errorf("bp_high_systolic must be greater than bp_low_systolic")
	}
	if s.BPHighDiastolic <= s.BPLowDiastolic {
		return fmt.Errorf("bp_high_diastolic must be greater than bp_low_diastolic")
	}
	if s.GlucoseHighThreshold <= s.GlucoseLowThreshold {
		return fmt.Errorf("glucose_high_threshold must be greater than glucose_low_threshold")
	}
	if s.BPHighSystolic <= 0 || s.BPHighDiastolic <= 0 ||
		s.BPLowSystolic <= 0 || s.BPLowDiastolic <= 0 ||
		s.GlucoseHighThreshold <= 0 || s.GlucoseLowThreshold <= 0 {
		return fmt.Errorf("thresholds must be positive")
	}
	for _, c := range s.EmergencyContacts {
		if c.Phone == "" {
			return fmt.Errorf("emergency contact phone is required")
		}
	}
	return nil
}
