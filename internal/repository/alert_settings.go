package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// AlertSettingsRepository 报警配置仓库（与 profile 1:1，首次访问惰性建行）
type AlertSettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAlertSettingsRepository 创建报警配置仓库
func NewAlertSettingsRepository(db *sql.DB, logger *zap.Logger) *AlertSettingsRepository {
	return &AlertSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// GetOrCreate 获取档案的报警配置；不存在时用默认值建行后返回
func (r *AlertSettingsRepository) GetOrCreate(ctx context.Context, profileID string) (*models.AlertSettings, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	settings, err := r.get(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	// 惰性创建：默认值只在这里套用一次
	defaults := models.DefaultAlertSettings(profileID)
	if err := r.insert(ctx, defaults); err != nil {
		return nil, err
	}

	r.logger.Info("Alert settings created with defaults",
		zap.String("profile_id", profileID),
	)
	return defaults, nil
}

// Update 整行覆盖更新（部分更新语义由 service 层先套补丁再调用）
func (r *AlertSettingsRepository) Update(ctx context.Context, settings *models.AlertSettings) error {
	if settings == nil {
		return fmt.Errorf("settings is required")
	}
	if settings.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}

	contactsJSON, err := json.Marshal(settings.EmergencyContacts)
	if err != nil {
		return fmt.Errorf("failed to marshal emergency contacts: %w", err)
	}

	query := `
		UPDATE alert_settings
		SET notify_on_high_bp = $1,
		    notify_on_low_bp = $2,
		    notify_on_high_glucose = $3,
		    notify_on_low_glucose = $4,
		    bp_high_systolic = $5,
		    bp_high_diastolic = $6,
		    bp_low_systolic = $7,
		    bp_low_diastolic = $8,
		    glucose_high_threshold = $9,
		    glucose_low_threshold = $10,
		    emergency_contacts = $11,
		    updated_at = CURRENT_TIMESTAMP
		WHERE profile_id = $12
	`

	result, err := r.db.ExecContext(ctx, query,
		settings.NotifyOnHighBP,
		settings.NotifyOnLowBP,
		settings.NotifyOnHighGlucose,
		settings.NotifyOnLowGlucose,
		settings.BPHighSystolic,
		settings.BPHighDiastolic,
		settings.BPLowSystolic,
		settings.BPLowDiastolic,
		settings.GlucoseHighThreshold,
		settings.GlucoseLowThreshold,
		contactsJSON,
		settings.ProfileID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("alert settings not found: profile_id=%s", settings.ProfileID)
	}

	return nil
}

func (r *AlertSettingsRepository) get(ctx context.Context, profileID string) (*models.AlertSettings, error) {
	query := `
		SELECT profile_id,
		       notify_on_high_bp, notify_on_low_bp, notify_on_high_glucose, notify_on_low_glucose,
		       bp_high_systolic, bp_high_diastolic, bp_low_systolic, bp_low_diastolic,
		       glucose_high_threshold, glucose_low_threshold,
		       emergency_contacts, created_at, updated_at
		FROM alert_settings
		WHERE profile_id = $1
	`

	var s models.AlertSettings
	var contactsJSON []byte
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&s.ProfileID,
		&s.NotifyOnHighBP,
		&s.NotifyOnLowBP,
		&s.NotifyOnHighGlucose,
		&s.NotifyOnLowGlucose,
		&s.BPHighSystolic,
		&s.BPHighDiastolic,
		&s.BPLowSystolic,
		&s.BPLowDiastolic,
		&s.GlucoseHighThreshold,
		&s.GlucoseLowThreshold,
		&contactsJSON,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert settings: %w", err)
	}

	s.EmergencyContacts = []models.EmergencyContact{}
	if len(contactsJSON) > 0 {
		if err := json.Unmarshal(contactsJSON, &s.EmergencyContacts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal emergency contacts: %w", err)
		}
	}

	return &s, nil
}

func (r *AlertSettingsRepository) insert(ctx context.Context, settings *models.AlertSettings) error {
	contactsJSON, err := json.Marshal(settings.EmergencyContacts)
	if err != nil {
		return fmt.Errorf("failed to marshal emergency contacts: %w", err)
	}

	query := `
		INSERT INTO alert_settings (
			profile_id,
			notify_on_high_bp, notify_on_low_bp, notify_on_high_glucose, notify_on_low_glucose,
			bp_high_systolic, bp_high_diastolic, bp_low_systolic, bp_low_diastolic,
			glucose_high_threshold, glucose_low_threshold,
			emergency_contacts, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.db.ExecContext(ctx, query,
		settings.ProfileID,
		settings.NotifyOnHighBP,
		settings.NotifyOnLowBP,
		settings.NotifyOnHighGlucose,
		settings.NotifyOnLowGlucose,
		settings.BPHighSystolic,
		settings.BPHighDiastolic,
		settings.BPLowSystolic,
		settings.BPLowDiastolic,
		settings.GlucoseHighThreshold,
		settings.GlucoseLowThreshold,
		contactsJSON,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert settings: %w", err)
	}

	return nil
}
