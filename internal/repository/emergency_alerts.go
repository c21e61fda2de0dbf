package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// EmergencyAlertsRepository 紧急报警仓库
// 只允许创建和 resolve，永不删除
type EmergencyAlertsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmergencyAlertsRepository 创建紧急报警仓库
func NewEmergencyAlertsRepository(db *sql.DB, logger *zap.Logger) *EmergencyAlertsRepository {
	return &EmergencyAlertsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAlert 创建报警（实现 evaluator.AlertCreator）
func (r *EmergencyAlertsRepository) CreateAlert(ctx context.Context, alert *models.EmergencyAlert) error {
	if alert == nil {
		return fmt.Errorf("alert is required")
	}
	if alert.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}
	if !models.ValidAlertType(alert.AlertType) {
		return fmt.Errorf("invalid alert_type: %s", alert.AlertType)
	}

	query := `
		INSERT INTO emergency_alerts (
			alert_id, profile_id, alert_type, message, latitude, longitude,
			reading_id, resolved, resolved_by, resolved_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.AlertID,
		alert.ProfileID,
		alert.AlertType,
		alert.Message,
		alert.Latitude,
		alert.Longitude,
		alert.ReadingID,
		alert.Resolved,
		alert.ResolvedBy,
		alert.ResolvedAt,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create emergency alert: %w", err)
	}

	return nil
}

// GetAlert 根据 alert_id 获取报警
func (r *EmergencyAlertsRepository) GetAlert(ctx context.Context, alertID string) (*models.EmergencyAlert, error) {
	if alertID == "" {
		return nil, fmt.Errorf("alert_id is required")
	}

	query := `
		SELECT alert_id, profile_id, alert_type, message, latitude, longitude,
		       reading_id, resolved, resolved_by, resolved_at, created_at
		FROM emergency_alerts
		WHERE alert_id = $1
	`

	alert, err := r.scanAlert(r.db.QueryRowContext(ctx, query, alertID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("emergency alert not found: alert_id=%s", alertID)
		}
		return nil, fmt.Errorf("failed to get emergency alert: %w", err)
	}

	return alert, nil
}

// ResolveAlert 标记报警已处理（唯一允许的修改）
func (r *EmergencyAlertsRepository) ResolveAlert(ctx context.Context, alertID, resolverID string) error {
	if alertID == "" {
		return fmt.Errorf("alert_id is required")
	}
	if resolverID == "" {
		return fmt.Errorf("resolver_id is required")
	}

	query := `
		UPDATE emergency_alerts
		SET resolved = TRUE,
		    resolved_by = $1,
		    resolved_at = $2
		WHERE alert_id = $3
		  AND resolved = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, resolverID, time.Now(), alertID)
	if err != nil {
		return fmt.Errorf("failed to resolve emergency alert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("emergency alert not found or already resolved: alert_id=%s", alertID)
	}

	return nil
}

// ListAlertsByProfile 获取档案的报警列表（按创建时间倒序）
func (r *EmergencyAlertsRepository) ListAlertsByProfile(ctx context.Context, profileID string, limit int) ([]*models.EmergencyAlert, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT alert_id, profile_id, alert_type, message, latitude, longitude,
		       reading_id, resolved, resolved_by, resolved_at, created_at
		FROM emergency_alerts
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query emergency alerts: %w", err)
	}
	defer rows.Close()

	alerts := []*models.EmergencyAlert{}
	for rows.Next() {
		alert, err := r.scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emergency alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emergency alerts: %w", err)
	}

	return alerts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *EmergencyAlertsRepository) scanAlert(row rowScanner) (*models.EmergencyAlert, error) {
	var alert models.EmergencyAlert
	var latitude, longitude sql.NullFloat64
	var readingID, resolvedBy sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&alert.AlertID,
		&alert.ProfileID,
		&alert.AlertType,
		&alert.Message,
		&latitude,
		&longitude,
		&readingID,
		&alert.Resolved,
		&resolvedBy,
		&resolvedAt,
		&alert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if latitude.Valid {
		alert.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		alert.Longitude = &longitude.Float64
	}
	if readingID.Valid {
		alert.ReadingID = &readingID.String
	}
	if resolvedBy.Valid {
		alert.ResolvedBy = &resolvedBy.String
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}

	return &alert, nil
}
