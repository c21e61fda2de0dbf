package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// ReadingsRepository 读数仓库（BP/血糖/症状各一张表）
// 每次调用恰好插入一行，无需加锁
type ReadingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReadingsRepository 创建读数仓库
func NewReadingsRepository(db *sql.DB, logger *zap.Logger) *ReadingsRepository {
	return &ReadingsRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBPReading 写入血压读数
func (r *ReadingsRepository) CreateBPReading(ctx context.Context, reading *models.BPReading) error {
	if reading == nil {
		return fmt.Errorf("reading is required")
	}
	if reading.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}

	query := `
		INSERT INTO bp_readings (
			reading_id, profile_id, systolic, diastolic, pulse, status, measured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		reading.ReadingID,
		reading.ProfileID,
		reading.Systolic,
		reading.Diastolic,
		reading.Pulse,
		reading.Status,
		reading.MeasuredAt,
		reading.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bp reading: %w", err)
	}

	return nil
}

// CreateGlucoseReading 写入血糖读数
func (r *ReadingsRepository) CreateGlucoseReading(ctx context.Context, reading *models.GlucoseReading) error {
	if reading == nil {
		return fmt.Errorf("reading is required")
	}
	if reading.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}

	query := `
		INSERT INTO glucose_readings (
			reading_id, profile_id, value, context, status, measured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		reading.ReadingID,
		reading.ProfileID,
		reading.Value,
		reading.Context,
		reading.Status,
		reading.MeasuredAt,
		reading.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create glucose reading: %w", err)
	}

	return nil
}

// CreateSymptomReading 写入症状记录
func (r *ReadingsRepository) CreateSymptomReading(ctx context.Context, reading *models.SymptomReading) error {
	if reading == nil {
		return fmt.Errorf("reading is required")
	}
	if reading.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}

	query := `
		INSERT INTO symptom_readings (
			reading_id, profile_id, name, severity, notes, measured_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		reading.ReadingID,
		reading.ProfileID,
		reading.Name,
		reading.Severity,
		reading.Notes,
		reading.MeasuredAt,
		reading.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create symptom reading: %w", err)
	}

	return nil
}

// LatestBPReading 获取档案最近一次血压读数（无读数返回 nil, nil）
func (r *ReadingsRepository) LatestBPReading(ctx context.Context, profileID string) (*models.BPReading, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT reading_id, profile_id, systolic, diastolic, pulse, status, measured_at, created_at
		FROM bp_readings
		WHERE profile_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`

	var reading models.BPReading
	var pulse sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&reading.ReadingID,
		&reading.ProfileID,
		&reading.Systolic,
		&reading.Diastolic,
		&pulse,
		&reading.Status,
		&reading.MeasuredAt,
		&reading.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest bp reading: %w", err)
	}

	if pulse.Valid {
		p := int(pulse.Int64)
		reading.Pulse = &p
	}

	return &reading, nil
}

// LatestGlucoseReading 获取档案最近一次血糖读数（无读数返回 nil, nil）
func (r *ReadingsRepository) LatestGlucoseReading(ctx context.Context, profileID string) (*models.GlucoseReading, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT reading_id, profile_id, value, context, status, measured_at, created_at
		FROM glucose_readings
		WHERE profile_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`

	var reading models.GlucoseReading
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&reading.ReadingID,
		&reading.ProfileID,
		&reading.Value,
		&reading.Context,
		&reading.Status,
		&reading.MeasuredAt,
		&reading.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest glucose reading: %w", err)
	}

	return &reading, nil
}

// LatestSymptomReading 获取档案最近一次症状记录（无记录返回 nil, nil）
func (r *ReadingsRepository) LatestSymptomReading(ctx context.Context, profileID string) (*models.SymptomReading, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT reading_id, profile_id, name, severity, notes, measured_at, created_at
		FROM symptom_readings
		WHERE profile_id = $1
		ORDER BY measured_at DESC
		LIMIT 1
	`

	var reading models.SymptomReading
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&reading.ReadingID,
		&reading.ProfileID,
		&reading.Name,
		&reading.Severity,
		&notes,
		&reading.MeasuredAt,
		&reading.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest symptom reading: %w", err)
	}

	if notes.Valid {
		reading.Notes = &notes.String
	}

	return &reading, nil
}
