package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// ProfilesRepository 档案/家庭成员仓库（只读）
// 档案由外部 profile 服务维护，本服务只做接收人解析和发送者匹配
type ProfilesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfilesRepository 创建档案仓库
func NewProfilesRepository(db *sql.DB, logger *zap.Logger) *ProfilesRepository {
	return &ProfilesRepository{
		db:     db,
		logger: logger,
	}
}

// GetProfile 根据 profile_id 获取档案
func (r *ProfilesRepository) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	query := `
		SELECT profile_id, user_id, name, role, household_id, created_at, updated_at
		FROM profiles
		WHERE profile_id = $1
	`

	var p models.Profile
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&p.ProfileID,
		&p.UserID,
		&p.Name,
		&p.Role,
		&p.HouseholdID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile not found: profile_id=%s", profileID)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &p, nil
}

// GetProfileByPhone 根据入站渠道电话匹配发送者的默认档案
// 找不到返回 (nil, nil)：未注册发送者不是错误，由聊天服务回固定引导语
func (r *ProfilesRepository) GetProfileByPhone(ctx context.Context, phone string) (*models.Profile, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}

	query := `
		SELECT p.profile_id, p.user_id, p.name, p.role, p.household_id, p.created_at, p.updated_at
		FROM profiles p
		JOIN users u ON p.user_id = u.user_id
		WHERE u.phone = $1
		ORDER BY p.created_at ASC
		LIMIT 1
	`

	var p models.Profile
	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&p.ProfileID,
		&p.UserID,
		&p.Name,
		&p.Role,
		&p.HouseholdID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by phone: %w", err)
	}

	return &p, nil
}

// GetHouseholdRecipients 获取家庭内的报警接收人（admin/caregiver 角色）
func (r *ProfilesRepository) GetHouseholdRecipients(ctx context.Context, householdID string) ([]models.HouseholdMember, error) {
	if householdID == "" {
		return nil, fmt.Errorf("household_id is required")
	}

	query := `
		SELECT hm.household_id, hm.user_id, hm.role, u.phone
		FROM household_members hm
		JOIN users u ON hm.user_id = u.user_id
		WHERE hm.household_id = $1
		  AND hm.role IN ('admin', 'caregiver')
	`

	rows, err := r.db.QueryContext(ctx, query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query household recipients: %w", err)
	}
	defer rows.Close()

	members := []models.HouseholdMember{}
	for rows.Next() {
		var m models.HouseholdMember
		if err := rows.Scan(&m.HouseholdID, &m.UserID, &m.Role, &m.Phone); err != nil {
			return nil, fmt.Errorf("failed to scan household member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate household members: %w", err)
	}

	return members, nil
}
