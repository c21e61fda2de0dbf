package models

import (
	"time"
)

// Profile 被照护人档案（对应 profiles 表）
// 由外部 profile 服务创建/维护，本服务只读
type Profile struct {
	ProfileID   string    `json:"profile_id" db:"profile_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Role        string    `json:"role" db:"role"` // caregiver, dependent
	HouseholdID string    `json:"household_id" db:"household_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Household 家庭组（对应 households 表，只读）
type Household struct {
	HouseholdID string    `json:"household_id" db:"household_id"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// HouseholdMember 家庭成员（对应 household_members 表，只读）
// 角色为 admin/caregiver 的成员是报警接收人
type HouseholdMember struct {
	HouseholdID string `json:"household_id" db:"household_id"`
	UserID      string `json:"user_id" db:"user_id"`
	Role        string `json:"role" db:"role"` // admin, caregiver, dependent
	Phone       string `json:"phone" db:"phone"`
}

// 家庭成员角色
const (
	RoleAdmin     = "admin"
	RoleCaregiver = "caregiver"
	RoleDependent = "dependent"
)
