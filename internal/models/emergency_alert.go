package models

import (
	"time"
)

// 报警类型
const (
	AlertTypeSOS         = "sos"
	AlertTypeHighBP      = "high_bp"
	AlertTypeLowBP       = "low_bp"
	AlertTypeHighGlucose = "high_glucose"
	AlertTypeLowGlucose  = "low_glucose"
)

// EmergencyAlert 紧急报警记录（对应 emergency_alerts 表）
// 只由 evaluator 或 SOS 触发创建；只允许 resolve 修改；永不删除
type EmergencyAlert struct {
	AlertID    string     `json:"alert_id" db:"alert_id"`
	ProfileID  string     `json:"profile_id" db:"profile_id"`
	AlertType  string     `json:"alert_type" db:"alert_type"`
	Message    string     `json:"message" db:"message"`
	Latitude   *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude  *float64   `json:"longitude,omitempty" db:"longitude"`
	ReadingID  *string    `json:"reading_id,omitempty" db:"reading_id"`
	Resolved   bool       `json:"resolved" db:"resolved"`
	ResolvedBy *string    `json:"resolved_by,omitempty" db:"resolved_by"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// ValidAlertType 校验报警类型
func ValidAlertType(t string) bool {
	switch t {
	case AlertTypeSOS, AlertTypeHighBP, AlertTypeLowBP,
		AlertTypeHighGlucose, AlertTypeLowGlucose:
		return true
	}
	return false
}
