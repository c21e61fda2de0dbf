package models

import (
	"time"
)

// 报警阈值默认值（首次访问时惰性创建）
const (
	DefaultBPHighSystolic       = 140
	DefaultBPHighDiastolic      = 90
	DefaultBPLowSystolic        = 90
	DefaultBPLowDiastolic       = 60
	DefaultGlucoseHighThreshold = 180
	DefaultGlucoseLowThreshold  = 70
)

// AlertSettings 档案的报警配置（对应 alert_settings 表，与 profile 1:1）
type AlertSettings struct {
	ProfileID string `json:"profile_id" db:"profile_id"`

	NotifyOnHighBP      bool `json:"notify_on_high_bp" db:"notify_on_high_bp"`
	NotifyOnLowBP       bool `json:"notify_on_low_bp" db:"notify_on_low_bp"`
	NotifyOnHighGlucose bool `json:"notify_on_high_glucose" db:"notify_on_high_glucose"`
	NotifyOnLowGlucose  bool `json:"notify_on_low_glucose" db:"notify_on_low_glucose"`

	BPHighSystolic       int `json:"bp_high_systolic" db:"bp_high_systolic"`
	BPHighDiastolic      int `json:"bp_high_diastolic" db:"bp_high_diastolic"`
	BPLowSystolic        int `json:"bp_low_systolic" db:"bp_low_systolic"`
	BPLowDiastolic       int `json:"bp_low_diastolic" db:"bp_low_diastolic"`
	GlucoseHighThreshold int `json:"glucose_high_threshold" db:"glucose_high_threshold"`
	GlucoseLowThreshold  int `json:"glucose_low_threshold" db:"glucose_low_threshold"`

	EmergencyContacts []EmergencyContact `json:"emergency_contacts" db:"emergency_contacts"` // JSONB

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmergencyContact 独立紧急联系人（无需家庭成员身份）
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DefaultAlertSettings 返回带默认值的报警配置
func DefaultAlertSettings(profileID string) *AlertSettings {
	now := time.Now()
	return &AlertSettings{
		ProfileID:            profileID,
		NotifyOnHighBP:       true,
		NotifyOnLowBP:        true,
		NotifyOnHighGlucose:  true,
		NotifyOnLowGlucose:   true,
		BPHighSystolic:       DefaultBPHighSystolic,
		BPHighDiastolic:      DefaultBPHighDiastolic,
		BPLowSystolic:        DefaultBPLowSystolic,
		BPLowDiastolic:       DefaultBPLowDiastolic,
		GlucoseHighThreshold: DefaultGlucoseHighThreshold,
		GlucoseLowThreshold:  DefaultGlucoseLowThreshold,
		EmergencyContacts:    []EmergencyContact{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// AlertSettingsPatch 部分更新（nil 字段保留原值）
type AlertSettingsPatch struct {
	NotifyOnHighBP      *bool `json:"notify_on_high_bp,omitempty"`
	NotifyOnLowBP       *bool `json:"notify_on_low_bp,omitempty"`
	NotifyOnHighGlucose *bool `json:"notify_on_high_glucose,omitempty"`
	NotifyOnLowGlucose  *bool `json:"notify_on_low_glucose,omitempty"`

	BPHighSystolic       *int `json:"bp_high_systolic,omitempty"`
	BPHighDiastolic      *int `json:"bp_high_diastolic,omitempty"`
	BPLowSystolic        *int `json:"bp_low_systolic,omitempty"`
	BPLowDiastolic       *int `json:"bp_low_diastolic,omitempty"`
	GlucoseHighThreshold *int `json:"glucose_high_threshold,omitempty"`
	GlucoseLowThreshold  *int `json:"glucose_low_threshold,omitempty"`

	EmergencyContacts *[]EmergencyContact `json:"emergency_contacts,omitempty"`
}

// Apply 将补丁套用到现有配置
func (p *AlertSettingsPatch) Apply(s *AlertSettings) {
	if p.NotifyOnHighBP != nil {
		s.NotifyOnHighBP = *p.NotifyOnHighBP
	}
	if p.NotifyOnLowBP != nil {
		s.NotifyOnLowBP = *p.NotifyOnLowBP
	}
	if p.NotifyOnHighGlucose != nil {
		s.NotifyOnHighGlucose = *p.NotifyOnHighGlucose
	}
	if p.NotifyOnLowGlucose != nil {
		s.NotifyOnLowGlucose = *p.NotifyOnLowGlucose
	}
	if p.BPHighSystolic != nil {
		s.BPHighSystolic = *p.BPHighSystolic
	}
	if p.BPHighDiastolic != nil {
		s.BPHighDiastolic = *p.BPHighDiastolic
	}
	if p.BPLowSystolic != nil {
		s.BPLowSystolic = *p.BPLowSystolic
	}
	if p.BPLowDiastolic != nil {
		s.BPLowDiastolic = *p.BPLowDiastolic
	}
	if p.GlucoseHighThreshold != nil {
		s.GlucoseHighThreshold = *p.GlucoseHighThreshold
	}
	if p.GlucoseLowThreshold != nil {
		s.GlucoseLowThreshold = *p.GlucoseLowThreshold
	}
	if p.EmergencyContacts != nil {
		s.EmergencyContacts = *p.EmergencyContacts
	}
	s.UpdatedAt = time.Now()
}
