package models

import (
	"time"
)

// 读数类型
const (
	ReadingTypeBP      = "bp"
	ReadingTypeGlucose = "glucose"
	ReadingTypeSymptom = "symptom"
)

// 血糖测量场景
const (
	GlucoseContextFasting    = "fasting"
	GlucoseContextBeforeMeal = "before_meal"
	GlucoseContextAfterMeal  = "after_meal"
	GlucoseContextRandom     = "random"
)

// 症状严重程度
const (
	SymptomMild     = "mild"
	SymptomModerate = "moderate"
	SymptomSevere   = "severe"
)

// BPReading 血压读数（对应 bp_readings 表）
// Status 由 evaluator 的纯函数计算，禁止用户提交
type BPReading struct {
	ReadingID  string    `json:"reading_id" db:"reading_id"`
	ProfileID  string    `json:"profile_id" db:"profile_id"`
	Systolic   int       `json:"systolic" db:"systolic"`
	Diastolic  int       `json:"diastolic" db:"diastolic"`
	Pulse      *int      `json:"pulse,omitempty" db:"pulse"`
	Status     string    `json:"status" db:"status"`
	MeasuredAt time.Time `json:"measured_at" db:"measured_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// GlucoseReading 血糖读数（对应 glucose_readings 表）
type GlucoseReading struct {
	ReadingID  string    `json:"reading_id" db:"reading_id"`
	ProfileID  string    `json:"profile_id" db:"profile_id"`
	Value      int       `json:"value" db:"value"` // mg/dL
	Context    string    `json:"context" db:"context"`
	Status     string    `json:"status" db:"status"`
	MeasuredAt time.Time `json:"measured_at" db:"measured_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SymptomReading 症状记录（对应 symptom_readings 表）
type SymptomReading struct {
	ReadingID  string    `json:"reading_id" db:"reading_id"`
	ProfileID  string    `json:"profile_id" db:"profile_id"`
	Name       string    `json:"name" db:"name"`
	Severity   string    `json:"severity" db:"severity"` // mild, moderate, severe
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	MeasuredAt time.Time `json:"measured_at" db:"measured_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Reading 读数的和类型封装（每次恰好一个分支非空）
type Reading struct {
	Type    string          `json:"type"`
	BP      *BPReading      `json:"bp,omitempty"`
	Glucose *GlucoseReading `json:"glucose,omitempty"`
	Symptom *SymptomReading `json:"symptom,omitempty"`
}

// ProfileID 返回读数所属档案ID
func (r *Reading) ProfileID() string {
	switch r.Type {
	case ReadingTypeBP:
		return r.BP.ProfileID
	case ReadingTypeGlucose:
		return r.Glucose.ProfileID
	case ReadingTypeSymptom:
		return r.Symptom.ProfileID
	}
	return ""
}

// ReadingID 返回读数ID
func (r *Reading) ReadingID() string {
	switch r.Type {
	case ReadingTypeBP:
		return r.BP.ReadingID
	case ReadingTypeGlucose:
		return r.Glucose.ReadingID
	case ReadingTypeSymptom:
		return r.Symptom.ReadingID
	}
	return ""
}

// MeasuredAt 返回测量时间
func (r *Reading) MeasuredAt() time.Time {
	switch r.Type {
	case ReadingTypeBP:
		return r.BP.MeasuredAt
	case ReadingTypeGlucose:
		return r.Glucose.MeasuredAt
	case ReadingTypeSymptom:
		return r.Symptom.MeasuredAt
	}
	return time.Time{}
}
