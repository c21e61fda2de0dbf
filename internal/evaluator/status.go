package evaluator

import (
	"carelink-alert/internal/models"
)

// 读数状态（纯函数计算，禁止用户提交）
const (
	StatusCrisis   = "crisis"
	StatusHigh     = "high"
	StatusElevated = "elevated"
	StatusNormal   = "normal"
	StatusLow      = "low"
)

// 血压临床危急线（不可配置：180/120 以上必须按危急处理）
const (
	bpCrisisSystolic  = 180
	bpCrisisDiastolic = 120
)

// BPStatus 血压状态纯函数
// 固定分级表：crisis ≥180/≥120、high ≥140/≥90、low ≤90/≤60、elevated ≥120/≥80
func BPStatus(systolic, diastolic int) string {
	switch {
	case systolic >= bpCrisisSystolic || diastolic >= bpCrisisDiastolic:
		return StatusCrisis
	case systolic >= 140 || diastolic >= 90:
		return StatusHigh
	case systolic <= 90 || diastolic <= 60:
		return StatusLow
	case systolic >= 120 || diastolic >= 80:
		return StatusElevated
	default:
		return StatusNormal
	}
}

// GlucoseStatus 血糖状态纯函数（mg/dL），分级随测量场景变化
// 空腹/餐前：<70 low、70-99 normal、100-125 elevated、≥126 high
// 餐后/随机：<70 low、70-139 normal、140-179 elevated、≥180 high
func GlucoseStatus(value int, context string) string {
	if value < 70 {
		return StatusLow
	}

	switch context {
	case models.GlucoseContextFasting, models.GlucoseContextBeforeMeal:
		switch {
		case value >= 126:
			return StatusHigh
		case value >= 100:
			return StatusElevated
		default:
			return StatusNormal
		}
	default:
		switch {
		case value >= 180:
			return StatusHigh
		case value >= 140:
			return StatusElevated
		default:
			return StatusNormal
		}
	}
}
