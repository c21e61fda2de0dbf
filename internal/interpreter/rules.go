package interpreter

import (
	"regexp"
	"strconv"
	"strings"

	"carelink-alert/internal/models"
)

// 规则族固定置信度
const (
	confidenceBP      = 0.9
	confidenceGlucose = 0.85
	confidenceKeyword = 0.95
	confidenceSymptom = 0.7
)

// 血压取值合理范围（超出则规则不命中，交给 AI 层）
const (
	minSystolic  = 50
	maxSystolic  = 300
	minDiastolic = 30
	maxDiastolic = 200
)

var (
	// "BP 130/85", "130 over 85", "pressure 130 by 85 pulse 72"
	bpPattern = regexp.MustCompile(`(?i)\b(\d{2,3})\s*(?:/|over|by)\s*(\d{2,3})\b(?:.*?\b(?:pulse|hr|heart rate)\s*[:\s]*(\d{2,3})\b)?`)

	// "sugar 110 fasting", "glucose is 145 after food", "blood sugar 98"
	glucosePattern = regexp.MustCompile(`(?i)\b(?:blood\s+)?(?:sugar|glucose)\b[^\d]{0,20}(\d{2,3})\b`)
)

// 血糖场景关键词 → 规范化场景
var glucoseContextWords = []struct {
	word    string
	context string
}{
	{"fasting", models.GlucoseContextFasting},
	{"empty stomach", models.GlucoseContextFasting},
	{"before meal", models.GlucoseContextBeforeMeal},
	{"before food", models.GlucoseContextBeforeMeal},
	{"before breakfast", models.GlucoseContextBeforeMeal},
	{"after meal", models.GlucoseContextAfterMeal},
	{"after food", models.GlucoseContextAfterMeal},
	{"after lunch", models.GlucoseContextAfterMeal},
	{"after dinner", models.GlucoseContextAfterMeal},
	{"post meal", models.GlucoseContextAfterMeal},
	{"bedtime", models.GlucoseContextRandom},
}

var statusKeywords = []string{"status", "latest", "report", "summary", "readings"}

var helpKeywords = []string{"help", "menu", "commands", "how to", "what can"}

// 症状关键词表（规范化名称）
var symptomWords = []struct {
	word string
	name string
}{
	{"chest pain", "chest pain"},
	{"shortness of breath", "shortness of breath"},
	{"breathless", "shortness of breath"},
	{"headache", "headache"},
	{"dizzy", "dizziness"},
	{"dizziness", "dizziness"},
	{"nausea", "nausea"},
	{"vomiting", "vomiting"},
	{"fever", "fever"},
	{"fatigue", "fatigue"},
	{"tired", "fatigue"},
	{"weakness", "weakness"},
	{"cough", "cough"},
	{"swelling", "swelling"},
	{"blurred vision", "blurred vision"},
}

var severeWords = []string{"severe", "terrible", "unbearable", "very bad", "worst", "extreme"}
var mildWords = []string{"mild", "slight", "little", "light"}

// RuleInterpreter 第一层：确定性模式匹配
// 廉价、可解释，覆盖绝大多数简短的体征消息，不产生网络调用
type RuleInterpreter struct{}

// NewRuleInterpreter 创建规则解析器
func NewRuleInterpreter() *RuleInterpreter {
	return &RuleInterpreter{}
}

// Interpret 按序匹配规则，首个命中的规则胜出
func (r *RuleInterpreter) Interpret(text string) models.InterpretedEvent {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if ev, ok := r.matchBP(trimmed); ok {
		return ev
	}
	if ev, ok := r.matchGlucose(trimmed, lower); ok {
		return ev
	}
	if ev, ok := r.matchKeywords(trimmed, lower); ok {
		return ev
	}
	if ev, ok := r.matchSymptom(trimmed, lower); ok {
		return ev
	}

	return models.InterpretedEvent{
		Type:         models.EventTypeUnknown,
		Confidence:   0,
		OriginalText: trimmed,
		Note:         "no rule matched",
	}
}

func (r *RuleInterpreter) matchBP(text string) (models.InterpretedEvent, bool) {
	m := bpPattern.FindStringSubmatch(text)
	if m == nil {
		return models.InterpretedEvent{}, false
	}

	systolic, _ := strconv.Atoi(m[1])
	diastolic, _ := strconv.Atoi(m[2])

	// 取值范围检查：不合理的数字对（如日期）不按血压处理
	if systolic < minSystolic || systolic > maxSystolic ||
		diastolic < minDiastolic || diastolic > maxDiastolic ||
		systolic <= diastolic {
		return models.InterpretedEvent{}, false
	}

	ev := models.InterpretedEvent{
		Type:         models.EventTypeBP,
		Confidence:   confidenceBP,
		Systolic:     &systolic,
		Diastolic:    &diastolic,
		OriginalText: text,
		Note:         "rule: bp pattern",
	}
	if m[3] != "" {
		if pulse, err := strconv.Atoi(m[3]); err == nil {
			ev.Pulse = &pulse
		}
	}
	return ev, true
}

func (r *RuleInterpreter) matchGlucose(text, lower string) (models.InterpretedEvent, bool) {
	m := glucosePattern.FindStringSubmatch(text)
	if m == nil {
		return models.InterpretedEvent{}, false
	}

	value, _ := strconv.Atoi(m[1])
	if value < 20 || value > 900 {
		return models.InterpretedEvent{}, false
	}

	context := models.GlucoseContextRandom
	for _, cw := range glucoseContextWords {
		if strings.Contains(lower, cw.word) {
			context = cw.context
			break
		}
	}

	return models.InterpretedEvent{
		Type:           models.EventTypeGlucose,
		Confidence:     confidenceGlucose,
		GlucoseValue:   &value,
		GlucoseContext: &context,
		OriginalText:   text,
		Note:           "rule: glucose pattern",
	}, true
}

func (r *RuleInterpreter) matchKeywords(text, lower string) (models.InterpretedEvent, bool) {
	for _, kw := range helpKeywords {
		if strings.Contains(lower, kw) {
			return models.InterpretedEvent{
				Type:         models.EventTypeHelp,
				Confidence:   confidenceKeyword,
				OriginalText: text,
				Note:         "rule: help keyword",
			}, true
		}
	}
	for _, kw := range statusKeywords {
		if strings.Contains(lower, kw) {
			return models.InterpretedEvent{
				Type:         models.EventTypeStatus,
				Confidence:   confidenceKeyword,
				OriginalText: text,
				Note:         "rule: status keyword",
			}, true
		}
	}
	return models.InterpretedEvent{}, false
}

func (r *RuleInterpreter) matchSymptom(text, lower string) (models.InterpretedEvent, bool) {
	for _, sw := range symptomWords {
		if !strings.Contains(lower, sw.word) {
			continue
		}

		severity := models.SymptomModerate
		for _, w := range severeWords {
			if strings.Contains(lower, w) {
				severity = models.SymptomSevere
				break
			}
		}
		if severity == models.SymptomModerate {
			for _, w := range mildWords {
				if strings.Contains(lower, w) {
					severity = models.SymptomMild
					break
				}
			}
		}

		name := sw.name
		return models.InterpretedEvent{
			Type:            models.EventTypeSymptom,
			Confidence:      confidenceSymptom,
			SymptomName:     &name,
			SymptomSeverity: &severity,
			OriginalText:    text,
			Note:            "rule: symptom keyword",
		}, true
	}
	return models.InterpretedEvent{}, false
}
