package models

// 消息解析事件类型（封闭枚举）
const (
	EventTypeBP      = "bp"
	EventTypeGlucose = "glucose"
	EventTypeSymptom = "symptom"
	EventTypeStatus  = "status"
	EventTypeHelp    = "help"
	EventTypeUnknown = "unknown"
)

// InterpretedEvent 自由文本解析结果
// 每条入站消息产生一个，立即消费，不落库
type InterpretedEvent struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"` // [0,1]

	// BP 字段
	Systolic  *int `json:"systolic,omitempty"`
	Diastolic *int `json:"diastolic,omitempty"`
	Pulse     *int `json:"pulse,omitempty"`

	// Glucose 字段
	GlucoseValue   *int    `json:"glucose_value,omitempty"`
	GlucoseContext *string `json:"glucose_context,omitempty"`

	// Symptom 字段
	SymptomName     *string `json:"symptom_name,omitempty"`
	SymptomSeverity *string `json:"symptom_severity,omitempty"`

	OriginalText string `json:"original_text"`
	Note         string `json:"note,omitempty"` // 解析来源说明（rule/ai）
}

// ValidEventType 校验事件类型是否在封闭枚举内
func ValidEventType(t string) bool {
	switch t {
	case EventTypeBP, EventTypeGlucose, EventTypeSymptom,
		EventTypeStatus, EventTypeHelp, EventTypeUnknown:
		return true
	}
	return false
}
