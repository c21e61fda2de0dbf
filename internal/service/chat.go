package service

import (
	"context"
	"fmt"
	"strings"

	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// 固定回复文案
const (
	onboardingReply = "Welcome to CareLink! This number isn't registered yet. " +
		"Please download the CareLink app and sign up to start tracking your health."

	helpReply = "You can text me things like:\n" +
		"- \"BP 130/85\" to log blood pressure\n" +
		"- \"sugar 110 fasting\" to log blood glucose\n" +
		"- \"headache\" to log a symptom\n" +
		"- \"status\" to get the latest readings"

	unknownReply = "Sorry, I didn't catch that. Text \"help\" to see what I understand."
)

// MessageInterpreter 入站文本解析接口（interpreter.Interpreter 实现）
type MessageInterpreter interface {
	Interpret(ctx context.Context, text string) models.InterpretedEvent
}

// SenderLookup 发送者电话到档案的匹配接口
type SenderLookup interface {
	GetProfileByPhone(ctx context.Context, phone string) (*models.Profile, error)
}

// LatestReadings 最近读数查询接口（status 摘要用）
type LatestReadings interface {
	LatestBPReading(ctx context.Context, profileID string) (*models.BPReading, error)
	LatestGlucoseReading(ctx context.Context, profileID string) (*models.GlucoseReading, error)
	LatestSymptomReading(ctx context.Context, profileID string) (*models.SymptomReading, error)
}

// ChatService 聊天通道入站处理
// 未注册发送者只收引导语，不写任何数据
type ChatService struct {
	profiles    SenderLookup
	latest      LatestReadings
	interpreter MessageInterpreter
	resolver    *ReadingResolver
	pipeline    *IngestionPipeline
	logger      *zap.Logger
}

// NewChatService 创建聊天服务
func NewChatService(
	profiles SenderLookup,
	latest LatestReadings,
	interpreter MessageInterpreter,
	resolver *ReadingResolver,
	pipeline *IngestionPipeline,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		profiles:    profiles,
		latest:      latest,
		interpreter: interpreter,
		resolver:    resolver,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// HandleInbound 处理一条入站消息，返回给发送者的回复文案
func (s *ChatService) HandleInbound(ctx context.Context, from, body string) (string, error) {
	phone := normalizeSender(from)
	body = strings.TrimSpace(body)
	if phone == "" {
		return "", fmt.Errorf("from is required")
	}
	if body == "" {
		return unknownReply, nil
	}

	profile, err := s.profiles.GetProfileByPhone(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("failed to match sender: %w", err)
	}
	if profile == nil {
		s.logger.Info("Inbound message from unregistered sender", zap.String("from", phone))
		return onboardingReply, nil
	}

	event := s.interpreter.Interpret(ctx, body)
	s.logger.Info("Inbound message interpreted",
		zap.String("profile_id", profile.ProfileID),
		zap.String("event_type", event.Type),
		zap.Float64("confidence", event.Confidence),
	)

	switch event.Type {
	case models.EventTypeBP, models.EventTypeGlucose, models.EventTypeSymptom:
		return s.handleReadingEvent(ctx, profile, &event)
	case models.EventTypeStatus:
		return s.statusSummary(ctx, profile)
	case models.EventTypeHelp:
		return helpReply, nil
	default:
		return unknownReply, nil
	}
}

// normalizeSender 去掉渠道限定前缀（如 "whatsapp:+1555..."），留下裸电话号
func normalizeSender(from string) string {
	from = strings.TrimSpace(from)
	if idx := strings.LastIndex(from, ":"); idx >= 0 {
		from = from[idx+1:]
	}
	return strings.TrimSpace(from)
}

func (s *ChatService) handleReadingEvent(ctx context.Context, profile *models.Profile, event *models.InterpretedEvent) (string, error) {
	reading, err := s.resolver.FromEvent(ctx, profile.ProfileID, event)
	if err != nil {
		s.logger.Warn("Failed to resolve reading from event",
			zap.String("profile_id", profile.ProfileID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
		return unknownReply, nil
	}

	result, err := s.pipeline.Ingest(ctx, reading, profile.UserID)
	if err != nil {
		return "", err
	}

	reply := confirmationReply(reading)
	if result.Alert != nil {
		switch n := len(result.Notifications); n {
		case 0:
			reply += " Your family is being notified."
		case 1:
			reply += " Alert sent to 1 caregiver."
		default:
			reply += fmt.Sprintf(" Alert sent to %d caregivers.", n)
		}
	}
	return reply, nil
}

func confirmationReply(reading *models.Reading) string {
	switch reading.Type {
	case models.ReadingTypeBP:
		r := reading.BP
		return fmt.Sprintf("Logged blood pressure %d/%d (%s).", r.Systolic, r.Diastolic, r.Status)
	case models.ReadingTypeGlucose:
		r := reading.Glucose
		return fmt.Sprintf("Logged blood glucose %d mg/dL %s (%s).", r.Value, r.Context, r.Status)
	case models.ReadingTypeSymptom:
		r := reading.Symptom
		return fmt.Sprintf("Logged symptom: %s (%s).", r.Name, r.Severity)
	}
	return "Logged."
}

func (s *ChatService) statusSummary(ctx context.Context, profile *models.Profile) (string, error) {
	lines := []string{fmt.Sprintf("Latest readings for %s:", profile.Name)}

	bp, err := s.latest.LatestBPReading(ctx, profile.ProfileID)
	if err != nil {
		return "", err
	}
	if bp != nil {
		lines = append(lines, fmt.Sprintf("- BP: %d/%d (%s) at %s",
			bp.Systolic, bp.Diastolic, bp.Status, bp.MeasuredAt.Format("Jan 2 15:04")))
	}

	glucose, err := s.latest.LatestGlucoseReading(ctx, profile.ProfileID)
	if err != nil {
		return "", err
	}
	if glucose != nil {
		lines = append(lines, fmt.Sprintf("- Glucose: %d mg/dL %s (%s) at %s",
			glucose.Value, glucose.Context, glucose.Status, glucose.MeasuredAt.Format("Jan 2 15:04")))
	}

	symptom, err := s.latest.LatestSymptomReading(ctx, profile.ProfileID)
	if err != nil {
		return "", err
	}
	if symptom != nil {
		lines = append(lines, fmt.Sprintf("- Symptom: %s (%s) at %s",
			symptom.Name, symptom.Severity, symptom.MeasuredAt.Format("Jan 2 15:04")))
	}

	if len(lines) == 1 {
		return fmt.Sprintf("No readings recorded yet for %s.", profile.Name), nil
	}
	return strings.Join(lines, "\n"), nil
}
