package service

import (
	"context"
	"fmt"

	"carelink-alert/internal/evaluator"
	"carelink-alert/internal/models"
	"carelink-alert/internal/notifier"
	"carelink-alert/internal/presence"

	"go.uber.org/zap"
)

// ProfileDirectory 档案查询接口
type ProfileDirectory interface {
	GetProfile(ctx context.Context, profileID string) (*models.Profile, error)
	GetHouseholdRecipients(ctx context.Context, householdID string) ([]models.HouseholdMember, error)
}

// SettingsProvider 报警配置查询接口
type SettingsProvider interface {
	GetOrCreate(ctx context.Context, profileID string) (*models.AlertSettings, error)
}

// HouseholdNotifier 家庭通知分发接口
type HouseholdNotifier interface {
	NotifyHousehold(ctx context.Context, profile *models.Profile, actorUserID, message string) ([]notifier.DeliveryResult, error)
}

// Pusher 在线推送接口（presence.Hub 实现）
type Pusher interface {
	Push(userID, event string, data interface{})
	PushMany(userIDs []string, event string, data interface{})
}

// IngestResult 一次读数摄入的完整结果
type IngestResult struct {
	Reading       *models.Reading           `json:"reading"`
	Alert         *models.EmergencyAlert    `json:"alert,omitempty"`
	Severity      string                    `json:"severity"`
	Reason        string                    `json:"reason,omitempty"`
	Notifications []notifier.DeliveryResult `json:"notifications,omitempty"`
}

// IngestionPipeline 读数摄入流水线
// 落库后的读数在这里走完评估、报警、家庭通知和在线推送
type IngestionPipeline struct {
	profiles  ProfileDirectory
	settings  SettingsProvider
	evaluator *evaluator.Evaluator
	fanout    HouseholdNotifier
	hub       Pusher
	logger    *zap.Logger
}

// NewIngestionPipeline 创建摄入流水线
func NewIngestionPipeline(
	profiles ProfileDirectory,
	settings SettingsProvider,
	eval *evaluator.Evaluator,
	fanout HouseholdNotifier,
	hub Pusher,
	logger *zap.Logger,
) *IngestionPipeline {
	return &IngestionPipeline{
		profiles:  profiles,
		settings:  settings,
		evaluator: eval,
		fanout:    fanout,
		hub:       hub,
		logger:    logger,
	}
}

// Ingest 处理一条已落库的读数
// actorUserID 为录入者（自己录入时不给自己发通知）
func (p *IngestionPipeline) Ingest(ctx context.Context, reading *models.Reading, actorUserID string) (*IngestResult, error) {
	if reading == nil {
		return nil, fmt.Errorf("reading is required")
	}

	profile, err := p.profiles.GetProfile(ctx, reading.ProfileID())
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	// 新读数实时推给家庭在线成员
	p.pushReading(ctx, profile, reading)

	settings, err := p.settings.GetOrCreate(ctx, profile.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert settings: %w", err)
	}

	alert, decision, err := p.evaluator.Evaluate(ctx, reading, settings)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{
		Reading:  reading,
		Alert:    alert,
		Severity: decision.Severity,
		Reason:   decision.Reason,
	}

	if alert == nil {
		return result, nil
	}

	deliveries, err := p.fanout.NotifyHousehold(ctx, profile, actorUserID, decision.Reason)
	if err != nil {
		// 报警已落库，通知失败不回滚
		p.logger.Error("Household notification failed",
			zap.String("alert_id", alert.AlertID),
			zap.Error(err),
		)
	} else {
		result.Notifications = deliveries
		p.pushAlert(deliveries, alert)
	}

	return result, nil
}

func (p *IngestionPipeline) pushReading(ctx context.Context, profile *models.Profile, reading *models.Reading) {
	event := readingEvent(reading.Type)
	if event == "" {
		return
	}

	userIDs := []string{profile.UserID}
	members, err := p.profiles.GetHouseholdRecipients(ctx, profile.HouseholdID)
	if err != nil {
		p.logger.Warn("Failed to resolve household members for push",
			zap.String("household_id", profile.HouseholdID),
			zap.Error(err),
		)
	} else {
		for _, m := range members {
			if m.UserID != profile.UserID {
				userIDs = append(userIDs, m.UserID)
			}
		}
	}

	p.hub.PushMany(userIDs, event, reading)
}

func (p *IngestionPipeline) pushAlert(deliveries []notifier.DeliveryResult, alert *models.EmergencyAlert) {
	for _, d := range deliveries {
		if d.UserID == "" {
			continue
		}
		p.hub.Push(d.UserID, presence.EventNewNotification, alert)
	}
}

func readingEvent(readingType string) string {
	switch readingType {
	case models.ReadingTypeBP:
		return presence.EventBPNew
	case models.ReadingTypeGlucose:
		return presence.EventGlucoseNew
	case models.ReadingTypeSymptom:
		return presence.EventSymptomNew
	}
	return ""
}
