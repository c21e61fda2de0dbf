package service

import (
	"context"
	"fmt"
	"time"

	"carelink-alert/internal/metrics"
	"carelink-alert/internal/models"
	"carelink-alert/internal/notifier"
	"carelink-alert/internal/presence"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AlertStore 报警存取接口（repository 层实现）
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.EmergencyAlert) error
	GetAlert(ctx context.Context, alertID string) (*models.EmergencyAlert, error)
	ResolveAlert(ctx context.Context, alertID, resolverID string) error
	ListAlertsByProfile(ctx context.Context, profileID string, limit int) ([]*models.EmergencyAlert, error)
}

// SOSNotifier SOS 分发接口（notifier.Fanout 实现）
type SOSNotifier interface {
	NotifySOS(ctx context.Context, profile *models.Profile, actorUserID, message string, contacts []models.EmergencyContact) ([]notifier.DeliveryResult, error)
}

// SOSResult SOS 触发结果
type SOSResult struct {
	Alert         *models.EmergencyAlert    `json:"alert"`
	NotifiedCount int                       `json:"notified_count"`
	Notifications []notifier.DeliveryResult `json:"notifications"`
}

// AlertService 报警服务（SOS 触发、处理、查询）
// SOS 是用户的显式求救动作，不走幂等窗口，每次触发都创建报警
type AlertService struct {
	alerts   AlertStore
	profiles ProfileDirectory
	settings SettingsProvider
	fanout   SOSNotifier
	hub      Pusher
	logger   *zap.Logger
}

// NewAlertService 创建报警服务
func NewAlertService(
	alerts AlertStore,
	profiles ProfileDirectory,
	settings SettingsProvider,
	fanout SOSNotifier,
	hub Pusher,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		alerts:   alerts,
		profiles: profiles,
		settings: settings,
		fanout:   fanout,
		hub:      hub,
		logger:   logger,
	}
}

// TriggerSOS 触发 SOS：创建报警并通知家庭接收人 + 紧急联系人
// customMessage 为空时使用默认求救文案
func (s *AlertService) TriggerSOS(ctx context.Context, profileID, actorUserID, customMessage string, latitude, longitude *float64) (*SOSResult, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profile_id is required")
	}

	profile, err := s.profiles.GetProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	settings, err := s.settings.GetOrCreate(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert settings: %w", err)
	}

	message := fmt.Sprintf("SOS! %s needs help.", profile.Name)
	if customMessage != "" {
		message = fmt.Sprintf("SOS from %s: %s", profile.Name, customMessage)
	}
	if latitude != nil && longitude != nil {
		message += fmt.Sprintf(" Location: https://maps.google.com/?q=%f,%f", *latitude, *longitude)
	}

	alert := &models.EmergencyAlert{
		AlertID:   uuid.New().String(),
		ProfileID: profileID,
		AlertType: models.AlertTypeSOS,
		Message:   message,
		Latitude:  latitude,
		Longitude: longitude,
		Resolved:  false,
		CreatedAt: time.Now(),
	}

	if err := s.alerts.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create sos alert: %w", err)
	}

	metrics.AlertsCreated.WithLabelValues(models.AlertTypeSOS).Inc()
	s.logger.Info("SOS alert created",
		zap.String("alert_id", alert.AlertID),
		zap.String("profile_id", profileID),
	)

	deliveries, err := s.fanout.NotifySOS(ctx, profile, actorUserID, message, settings.EmergencyContacts)
	if err != nil {
		// 报警已落库，通知失败不回滚
		s.logger.Error("SOS notification failed",
			zap.String("alert_id", alert.AlertID),
			zap.Error(err),
		)
		deliveries = []notifier.DeliveryResult{}
	}

	for _, d := range deliveries {
		if d.UserID != "" {
			s.hub.Push(d.UserID, presence.EventNewNotification, alert)
		}
	}

	// notified_count 按解析出的接收人数统计；逐条投递状态见 notifications
	return &SOSResult{
		Alert:         alert,
		NotifiedCount: len(deliveries),
		Notifications: deliveries,
	}, nil
}

// Resolve 标记报警已处理
func (s *AlertService) Resolve(ctx context.Context, alertID, resolverID string) error {
	if err := s.alerts.ResolveAlert(ctx, alertID, resolverID); err != nil {
		return err
	}

	s.logger.Info("Alert resolved",
		zap.String("alert_id", alertID),
		zap.String("resolver_id", resolverID),
	)
	return nil
}

// ListAlerts 查询档案的报警历史
func (s *AlertService) ListAlerts(ctx context.Context, profileID string, limit int) ([]*models.EmergencyAlert, error) {
	return s.alerts.ListAlertsByProfile(ctx, profileID, limit)
}
