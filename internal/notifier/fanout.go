package notifier

import (
	"context"
	"fmt"

	"carelink-alert/internal/metrics"
	"carelink-alert/internal/models"

	"go.uber.org/zap"
)

// RecipientDirectory 接收人目录（由 repository.ProfilesRepository 实现）
type RecipientDirectory interface {
	GetHouseholdRecipients(ctx context.Context, householdID string) ([]models.HouseholdMember, error)
}

// DeliveryResult 单个接收人的投递结果
type DeliveryResult struct {
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// DeliveredCount 统计成功投递数
func DeliveredCount(results []DeliveryResult) int {
	count := 0
	for _, r := range results {
		if r.Delivered {
			count++
		}
	}
	return count
}

// Fanout 报警通知分发器
// 接收人 = 家庭内 admin/caregiver 成员去掉触发者本人；SOS 额外并入紧急联系人
// 单个接收人失败不影响其余投递，结果逐条记录
type Fanout struct {
	directory RecipientDirectory
	sender    MessageSender
	logger    *zap.Logger
}

// NewFanout 创建通知分发器
func NewFanout(directory RecipientDirectory, sender MessageSender, logger *zap.Logger) *Fanout {
	return &Fanout{
		directory: directory,
		sender:    sender,
		logger:    logger,
	}
}

// NotifyHousehold 向家庭接收人分发报警消息
func (f *Fanout) NotifyHousehold(ctx context.Context, profile *models.Profile, actorUserID, message string) ([]DeliveryResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	recipients, err := f.resolveRecipients(ctx, profile, actorUserID)
	if err != nil {
		return nil, err
	}

	return f.deliver(ctx, recipients, message), nil
}

// NotifySOS 向家庭接收人和紧急联系人分发 SOS 消息
func (f *Fanout) NotifySOS(ctx context.Context, profile *models.Profile, actorUserID, message string, contacts []models.EmergencyContact) ([]DeliveryResult, error) {
	if profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if message == "" {
		return nil, fmt.Errorf("message is required")
	}

	recipients, err := f.resolveRecipients(ctx, profile, actorUserID)
	if err != nil {
		return nil, err
	}

	// 并入紧急联系人，按电话去重
	seen := map[string]bool{}
	for _, r := range recipients {
		seen[r.Phone] = true
	}
	for _, c := range contacts {
		if c.Phone == "" || seen[c.Phone] {
			continue
		}
		seen[c.Phone] = true
		recipients = append(recipients, DeliveryResult{
			Name:  c.Name,
			Phone: c.Phone,
		})
	}

	return f.deliver(ctx, recipients, message), nil
}

func (f *Fanout) resolveRecipients(ctx context.Context, profile *models.Profile, actorUserID string) ([]DeliveryResult, error) {
	members, err := f.directory.GetHouseholdRecipients(ctx, profile.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}

	recipients := []DeliveryResult{}
	for _, m := range members {
		if m.UserID == actorUserID {
			continue
		}
		if m.Phone == "" {
			f.logger.Warn("Recipient has no phone, skipping",
				zap.String("user_id", m.UserID),
				zap.String("household_id", profile.HouseholdID),
			)
			continue
		}
		recipients = append(recipients, DeliveryResult{
			UserID: m.UserID,
			Phone:  m.Phone,
		})
	}

	return recipients, nil
}

func (f *Fanout) deliver(ctx context.Context, recipients []DeliveryResult, message string) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(recipients))
	for _, r := range recipients {
		if err := f.sender.SendMessage(ctx, r.Phone, message); err != nil {
			r.Delivered = false
			r.Error = err.Error()
			metrics.NotificationsSent.WithLabelValues("failed").Inc()
			f.logger.Error("Notification delivery failed",
				zap.String("phone", r.Phone),
				zap.String("user_id", r.UserID),
				zap.Error(err),
			)
		} else {
			r.Delivered = true
			metrics.NotificationsSent.WithLabelValues("delivered").Inc()
		}
		results = append(results, r)
	}

	f.logger.Info("Notification fanout completed",
		zap.Int("recipient_count", len(recipients)),
		zap.Int("delivered_count", DeliveredCount(results)),
	)

	return results
}
