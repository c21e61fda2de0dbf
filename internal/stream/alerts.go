package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carelink-alert/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AlertPublisher 报警事件下游发布接口
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *models.EmergencyAlert) error
}

// RedisAlertStream 把已创建的报警发布到 Redis Streams
// 供下游消费者（报表、审计、外部网关）订阅，发布失败不影响报警主流程
type RedisAlertStream struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisAlertStream 创建报警流发布器
func NewRedisAlertStream(client *redis.Client, stream string, logger *zap.Logger) *RedisAlertStream {
	return &RedisAlertStream{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// PublishAlert 发布报警（XADD，JSON 载荷）
func (p *RedisAlertStream) PublishAlert(ctx context.Context, alert *models.EmergencyAlert) error {
	jsonBytes, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish alert to stream: %w", err)
	}

	p.logger.Debug("Alert published to stream",
		zap.String("stream", p.stream),
		zap.String("message_id", id),
		zap.String("alert_id", alert.AlertID),
	)
	return nil
}
