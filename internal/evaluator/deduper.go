package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// AlertDeduper 报警幂等门
// 同一 (profile, alert_type, 时间桶) 窗口内最多放行一次
type AlertDeduper interface {
	Acquire(ctx context.Context, profileID, alertType string, measuredAt time.Time) (bool, error)
}

// RedisDeduper 基于 Redis SETNX 的幂等门
// 时间桶从读数的测量时间取整，同一读数重复评估落在同一个键上
type RedisDeduper struct {
	client    *redis.Client
	keyPrefix string
	bucket    time.Duration
}

// NewRedisDeduper 创建幂等门
func NewRedisDeduper(client *redis.Client, keyPrefix string, bucketMinutes int) *RedisDeduper {
	if bucketMinutes <= 0 {
		bucketMinutes = 10
	}
	return &RedisDeduper{
		client:    client,
		keyPrefix: keyPrefix,
		bucket:    time.Duration(bucketMinutes) * time.Minute,
	}
}

// Acquire 尝试占用幂等键；返回 true 表示本次评估允许产生报警
func (d *RedisDeduper) Acquire(ctx context.Context, profileID, alertType string, measuredAt time.Time) (bool, error) {
	bucket := measuredAt.Truncate(d.bucket).Unix()
	key := fmt.Sprintf("%s%s:%s:%d", d.keyPrefix, profileID, alertType, bucket)

	// TTL 取两个桶宽，跨桶边界的迟到评估也能被旧键拦下
	ok, err := d.client.SetNX(ctx, key, "1", 2*d.bucket).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dedup key: %w", err)
	}
	return ok, nil
}
