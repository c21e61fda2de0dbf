package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config carelink-alert 服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	HTTP struct {
		Addr string
	}

	// 出站聊天渠道（Twilio 风格 API）
	Chat struct {
		BaseURL     string
		AccountSID  string
		AuthToken   string
		FromAddress string // 如 "whatsapp:+14155238886"
	}

	// AI 语义解析降级通道
	AI struct {
		Enabled        bool
		BaseURL        string
		APIKey         string
		Model          string
		TimeoutSeconds int
	}

	// 报警配置
	Alert struct {
		// 去重配置：同一 (profile, type, bucket) 窗口内只产生一条报警
		DedupKeyPrefix     string
		DedupBucketMinutes int
		// 报警事件下游流
		StreamName string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（默认值只在此处套用一次）
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "carelink")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Chat.BaseURL = getEnv("CHAT_BASE_URL", "")
	cfg.Chat.AccountSID = getEnv("CHAT_ACCOUNT_SID", "")
	cfg.Chat.AuthToken = getEnv("CHAT_AUTH_TOKEN", "")
	cfg.Chat.FromAddress = getEnv("CHAT_FROM_ADDRESS", "")

	cfg.AI.BaseURL = getEnv("AI_BASE_URL", "")
	cfg.AI.APIKey = getEnv("AI_API_KEY", "")
	cfg.AI.Model = getEnv("AI_MODEL", "gpt-4o-mini")
	cfg.AI.TimeoutSeconds = getEnvInt("AI_TIMEOUT_SECONDS", 5)
	// AI 通道只有在 BaseURL 与 APIKey 均配置时才启用
	cfg.AI.Enabled = cfg.AI.BaseURL != "" && cfg.AI.APIKey != ""

	cfg.Alert.DedupKeyPrefix = getEnv("ALERT_DEDUP_PREFIX", "alert:dedup:")
	cfg.Alert.DedupBucketMinutes = getEnvInt("ALERT_DEDUP_BUCKET_MINUTES", 10)
	cfg.Alert.StreamName = getEnv("ALERT_STREAM", "carelink:alerts")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
