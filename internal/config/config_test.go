package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "carelink", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	// AI 通道未配置时禁用
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, 5, cfg.AI.TimeoutSeconds)

	assert.Equal(t, "alert:dedup:", cfg.Alert.DedupKeyPrefix)
	assert.Equal(t, 10, cfg.Alert.DedupBucketMinutes)
	assert.Equal(t, "carelink:alerts", cfg.Alert.StreamName)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "5433")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("AI_BASE_URL", "https://ai.example.com")
	os.Setenv("AI_API_KEY", "test-key")
	os.Setenv("AI_TIMEOUT_SECONDS", "3")
	os.Setenv("ALERT_DEDUP_BUCKET_MINUTES", "5")
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)

	// BaseURL + APIKey 同时配置后 AI 通道启用
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, 3, cfg.AI.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Alert.DedupBucketMinutes)
}

func TestGetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db-host",
		Port:     5432,
		User:     "u",
		Password: "p",
		Database: "carelink",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "host=db-host")
	assert.Contains(t, dsn, "dbname=carelink")
	assert.Contains(t, dsn, "sslmode=disable")
}
