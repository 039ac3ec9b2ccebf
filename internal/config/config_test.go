package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVICE_NAME", "LOG_LEVEL", "HTTP_ADDR", "GRPC_ADDR", "STORE_DRIVER",
		"MYSQL_DSN", "POSTGRES_DSN", "REDIS_ADDR", "LIST_CACHE_TTL", "DRAFT_TTL",
		"KAFKA_BROKERS", "KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "inventory-records", cfg.ServiceName)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.Minute, cfg.ListCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.DraftTTL)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DRAFT_TTL", "30m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "STORE_DRIVER", "sqlite"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"bad cache ttl", "LIST_CACHE_TTL", "soon"},
		{"bad draft ttl", "DRAFT_TTL", "1 day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()

			assert.ErrorContains(t, err, tt.key)
		})
	}
}
