package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"API_ADDR", "ACCESS_TTL_SECONDS", "LOG_LEVEL", "REDIS_URL", "SMTP_HOST"} {
		t.Setenv(key, "")
	}

	cfg := FromViper(NewViper())
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.SMTPHost)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("ACCESS_TTL_SECONDS", "60")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg := FromViper(NewViper())
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, time.Minute, cfg.AccessTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
