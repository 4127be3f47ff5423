package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheduler-assistant/internal/schedule"
)

var keys = []string{
	"DATABASE_URL", "HTTP_ADDR", "CORS_ORIGINS", "CONFLICT_MODE", "CONFLICT_THRESHOLD_MINUTES",
	"PENDING_SWEEP_MINUTES", "DIGEST_TIME", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "LOG_LEVEL", "ENVIRONMENT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "scheduler.db", cfg.DatabaseURL)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORSOrigins)
	assert.Equal(t, schedule.ConflictThreshold, cfg.ConflictMode)
	assert.Equal(t, time.Hour, cfg.ConflictThreshold)
	assert.Equal(t, 15*time.Minute, cfg.PendingSweep)
	assert.Equal(t, "08:00", cfg.DigestTime)
	assert.False(t, cfg.TelegramEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/sched")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("CONFLICT_MODE", "strict")
	t.Setenv("CONFLICT_THRESHOLD_MINUTES", "30")
	t.Setenv("DIGEST_TIME", "07:45")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost/sched", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, schedule.ConflictStrict, cfg.ConflictMode)
	assert.Equal(t, "07:45", cfg.DigestTime)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(-100200), cfg.TelegramChatID)
	assert.Equal(t, "debug", cfg.LogLevel)

	d := cfg.Detector()
	assert.Equal(t, schedule.ConflictStrict, d.Mode)
	assert.Equal(t, 30*time.Minute, d.Threshold)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CONFLICT_MODE", "sometimes"},
		{"CONFLICT_THRESHOLD_MINUTES", "0"},
		{"DIGEST_TIME", "8am"},
		{"TELEGRAM_CHAT_ID", "me"},
		{"LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestNewLogger(t *testing.T) {
	log, err := Config{LogLevel: "warn", Environment: "dev"}.NewLogger()
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(-1))
	assert.True(t, log.Core().Enabled(1))
}
