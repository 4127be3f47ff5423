package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"scheduler-assistant/internal/repository"
	"scheduler-assistant/internal/schedule"
)

// Config keeps runtime settings for the API server and background jobs.
type Config struct {
	DatabaseURL       string
	HTTPAddr          string
	CORSOrigins       []string
	ConflictMode      schedule.ConflictMode
	ConflictThreshold time.Duration
	PendingSweep      time.Duration
	DigestTime        string
	TelegramToken     string
	TelegramChatID    int64
	LogLevel          string
	Environment       string
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	// missing .env is fine, real env vars win anyway
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:       getEnv("DATABASE_URL", repository.DefaultDSN),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8000"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		ConflictThreshold: time.Duration(getEnvInt("CONFLICT_THRESHOLD_MINUTES", 60)) * time.Minute,
		PendingSweep:      time.Duration(getEnvInt("PENDING_SWEEP_MINUTES", 15)) * time.Minute,
		DigestTime:        getEnv("DIGEST_TIME", "08:00"),
		TelegramToken:     getEnv("TELEGRAM_TOKEN", ""),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:       getEnv("ENVIRONMENT", "production"),
	}

	mode, err := schedule.ParseConflictMode(getEnv("CONFLICT_MODE", ""))
	if err != nil {
		return cfg, fmt.Errorf("CONFLICT_MODE: %w", err)
	}
	cfg.ConflictMode = mode

	if cfg.ConflictThreshold <= 0 {
		return cfg, fmt.Errorf("CONFLICT_THRESHOLD_MINUTES must be positive")
	}
	if _, err := schedule.ParseClock(cfg.DigestTime); err != nil {
		return cfg, fmt.Errorf("DIGEST_TIME: %w", err)
	}

	if raw := getEnv("TELEGRAM_CHAT_ID", ""); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// TelegramEnabled reports whether the bot has a token to run with.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Detector builds the conflict detector configured for this process.
func (c Config) Detector() schedule.ConflictDetector {
	d := schedule.NewConflictDetector(c.ConflictMode)
	d.Threshold = c.ConflictThreshold
	return d
}

// NewLogger returns a production zap logger, or a development one when
// ENVIRONMENT is dev.
func (c Config) NewLogger() (*zap.Logger, error) {
	var zc zap.Config
	if c.Environment == "dev" || c.Environment == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
