package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Push driver selection. The log driver prints instead of sending, for
// development and staging without FCM credentials.
const (
	PushDriverFCM = "fcm"
	PushDriverLog = "log"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	DatabaseURL        string
	PushDriver         string
	FCMCredentialsFile string
	CronSpecDispatch   string
	DispatchBatchLimit int
	ChangefeedChannel  string
	HTTPListenAddr     string
	LogLevel           string
	Environment        string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables; a missing
	// .env file is fine.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.PushDriver = strings.ToLower(os.Getenv("PUSH_DRIVER"))
	if cfg.PushDriver == "" {
		cfg.PushDriver = PushDriverFCM
	}
	if cfg.PushDriver != PushDriverFCM && cfg.PushDriver != PushDriverLog {
		return nil, fmt.Errorf("invalid PUSH_DRIVER %q (want %q or %q)", cfg.PushDriver, PushDriverFCM, PushDriverLog)
	}

	cfg.FCMCredentialsFile = os.Getenv("FCM_CREDENTIALS_FILE")
	if cfg.PushDriver == PushDriverFCM && cfg.FCMCredentialsFile == "" {
		return nil, fmt.Errorf("FCM_CREDENTIALS_FILE is not set (required unless PUSH_DRIVER=log)")
	}

	cfg.CronSpecDispatch = os.Getenv("CRON_SPEC_REMINDER_DISPATCH")
	if cfg.CronSpecDispatch == "" {
		cfg.CronSpecDispatch = "* * * * *" // Default: every minute
	}

	limitStr := os.Getenv("DISPATCH_BATCH_LIMIT")
	if limitStr == "" {
		cfg.DispatchBatchLimit = 50
	} else {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return nil, fmt.Errorf("invalid DISPATCH_BATCH_LIMIT: %q", limitStr)
		}
		cfg.DispatchBatchLimit = limit
	}

	cfg.ChangefeedChannel = os.Getenv("CHANGEFEED_CHANNEL")
	if cfg.ChangefeedChannel == "" {
		cfg.ChangefeedChannel = "document_changes"
	}

	cfg.HTTPListenAddr = os.Getenv("HTTP_LISTEN_ADDR")
	if cfg.HTTPListenAddr == "" {
		cfg.HTTPListenAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	return cfg, nil
}
