// Package config loads runtime settings from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr         = ":3000"
	defaultPollInterval     = 15 * time.Second
	defaultScanTimeout      = 30 * time.Second
	defaultMaxScanFailures  = 10
	defaultGraceWindow      = 30 * time.Minute
	defaultSweepInterval    = 5 * time.Minute
	defaultHistoryRetention = 24 * time.Hour
	defaultAlertHistorySize = 100
	defaultRouterTimeout    = 10 * time.Second
	defaultSMTPPort         = 587
)

// Config stores runtime settings loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel slog.Level

	// JWTSecret signs API session tokens. Generated per process when
	// unset, which invalidates tokens across restarts.
	JWTSecret string

	PollInterval     time.Duration
	ScanTimeout      time.Duration
	MaxScanFailures  int
	GraceWindow      time.Duration
	SweepInterval    time.Duration
	HistoryRetention time.Duration
	AlertHistorySize int

	RouterTimeout   time.Duration
	RouterVerifyTLS bool

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	AdminEmail    string
}

// Load builds Config from environment variables using stable defaults.
func Load() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", defaultHTTPAddr),
		LogLevel: parseLogLevel(getenv("LOG_LEVEL", "info")),

		JWTSecret: getenv("JWT_SECRET", ""),

		PollInterval:     parseDuration("POLL_INTERVAL", defaultPollInterval),
		ScanTimeout:      parseDuration("SCAN_TIMEOUT", defaultScanTimeout),
		MaxScanFailures:  parseInt("MAX_SCAN_FAILURES", defaultMaxScanFailures),
		GraceWindow:      parseDuration("GRACE_WINDOW", defaultGraceWindow),
		SweepInterval:    parseDuration("SWEEP_INTERVAL", defaultSweepInterval),
		HistoryRetention: parseDuration("HISTORY_RETENTION", defaultHistoryRetention),
		AlertHistorySize: parseInt("ALERT_HISTORY_SIZE", defaultAlertHistorySize),

		RouterTimeout:   parseDuration("ROUTER_TIMEOUT", defaultRouterTimeout),
		RouterVerifyTLS: parseBool("ROUTER_VERIFY_TLS", false),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     parseInt("SMTP_PORT", defaultSMTPPort),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		EmailFrom:    getenv("EMAIL_FROM", ""),
		AdminEmail:   getenv("ADMIN_EMAIL", ""),
	}
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
