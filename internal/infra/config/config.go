package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string

	MovieGluBaseURL       string
	MovieGluClientID      string
	MovieGluAPIKey        string
	MovieGluAuthorization string
	MovieGluTerritory     string
	MovieGluGeolocation   string

	OneSignalURL        string
	OneSignalAppID      string
	OneSignalRESTAPIKey string

	HTTPTimeout      time.Duration // Per outbound provider/push call
	CronSpecCheck    string        // Showtime check interval
	CheckRunTimeout  time.Duration // Bound on one whole check run
	CheckConcurrency int           // Venues queried in parallel during one check
	CheckLocation    *time.Location

	TelegramToken   string // Empty disables the bot
	AdminTelegramID int64

	RedisAddr     string // Empty disables the showtime cache
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL string // Empty disables alert events
	HTTPAddr    string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	required := []struct {
		key string
		dst *string
	}{
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"MOVIEGLU_CLIENT_ID", &cfg.MovieGluClientID},
		{"MOVIEGLU_API_KEY", &cfg.MovieGluAPIKey},
		{"MOVIEGLU_AUTHORIZATION", &cfg.MovieGluAuthorization},
		{"MOVIEGLU_TERRITORY", &cfg.MovieGluTerritory},
		{"ONESIGNAL_APP_ID", &cfg.OneSignalAppID},
		{"ONESIGNAL_REST_API_KEY", &cfg.OneSignalRESTAPIKey},
	}
	for _, r := range required {
		*r.dst = os.Getenv(r.key)
		if *r.dst == "" {
			return nil, fmt.Errorf("%s is not set", r.key)
		}
	}

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	cfg.MovieGluBaseURL = strings.TrimRight(getenv("MOVIEGLU_BASE_URL", "https://api-gate2.movieglu.com"), "/")
	cfg.MovieGluGeolocation = getenv("MOVIEGLU_GEOLOCATION", "-22.0;14.0")
	cfg.OneSignalURL = getenv("ONESIGNAL_URL", "https://onesignal.com/api/v1/notifications")

	if cfg.HTTPTimeout, err = time.ParseDuration(getenv("HTTP_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}

	cfg.CronSpecCheck = getenv("CRON_SPEC_SHOWTIME_CHECK", "@every 60m")
	if cfg.CheckRunTimeout, err = time.ParseDuration(getenv("CHECK_RUN_TIMEOUT", "10m")); err != nil {
		return nil, fmt.Errorf("invalid CHECK_RUN_TIMEOUT: %w", err)
	}

	if cfg.CheckConcurrency, err = strconv.Atoi(getenv("CHECK_CONCURRENCY", "4")); err != nil {
		return nil, fmt.Errorf("invalid CHECK_CONCURRENCY: %w", err)
	}
	if cfg.CheckConcurrency < 1 {
		return nil, fmt.Errorf("invalid CHECK_CONCURRENCY: must be at least 1")
	}

	cfg.CheckLocation = time.Local
	if tz := os.Getenv("CHECK_TIMEZONE"); tz != "" {
		if cfg.CheckLocation, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("invalid CHECK_TIMEZONE: %w", err)
		}
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		if cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getenv("CACHE_TTL", "15m")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg.RabbitMQURL = os.Getenv("RABBITMQ_URL")
	cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
