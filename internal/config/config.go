package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultPort             = "8080"
	defaultDatabaseURL      = "file:data/leads.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	defaultBaseURL          = "https://massimorusso.io"
	defaultNotifyTimeout    = "10s"
	defaultRateLimitMax     = "5"
	defaultRateLimitWindow  = "1m"
	defaultAdminJWTTTL      = "12h"
	defaultAdminJWTSecret   = "change-me-admin-jwt-secret"
	defaultLogLevel         = "info"
	minAdminJWTSecretLength = 32
)

type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string

	ResendAPIKey  string
	AdminEmail    string
	FromEmail     string
	BaseURL       string
	NotifyTimeout time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration

	CORSAllowedOrigins []string

	AdminPasswordHash string
	AdminJWTSecret    string
	AdminJWTTTL       time.Duration
}

// AdminEnabled reports whether the admin routes should be mounted.
func (c *Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

// MailEnabled reports whether every admin notification setting is present.
func (c *Config) MailEnabled() bool {
	return c.ResendAPIKey != "" && c.AdminEmail != "" && c.FromEmail != ""
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))

	cfg.ResendAPIKey = strings.TrimSpace(os.Getenv("RESEND_API_KEY"))
	cfg.AdminEmail = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	cfg.FromEmail = strings.TrimSpace(os.Getenv("FROM_EMAIL"))
	cfg.BaseURL = strings.TrimSpace(getEnv("BASE_URL", defaultBaseURL))

	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.AdminPasswordHash = strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH"))
	cfg.AdminJWTSecret = strings.TrimSpace(getEnv("ADMIN_JWT_SECRET", defaultAdminJWTSecret))

	var err error
	cfg.NotifyTimeout, err = parseDurationEnv("NOTIFY_TIMEOUT", defaultNotifyTimeout)
	if err != nil {
		return nil, err
	}

	cfg.RateLimitWindow, err = parseDurationEnv("LEAD_RATE_LIMIT_WINDOW", defaultRateLimitWindow)
	if err != nil {
		return nil, err
	}

	cfg.RateLimitMax, err = parseIntEnv("LEAD_RATE_LIMIT_MAX", defaultRateLimitMax)
	if err != nil {
		return nil, err
	}

	cfg.AdminJWTTTL, err = parseDurationEnv("ADMIN_JWT_TTL", defaultAdminJWTTTL)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	if cfg.RateLimitMax <= 0 {
		return fmt.Errorf("LEAD_RATE_LIMIT_MAX must be > 0")
	}
	if cfg.RateLimitWindow <= 0 {
		return fmt.Errorf("LEAD_RATE_LIMIT_WINDOW must be > 0")
	}
	if cfg.AdminJWTTTL <= 0 {
		return fmt.Errorf("ADMIN_JWT_TTL must be > 0")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return fmt.Errorf("BASE_URL must start with http:// or https://")
	}

	if isProdLike(cfg.AppEnv) && cfg.AdminEnabled() {
		if isEmptyOrDefault(cfg.AdminJWTSecret, defaultAdminJWTSecret) {
			return fmt.Errorf("in prod/release ADMIN_JWT_SECRET must be set and not default")
		}
		if len(cfg.AdminJWTSecret) < minAdminJWTSecretLength {
			return fmt.Errorf("in prod/release ADMIN_JWT_SECRET must be at least %d characters", minAdminJWTSecretLength)
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
