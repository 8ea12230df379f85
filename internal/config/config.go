package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the job runner.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type ServerConfig struct {
	HTTPAddr      string        `mapstructure:"http_addr" validate:"required"`
	LogLevel      string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat     string        `mapstructure:"log_format" validate:"oneof=json text"`
	Timezone      string        `mapstructure:"timezone" validate:"required"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace" validate:"gt=0"`
}

type DatabaseConfig struct {
	// URL is a SQLite path or a postgres DSN.
	URL string `mapstructure:"url" validate:"required"`
}

// JobsConfig tunes the background jobs.
type JobsConfig struct {
	DueSoonWindow    time.Duration `mapstructure:"due_soon_window" validate:"gt=0"`
	GuardWindow      time.Duration `mapstructure:"guard_window" validate:"gt=0"`
	DigestWindow     time.Duration `mapstructure:"digest_window" validate:"gt=0"`
	DigestWeekday    string        `mapstructure:"digest_weekday" validate:"oneof=sunday monday tuesday wednesday thursday friday saturday"`
	DigestHour       int           `mapstructure:"digest_hour" validate:"gte=0,lte=23"`
	RetentionHorizon time.Duration `mapstructure:"retention_horizon" validate:"gt=0"`
}

// NotifyConfig holds delivery channel settings. Empty values disable the
// channel; email falls back to logged delivery.
type NotifyConfig struct {
	EmailFrom     string `mapstructure:"email_from" validate:"omitempty,email"`
	EmailRegion   string `mapstructure:"email_region"`
	EmailEndpoint string `mapstructure:"email_endpoint" validate:"omitempty,url"`
	TelegramToken string `mapstructure:"telegram_token"`
	KafkaBrokers  string `mapstructure:"kafka_brokers"`
	KafkaTopic    string `mapstructure:"kafka_topic" validate:"required_with=KafkaBrokers"`
	FrontendURL   string `mapstructure:"frontend_url" validate:"omitempty,url"`
}

var defaults = map[string]any{
	"server.http_addr":       ":8080",
	"server.log_level":       "info",
	"server.log_format":      "json",
	"server.timezone":        "UTC",
	"server.shutdown_grace":  "30s",
	"database.url":           "projecthub.db",
	"jobs.due_soon_window":   "24h",
	"jobs.guard_window":      "1h",
	"jobs.digest_window":     "168h",
	"jobs.digest_weekday":    "monday",
	"jobs.digest_hour":       9,
	"jobs.retention_horizon": "720h",
	"notify.email_from":      "",
	"notify.email_region":    "us-east-1",
	"notify.email_endpoint":  "",
	"notify.telegram_token":  "",
	"notify.kafka_brokers":   "",
	"notify.kafka_topic":     "projecthub-notifications",
	"notify.frontend_url":    "http://localhost:3000",
}

// envKeys maps config keys to the environment variables they are read from.
var envKeys = map[string]string{
	"server.http_addr":       "HTTP_ADDR",
	"server.log_level":       "LOG_LEVEL",
	"server.log_format":      "LOG_FORMAT",
	"server.timezone":        "TIMEZONE",
	"server.shutdown_grace":  "SHUTDOWN_GRACE",
	"database.url":           "DATABASE_URL",
	"jobs.due_soon_window":   "REMINDER_DUE_SOON_WINDOW",
	"jobs.guard_window":      "RECURRENCE_GUARD_WINDOW",
	"jobs.digest_window":     "DIGEST_WINDOW",
	"jobs.digest_weekday":    "DIGEST_WEEKDAY",
	"jobs.digest_hour":       "DIGEST_HOUR",
	"jobs.retention_horizon": "RETENTION_HORIZON",
	"notify.email_from":      "EMAIL_FROM",
	"notify.email_region":    "EMAIL_REGION",
	"notify.email_endpoint":  "EMAIL_ENDPOINT",
	"notify.telegram_token":  "TELEGRAM_TOKEN",
	"notify.kafka_brokers":   "KAFKA_BROKERS",
	"notify.kafka_topic":     "KAFKA_TOPIC",
	"notify.frontend_url":    "FRONTEND_URL",
}

// Load reads configuration from environment variables with defaults and
// validates it.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	cfg.Server.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Server.LogLevel))
	cfg.Server.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Server.LogFormat))
	cfg.Jobs.DigestWeekday = strings.ToLower(strings.TrimSpace(cfg.Jobs.DigestWeekday))
	cfg.Database.URL = strings.TrimSpace(cfg.Database.URL)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}

// DigestWeekday returns the day the weekly digest goes out.
func (c *Config) DigestWeekday() time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), c.Jobs.DigestWeekday) {
			return d
		}
	}
	return time.Monday
}
