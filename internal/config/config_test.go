package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "json", cfg.Server.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownGrace)
	assert.Equal(t, "projecthub.db", cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.Jobs.DueSoonWindow)
	assert.Equal(t, time.Hour, cfg.Jobs.GuardWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.Jobs.DigestWindow)
	assert.Equal(t, 9, cfg.Jobs.DigestHour)
	assert.Equal(t, 30*24*time.Hour, cfg.Jobs.RetentionHorizon)
	assert.Equal(t, time.Monday, cfg.DigestWeekday())
	assert.Empty(t, cfg.Notify.TelegramToken)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/projecthub")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_GRACE", "5s")
	t.Setenv("REMINDER_DUE_SOON_WINDOW", "12h")
	t.Setenv("RECURRENCE_GUARD_WINDOW", "90m")
	t.Setenv("DIGEST_WEEKDAY", "Friday")
	t.Setenv("DIGEST_HOUR", "17")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EMAIL_FROM", "noreply@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:secret@db:5432/projecthub", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "text", cfg.Server.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownGrace)
	assert.Equal(t, 12*time.Hour, cfg.Jobs.DueSoonWindow)
	assert.Equal(t, 90*time.Minute, cfg.Jobs.GuardWindow)
	assert.Equal(t, time.Friday, cfg.DigestWeekday())
	assert.Equal(t, 17, cfg.Jobs.DigestHour)
	assert.Equal(t, "123:abc", cfg.Notify.TelegramToken)
	assert.Equal(t, "k1:9092,k2:9092", cfg.Notify.KafkaBrokers)
	assert.Equal(t, "projecthub-notifications", cfg.Notify.KafkaTopic)
	assert.Equal(t, "noreply@example.com", cfg.Notify.EmailFrom)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, env, value string
	}{
		{"log level", "LOG_LEVEL", "verbose"},
		{"log format", "LOG_FORMAT", "xml"},
		{"timezone", "TIMEZONE", "Mars/Olympus"},
		{"weekday", "DIGEST_WEEKDAY", "someday"},
		{"hour", "DIGEST_HOUR", "24"},
		{"window", "REMINDER_DUE_SOON_WINDOW", "0s"},
		{"grace", "SHUTDOWN_GRACE", "-1s"},
		{"email", "EMAIL_FROM", "not-an-address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
