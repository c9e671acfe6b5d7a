package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DB_CONN_STR", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"GRPC_PORT", "HTTP_PORT", "API_TOKEN", "CRON_SECRET", "ALPHA_VANTAGE_API_KEY",
		"PRICE_REFRESH_INTERVAL", "QUOTE_CACHE_TTL", "SCHEDULER_ENABLED",
		"PAYMENT_RULES_SCHEDULE", "PRICE_REFRESH_SCHEDULE", "DIVIDEND_SYNC_SCHEDULE",
		"LOG_LEVEL", "LOG_PRETTY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=postgres dbname=networth sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, "dev-token", cfg.APIToken)
	assert.Empty(t, cfg.CronSecret)
	assert.Equal(t, time.Second, cfg.PriceRefreshInterval)
	assert.Equal(t, 15*time.Minute, cfg.QuoteCacheTTL)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, "0 0 * * *", cfg.PaymentRulesSchedule)
	assert.Equal(t, "0 21 * * *", cfg.PriceRefreshSchedule)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogPretty)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "finance")
	t.Setenv("CRON_SECRET", "abc")
	t.Setenv("PRICE_REFRESH_INTERVAL", "12s")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Contains(t, cfg.DatabaseURL, "host=db")
	assert.Contains(t, cfg.DatabaseURL, "dbname=finance")
	assert.Equal(t, "abc", cfg.CronSecret)
	assert.Equal(t, 12*time.Second, cfg.PriceRefreshInterval)
	assert.False(t, cfg.SchedulerEnabled)
	assert.True(t, cfg.LogPretty)
}

func TestLoad_ConnectionStringWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_CONN_STR", "postgres://u:p@remote/db")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@remote/db", cfg.DatabaseURL)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUOTE_CACHE_TTL", "soon")
	t.Setenv("SCHEDULER_ENABLED", "maybe")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.QuoteCacheTTL)
	assert.True(t, cfg.SchedulerEnabled)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DatabaseURL: "x", APIToken: "t", PriceRefreshInterval: time.Second}
	assert.NoError(t, cfg.Validate())

	cfg.PriceRefreshInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = &Config{APIToken: "t", PriceRefreshInterval: time.Second}
	assert.Error(t, cfg.Validate())
}
