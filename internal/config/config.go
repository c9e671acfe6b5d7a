package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string

	GRPCAddr   string
	HTTPAddr   string
	APIToken   string
	CronSecret string

	AlphaVantageAPIKey   string
	PriceRefreshInterval time.Duration
	QuoteCacheTTL        time.Duration

	SchedulerEnabled     bool
	PaymentRulesSchedule string
	PriceRefreshSchedule string
	DividendSyncSchedule string

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:          databaseURL(),
		GRPCAddr:             getEnv("GRPC_PORT", ":8080"),
		HTTPAddr:             getEnv("HTTP_PORT", ":8081"),
		APIToken:             getEnv("API_TOKEN", "dev-token"),
		CronSecret:           getEnv("CRON_SECRET", ""),
		AlphaVantageAPIKey:   getEnv("ALPHA_VANTAGE_API_KEY", ""),
		PriceRefreshInterval: getEnvAsDuration("PRICE_REFRESH_INTERVAL", time.Second), // free tier allows ~1 req/s
		QuoteCacheTTL:        getEnvAsDuration("QUOTE_CACHE_TTL", 15*time.Minute),
		SchedulerEnabled:     getEnvAsBool("SCHEDULER_ENABLED", true),
		PaymentRulesSchedule: getEnv("PAYMENT_RULES_SCHEDULE", "0 0 * * *"),
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "0 21 * * *"), // after US market close
		DividendSyncSchedule: getEnv("DIVIDEND_SYNC_SCHEDULE", "0 6 * * 1"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogPretty:            getEnvAsBool("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database connection string is required")
	}
	if c.APIToken == "" {
		return fmt.Errorf("API_TOKEN is required")
	}
	if c.PriceRefreshInterval <= 0 {
		return fmt.Errorf("PRICE_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// databaseURL prefers DB_CONN_STR and otherwise builds one from the individual DB_* variables
func databaseURL() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "networth"),
	)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
