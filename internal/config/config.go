package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JWTSecret string
	// PipelineAPIKeys are all accepted on pipeline endpoints; the first is
	// the one the syncer sends. Comma-separated in PIPELINE_API_KEY.
	PipelineAPIKeys []string

	// Plaid
	PlaidClientID         string
	PlaidSecretProduction string
	PlaidSecretSandbox    string
	PlaidProductionURL    string
	PlaidSandboxURL       string
	PlaidRequestTimeout   time.Duration

	// Sync
	SyncPageSize        int
	SyncStalenessWindow time.Duration
	SyncSchedule        string
	SyncAPIURL          string
	SyncUserConcurrency int
	UpsertBatchSize     int
	UpsertConcurrency   int
	AccountCacheTTL     time.Duration

	// Reporting
	CostCategories   []string
	IncomeCategories []string
}

// DefaultCostCategories are the top-level categories counted as spending.
var DefaultCostCategories = []string{
	"Bank Fees",
	"Community",
	"Food",
	"Food and Drink",
	"Healthcare",
	"Recreation",
	"Service",
	"Shops",
	"Tax",
	"Travel",
}

// DefaultIncomeCategories are the top-level categories counted as income.
var DefaultIncomeCategories = []string{
	"Income",
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finsight"),
		DBPassword: getEnv("DB_PASSWORD", "finsight"),
		DBName:     getEnv("DB_NAME", "finsight"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Auth
		JWTSecret:       getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		PipelineAPIKeys: getList("PIPELINE_API_KEY", nil),

		// Plaid
		PlaidClientID:         getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecretProduction: getEnv("PLAID_SECRET_PRODUCTION", ""),
		PlaidSecretSandbox:    getEnv("PLAID_SECRET_SANDBOX", ""),
		PlaidProductionURL:    getEnv("PLAID_PRODUCTION_URL", "https://production.plaid.com"),
		PlaidSandboxURL:       getEnv("PLAID_SANDBOX_URL", "https://sandbox.plaid.com"),

		SyncSchedule: getEnv("SYNC_SCHEDULE", "0 */6 * * *"),
		SyncAPIURL:   getEnv("SYNC_API_URL", ""),

		CostCategories:   getList("COST_CATEGORIES", DefaultCostCategories),
		IncomeCategories: getList("INCOME_CATEGORIES", DefaultIncomeCategories),
	}

	var err error
	if config.PlaidRequestTimeout, err = parseDuration("PLAID_REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if config.SyncStalenessWindow, err = parseDuration("SYNC_STALENESS_WINDOW", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.AccountCacheTTL, err = parseDuration("ACCOUNT_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if config.SyncPageSize, err = parsePositiveInt("SYNC_PAGE_SIZE", 500); err != nil {
		return nil, err
	}
	if config.SyncUserConcurrency, err = parsePositiveInt("SYNC_USER_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if config.UpsertBatchSize, err = parsePositiveInt("UPSERT_BATCH_SIZE", 50); err != nil {
		return nil, err
	}
	if config.UpsertConcurrency, err = parsePositiveInt("UPSERT_CONCURRENCY", 5); err != nil {
		return nil, err
	}

	// Plaid caps transactions/sync pages at 500.
	if config.SyncPageSize > 500 {
		log.Printf("Warning: SYNC_PAGE_SIZE %d exceeds the Plaid maximum, using 500\n", config.SyncPageSize)
		config.SyncPageSize = 500
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the golang-migrate style postgres URL.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parsePositiveInt(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
