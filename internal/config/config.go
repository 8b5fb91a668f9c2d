package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB        DatabaseConfig
	Redis     RedisConfig
	Dragonpay DragonpayConfig
	Worker    WorkerConfig
	Admin     AdminConfig
}

// AdminConfig seeds the first dashboard account. Both fields empty disables seeding.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// DragonpayConfig contains merchant credentials for the Dragonpay gateway.
type DragonpayConfig struct {
	MerchantID       string
	MerchantPassword string
	BaseURL          string
	Sandbox          bool
	RequestTimeout   time.Duration
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	StatusCheckInterval   time.Duration
	StatusCheckStaleAfter time.Duration
	StatusCheckMaxAge     time.Duration
	StatusCacheTTL        time.Duration
	FinalStatusCacheTTL   time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Dragonpay
	cfg.Dragonpay = DragonpayConfig{
		MerchantID:       getEnv("DRAGONPAY_MERCHANT_ID", ""),
		MerchantPassword: getEnv("DRAGONPAY_MERCHANT_PASSWORD", ""),
		BaseURL:          getEnv("DRAGONPAY_BASE_URL", ""),
		Sandbox:          getEnvBool("DRAGONPAY_SANDBOX", true),
	}

	var err error
	if cfg.Dragonpay.RequestTimeout, err = parsePositiveDurationEnv("DRAGONPAY_REQUEST_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid DRAGONPAY_REQUEST_TIMEOUT: %w", err)
	}

	// Bootstrap admin
	cfg.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}

	// Workers (durations)
	if cfg.Worker.StatusCheckInterval, err = parsePositiveDurationEnv("STATUS_CHECK_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid STATUS_CHECK_INTERVAL: %w", err)
	}
	if cfg.Worker.StatusCheckStaleAfter, err = parseDurationEnv("STATUS_CHECK_STALE_AFTER", "5m"); err != nil {
		return nil, fmt.Errorf("invalid STATUS_CHECK_STALE_AFTER: %w", err)
	}
	if cfg.Worker.StatusCheckMaxAge, err = parsePositiveDurationEnv("STATUS_CHECK_MAX_AGE", "72h"); err != nil {
		return nil, fmt.Errorf("invalid STATUS_CHECK_MAX_AGE: %w", err)
	}
	if cfg.Worker.StatusCacheTTL, err = parseDurationEnv("STATUS_CACHE_TTL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid STATUS_CACHE_TTL: %w", err)
	}
	if cfg.Worker.FinalStatusCacheTTL, err = parseDurationEnv("FINAL_STATUS_CACHE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid FINAL_STATUS_CACHE_TTL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	if cfg.Dragonpay.MerchantID == "" || cfg.Dragonpay.MerchantPassword == "" {
		return nil, errors.New("dragonpay configuration incomplete: ensure DRAGONPAY_MERCHANT_ID and DRAGONPAY_MERCHANT_PASSWORD are set")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

// parsePositiveDurationEnv is parseDurationEnv for values that must be > 0, such as
// ticker intervals.
func parsePositiveDurationEnv(key, def string) (time.Duration, error) {
	d, err := parseDurationEnv(key, def)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("duration must be > 0")
	}
	return d, nil
}
