package config

import (
	"os"
	"strconv"
	"time"

	"ebaysync/logger"
	apperr "ebaysync/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Row store configuration
	StoreKind string
	StoreDSN  string

	// Fetcher configuration
	FetchMode    string // "browser" or "http"
	WarmupURL    string
	FetchWait    time.Duration
	RetryWait    time.Duration
	FetchTimeout time.Duration
	MaxAttempts  int

	// Cooldown cache (optional, empty address disables it)
	MemcacheAddr string
	BlockTime    time.Duration

	// Redis publisher (optional, empty address disables it)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB := getEnvInt("REDIS_DB", 0)
	redisMaxLen := getEnvInt("REDIS_STREAM_MAX_LENGTH", 500)
	fetchWait := getEnvInt("FETCH_WAIT_SECONDS", 4)
	retryWait := getEnvInt("FETCH_RETRY_WAIT_SECONDS", 6)
	fetchTimeout := getEnvInt("FETCH_TIMEOUT_SECONDS", 60)
	maxAttempts := getEnvInt("MAX_ATTEMPTS", 3)
	blockTime := getEnvInt("BLOCK_SECONDS", 60)

	return &Config{
		StoreKind:         getEnv("STORE_KIND", "csv"),
		StoreDSN:          getEnv("STORE_DSN", "listings.csv"),
		FetchMode:         getEnv("FETCH_MODE", "browser"),
		WarmupURL:         getEnv("WARMUP_URL", "https://www.ebay.com/"),
		FetchWait:         time.Duration(fetchWait) * time.Second,
		RetryWait:         time.Duration(retryWait) * time.Second,
		FetchTimeout:      time.Duration(fetchTimeout) * time.Second,
		MaxAttempts:       maxAttempts,
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", ""),
		BlockTime:         time.Duration(blockTime) * time.Second,
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "listings"),
		RedisStreamMaxLen: redisMaxLen,
		Environment:       getEnv("EBAYSYNC_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.StoreKind {
	case "csv", "sqlite", "postgres":
	default:
		return apperr.NewConfiguration("unknown store kind: "+c.StoreKind, nil)
	}
	if c.StoreDSN == "" {
		return apperr.NewConfiguration("store DSN must not be empty", nil)
	}
	switch c.FetchMode {
	case "browser", "http":
	default:
		return apperr.NewConfiguration("unknown fetch mode: "+c.FetchMode, nil)
	}
	if c.MaxAttempts < 1 {
		return apperr.NewConfiguration("MAX_ATTEMPTS must be at least 1", nil)
	}
	if c.RetryWait < c.FetchWait {
		return apperr.NewConfiguration("retry wait must not be shorter than the first-attempt wait", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves a numeric environment variable; unset or unparseable
// values fall back to the default, with a warning for the latter
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("Invalid value %q for %s, using default %d", raw, key, defaultValue)
		return defaultValue
	}
	return value
}
