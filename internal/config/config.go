// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Storage backend: "postgres" or "memory"
	StorageDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible) change notifications
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	NotifyChannel  string
	NotifyEnabled  bool

	// Bearer token that grants the admin capability
	AdminToken string

	// Per-client limit on mutating requests; 0 disables it
	WriteRateLimit  int
	WriteRateWindow time.Duration

	// Key clients on X-Forwarded-For/X-Real-IP; only behind a trusted proxy
	TrustProxyHeaders bool

	// Content rules
	PageSizeDefault    int
	PageSizeMax        int
	SlugMaxAttempts    int
	CategorySyncPolicy string // "lenient" or "strict"
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error for malformed values
// or if critical values are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StorageDriver: strings.ToLower(envOrDefault("STORAGE_DRIVER", DriverPostgres)),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "inkwell"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "inkwell"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		NotifyChannel:  envOrDefault("NOTIFY_CHANNEL", "inkwell:content"),

		AdminToken: os.Getenv("ADMIN_TOKEN"),

		CategorySyncPolicy: strings.ToLower(envOrDefault("CATEGORY_SYNC_POLICY", "lenient")),
	}

	var err error
	if cfg.NotifyEnabled, err = envBool("NOTIFY_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.PageSizeDefault, err = envInt("PAGE_SIZE_DEFAULT", 12); err != nil {
		return nil, err
	}
	if cfg.PageSizeMax, err = envInt("PAGE_SIZE_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.SlugMaxAttempts, err = envInt("SLUG_MAX_ATTEMPTS", 10_000); err != nil {
		return nil, err
	}
	if cfg.WriteRateLimit, err = envInt("WRITE_RATE_LIMIT", 120); err != nil {
		return nil, err
	}
	if cfg.WriteRateWindow, err = envDuration("WRITE_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.TrustProxyHeaders, err = envBool("TRUST_PROXY_HEADERS", false); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StorageDriver)
	}
	switch cfg.CategorySyncPolicy {
	case "lenient", "strict":
	default:
		return nil, fmt.Errorf("CATEGORY_SYNC_POLICY must be lenient or strict, got %q", cfg.CategorySyncPolicy)
	}
	if cfg.PageSizeMax < 1 {
		return nil, fmt.Errorf("PAGE_SIZE_MAX must be at least 1")
	}
	if cfg.PageSizeDefault < 1 || cfg.PageSizeDefault > cfg.PageSizeMax {
		return nil, fmt.Errorf("PAGE_SIZE_DEFAULT must be between 1 and PAGE_SIZE_MAX (%d)", cfg.PageSizeMax)
	}
	if cfg.SlugMaxAttempts < 1 {
		return nil, fmt.Errorf("SLUG_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.WriteRateLimit < 0 {
		return nil, fmt.Errorf("WRITE_RATE_LIMIT must not be negative")
	}
	if cfg.WriteRateWindow <= 0 {
		return nil, fmt.Errorf("WRITE_RATE_WINDOW must be positive")
	}

	if cfg.Env == "production" {
		if cfg.StorageDriver == DriverPostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminToken == "" {
			return nil, fmt.Errorf("ADMIN_TOKEN must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envInt reads an integer environment variable.
func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// envBool reads a boolean environment variable.
func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

// envDuration reads a time.ParseDuration value such as "30s" or "1m".
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}
