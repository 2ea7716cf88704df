package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configurations
// All sensitive values are loaded from .env
type Config struct {
	// Server Configuration
	Environment string
	ServerPort  string

	// DB configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Cache configuration. Both caches are process-local; the TTLs bound how
	// stale a routing decision can be after the management layer mutates a
	// record in the store.
	DomainCacheTTL   time.Duration
	LinkCacheTTL     time.Duration
	DomainCacheSweep time.Duration
	LinkCacheSweep   time.Duration

	// Click recording
	ClickBufferSize  int // capacity of the click event channel
	ClickWorkerCount int // goroutines draining the channel

	// Application settings
	RootRedirectURL    string        // where an empty short path goes ("" = landing page)
	RateLimitPerMinute int           // rate limit per IP address
	RequestTimeout     time.Duration // overall per-request deadline
}

// LoadConfig loads configuration from environment variables
// Returns error if required environment variables are missing
func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Server defaults
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8081"),

		// Database configuration (required)
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "linkrouter"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		// Cache configuration
		DomainCacheTTL:   time.Duration(getEnvAsInt("DOMAIN_CACHE_TTL_SECONDS", 300)) * time.Second,
		LinkCacheTTL:     time.Duration(getEnvAsInt("LINK_CACHE_TTL_SECONDS", 120)) * time.Second,
		DomainCacheSweep: time.Duration(getEnvAsInt("DOMAIN_CACHE_SWEEP_SECONDS", 600)) * time.Second,
		LinkCacheSweep:   time.Duration(getEnvAsInt("LINK_CACHE_SWEEP_SECONDS", 300)) * time.Second,

		// Click recording
		ClickBufferSize:  getEnvAsInt("CLICK_BUFFER_SIZE", 1000),
		ClickWorkerCount: getEnvAsInt("CLICK_WORKER_COUNT", 4),

		// Application settings
		RootRedirectURL:    getEnv("ROOT_REDIRECT_URL", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
		RequestTimeout:     time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration is present and valid
func (c *Config) Validate() error {
	// Validate database password in production
	if c.Environment == "production" && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}

	if c.DomainCacheTTL <= 0 || c.LinkCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive, got domain=%v link=%v", c.DomainCacheTTL, c.LinkCacheTTL)
	}

	if c.DomainCacheSweep <= 0 || c.LinkCacheSweep <= 0 {
		return fmt.Errorf("cache sweep intervals must be positive, got domain=%v link=%v", c.DomainCacheSweep, c.LinkCacheSweep)
	}

	if c.ClickBufferSize <= 0 {
		return fmt.Errorf("CLICK_BUFFER_SIZE must be positive, got %d", c.ClickBufferSize)
	}

	if c.ClickWorkerCount <= 0 {
		return fmt.Errorf("CLICK_WORKER_COUNT must be positive, got %d", c.ClickWorkerCount)
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions for reading environment variables

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer or returns default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
