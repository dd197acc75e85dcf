// Package config loads the sync engine's configuration. Environment
// variables are the primary source; an optional YAML overlay file
// (CONFIG_FILE) can override them, and in development that file is
// watched for live reload.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RetryConfig shapes the bounded-backoff policy applied to remote-first
// saves. Delays are configured in milliseconds.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
}

// CacheConfig shapes the local mirror. An empty StateDir selects the
// in-memory backend; otherwise records live as files underneath it.
type CacheConfig struct {
	StateDir   string
	ByteBudget int64
	KeepCount  int
}

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress  string
	Environment    string
	RequestTimeout time.Duration

	// Remote store configuration
	SupabaseURL string
	SupabaseKey string

	// Local cache configuration
	Cache CacheConfig

	// Reconciliation configuration
	Retry RetryConfig

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool

	// Tracing
	OTLPEndpoint string

	// CORS
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables, then lays
// the optional CONFIG_FILE overlay on top.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT_MS", 30*time.Second),

		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_ANON_KEY", ""),

		Cache: CacheConfig{
			StateDir:   getEnv("CACHE_STATE_DIR", ""),
			ByteBudget: int64(getEnvInt("CACHE_BYTE_BUDGET", 5*1024*1024)),
			KeepCount:  getEnvInt("CACHE_KEEP_COUNT", 50),
		},

		Retry: RetryConfig{
			MaxAttempts: getEnvInt("SYNC_RETRY_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvDuration("SYNC_RETRY_BASE_DELAY_MS", 2*time.Second),
			MaxDelay:    getEnvDuration("SYNC_RETRY_MAX_DELAY_MS", 30*time.Second),
			Factor:      getEnvFloat("SYNC_RETRY_FACTOR", 2.0),
		},

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
		OTLPEndpoint:  getEnv("OTLP_ENDPOINT", "localhost:4317"),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := applyOverlay(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if all required configuration is present.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.SupabaseURL == "" {
			return fmt.Errorf("SUPABASE_URL is required in production")
		}
		if c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_ANON_KEY is required in production")
		}
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	if c.Retry.Factor < 1 {
		return fmt.Errorf("retry factor must be at least 1")
	}
	if c.Cache.KeepCount < 1 {
		return fmt.Errorf("cache keep count must be at least 1")
	}
	if c.Cache.ByteBudget < 1 {
		return fmt.Errorf("cache byte budget must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OverlayPath returns the overlay file in effect, if any.
func (c *Config) OverlayPath() string {
	return getEnv("CONFIG_FILE", "")
}

// fileConfig mirrors the YAML overlay. Every field is a pointer so only
// the keys the file actually sets override the environment; durations
// are milliseconds, matching the environment variables.
type fileConfig struct {
	ServerAddress    *string  `yaml:"serverAddress"`
	Environment      *string  `yaml:"environment"`
	RequestTimeoutMS *int     `yaml:"requestTimeoutMs"`
	SupabaseURL      *string  `yaml:"supabaseUrl"`
	SupabaseKey      *string  `yaml:"supabaseKey"`
	LogLevel         *string  `yaml:"logLevel"`
	EnableMetrics    *bool    `yaml:"enableMetrics"`
	EnableTracing    *bool    `yaml:"enableTracing"`
	EnableCORS       *bool    `yaml:"enableCors"`
	OTLPEndpoint     *string  `yaml:"otlpEndpoint"`
	AllowedOrigins   []string `yaml:"allowedOrigins"`

	Cache struct {
		StateDir   *string `yaml:"stateDir"`
		ByteBudget *int64  `yaml:"byteBudget"`
		KeepCount  *int    `yaml:"keepCount"`
	} `yaml:"cache"`

	Retry struct {
		MaxAttempts *int     `yaml:"maxAttempts"`
		BaseDelayMS *int     `yaml:"baseDelayMs"`
		MaxDelayMS  *int     `yaml:"maxDelayMs"`
		Factor      *float64 `yaml:"factor"`
	} `yaml:"retry"`
}

func applyOverlay(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config overlay %s: %w", path, err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config overlay %s: %w", path, err)
	}

	setString(&cfg.ServerAddress, file.ServerAddress)
	setString(&cfg.Environment, file.Environment)
	setDuration(&cfg.RequestTimeout, file.RequestTimeoutMS)
	setString(&cfg.SupabaseURL, file.SupabaseURL)
	setString(&cfg.SupabaseKey, file.SupabaseKey)
	setString(&cfg.LogLevel, file.LogLevel)
	setBool(&cfg.EnableMetrics, file.EnableMetrics)
	setBool(&cfg.EnableTracing, file.EnableTracing)
	setBool(&cfg.EnableCORS, file.EnableCORS)
	setString(&cfg.OTLPEndpoint, file.OTLPEndpoint)
	if file.AllowedOrigins != nil {
		cfg.AllowedOrigins = file.AllowedOrigins
	}

	setString(&cfg.Cache.StateDir, file.Cache.StateDir)
	if file.Cache.ByteBudget != nil {
		cfg.Cache.ByteBudget = *file.Cache.ByteBudget
	}
	setInt(&cfg.Cache.KeepCount, file.Cache.KeepCount)

	setInt(&cfg.Retry.MaxAttempts, file.Retry.MaxAttempts)
	setDuration(&cfg.Retry.BaseDelay, file.Retry.BaseDelayMS)
	setDuration(&cfg.Retry.MaxDelay, file.Retry.MaxDelayMS)
	if file.Retry.Factor != nil {
		cfg.Retry.Factor = *file.Retry.Factor
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, ms *int) {
	if ms != nil {
		*dst = time.Duration(*ms) * time.Millisecond
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvDuration reads a millisecond count.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}
