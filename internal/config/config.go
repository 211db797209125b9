// Package config provides configuration for the trip planner service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode values for TRIPWEAVER_MODE.
const (
	EnvMode  = "TRIPWEAVER_MODE"
	ModeMock = "MOCK"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int
	RPCPort  int

	// Database
	DatabaseURL string

	// Providers
	Mode           string
	SearchProvider string
	TavilyAPIKey   string
	SearchQPS      float64
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTimeout     time.Duration
	PlacesAPIKey   string
	PlacesBaseURL  string

	// Cache
	RedisURL string
	CacheTTL time.Duration

	// Timeouts
	BranchTimeout    time.Duration
	branchTimeoutSet bool

	// Tracing and logging
	TracingEnabled bool
	LogLevel       string

	// Optional YAML overlay with planner tuning
	TuningFile string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		RPCPort:        getEnvInt("RPC_PORT", 8081),
		DatabaseURL:    getEnv("DATABASE_URL", "file:tripweaver.db?cache=shared&mode=rwc"),
		Mode:           strings.ToUpper(getEnv(EnvMode, "")),
		SearchProvider: strings.ToLower(getEnv("SEARCH_PROVIDER", "tavily")),
		TavilyAPIKey:   getEnv("TAVILY_API_KEY", ""),
		SearchQPS:      getEnvFloat("SEARCH_QPS", 2),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_MS", 25000)) * time.Millisecond,
		PlacesAPIKey:   getEnv("GOOGLE_PLACES_API_KEY", ""),
		PlacesBaseURL:  getEnv("PLACES_BASE_URL", "https://maps.googleapis.com"),
		RedisURL:       getEnv("REDIS_URL", ""),
		CacheTTL:       getEnvDuration("CACHE_TTL", 24*time.Hour),
		BranchTimeout:  time.Duration(getEnvInt("BRANCH_TIMEOUT_MS", 30000)) * time.Millisecond,
		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		TuningFile:     getEnv("TUNING_FILE", ""),
	}
	cfg.branchTimeoutSet = os.Getenv("BRANCH_TIMEOUT_MS") != ""
	return cfg
}

// MockMode reports whether providers should be replaced with canned implementations.
func (c *Config) MockMode() bool {
	return c.Mode == ModeMock
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
