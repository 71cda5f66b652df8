// Package config loads the service configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables
//  2. An optional .env file in the working directory
//  3. Hard-coded defaults
//
// The configuration is read once at startup and never changes afterwards.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/haowjy/complaint-mailer/drafter"
	"github.com/haowjy/complaint-mailer/llmprovider"
)

// Config holds all application configuration.
type Config struct {
	// HTTP server
	Host            string
	Port            string
	RequestTimeout  time.Duration // chi Timeout middleware
	ShutdownTimeout time.Duration // grace period on SIGINT/SIGTERM
	CORSOrigins     []string

	// Language model
	LLMProvider    string
	LLMModel       string // empty = catalogue default
	LLMMaxTokens   int
	LLMTemperature *float64
	LLMTopP        *float64
	LLMTimeout     time.Duration
	LLMBaseURL     string
	LLMMockDelay   time.Duration // lorem provider only, zero = per-model latency

	// Credentials. Missing keys are not configuration errors: the draft
	// endpoint reports "not configured" instead.
	GoogleAPIKey     string
	AnthropicAPIKey  string
	OpenRouterAPIKey string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables with defaults.
func LoadConfig() (*Config, error) {
	// Optional: a missing .env file is fine
	_ = godotenv.Load()

	cfg := &Config{
		Host:            getEnvOrDefault("HOST", "0.0.0.0"),
		Port:            getEnvOrDefault("PORT", "5002"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 90*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		LLMProvider:    getEnvOrDefault("LLM_PROVIDER", llmprovider.ProviderGoogle.String()),
		LLMModel:       os.Getenv("LLM_MODEL"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", drafter.DefaultMaxTokens),
		LLMTemperature: getEnvFloatPtr("LLM_TEMPERATURE"),
		LLMTopP:        getEnvFloatPtr("LLM_TOP_P"),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		LLMBaseURL:     os.Getenv("LLM_BASE_URL"),
		LLMMockDelay:   getEnvDuration("LLM_MOCK_DELAY", 0),

		GoogleAPIKey:     firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		LogFormat: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks server-level settings. Model settings are checked when
// the generation client is built so that a bad model setup degrades the
// draft endpoint instead of preventing startup.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive, got %s", c.LLMTimeout)
	}
	if c.LLMMaxTokens < 1 {
		return fmt.Errorf("LLM_MAX_TOKENS must be at least 1, got %d", c.LLMMaxTokens)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Drafter returns the generation client settings for the configured provider.
// An unknown provider is reported as a *drafter.ConfigurationError.
func (c *Config) Drafter() (drafter.Config, error) {
	id, err := llmprovider.ParseProviderID(c.LLMProvider)
	if err != nil {
		return drafter.Config{}, &drafter.ConfigurationError{
			Provider: llmprovider.ProviderID(c.LLMProvider),
			Reason:   "LLM_PROVIDER is not recognised",
			Err:      err,
		}
	}

	return drafter.Config{
		Provider:    id,
		APIKey:      c.apiKeyFor(id),
		Model:       c.LLMModel,
		MaxTokens:   c.LLMMaxTokens,
		Temperature: c.LLMTemperature,
		TopP:        c.LLMTopP,
		Timeout:     c.LLMTimeout,
		BaseURL:     c.LLMBaseURL,
		MockDelay:   c.LLMMockDelay,
	}, nil
}

func (c *Config) apiKeyFor(id llmprovider.ProviderID) string {
	switch id {
	case llmprovider.ProviderGoogle:
		return c.GoogleAPIKey
	case llmprovider.ProviderAnthropic:
		return c.AnthropicAPIKey
	case llmprovider.ProviderOpenRouter:
		return c.OpenRouterAPIKey
	default:
		return ""
	}
}

// Helper functions for environment variable parsing

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an integer or a default if not set/invalid
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloatPtr returns the environment variable as a float, or nil if not set/invalid
func getEnvFloatPtr(key string) *float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return &f
		}
	}
	return nil
}

// getEnvDuration returns the environment variable as a duration or a default if not set/invalid.
//
// Accepts standard Go duration strings like "5s", "10m", "1h30m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
