package config

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/haowjy/complaint-mailer/drafter"
	"github.com/haowjy/complaint-mailer/llmprovider"
)

// clearEnv blanks every variable LoadConfig reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "CORS_ALLOWED_ORIGINS",
		"LLM_PROVIDER", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_TOP_P", "LLM_TIMEOUT",
		"LLM_BASE_URL", "LLM_MOCK_DELAY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Addr() != "0.0.0.0:5002" {
		t.Errorf("Addr() = %q, want 0.0.0.0:5002", cfg.Addr())
	}
	if cfg.LLMProvider != "google" {
		t.Errorf("LLMProvider = %q, want google", cfg.LLMProvider)
	}
	if cfg.LLMMaxTokens != drafter.DefaultMaxTokens {
		t.Errorf("LLMMaxTokens = %d, want %d", cfg.LLMMaxTokens, drafter.DefaultMaxTokens)
	}
	if cfg.LLMTemperature != nil {
		t.Errorf("LLMTemperature = %v, want nil", *cfg.LLMTemperature)
	}
	if cfg.LLMTopP != nil {
		t.Errorf("LLMTopP = %v, want nil", *cfg.LLMTopP)
	}
	if cfg.LLMMockDelay != 0 {
		t.Errorf("LLMMockDelay = %s, want 0 (per-model latency)", cfg.LLMMockDelay)
	}
	if cfg.LLMTimeout != 60*time.Second {
		t.Errorf("LLMTimeout = %s, want 60s", cfg.LLMTimeout)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.CORSOrigins)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "INFO" {
		t.Errorf("log settings = %s/%s", cfg.LogFormat, cfg.LogLevel)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8080")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "claude-sonnet-4-5")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("LLM_TEMPERATURE", "0.3")
	t.Setenv("LLM_TOP_P", "0.9")
	t.Setenv("LLM_MOCK_DELAY", "250ms")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("LOG_FORMAT", "TEXT")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.LLMTemperature == nil || *cfg.LLMTemperature != 0.3 {
		t.Errorf("LLMTemperature = %v, want 0.3", cfg.LLMTemperature)
	}
	if cfg.LLMTopP == nil || *cfg.LLMTopP != 0.9 {
		t.Errorf("LLMTopP = %v, want 0.9", cfg.LLMTopP)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}

	dc, err := cfg.Drafter()
	if err != nil {
		t.Fatalf("Drafter() error = %v", err)
	}
	want := drafter.Config{
		Provider:    llmprovider.ProviderAnthropic,
		APIKey:      "sk-ant",
		Model:       "claude-sonnet-4-5",
		MaxTokens:   512,
		Temperature: cfg.LLMTemperature,
		TopP:        cfg.LLMTopP,
		Timeout:     15 * time.Second,
		MockDelay:   250 * time.Millisecond,
	}
	if !reflect.DeepEqual(dc, want) {
		t.Errorf("Drafter() = %+v\nwant %+v", dc, want)
	}
}

func TestLoadConfig_GeminiKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	dc, err := cfg.Drafter()
	if err != nil {
		t.Fatal(err)
	}
	if dc.APIKey != "gem" {
		t.Errorf("APIKey = %q, want gem", dc.APIKey)
	}

	t.Setenv("GOOGLE_API_KEY", "goog")
	cfg, _ = LoadConfig()
	if cfg.GoogleAPIKey != "goog" {
		t.Errorf("GOOGLE_API_KEY should win, got %q", cfg.GoogleAPIKey)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "http"},
		{"LLM_MAX_TOKENS", "0"},
		{"LLM_TIMEOUT", "-1s"},
		{"LOG_FORMAT", "xml"},
		{"CORS_ALLOWED_ORIGINS", " , "},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_Drafter_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unknown provider must not fail startup: %v", err)
	}

	_, err = cfg.Drafter()
	var cfgErr *drafter.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *drafter.ConfigurationError, got %v", err)
	}
	if !errors.Is(err, llmprovider.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider in chain, got %v", err)
	}
}
