package config

import (
	"errors"
	"testing"
	"time"
)

// setValidFeedEnv sets the minimum environment required for LoadConfig to
// succeed. t.Setenv restores the previous values automatically.
func setValidFeedEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FEED_MIX_URL", "https://api.example.com/generation")
	t.Setenv("FEED_EMISSIONS_URL", "https://api.example.com/intensity")
	t.Setenv("FEED_PRICING_URL", "https://api.example.com/pricing")
	t.Setenv("FEED_DEMAND_URL", "https://api.example.com/demand.csv")
}

func TestLoadConfigDefaults(t *testing.T) {
	setValidFeedEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Environment != "local" {
		t.Errorf("Environment = %q, want local", cfg.Environment)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Scheduler.Period != 5*time.Minute {
		t.Errorf("Scheduler.Period = %v, want 5m", cfg.Scheduler.Period)
	}
	if cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("RateLimit.Window = %v, want 15m", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Ceiling != 100 {
		t.Errorf("RateLimit.Ceiling = %d, want 100", cfg.RateLimit.Ceiling)
	}
	if cfg.Feeds.FetchTimeout != 15*time.Second {
		t.Errorf("Feeds.FetchTimeout = %v, want 15s", cfg.Feeds.FetchTimeout)
	}
	if cfg.Build.Version == "" {
		t.Error("Build.Version should be populated from linker defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setValidFeedEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("REFRESH_PERIOD", "1m")
	t.Setenv("RATE_LIMIT_CEILING", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Environment != "prod" {
		t.Errorf("Environment = %q, want prod", cfg.Environment)
	}
	if cfg.Scheduler.Period != time.Minute {
		t.Errorf("Scheduler.Period = %v, want 1m", cfg.Scheduler.Period)
	}
	if cfg.RateLimit.Ceiling != 25 {
		t.Errorf("RateLimit.Ceiling = %d, want 25", cfg.RateLimit.Ceiling)
	}
}

func TestLoadConfigMissingFeedURL(t *testing.T) {
	t.Setenv("FEED_MIX_URL", "https://api.example.com/generation")
	t.Setenv("FEED_EMISSIONS_URL", "https://api.example.com/intensity")
	t.Setenv("FEED_PRICING_URL", "https://api.example.com/pricing")
	// FEED_DEMAND_URL deliberately unset.
	t.Setenv("FEED_DEMAND_URL", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() should fail without FEED_DEMAND_URL")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if cfgErr.Type != ErrValidation {
		t.Errorf("ConfigError.Type = %s, want %s", cfgErr.Type, ErrValidation)
	}
}

func TestLoadConfigInvalidEnvironment(t *testing.T) {
	setValidFeedEnv(t)
	t.Setenv("APP_ENV", "production-east")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() should reject APP_ENV outside the allowed set")
	}
}

func TestLoadConfigUnparsableDuration(t *testing.T) {
	setValidFeedEnv(t)
	t.Setenv("REFRESH_PERIOD", "five minutes")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("LoadConfig() should fail on unparsable duration")
	}

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if cfgErr.Type != ErrParsing {
		t.Errorf("ConfigError.Type = %s, want %s", cfgErr.Type, ErrParsing)
	}
}
