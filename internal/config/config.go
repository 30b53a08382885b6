// Package config defines the GridPulse configuration model and its loading
// lifecycle. Configuration comes from the process environment (optionally
// seeded by a .env file), is populated via envconfig struct tags, and is
// validated with go-playground/validator before the service starts.
package config

import "time"

// Config is the root configuration object for the GridPulse service.
// Sub-structs group settings by concern; envconfig tags name the exact
// environment variables read.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"gridpulse"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server    ServerConfig
	Feeds     FeedsConfig
	Scheduler SchedulerConfig
	RateLimit RateLimitConfig

	// Build Metadata (Injected via ldflags, not Env)
	Build BuildInfo
}

// ServerConfig holds HTTP server settings for the inbound proxy surface.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// FeedsConfig holds the upstream feed endpoints and the per-call fetch
// timeout. Each Source Client owns one URL; timeouts are independent per
// fetch so one unresponsive upstream cannot stall a whole cycle.
type FeedsConfig struct {
	MixURL       string `envconfig:"FEED_MIX_URL" validate:"required,url"`
	EmissionsURL string `envconfig:"FEED_EMISSIONS_URL" validate:"required,url"`
	PricingURL   string `envconfig:"FEED_PRICING_URL" validate:"required,url"`
	DemandURL    string `envconfig:"FEED_DEMAND_URL" validate:"required,url"`

	FetchTimeout time.Duration `envconfig:"FEED_FETCH_TIMEOUT" default:"15s"`
	UserAgent    string        `envconfig:"FEED_USER_AGENT" default:"GridPulse/1.0"`
}

// SchedulerConfig holds the refresh cadence. Cycles align to wall-clock
// multiples of Period, not to process start time.
type SchedulerConfig struct {
	Period time.Duration `envconfig:"REFRESH_PERIOD" default:"5m" validate:"required,min=1s"`
}

// RateLimitConfig holds the fixed-window request budget applied to the
// inbound per-feed proxy endpoints.
type RateLimitConfig struct {
	Window  time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m" validate:"required,min=1s"`
	Ceiling int           `envconfig:"RATE_LIMIT_CEILING" default:"100" validate:"required,min=1"`
}

// BuildInfo carries version metadata injected at link time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingEnv indicates a required environment variable was not found.
	ErrMissingEnv ConfigErrorType = "MISSING_ENV"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
