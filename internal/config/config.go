package config

import (
	"os"
	"strconv"
	"time"

	"tracksync/internal/validation"
)

// Config holds all configuration options for the reconciliation job
type Config struct {
	Tracker     TrackerConfig
	Timer       TimerConfig
	Sync        SyncConfig
	Retry       RetryConfig
	Application ApplicationConfig
}

// TrackerConfig holds the issue tracker API configuration
type TrackerConfig struct {
	BaseURL  string `env:"TS_TRACKER_URL" validate:"required,url"`
	APIKey   string `env:"TS_TRACKER_API_KEY" validate:"required"`
	PageSize int    `env:"TS_TRACKER_PAGE_SIZE" validate:"min=1,max=1000"`
}

// TimerConfig holds the time tracking API configuration
type TimerConfig struct {
	BaseURL       string `env:"TS_TIMER_URL" validate:"required,url"`
	APIKey        string `env:"TS_TIMER_API_KEY" validate:"required"`
	WorkspaceName string `env:"TS_TIMER_WORKSPACE" validate:"required"`
	UserEmail     string `env:"TS_TIMER_USER_EMAIL" validate:"required,email"`
}

// SyncConfig holds the reconciliation window configuration
type SyncConfig struct {
	LookbackDays int    `env:"TS_SYNC_LOOKBACK_DAYS" validate:"min=1"`
	CutoffDays   int    `env:"TS_SYNC_CUTOFF_DAYS" validate:"min=1"`
	CSVPath      string `env:"TS_SYNC_CSV_PATH"`
}

// RetryConfig holds retry behaviour for transient request failures
type RetryConfig struct {
	MaxAttempts int           `env:"TS_RETRY_MAX_ATTEMPTS" validate:"min=1"`
	Delay       time.Duration `env:"TS_RETRY_DELAY"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	HTTPTimeout time.Duration `env:"TS_HTTP_TIMEOUT"`
	Verbose     bool          `env:"TS_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Tracker: TrackerConfig{
			PageSize: 100,
		},
		Sync: SyncConfig{
			LookbackDays: 7,
			CutoffDays:   30,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			Delay:       5 * time.Second,
		},
		Application: ApplicationConfig{
			HTTPTimeout: 30 * time.Second,
			Verbose:     false,
		},
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Tracker configuration
	if url := os.Getenv("TS_TRACKER_URL"); url != "" {
		c.Tracker.BaseURL = url
	}
	if key := os.Getenv("TS_TRACKER_API_KEY"); key != "" {
		c.Tracker.APIKey = key
	}
	if size := os.Getenv("TS_TRACKER_PAGE_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			c.Tracker.PageSize = n
		}
	}

	// Timer configuration
	if url := os.Getenv("TS_TIMER_URL"); url != "" {
		c.Timer.BaseURL = url
	}
	if key := os.Getenv("TS_TIMER_API_KEY"); key != "" {
		c.Timer.APIKey = key
	}
	if workspace := os.Getenv("TS_TIMER_WORKSPACE"); workspace != "" {
		c.Timer.WorkspaceName = workspace
	}
	if email := os.Getenv("TS_TIMER_USER_EMAIL"); email != "" {
		c.Timer.UserEmail = email
	}

	// Sync configuration
	if days := os.Getenv("TS_SYNC_LOOKBACK_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			c.Sync.LookbackDays = n
		}
	}
	if days := os.Getenv("TS_SYNC_CUTOFF_DAYS"); days != "" {
		if n, err := strconv.Atoi(days); err == nil {
			c.Sync.CutoffDays = n
		}
	}
	if path := os.Getenv("TS_SYNC_CSV_PATH"); path != "" {
		c.Sync.CSVPath = path
	}

	// Retry configuration
	if attempts := os.Getenv("TS_RETRY_MAX_ATTEMPTS"); attempts != "" {
		if n, err := strconv.Atoi(attempts); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
	if delay := os.Getenv("TS_RETRY_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			c.Retry.Delay = d
		}
	}

	// Application configuration
	if timeout := os.Getenv("TS_HTTP_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			c.Application.HTTPTimeout = d
		}
	}
	if verbose := os.Getenv("TS_VERBOSE"); verbose != "" {
		if b, err := strconv.ParseBool(verbose); err == nil {
			c.Application.Verbose = b
		}
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Structural validation through the shared validator
	if err := validation.New().Struct(c); err != nil {
		return &ConfigError{Field: "config", Message: err.Error()}
	}

	// Cross-field checks the tag validator cannot express
	if c.Retry.Delay < 0 {
		return &ConfigError{Field: "retry.delay", Message: "retry delay cannot be negative"}
	}
	if c.Application.HTTPTimeout <= 0 {
		return &ConfigError{Field: "application.http_timeout", Message: "HTTP timeout must be positive"}
	}
	if c.Sync.LookbackDays > c.Sync.CutoffDays {
		return &ConfigError{Field: "sync.lookback_days", Message: "lookback window cannot exceed the issue cutoff window"}
	}

	return nil
}

// CutoffDate returns the issue-pull cutoff relative to now
func (c *Config) CutoffDate(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.Sync.CutoffDays)
}

// LookbackStart returns the start of the time-entry lookback window
func (c *Config) LookbackStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.Sync.LookbackDays)
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
