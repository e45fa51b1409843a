package config

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with environment variables
// 3. Override with command line flags (handled by cobra)
func (l *Loader) Load() (*Config, error) {
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *Overrides) (*Config, error) {
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if overrides != nil {
		l.applyOverrides(l.config, overrides)
	}
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// Overrides holds command line flag overrides
type Overrides struct {
	LookbackDays *int
	CutoffDays   *int
	CSVPath      *string
	MaxAttempts  *int
	Verbose      *bool
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *Overrides) {
	if overrides.LookbackDays != nil {
		config.Sync.LookbackDays = *overrides.LookbackDays
	}
	if overrides.CutoffDays != nil {
		config.Sync.CutoffDays = *overrides.CutoffDays
	}
	if overrides.CSVPath != nil {
		config.Sync.CSVPath = *overrides.CSVPath
	}
	if overrides.MaxAttempts != nil {
		config.Retry.MaxAttempts = *overrides.MaxAttempts
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}
