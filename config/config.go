// Package config loads autosplitter settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings of the autosplitter
type Config struct {
	ProcessName string `env:"MEMSPLIT_PROCESS_NAME" envDefault:"TOEM"`

	TickInterval      time.Duration `env:"MEMSPLIT_TICK_INTERVAL"        envDefault:"5ms"`
	HookRetryDelay    time.Duration `env:"MEMSPLIT_HOOK_RETRY_DELAY"     envDefault:"10s"`
	HookRetryMaxDelay time.Duration `env:"MEMSPLIT_HOOK_RETRY_MAX_DELAY" envDefault:"1m"`

	ScannerViewSize   int  `env:"MEMSPLIT_SCANNER_VIEW_SIZE"   envDefault:"262144"`
	RegionBySignature bool `env:"MEMSPLIT_REGION_BY_SIGNATURE" envDefault:"false"`

	// Empty disables the run log
	RunLogPath string `env:"MEMSPLIT_RUNLOG_PATH"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the autosplitter cannot run with
func (c Config) Validate() error {
	if c.ProcessName == "" {
		return fmt.Errorf("process name is empty")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.HookRetryDelay <= 0 {
		return fmt.Errorf("hook retry delay must be positive, got %v", c.HookRetryDelay)
	}
	if c.HookRetryMaxDelay < c.HookRetryDelay {
		return fmt.Errorf("hook retry max delay %v is below the initial delay %v", c.HookRetryMaxDelay, c.HookRetryDelay)
	}
	if c.ScannerViewSize <= 0 {
		return fmt.Errorf("scanner view size must be positive, got %d", c.ScannerViewSize)
	}
	return nil
}
