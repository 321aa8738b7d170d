// Package config loads runtime settings for the simulator from an
// optional YAML file, applying defaults to anything left unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the simulator.
type Config struct {
	// DBPath is the bbolt database file holding the persisted state.
	DBPath string
	// SuccessRate is the probability in [0,1] that a call succeeds.
	SuccessRate float64
	// MaxDelay bounds the simulated per-call latency, drawn from [0, MaxDelay).
	MaxDelay time.Duration
	// WorkloadInterval is the pause between generated operations.
	WorkloadInterval time.Duration
	// WorkloadSeed seeds the workload generator.
	WorkloadSeed uint64
	// WorkloadDuration stops the run after the given time; 0 runs until
	// interrupted.
	WorkloadDuration time.Duration
}

type fileConfig struct {
	DBPath      string   `yaml:"db_path"`
	SuccessRate *float64 `yaml:"success_rate"`
	MaxDelayMS  *int     `yaml:"max_delay_ms"`
	Workload    struct {
		IntervalMS *int    `yaml:"interval_ms"`
		Seed       *uint64 `yaml:"seed"`
		DurationS  *int    `yaml:"duration_s"`
	} `yaml:"workload"`
}

const (
	defaultDBFile      = "todosim.db"
	defaultSuccessRate = 0.9
	defaultMaxDelay    = time.Second
	defaultInterval    = 250 * time.Millisecond
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DBPath:           defaultDBFile,
		SuccessRate:      defaultSuccessRate,
		MaxDelay:         defaultMaxDelay,
		WorkloadInterval: defaultInterval,
	}
}

// Load reads the YAML file at path and merges it over the defaults.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.SuccessRate != nil {
		cfg.SuccessRate = *fc.SuccessRate
	}
	if fc.MaxDelayMS != nil {
		cfg.MaxDelay = time.Duration(*fc.MaxDelayMS) * time.Millisecond
	}
	if fc.Workload.IntervalMS != nil {
		cfg.WorkloadInterval = time.Duration(*fc.Workload.IntervalMS) * time.Millisecond
	}
	if fc.Workload.Seed != nil {
		cfg.WorkloadSeed = *fc.Workload.Seed
	}
	if fc.Workload.DurationS != nil {
		cfg.WorkloadDuration = time.Duration(*fc.Workload.DurationS) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.SuccessRate < 0 || c.SuccessRate > 1 {
		return fmt.Errorf("success_rate %v out of range [0,1]", c.SuccessRate)
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("max_delay_ms must not be negative")
	}
	if c.WorkloadInterval <= 0 {
		return fmt.Errorf("workload interval_ms must be positive")
	}
	if c.WorkloadDuration < 0 {
		return fmt.Errorf("workload duration_s must not be negative")
	}
	return nil
}
