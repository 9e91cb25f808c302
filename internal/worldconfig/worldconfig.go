// Package worldconfig loads the demo driver's simulation parameters: the
// initial asteroid ring, the shared platform drift velocity, the tick
// count, and which kernel variant to run.
package worldconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KernelMode selects which of kernel's update functions the driver calls
// each tick.
type KernelMode string

const (
	KernelScalar  KernelMode = "scalar"
	KernelVector  KernelMode = "vector"
	KernelSharded KernelMode = "sharded"
)

// Config is the top-level demo driver configuration.
type Config struct {
	Sim  SimConfig  `yaml:"sim"`
	Seed SeedConfig `yaml:"seed"`
	Log  LogConfig  `yaml:"log"`
}

// SimConfig controls the per-tick update loop.
type SimConfig struct {
	Ticks       int        `yaml:"ticks"`
	PlatformVel float64    `yaml:"platform_velocity"`
	Kernel      KernelMode `yaml:"kernel"`
	Workers     int        `yaml:"workers"`
}

// SeedConfig controls the initial asteroid field.
type SeedConfig struct {
	Count     int     `yaml:"count"`
	SpawnRing float64 `yaml:"spawn_ring"`
	Speed     float64 `yaml:"speed"`
}

// LogConfig controls the driver's own status logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the driver's built-in configuration, used when no config
// file is supplied.
func Default() *Config {
	return &Config{
		Sim: SimConfig{
			Ticks:       600,
			PlatformVel: 0.0,
			Kernel:      KernelScalar,
			Workers:     0,
		},
		Seed: SeedConfig{
			Count:     256,
			SpawnRing: 200.0,
			Speed:     1.5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file at path, overlaying it onto Default(). An
// empty path returns the default configuration unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values the driver cannot act
// on sensibly.
func (c *Config) Validate() error {
	if c.Sim.Ticks < 0 {
		return fmt.Errorf("sim.ticks must be >= 0, got %d", c.Sim.Ticks)
	}
	switch c.Sim.Kernel {
	case KernelScalar, KernelVector, KernelSharded:
	default:
		return fmt.Errorf("sim.kernel must be one of scalar, vector, sharded, got %q", c.Sim.Kernel)
	}
	if c.Sim.Kernel == KernelSharded && c.Sim.Workers < 0 {
		return fmt.Errorf("sim.workers must be >= 0, got %d", c.Sim.Workers)
	}
	if c.Seed.Count < 0 {
		return fmt.Errorf("seed.count must be >= 0, got %d", c.Seed.Count)
	}
	return nil
}
