// Package config handles server configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all server settings.
type Config struct {
	Revision RevisionConfig `yaml:"revision"`
	Atlas    AtlasConfig    `yaml:"atlas"`
	Recovery RecoveryConfig `yaml:"recovery"`
	Guard    GuardConfig    `yaml:"guard"`
	Logging  LoggingConfig  `yaml:"logging"`
	Project  ProjectConfig  `yaml:"project"`
}

// RevisionConfig holds the optimistic-concurrency policy.
type RevisionConfig struct {
	Required  bool `yaml:"required"`   // Mutations must carry ifRevision
	AutoRetry bool `yaml:"auto_retry"` // Refresh once on mismatch instead of failing
}

// AtlasConfig holds atlas planning settings.
type AtlasConfig struct {
	MaxTextureSize int     `yaml:"max_texture_size"` // Resolution ceiling (both axes)
	Padding        int     `yaml:"padding"`          // Empty border around each face
	Density        float64 `yaml:"density"`          // Pixels per unit; 0 infers from the layout
	ResolutionStep int     `yaml:"resolution_step"`  // Rounding step for grown resolutions
}

// RecoveryConfig holds recovery settings.
type RecoveryConfig struct {
	AutoMaxRetries int `yaml:"auto_max_retries"`
}

// GuardConfig holds corruption guard thresholds.
type GuardConfig struct {
	MinOpaqueBefore int     `yaml:"min_opaque_before"`
	Floor           int     `yaml:"floor"`
	Ratio           float64 `yaml:"ratio"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// ProjectConfig holds the project loaded at startup.
type ProjectConfig struct {
	Path string `yaml:"path"` // Manifest path; empty starts without a project
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Revision: RevisionConfig{
			Required:  true,
			AutoRetry: false,
		},
		Atlas: AtlasConfig{
			MaxTextureSize: 1024,
			Padding:        0,
			Density:        0,
			ResolutionStep: 16,
		},
		Recovery: RecoveryConfig{
			AutoMaxRetries: 1,
		},
		Guard: GuardConfig{
			MinOpaqueBefore: 256,
			Floor:           64,
			Ratio:           0.05,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Atlas.MaxTextureSize <= 0 {
		errs = append(errs, fmt.Errorf("atlas.max_texture_size must be positive, got %d", c.Atlas.MaxTextureSize))
	}
	if c.Atlas.Padding < 0 {
		errs = append(errs, fmt.Errorf("atlas.padding must not be negative, got %d", c.Atlas.Padding))
	}
	if c.Atlas.Density < 0 {
		errs = append(errs, fmt.Errorf("atlas.density must not be negative, got %g", c.Atlas.Density))
	}
	if c.Atlas.ResolutionStep <= 0 {
		errs = append(errs, fmt.Errorf("atlas.resolution_step must be positive, got %d", c.Atlas.ResolutionStep))
	}
	if c.Recovery.AutoMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("recovery.auto_max_retries must not be negative, got %d", c.Recovery.AutoMaxRetries))
	}
	if c.Guard.MinOpaqueBefore <= 0 || c.Guard.Floor <= 0 {
		errs = append(errs, errors.New("guard.min_opaque_before and guard.floor must be positive"))
	}
	if c.Guard.Ratio <= 0 || c.Guard.Ratio >= 1 {
		errs = append(errs, fmt.Errorf("guard.ratio must be between 0 and 1, got %g", c.Guard.Ratio))
	}
	return errors.Join(errs...)
}
