package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Revision.Required {
		t.Error("expected revisions to be required by default")
	}
	if cfg.Revision.AutoRetry {
		t.Error("expected auto retry to be off by default")
	}
	if cfg.Atlas.MaxTextureSize != 1024 {
		t.Errorf("expected max texture size 1024, got %d", cfg.Atlas.MaxTextureSize)
	}
	if cfg.Atlas.ResolutionStep != 16 {
		t.Errorf("expected resolution step 16, got %d", cfg.Atlas.ResolutionStep)
	}
	if cfg.Recovery.AutoMaxRetries != 1 {
		t.Errorf("expected 1 recovery round, got %d", cfg.Recovery.AutoMaxRetries)
	}
	if cfg.Guard.MinOpaqueBefore != 256 || cfg.Guard.Floor != 64 || cfg.Guard.Ratio != 0.05 {
		t.Errorf("unexpected guard defaults: %+v", cfg.Guard)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "texture-mcp.yaml")

	yamlContent := `
revision:
  required: false
  auto_retry: true

atlas:
  max_texture_size: 256
  padding: 2
  density: 8

recovery:
  auto_max_retries: 2

logging:
  level: "debug"
  log_file: "texture.log"

project:
  path: "model.yaml"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Revision.Required || !cfg.Revision.AutoRetry {
		t.Errorf("revision: %+v", cfg.Revision)
	}
	if cfg.Atlas.MaxTextureSize != 256 || cfg.Atlas.Padding != 2 || cfg.Atlas.Density != 8 {
		t.Errorf("atlas: %+v", cfg.Atlas)
	}
	if cfg.Atlas.ResolutionStep != 16 {
		t.Errorf("unset field should keep its default, got %d", cfg.Atlas.ResolutionStep)
	}
	if cfg.Recovery.AutoMaxRetries != 2 {
		t.Errorf("expected 2 recovery rounds, got %d", cfg.Recovery.AutoMaxRetries)
	}
	if cfg.Logging.LogFile != "texture.log" {
		t.Errorf("expected log file texture.log, got %s", cfg.Logging.LogFile)
	}
	if cfg.Project.Path != "model.yaml" {
		t.Errorf("expected project model.yaml, got %s", cfg.Project.Path)
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("atlas: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadFromFile(Default(), path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max size", func(c *Config) { c.Atlas.MaxTextureSize = 0 }},
		{"negative padding", func(c *Config) { c.Atlas.Padding = -1 }},
		{"negative density", func(c *Config) { c.Atlas.Density = -2 }},
		{"zero step", func(c *Config) { c.Atlas.ResolutionStep = 0 }},
		{"negative retries", func(c *Config) { c.Recovery.AutoMaxRetries = -1 }},
		{"zero floor", func(c *Config) { c.Guard.Floor = 0 }},
		{"ratio of one", func(c *Config) { c.Guard.Ratio = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoad_EnvOverridesLogLevel(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn, got %s", cfg.Logging.Level)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Atlas.Padding = 3
	cfg.Revision.AutoRetry = true
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Atlas.Padding != 3 || !loaded.Revision.AutoRetry {
		t.Errorf("saved values not loaded back: %+v %+v", loaded.Atlas, loaded.Revision)
	}
}
