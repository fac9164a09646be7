// Package config loads grace engine configuration from .grace/grace.yaml
// with environment variable overrides. Missing files fall back to defaults;
// a broken file is an error so a typo never silently reverts the dashboard
// to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all grace configuration.
type Config struct {
	// Backend connection
	Backend BackendConfig `yaml:"backend"`

	// World-context hub (polling sync engine)
	Hub HubConfig `yaml:"hub"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig configures the Grace platform API connection.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	UserID  string `yaml:"user_id"`
	Timeout string `yaml:"timeout"`
}

// HubConfig configures the world-context synchronization engine.
type HubConfig struct {
	// PollInterval between snapshot fetches, e.g. "3s".
	PollInterval string `yaml:"poll_interval"`

	// MaxNewPerKind bounds how many entities per kind one reconciliation
	// may surface (cold-start flood guard).
	MaxNewPerKind int `yaml:"max_new_per_kind"`

	// AutoOpenWorkspaces disables the one-shot panel auto-open when false.
	AutoOpenWorkspaces bool `yaml:"auto_open_workspaces"`
}

// LoggingConfig configures the categorized debug logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			UserID:  "operator",
			Timeout: "10s",
		},
		Hub: HubConfig{
			PollInterval:       "3s",
			MaxNewPerKind:      3,
			AutoOpenWorkspaces: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".grace", "grace.yaml")
}

// Load loads configuration from a YAML file.
// A missing file returns defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("GRACE_BACKEND_URL"); url != "" {
		c.Backend.BaseURL = url
	}
	if user := os.Getenv("GRACE_USER_ID"); user != "" {
		c.Backend.UserID = user
	}
	if interval := os.Getenv("GRACE_POLL_INTERVAL"); interval != "" {
		c.Hub.PollInterval = interval
	}
	if os.Getenv("GRACE_DEBUG") == "1" {
		c.Logging.DebugMode = true
	}
}

// GetPollInterval returns the hub poll interval as a duration.
func (c *Config) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Hub.PollInterval)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// GetBackendTimeout returns the backend HTTP timeout as a duration.
func (c *Config) GetBackendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetMaxNewPerKind returns the reconciliation prefix bound, defaulting when unset.
func (c *Config) GetMaxNewPerKind() int {
	if c.Hub.MaxNewPerKind <= 0 {
		return 3
	}
	return c.Hub.MaxNewPerKind
}
