// Package config loads, validates and persists the plugwatch
// configuration, and hands the running daemon immutable snapshots of
// it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the persisted daemon configuration. Treat loaded values
// as immutable: updates go through Store.Update with a fresh copy.
type Config struct {
	// PlugAddr is the smart plug's host or host:port.
	PlugAddr string `yaml:"plug_addr"`

	// PlugIndex selects the socket on multi-outlet devices, 0-based.
	PlugIndex int `yaml:"plug_index"`

	// BatteryThreshold is the charge percentage at or below which the
	// plug is forced on, 0-100.
	BatteryThreshold int `yaml:"battery_threshold"`

	// Apps are the monitored executable names. May be empty, in which
	// case the policy depends only on battery.
	Apps []string `yaml:"apps"`

	// PollIntervalSeconds is the monitor cycle period.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// AutoStart starts monitoring as soon as the daemon runs and
	// registers the daemon with the OS autostart mechanism.
	AutoStart bool `yaml:"autostart"`

	// HTTPAddr is the status/control listen address. Empty disables.
	HTTPAddr string `yaml:"http_addr"`

	// MQTT configures optional status publishing. An empty broker
	// disables it.
	MQTT MQTTConfig `yaml:"mqtt"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// MQTTConfig holds the broker settings for status publishing.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// PollInterval returns the cycle period as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Clone returns a deep copy, used to build updated snapshots.
func (c *Config) Clone() *Config {
	out := *c
	out.Apps = append([]string(nil), c.Apps...)
	return &out
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		PlugAddr:            "10.0.0.67",
		PlugIndex:           0,
		BatteryThreshold:    20,
		Apps:                []string{"chrome.exe", "notepad.exe"},
		PollIntervalSeconds: 10,
		HTTPAddr:            ":8089",
		MQTT:                MQTTConfig{ClientID: "plugwatch"},
		LogLevel:            "info",
	}
}

// Validate checks the invariants the monitor loop relies on.
func (c *Config) Validate() error {
	if c.PlugAddr == "" {
		return fmt.Errorf("plug_addr must not be empty")
	}
	if c.PlugIndex < 0 {
		return fmt.Errorf("plug_index must not be negative, got %d", c.PlugIndex)
	}
	if c.BatteryThreshold < 0 || c.BatteryThreshold > 100 {
		return fmt.Errorf("battery_threshold must be 0-100, got %d", c.BatteryThreshold)
	}
	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds must be positive, got %d", c.PollIntervalSeconds)
	}
	return nil
}

// Load reads the configuration at path. A missing file yields the
// defaults with no error. A corrupt or invalid file also yields the
// defaults, plus the error so the caller can surface a warning;
// startup must never crash on a bad config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}

	// Unmarshal over the defaults so absent keys keep their default
	// values.
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save persists cfg to path synchronously, via a temp file and rename
// so a crash mid-write never leaves a corrupt config behind.
func Save(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".plugwatch-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "plugwatch.yaml"
	}
	return filepath.Join(dir, "plugwatch", "config.yaml")
}
