package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-fire/midi"

	"github.com/pelletier/go-toml/v2"
)

// DiscoveryConfig controls how Fire ports are found
type DiscoveryConfig struct {
	PortPrefix     string `toml:"port_prefix"`
	PollIntervalMs int    `toml:"poll_interval_ms"`
	ScanTimeoutMs  int    `toml:"scan_timeout_ms"`
}

// QueueConfig sizes each controller's event queue
type QueueConfig struct {
	Capacity int    `toml:"capacity"`
	Overflow string `toml:"overflow"` // "drop" or "close"
}

type LogConfig struct {
	Debug bool   `toml:"debug"`
	Path  string `toml:"path,omitempty"`
}

type MetricsConfig struct {
	Addr string `toml:"addr,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `toml:"palette,omitempty"` // GPL file, empty for built-in
}

// Config is the main configuration structure
type Config struct {
	Discovery DiscoveryConfig `toml:"discovery"`
	Queue     QueueConfig     `toml:"queue"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`
	UI        UIConfig        `toml:"ui"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			PortPrefix:     midi.DefaultPortPrefix,
			PollIntervalMs: 1000,
			ScanTimeoutMs:  3000,
		},
		Queue: QueueConfig{
			Capacity: midi.DefaultQueueSize,
			Overflow: midi.OverflowDrop.String(),
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-fire"), nil
}

// ConfigPath returns the full path to config.toml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that can't be fixed up with a default
func (c *Config) Validate() error {
	var errs []error
	if c.Discovery.PortPrefix == "" {
		errs = append(errs, errors.New("discovery.port_prefix is empty"))
	}
	if c.Discovery.PollIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("discovery.poll_interval_ms must not be negative, got %d", c.Discovery.PollIntervalMs))
	}
	if c.Discovery.ScanTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("discovery.scan_timeout_ms must not be negative, got %d", c.Discovery.ScanTimeoutMs))
	}
	if c.Queue.Capacity < 1 {
		errs = append(errs, fmt.Errorf("queue.capacity must be at least 1, got %d", c.Queue.Capacity))
	}
	if _, err := midi.ParseOverflowPolicy(c.Queue.Overflow); err != nil {
		errs = append(errs, fmt.Errorf("queue.overflow: %w", err))
	}
	return errors.Join(errs...)
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SessionOptions builds per-controller options. Metrics and the overflow
// callback are left for the caller.
func (c *Config) SessionOptions() midi.Options {
	policy, _ := midi.ParseOverflowPolicy(c.Queue.Overflow)
	return midi.Options{
		QueueSize: c.Queue.Capacity,
		Overflow:  policy,
	}
}

// ManagerOptions builds device manager options
func (c *Config) ManagerOptions() midi.ManagerOptions {
	return midi.ManagerOptions{
		Prefix:       c.Discovery.PortPrefix,
		PollInterval: time.Duration(c.Discovery.PollIntervalMs) * time.Millisecond,
		ScanTimeout:  time.Duration(c.Discovery.ScanTimeoutMs) * time.Millisecond,
		Session:      c.SessionOptions(),
	}
}
