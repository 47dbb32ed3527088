// Package config provides YAML-based configuration loading for the
// collider tools.
package config

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/collider/internal/collision"
)

// Config is the full collider configuration.
type Config struct {
	Physics PhysicsConfig `yaml:"physics"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// PhysicsConfig controls the detection worker.
type PhysicsConfig struct {
	Threaded    bool          `yaml:"threaded"`
	Interval    time.Duration `yaml:"interval"`     // Pause between cycles, 0 = back to back
	IdleBackoff time.Duration `yaml:"idle_backoff"` // Wait when the scene is unchanged
	EventBuffer int           `yaml:"event_buffer"` // Queued event batches for the recorder
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level      string `yaml:"level"`
	Prefix     string `yaml:"prefix"`
	Timestamps bool   `yaml:"timestamps"`
}

// StorageConfig controls contact history persistence.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // ~ expands to the home directory
}

// MonitorConfig controls the live monitor and its SSH server.
type MonitorConfig struct {
	TickRate    int           `yaml:"tick_rate"` // Hz
	SSHAddress  string        `yaml:"ssh_address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// Validate checks the configuration for values the tools cannot run with.
func (c Config) Validate() error {
	if c.Physics.Interval < 0 {
		return fmt.Errorf("config: physics.interval must not be negative")
	}
	if c.Physics.IdleBackoff < 0 {
		return fmt.Errorf("config: physics.idle_backoff must not be negative")
	}
	if c.Physics.EventBuffer < 0 {
		return fmt.Errorf("config: physics.event_buffer must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return fmt.Errorf("config: storage.path is required when storage is enabled")
	}
	if c.Monitor.TickRate <= 0 {
		return fmt.Errorf("config: monitor.tick_rate must be positive")
	}
	if c.Monitor.IdleTimeout < 0 {
		return fmt.Errorf("config: monitor.idle_timeout must not be negative")
	}
	return nil
}

// WorkerConfig converts the physics section for collision.NewWorker.
func (c Config) WorkerConfig() collision.WorkerConfig {
	return collision.WorkerConfig{
		Interval:    c.Physics.Interval,
		IdleBackoff: c.Physics.IdleBackoff,
		EventBuffer: c.Physics.EventBuffer,
	}
}

// LogLevel returns the configured level, or info if it does not parse.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// TickInterval returns the monitor frame duration.
func (c Config) TickInterval() time.Duration {
	if c.Monitor.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Monitor.TickRate)
}
