package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/collider.yaml
var defaultColliderYAML []byte

// Default returns the hardcoded configuration, used when no file and no
// embedded default can be read.
func Default() Config {
	return Config{
		Physics: PhysicsConfig{
			Threaded:    true,
			Interval:    0,
			IdleBackoff: time.Millisecond,
			EventBuffer: 64,
		},
		Log: LogConfig{
			Level:      "info",
			Prefix:     "collider",
			Timestamps: true,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    "~/.collider/contacts.db",
		},
		Monitor: MonitorConfig{
			TickRate:    30,
			SSHAddress:  "0.0.0.0:23234",
			HostKey:     ".ssh/collider_host_ed25519",
			IdleTimeout: 10 * time.Minute,
		},
	}
}
