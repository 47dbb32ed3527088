package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parse(defaultColliderYAML)
	if err != nil {
		t.Fatalf("embedded defaults do not parse: %v", err)
	}
	if cfg != Default() {
		t.Errorf("embedded defaults = %+v\nhardcoded = %+v", cfg, Default())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded defaults invalid: %v", err)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
physics:
  threaded: false
  interval: 5ms
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if cfg.Physics.Threaded {
		t.Error("physics.threaded should be false")
	}
	if cfg.Physics.Interval != 5*time.Millisecond {
		t.Errorf("physics.interval = %v, expected 5ms", cfg.Physics.Interval)
	}
	if cfg.Physics.IdleBackoff != Default().Physics.IdleBackoff {
		t.Errorf("physics.idle_backoff = %v, expected default", cfg.Physics.IdleBackoff)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, expected debug", cfg.LogLevel())
	}
	if cfg.Monitor != Default().Monitor {
		t.Error("monitor section should keep defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative interval", func(c *Config) { c.Physics.Interval = -time.Second }, "physics.interval"},
		{"negative backoff", func(c *Config) { c.Physics.IdleBackoff = -1 }, "physics.idle_backoff"},
		{"negative event buffer", func(c *Config) { c.Physics.EventBuffer = -1 }, "physics.event_buffer"},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"storage without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"storage disabled without path", func(c *Config) { c.Storage.Enabled = false; c.Storage.Path = "" }, ""},
		{"zero tick rate", func(c *Config) { c.Monitor.TickRate = 0 }, "tick_rate"},
		{"negative idle timeout", func(c *Config) { c.Monitor.IdleTimeout = -time.Minute }, "idle_timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, expected nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("Validate() = %v, expected error containing %q", err, tc.errMsg)
			}
		})
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	// Nothing on disk: embedded defaults
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() without files = %+v, expected defaults", cfg)
	}

	// Local configs directory
	writeFile(t, filepath.Join(work, "configs", "collider.yaml"), "monitor:\n  tick_rate: 10\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Monitor.TickRate != 10 {
		t.Errorf("tick_rate = %d, expected 10 from ./configs", cfg.Monitor.TickRate)
	}

	// User config wins over local
	writeFile(t, filepath.Join(home, ".collider", "config.yaml"), "monitor:\n  tick_rate: 20\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Monitor.TickRate != 20 {
		t.Errorf("tick_rate = %d, expected 20 from home", cfg.Monitor.TickRate)
	}

	// Custom path wins over everything
	custom := filepath.Join(work, "custom.yaml")
	writeFile(t, custom, "monitor:\n  tick_rate: 40\n")
	cfg, err = Load(custom)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Monitor.TickRate != 40 {
		t.Errorf("tick_rate = %d, expected 40 from custom path", cfg.Monitor.TickRate)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of a missing custom path should fail")
	}

	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, broken, "physics: [not, a, map\n")
	if _, err := Load(broken); err == nil {
		t.Error("Load() of unparsable YAML should fail")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "log:\n  level: shouting\n")
	if _, err := Load(invalid); err == nil {
		t.Error("Load() of an invalid config should fail")
	}
}

func TestWorkerConfig(t *testing.T) {
	cfg := Default()
	cfg.Physics.Interval = 3 * time.Millisecond
	cfg.Physics.EventBuffer = 8

	wc := cfg.WorkerConfig()
	if wc.Interval != 3*time.Millisecond || wc.IdleBackoff != time.Millisecond || wc.EventBuffer != 8 {
		t.Errorf("WorkerConfig() = %+v", wc)
	}
}

func TestTickInterval(t *testing.T) {
	cfg := Default()
	cfg.Monitor.TickRate = 50
	if got := cfg.TickInterval(); got != 20*time.Millisecond {
		t.Errorf("TickInterval() = %v, expected 20ms", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.collider/contacts.db")
	if err != nil {
		t.Fatalf("ExpandHome() failed: %v", err)
	}
	if want := filepath.Join(home, ".collider", "contacts.db"); got != want {
		t.Errorf("ExpandHome() = %q, expected %q", got, want)
	}

	if got, _ := ExpandHome("/var/lib/x.db"); got != "/var/lib/x.db" {
		t.Errorf("ExpandHome() changed an absolute path: %q", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
