// collider watches scenes of moving bodies and reports which of them touch.
//
// Usage:
//
//	collider bodies <scene>          - List the bodies of a scene file
//	collider shapes                  - List the collision shapes scene files can use
//	collider check <scene> <a> <b>   - Test two bodies synchronously
//	collider point <x> <y> <ox> <oy> <w> <h> - Test a point against a rectangle
//	collider run <scene>             - Simulate headless and log contacts
//	collider watch <scene>           - Animate a scene in the terminal
//	collider serve <scene>           - Serve the monitor over SSH
//	collider history [a b]           - Show recorded contacts
//
// Global flags:
//
//	--config <path>     - Config file (default: search ~/.collider, ./configs)
//	--log-level <level> - debug, info, warn, error
//	--db <path>         - Contact history database
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/collider/internal/collision"
	"github.com/vovakirdan/collider/internal/config"
	"github.com/vovakirdan/collider/internal/physics"
	"github.com/vovakirdan/collider/internal/scene"
	"github.com/vovakirdan/collider/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagDBPath   string

	// Resolved before any subcommand runs
	cfg    config.Config
	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "collider",
	Short: "Collider - background collision detection for scenes of named bodies",
	Long: `Collider loads scenes of named bodies, moves them, and keeps an
up-to-date set of the pairs that touch, computed by a background worker.

Available commands:
  bodies   - List the bodies of a scene
  shapes   - List available collision shapes
  check    - Test whether two bodies collide
  point    - Test a point against a rectangle
  run      - Simulate a scene headless and log contacts
  watch    - Animate a scene in the terminal
  serve    - Serve the monitor over SSH
  history  - Show recorded contacts

Examples:
  collider bodies configs/scenes/crossing.yaml
  collider check configs/scenes/crossing.yaml left right
  collider run configs/scenes/crossing.yaml --frames 600
  collider watch configs/scenes/crossing.yaml
  collider history left right`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to contact history database")

	rootCmd.AddCommand(bodiesCmd)
	rootCmd.AddCommand(shapesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pointCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig resolves the configuration and applies flag overrides.
func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	if flagLogLevel != "" {
		loaded.Log.Level = flagLogLevel
	}
	if flagDBPath != "" {
		loaded.Storage.Path = flagDBPath
		loaded.Storage.Enabled = true
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = newLogger(cfg.Log.Prefix)
	return nil
}

// newLogger creates a stderr logger with the configured level.
func newLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: cfg.Log.Timestamps,
		Prefix:          prefix,
		Level:           cfg.LogLevel(),
	})
}

// loadScene reads a scene file or exits.
func loadScene(path string) *scene.Scene {
	sc, err := scene.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	}
	return sc
}

// sceneName is the name runs are recorded under.
func sceneName(path string) string {
	return filepath.Base(path)
}

// physicsOptions builds physics options from the config.
func physicsOptions(rec collision.Recorder) physics.Options {
	return physics.Options{
		Worker:   cfg.WorkerConfig(),
		Logger:   newLogger("worker"),
		Recorder: rec,
	}
}

// openStore opens the contact history database, or returns nil with a
// warning when storage is disabled or unavailable.
func openStore() *storage.Store {
	if !cfg.Storage.Enabled {
		return nil
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		logger.Warn("could not open contact database", "path", cfg.Storage.Path, "error", err)
		return nil
	}
	return store
}
