package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/collider/internal/collision"
	"github.com/vovakirdan/collider/internal/physics"
	"github.com/vovakirdan/collider/internal/platform/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <scene>",
	Short: "Animate a scene in the terminal",
	Long: `Opens a live top-down view of a scene. Bodies move by their velocity
and turn red while they touch another body.

Controls:
  P/Space    - Pause
  N/Right    - Step one frame while paused
  +/-        - Faster/slower
  R          - Reverse all velocities
  ?          - Toggle help
  Q/Ctrl+C   - Quit

Examples:
  collider watch configs/scenes/crossing.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func runWatch(_ *cobra.Command, args []string) {
	sc := loadScene(args[0])

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	var rec collision.Recorder
	if store := openStore(); store != nil {
		defer store.Close()
		if _, err := store.BeginRun(sceneName(args[0]), cfg.Physics.Threaded); err == nil {
			rec = store
		}
	}

	// The TUI owns the terminal, so the worker stays quiet unless it fails.
	opts := physicsOptions(rec)
	opts.Logger.SetOutput(os.Stderr)
	opts.Logger.SetLevel(max(cfg.LogLevel(), log.ErrorLevel))

	phys := physics.New(opts)
	if err := phys.Init(sc, cfg.Physics.Threaded); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer phys.Shutdown()

	mcfg := tui.MonitorConfig{
		Title:        "collider - " + sceneName(args[0]),
		TickInterval: cfg.TickInterval(),
		Width:        width,
		Height:       height,
	}
	if err := tui.Run(tui.NewMonitorModel(sc, phys, mcfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
