package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/collider/internal/collision"
	"github.com/vovakirdan/collider/internal/physics"
	"github.com/vovakirdan/collider/internal/scene"
	"github.com/vovakirdan/collider/internal/storage"
)

var (
	flagFrames   int
	flagFPS      int
	flagPace     bool
	flagThreaded bool
	flagNoRecord bool
)

var runCmd = &cobra.Command{
	Use:   "run <scene>",
	Short: "Simulate a scene headless and log contacts",
	Long: `Steps a scene for a number of frames, logging every contact that
begins or ends. Contacts are recorded in the history database unless
storage is disabled or --no-record is given.

In threaded mode (the default) the background worker detects contacts while
the scene moves; frames are paced in real time so it can keep up. With
--threaded=false every frame is scanned synchronously.

Examples:
  collider run configs/scenes/crossing.yaml
  collider run configs/scenes/crossing.yaml --frames 1200 --fps 120
  collider run configs/scenes/crossing.yaml --threaded=false --pace=false`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&flagFrames, "frames", 600, "Number of frames to simulate")
	runCmd.Flags().IntVar(&flagFPS, "fps", 60, "Simulated frames per second")
	runCmd.Flags().BoolVar(&flagPace, "pace", true, "Sleep between frames to run in real time")
	runCmd.Flags().BoolVar(&flagThreaded, "threaded", true, "Detect contacts on a background worker")
	runCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not record contacts in the database")
}

// logRecorder writes contact transitions to a logger.
func logRecorder(l *log.Logger) collision.Recorder {
	return collision.RecorderFunc(func(events []collision.Event) error {
		for _, e := range events {
			l.Info("contact "+string(e.Kind), "a", e.Pair.A, "b", e.Pair.B, "cycle", e.Cycle)
		}
		return nil
	})
}

func runRun(cmd *cobra.Command, args []string) {
	if flagFrames <= 0 || flagFPS <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --frames and --fps must be positive")
		os.Exit(1)
	}

	threaded := flagThreaded
	if !cmd.Flags().Changed("threaded") {
		threaded = cfg.Physics.Threaded
	}

	sc := loadScene(args[0])
	recorders := []collision.Recorder{logRecorder(logger)}

	var store *storage.Store
	if !flagNoRecord {
		if store = openStore(); store != nil {
			runID, err := store.BeginRun(sceneName(args[0]), threaded)
			if err != nil {
				logger.Warn("could not begin run", "error", err)
			} else {
				logger.Debug("recording run", "run", runID, "db", cfg.Storage.Path)
				recorders = append(recorders, store)
			}
		}
	}
	rec := collision.Recorders(recorders...)

	opts := physicsOptions(nil)
	if threaded {
		opts.Recorder = rec
	}
	phys := physics.New(opts)
	if err := phys.Init(sc, threaded); err != nil {
		closeStore(store)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("run started", "scene", args[0], "bodies", sc.Len(), "frames", flagFrames, "threaded", threaded)
	start := time.Now()

	simulate(sc, phys, rec, threaded)
	final := phys.Pairs()
	stats := phys.Stats()
	phys.Shutdown()
	// Ends the recorded run; os.Exit below would skip a deferred close
	closeStore(store)

	logger.Info("run finished",
		"frames", flagFrames,
		"took", time.Since(start).Round(time.Millisecond),
		"pairs", final.Len(),
		"cycles", stats.Worker.Cycles,
		"skipped", stats.Worker.Skipped,
		"dropped_events", stats.Worker.DroppedEvents,
	)
	if stats.Worker.Failed {
		fmt.Fprintln(os.Stderr, "Error: collision worker failed, see log")
		os.Exit(1)
	}

	for _, p := range final.Pairs() {
		fmt.Printf("%s\t%s\n", p.A, p.B)
	}
}

func closeStore(store *storage.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("could not close contact database", "error", err)
	}
}

// simulate steps the scene. Without a worker it diffs a synchronous scan
// after every frame and hands the transitions to rec itself.
func simulate(sc *scene.Scene, phys *physics.Physics, rec collision.Recorder, threaded bool) {
	frame := time.Second / time.Duration(flagFPS)
	dt := frame.Seconds()

	var prev *collision.PairSet
	if !threaded {
		prev = phys.Pairs()
		reportTransitions(rec, prev, nil, 0)
	}

	for i := 1; i <= flagFrames; i++ {
		sc.Step(dt)

		if !threaded {
			cur := phys.Pairs()
			reportTransitions(rec, cur, prev, uint64(i))
			prev = cur
		}
		if flagPace {
			time.Sleep(frame)
		}
	}
}

func reportTransitions(rec collision.Recorder, cur, prev *collision.PairSet, frame uint64) {
	began, ended := cur.Diff(prev)
	if len(began) == 0 && len(ended) == 0 {
		return
	}

	now := time.Now()
	events := make([]collision.Event, 0, len(began)+len(ended))
	for _, p := range began {
		events = append(events, collision.Event{Cycle: frame, Pair: p, Kind: collision.ContactBegin, At: now})
	}
	for _, p := range ended {
		events = append(events, collision.Event{Cycle: frame, Pair: p, Kind: collision.ContactEnd, At: now})
	}
	if err := rec.RecordEvents(events); err != nil {
		logger.Warn("recorder failed", "events", len(events), "error", err)
	}
}
