package collision

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/collider/internal/scene"
)

// WorkerConfig holds the worker's pacing settings.
type WorkerConfig struct {
	// Interval is the pause between cycles. Zero runs cycles back to back,
	// yielding the processor in between.
	Interval time.Duration

	// IdleBackoff is how long to wait when the scene has not changed since
	// the last published cycle.
	IdleBackoff time.Duration

	// EventBuffer is the number of per-cycle event batches queued for the
	// recorder. When full, batches are dropped and counted.
	EventBuffer int
}

// DefaultWorkerConfig returns sensible defaults.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Interval:    0,
		IdleBackoff: time.Millisecond,
		EventBuffer: 64,
	}
}

// WorkerStats is a point-in-time view of worker progress.
type WorkerStats struct {
	Cycles        uint64        // Cycles published
	Skipped       uint64        // Cycles skipped because the scene was unchanged
	LastCycle     time.Duration // Duration of the most recent scan
	DroppedEvents uint64        // Events lost because the recorder fell behind
	Running       bool
	Failed        bool // A cycle panicked; detection has stopped
}

// Worker continuously recomputes the colliding pairs of a scene and
// publishes them through a Buffer.
//
// A Worker runs at most once: Start spawns its goroutine, Stop ends it and
// waits for it. The running flag is checked only between cycles, so a cycle
// in progress always completes.
type Worker struct {
	scene    *scene.Scene
	buf      *Buffer
	config   WorkerConfig
	logger   *log.Logger
	recorder Recorder // Optional, can be nil
	scanFn   func(scene.Snapshot, uint64) *PairSet
	snapFn   func() scene.Snapshot

	mu      sync.Mutex // Serializes Start and Stop
	started bool
	stopped bool
	cancel  context.CancelFunc

	online atomic.Bool
	wg     sync.WaitGroup
	events chan []Event

	cycles    atomic.Uint64
	skipped   atomic.Uint64
	lastCycle atomic.Int64
	dropped   atomic.Uint64
	failed    atomic.Bool
}

// NewWorker creates a worker that scans sc and publishes into buf.
// A nil logger discards output.
func NewWorker(sc *scene.Scene, buf *Buffer, cfg WorkerConfig, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultWorkerConfig().EventBuffer
	}
	return &Worker{
		scene:  sc,
		buf:    buf,
		config: cfg,
		logger: logger,
		scanFn: Scan,
		snapFn: sc.Snapshot,
	}
}

// SetRecorder sets the optional contact event recorder.
// Must be called before Start.
func (w *Worker) SetRecorder(r Recorder) {
	w.recorder = r
}

// Start launches the detection goroutine. Calling Start more than once has
// no effect. The worker stops when ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}
	w.started = true

	ctx, w.cancel = context.WithCancel(ctx)
	w.online.Store(true)

	if w.recorder != nil {
		w.events = make(chan []Event, w.config.EventBuffer)
		w.wg.Add(1)
		go w.drainEvents()
	}

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("worker started", "bodies", w.scene.Len())
}

// Stop clears the online flag and waits for the worker goroutine and the
// event drain to exit. After Stop returns the worker never touches the scene
// or the buffer again. Safe to call multiple times and before Start.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	// Start after Stop is a no-op.
	w.stopped = true
	if !w.started {
		return
	}

	w.online.Store(false)
	w.cancel()
	w.wg.Wait()
	w.logger.Info("worker stopped", "cycles", w.cycles.Load())
}

// Online reports whether the worker is running.
func (w *Worker) Online() bool {
	return w.online.Load()
}

// Stats returns the worker's counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Cycles:        w.cycles.Load(),
		Skipped:       w.skipped.Load(),
		LastCycle:     time.Duration(w.lastCycle.Load()),
		DroppedEvents: w.dropped.Load(),
		Running:       w.online.Load(),
		Failed:        w.failed.Load(),
	}
}

// run is the detection loop.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		w.online.Store(false)
		if w.events != nil {
			close(w.events)
		}
	}()

	prev := w.buf.Load()
	for w.online.Load() {
		if prev.Cycle > 0 && w.scene.Version() == prev.SceneVersion {
			w.skipped.Add(1)
			if !w.wait(ctx, w.config.IdleBackoff) {
				return
			}
			continue
		}

		snap := w.snapFn()

		start := time.Now()
		set, err := w.scan(snap, prev.Cycle+1)
		if err != nil {
			w.failed.Store(true)
			w.logger.Error("detection cycle failed, stopping", "cycle", prev.Cycle+1, "error", err)
			return
		}
		elapsed := time.Since(start)
		w.lastCycle.Store(int64(elapsed))

		if !w.buf.Publish(set) {
			// Another writer owns this buffer.
			w.failed.Store(true)
			w.logger.Error("buffer rejected cycle, stopping", "cycle", set.Cycle)
			return
		}
		w.cycles.Add(1)
		w.logger.Debug("cycle published",
			"cycle", set.Cycle,
			"pairs", set.Len(),
			"scene_version", set.SceneVersion,
			"took", elapsed,
		)

		w.emit(transitions(prev, set, time.Now()))
		prev = set

		if !w.wait(ctx, w.config.Interval) {
			return
		}
	}
}

// scan runs one cycle, converting a panic into an error so a broken
// predicate ends detection without taking the host process down.
func (w *Worker) scan(snap scene.Snapshot, cycle uint64) (set *PairSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during scan: %v", r)
		}
	}()
	return w.scanFn(snap, cycle), nil
}

// wait pauses between cycles. Returns false if ctx was cancelled.
func (w *Worker) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		runtime.Gosched()
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// emit queues a batch for the recorder without blocking the loop.
func (w *Worker) emit(events []Event) {
	if w.events == nil || len(events) == 0 {
		return
	}
	select {
	case w.events <- events:
	default:
		w.dropped.Add(uint64(len(events)))
	}
}

func (w *Worker) drainEvents() {
	defer w.wg.Done()
	for batch := range w.events {
		if err := w.recorder.RecordEvents(batch); err != nil {
			w.logger.Warn("recorder failed", "events", len(batch), "error", err)
		}
	}
}
