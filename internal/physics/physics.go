// Package physics is the query surface the rest of an application uses to
// ask whether bodies collide.
//
// In threaded mode a collision.Worker keeps the answer fresh in the
// background and queries only read the latest published pair set, so they
// are cheap and never wait on a scan. Without a worker every query runs the
// mesh test on the spot.
package physics

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/collision"
	"github.com/vovakirdan/collider/internal/core"
	"github.com/vovakirdan/collider/internal/scene"
)

var (
	// ErrAlreadyInitialized is returned by Init when called twice without Shutdown.
	ErrAlreadyInitialized = errors.New("physics: already initialized")

	// ErrNilScene is returned by Init when no scene is given.
	ErrNilScene = errors.New("physics: nil scene")
)

// Options configures a Physics instance.
type Options struct {
	Worker   collision.WorkerConfig
	Logger   *log.Logger        // nil discards output
	Recorder collision.Recorder // Optional contact event sink, threaded mode only
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{Worker: collision.DefaultWorkerConfig()}
}

// Stats describes the state of a Physics instance.
type Stats struct {
	Initialized bool
	Threaded    bool
	Bodies      int
	Cycle       uint64 // Cycle of the latest published set
	Pairs       int    // Pairs in the latest published set
	Published   uint64
	Violations  uint64
	Worker      collision.WorkerStats
}

// session is the state bound by one Init call.
type session struct {
	scene  *scene.Scene
	buf    *collision.Buffer // nil unless threaded
	worker *collision.Worker // nil unless threaded
}

// Physics answers collision queries for one scene at a time.
// Instances are independent; a zero Physics is not usable, use New.
type Physics struct {
	opts   Options
	logger *log.Logger

	mu    sync.Mutex // Serializes Init and Shutdown
	state atomic.Pointer[session]
}

// New creates an uninitialized Physics.
func New(opts Options) *Physics {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Physics{opts: opts, logger: logger}
}

// Init binds the scene. When threaded is true a detection worker is started
// and Init returns without waiting for its first cycle; until that cycle is
// published every threaded query reports no collision.
func (p *Physics) Init(sc *scene.Scene, threaded bool) error {
	if sc == nil {
		return ErrNilScene
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Load() != nil {
		return ErrAlreadyInitialized
	}

	s := &session{scene: sc}
	if threaded {
		s.buf = collision.NewBuffer()
		s.worker = collision.NewWorker(sc, s.buf, p.opts.Worker, p.logger)
		if p.opts.Recorder != nil {
			s.worker.SetRecorder(p.opts.Recorder)
		}
		s.worker.Start(context.Background())
	}
	p.state.Store(s)

	p.logger.Debug("physics initialized", "threaded", threaded, "bodies", sc.Len())
	return nil
}

// Shutdown stops the worker and waits for it to exit. Once Shutdown returns
// nothing writes to the old buffer again and the scene may be discarded.
// Safe to call repeatedly; Init may be called again afterwards.
func (p *Physics) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state.Swap(nil)
	if s == nil {
		return
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	p.logger.Debug("physics shut down")
}

// Threaded reports whether a worker backs the queries.
func (p *Physics) Threaded() bool {
	s := p.state.Load()
	return s != nil && s.worker != nil
}

// Collide reports whether bodies a and b intersect.
//
// Threaded, this is a lookup in the latest published set, which may lag the
// scene by up to one cycle. Otherwise both bodies are looked up and their
// meshes tested now, which costs O(Ta*Tb) triangle tests.
//
// Unknown names and a == b report false.
func (p *Physics) Collide(a, b string) bool {
	if a == b {
		return false
	}
	s := p.state.Load()
	if s == nil {
		return false
	}
	if s.buf != nil {
		return s.buf.Load().Contains(a, b)
	}

	ba, ok := s.scene.Get(a)
	if !ok {
		return false
	}
	bb, ok := s.scene.Get(b)
	if !ok {
		return false
	}
	return collision.MeshOverlap(ba, bb)
}

// CollidePoint reports whether point lies strictly inside the rectangle at
// rectOrigin with rectSize. Always synchronous and independent of Init.
func (p *Physics) CollidePoint(point, rectOrigin, rectSize mgl64.Vec2) bool {
	return core.PointInRect(point, rectOrigin, rectSize)
}

// Pairs returns every colliding pair: the latest published set when
// threaded, a fresh scan otherwise. Never nil.
func (p *Physics) Pairs() *collision.PairSet {
	s := p.state.Load()
	if s == nil {
		return collision.NewPairSet(0, 0)
	}
	if s.buf != nil {
		return s.buf.Load()
	}
	return collision.Scan(s.scene.Snapshot(), 0)
}

// Stats returns a snapshot of the instance state.
func (p *Physics) Stats() Stats {
	s := p.state.Load()
	if s == nil {
		return Stats{}
	}

	st := Stats{
		Initialized: true,
		Threaded:    s.worker != nil,
		Bodies:      s.scene.Len(),
	}
	if s.buf != nil {
		set := s.buf.Load()
		st.Cycle = set.Cycle
		st.Pairs = set.Len()
		st.Published = s.buf.Published()
		st.Violations = s.buf.Violations()
		st.Worker = s.worker.Stats()
	}
	return st
}
