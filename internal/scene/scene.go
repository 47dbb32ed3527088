// Package scene holds the named bodies the collision detector scans.
// The simulation layer mutates bodies through Scene; the detector only ever
// reads immutable snapshots, so the two sides never race on body state.
package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/core"
)

// Body is a named scene entity with a collision mesh and a world position.
// Rotation is not applied to the collision mesh.
type Body struct {
	Name     string
	Collider core.Mesh
	Position mgl64.Vec3
	Velocity mgl64.Vec3 // Units per second, integrated by Scene.Step
}

// WorldTriangle returns triangle i of the collision mesh in world space.
func (b Body) WorldTriangle(i int) core.Triangle {
	return b.Collider.Triangles[i].Translate(b.Position)
}

// Snapshot is an immutable, name-sorted view of every body in a scene.
// Collision meshes are shared with the scene and must be treated as read-only.
type Snapshot struct {
	Version uint64
	Bodies  []Body
}

// Lookup finds a body by name using binary search.
func (s Snapshot) Lookup(name string) (Body, bool) {
	i := sort.Search(len(s.Bodies), func(i int) bool {
		return s.Bodies[i].Name >= name
	})
	if i < len(s.Bodies) && s.Bodies[i].Name == name {
		return s.Bodies[i], true
	}
	return Body{}, false
}

// Scene is a concurrency-safe mapping from body name to body.
// Every mutation bumps Version, which lets readers detect change cheaply.
type Scene struct {
	mu      sync.RWMutex
	bodies  map[string]Body
	version uint64
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{bodies: make(map[string]Body)}
}

// Add inserts a body. The collision mesh is copied so the caller may reuse
// its slice. Returns an error if the name is empty or already taken.
func (s *Scene) Add(b Body) error {
	if b.Name == "" {
		return fmt.Errorf("scene: body name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bodies[b.Name]; exists {
		return fmt.Errorf("scene: body %q already exists", b.Name)
	}
	b.Collider = b.Collider.Clone()
	s.bodies[b.Name] = b
	s.version++
	return nil
}

// Remove deletes a body. Returns false if no such body exists.
func (s *Scene) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bodies[name]; !ok {
		return false
	}
	delete(s.bodies, name)
	s.version++
	return true
}

// Get returns a body by name.
func (s *Scene) Get(name string) (Body, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bodies[name]
	return b, ok
}

// Move sets a body's world position. Returns false if no such body exists.
func (s *Scene) Move(name string, pos mgl64.Vec3) bool {
	return s.update(name, func(b *Body) { b.Position = pos })
}

// SetVelocity sets a body's velocity. Returns false if no such body exists.
func (s *Scene) SetVelocity(name string, vel mgl64.Vec3) bool {
	return s.update(name, func(b *Body) { b.Velocity = vel })
}

func (s *Scene) update(name string, fn func(*Body)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bodies[name]
	if !ok {
		return false
	}
	fn(&b)
	s.bodies[name] = b
	s.version++
	return true
}

// Step advances every moving body by velocity*dt.
// Returns the number of bodies that moved.
func (s *Scene) Step(dt float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for name, b := range s.bodies {
		if b.Velocity == (mgl64.Vec3{}) {
			continue
		}
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		s.bodies[name] = b
		moved++
	}
	if moved > 0 {
		s.version++
	}
	return moved
}

// Names returns all body names, sorted.
func (s *Scene) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.bodies))
	for name := range s.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bodies.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bodies)
}

// Version returns the mutation counter.
func (s *Scene) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Snapshot copies every body into a name-sorted slice.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bodies := make([]Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		bodies = append(bodies, b)
	}
	sort.Slice(bodies, func(i, j int) bool {
		return bodies[i].Name < bodies[j].Name
	})
	return Snapshot{Version: s.version, Bodies: bodies}
}
