package scene

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/core"
)

func cube(name string, x, y, z float64) Body {
	return Body{
		Name:     name,
		Collider: core.BoxMesh(mgl64.Vec3{1, 1, 1}),
		Position: mgl64.Vec3{x, y, z},
	}
}

func TestSceneAddGetRemove(t *testing.T) {
	s := New()

	if err := s.Add(cube("a", 0, 0, 0)); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := s.Add(cube("a", 1, 0, 0)); err == nil {
		t.Error("Add() with duplicate name should fail")
	}
	if err := s.Add(cube("", 0, 0, 0)); err == nil {
		t.Error("Add() with empty name should fail")
	}

	b, ok := s.Get("a")
	if !ok {
		t.Fatal("Get(a) not found")
	}
	if b.Collider.TriangleCount() != 12 {
		t.Errorf("stored body has %d triangles, expected 12", b.Collider.TriangleCount())
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("Get(missing) should report not found")
	}

	if !s.Remove("a") {
		t.Error("Remove(a) = false")
	}
	if s.Remove("a") {
		t.Error("second Remove(a) should be false")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after removal, expected 0", s.Len())
	}
}

func TestSceneAddCopiesMesh(t *testing.T) {
	s := New()
	b := cube("a", 0, 0, 0)
	if err := s.Add(b); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	// Mutating the caller's slice must not leak into the scene
	b.Collider.Triangles[0] = core.Triangle{}

	stored, _ := s.Get("a")
	if stored.Collider.Triangles[0] == (core.Triangle{}) {
		t.Error("scene shares the caller's triangle slice")
	}
}

func TestSceneVersion(t *testing.T) {
	s := New()
	v0 := s.Version()

	s.Add(cube("a", 0, 0, 0))
	v1 := s.Version()
	if v1 <= v0 {
		t.Errorf("Add() did not bump version: %d -> %d", v0, v1)
	}

	if !s.Move("a", mgl64.Vec3{1, 2, 3}) {
		t.Fatal("Move(a) = false")
	}
	v2 := s.Version()
	if v2 <= v1 {
		t.Errorf("Move() did not bump version: %d -> %d", v1, v2)
	}

	if s.Move("missing", mgl64.Vec3{}) {
		t.Error("Move(missing) should be false")
	}
	if s.Version() != v2 {
		t.Error("failed Move() should not bump version")
	}

	// Step with no moving bodies leaves the version alone
	if moved := s.Step(1); moved != 0 {
		t.Errorf("Step() moved %d bodies, expected 0", moved)
	}
	if s.Version() != v2 {
		t.Error("Step() without motion should not bump version")
	}
}

func TestSceneStep(t *testing.T) {
	s := New()
	s.Add(cube("still", 0, 0, 0))
	s.Add(cube("mover", 0, 0, 0))
	s.SetVelocity("mover", mgl64.Vec3{2, 0, -1})

	if moved := s.Step(0.5); moved != 1 {
		t.Errorf("Step() moved %d bodies, expected 1", moved)
	}

	b, _ := s.Get("mover")
	if b.Position != (mgl64.Vec3{1, 0, -0.5}) {
		t.Errorf("mover position = %v, expected (1,0,-0.5)", b.Position)
	}
	still, _ := s.Get("still")
	if still.Position != (mgl64.Vec3{}) {
		t.Errorf("still position = %v, expected origin", still.Position)
	}
}

func TestSnapshotSortedAndDetached(t *testing.T) {
	s := New()
	for _, name := range []string{"c", "a", "b"} {
		s.Add(cube(name, 0, 0, 0))
	}

	snap := s.Snapshot()
	if len(snap.Bodies) != 3 {
		t.Fatalf("snapshot has %d bodies, expected 3", len(snap.Bodies))
	}
	for i, want := range []string{"a", "b", "c"} {
		if snap.Bodies[i].Name != want {
			t.Errorf("snapshot[%d] = %q, expected %q", i, snap.Bodies[i].Name, want)
		}
	}
	if snap.Version != s.Version() {
		t.Errorf("snapshot version %d != scene version %d", snap.Version, s.Version())
	}

	// Later mutations are invisible to an existing snapshot
	s.Move("a", mgl64.Vec3{9, 9, 9})
	s.Remove("b")
	if snap.Bodies[0].Position != (mgl64.Vec3{}) {
		t.Error("snapshot observed a later Move()")
	}
	if _, ok := snap.Lookup("b"); !ok {
		t.Error("snapshot lost a body removed after it was taken")
	}
	if _, ok := snap.Lookup("zzz"); ok {
		t.Error("Lookup(zzz) should report not found")
	}
}

func TestSceneConcurrentAccess(t *testing.T) {
	s := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		s.Add(cube(name, 0, 0, 0))
		s.SetVelocity(name, mgl64.Vec3{1, 0, 0})
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Step(0.01)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Move("a", mgl64.Vec3{float64(i), 0, 0})
		}
	}()
	go func() {
		defer wg.Done()
		var last uint64
		for i := 0; i < 500; i++ {
			snap := s.Snapshot()
			if snap.Version < last {
				t.Errorf("snapshot version went backwards: %d -> %d", last, snap.Version)
				return
			}
			last = snap.Version
			if len(snap.Bodies) != 4 {
				t.Errorf("snapshot has %d bodies, expected 4", len(snap.Bodies))
				return
			}
		}
	}()
	wg.Wait()
}

func TestParse(t *testing.T) {
	data := []byte(`
bodies:
  - name: floor
    shape: box
    size: [10, 1, 10]
    position: [0, -1, 0]
  - name: tri
    triangles:
      - [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    velocity: [0, 1, 0]
`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, expected 2", s.Len())
	}

	floor, _ := s.Get("floor")
	if floor.Position != (mgl64.Vec3{0, -1, 0}) {
		t.Errorf("floor position = %v", floor.Position)
	}
	min, max := floor.Collider.Bounds()
	if min != (mgl64.Vec3{-5, -0.5, -5}) || max != (mgl64.Vec3{5, 0.5, 5}) {
		t.Errorf("floor bounds = %v..%v", min, max)
	}

	tri, _ := s.Get("tri")
	if tri.Collider.TriangleCount() != 1 {
		t.Errorf("tri has %d triangles, expected 1", tri.Collider.TriangleCount())
	}
	if tri.Velocity != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("tri velocity = %v", tri.Velocity)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "bodies: [unclosed"},
		{"no geometry", "bodies:\n  - name: a\n"},
		{"unknown shape", "bodies:\n  - name: a\n    shape: torus\n"},
		{"both shape and triangles", "bodies:\n  - name: a\n    shape: box\n    size: [1,1,1]\n    triangles:\n      - [[0,0,0],[1,0,0],[0,1,0]]\n"},
		{"short position", "bodies:\n  - name: a\n    shape: box\n    size: [1,1,1]\n    position: [1, 2]\n"},
		{"two-vertex triangle", "bodies:\n  - name: a\n    triangles:\n      - [[0,0,0],[1,0,0]]\n"},
		{"duplicate name", "bodies:\n  - name: a\n    shape: box\n    size: [1,1,1]\n  - name: a\n    shape: box\n    size: [1,1,1]\n"},
		{"missing name", "bodies:\n  - shape: box\n    size: [1,1,1]\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Error("Parse() should fail")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	s, err := LoadFile(filepath.Join("testdata", "crossing.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	names := s.Names()
	want := []string{"left", "post", "ramp", "right"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, expected %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, expected %q", i, names[i], want[i])
		}
	}

	post, _ := s.Get("post")
	if post.Collider.IsEmpty() {
		t.Error("tessellated sphere is empty")
	}

	if _, err := LoadFile(filepath.Join("testdata", "missing.yaml")); err == nil {
		t.Error("LoadFile() of missing file should fail")
	}
}
