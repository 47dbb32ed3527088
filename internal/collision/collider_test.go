package collision

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/core"
	"github.com/vovakirdan/collider/internal/scene"
)

func unitCube(name string, x, y, z float64) scene.Body {
	return scene.Body{
		Name:     name,
		Collider: core.BoxMesh(mgl64.Vec3{1, 1, 1}),
		Position: mgl64.Vec3{x, y, z},
	}
}

func TestMeshOverlapCubes(t *testing.T) {
	tests := []struct {
		name     string
		a, b     scene.Body
		expected bool
	}{
		{"overlapping half a cube apart", unitCube("A", 0, 0, 0), unitCube("B", 0.5, 0, 0), true},
		{"far apart", unitCube("A", 0, 0, 0), unitCube("B", 100, 0, 0), false},
		{"same position", unitCube("A", 3, 3, 3), unitCube("B", 3, 3, 3), true},
		{"faces touching", unitCube("A", 0, 0, 0), unitCube("B", 1, 0, 0), true},
		{"gap on y", unitCube("A", 0, 0, 0), unitCube("B", 0, 1.01, 0), false},
		{"diagonal overlap", unitCube("A", 0, 0, 0), unitCube("B", 0.9, 0.9, 0.9), true},
		{"diagonal apart", unitCube("A", 0, 0, 0), unitCube("B", 1.1, 1.1, 1.1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MeshOverlap(tc.a, tc.b); got != tc.expected {
				t.Errorf("MeshOverlap() = %v, expected %v", got, tc.expected)
			}
			// Also test symmetry
			if got := MeshOverlap(tc.b, tc.a); got != tc.expected {
				t.Errorf("MeshOverlap() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestMeshOverlapEmptyMesh(t *testing.T) {
	empty := scene.Body{Name: "ghost"}
	if MeshOverlap(empty, unitCube("A", 0, 0, 0)) {
		t.Error("a body without collision mesh should never collide")
	}
	if MeshOverlap(unitCube("A", 0, 0, 0), empty) {
		t.Error("a body without collision mesh should never collide (reversed)")
	}
}

func TestMeshOverlapDisjointBoundsNeverCollide(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		a := randomBody(rng, "a")
		b := randomBody(rng, "b")

		aMin, aMax := a.Collider.Bounds()
		bMin, bMax := b.Collider.Bounds()
		aMin, aMax = aMin.Add(a.Position), aMax.Add(a.Position)
		bMin, bMax = bMin.Add(b.Position), bMax.Add(b.Position)

		disjoint := false
		for axis := 0; axis < 3; axis++ {
			if aMax[axis] < bMin[axis] || bMax[axis] < aMin[axis] {
				disjoint = true
			}
		}

		got := MeshOverlap(a, b)
		if disjoint && got {
			t.Fatalf("iteration %d: bodies with disjoint bounds reported colliding", i)
		}
		if got != MeshOverlap(b, a) {
			t.Fatalf("iteration %d: MeshOverlap is not symmetric", i)
		}
	}
}

func randomBody(rng *rand.Rand, name string) scene.Body {
	tris := make([]core.Triangle, 1+rng.Intn(4))
	for i := range tris {
		for j := 0; j < 3; j++ {
			tris[i][j] = mgl64.Vec3{rng.Float64() * 2, rng.Float64() * 2, rng.Float64() * 2}
		}
	}
	return scene.Body{
		Name:     name,
		Collider: core.Mesh{Triangles: tris},
		Position: mgl64.Vec3{rng.Float64()*6 - 3, rng.Float64()*6 - 3, rng.Float64()*6 - 3},
	}
}

func TestScan(t *testing.T) {
	sc := scene.New()
	sc.Add(unitCube("a", 0, 0, 0))
	sc.Add(unitCube("b", 0.5, 0, 0))
	sc.Add(unitCube("c", 0.5, 0.5, 0))
	sc.Add(unitCube("far", 50, 0, 0))

	set := Scan(sc.Snapshot(), 7)

	if set.Cycle != 7 {
		t.Errorf("Cycle = %d, expected 7", set.Cycle)
	}
	if set.SceneVersion != sc.Version() {
		t.Errorf("SceneVersion = %d, expected %d", set.SceneVersion, sc.Version())
	}

	// a-b, a-c, b-c overlap; far touches nothing
	if set.Len() != 3 {
		t.Errorf("Len() = %d, expected 3: %v", set.Len(), set.Pairs())
	}
	for _, p := range [][2]string{{"a", "b"}, {"b", "a"}, {"a", "c"}, {"c", "b"}} {
		if !set.Contains(p[0], p[1]) {
			t.Errorf("Contains(%s, %s) = false", p[0], p[1])
		}
	}
	if set.Contains("a", "far") || set.Contains("far", "c") {
		t.Error("far body reported colliding")
	}
	// Snapshot order is by name, so pairs come out in name order
	want := []Pair{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	for i, p := range set.Pairs() {
		if p != want[i] {
			t.Errorf("Pairs()[%d] = %v, expected %v", i, p, want[i])
		}
	}
}

func TestScanEmptyScene(t *testing.T) {
	set := Scan(scene.New().Snapshot(), 1)
	if set.Len() != 0 {
		t.Errorf("Len() = %d, expected 0", set.Len())
	}
}
