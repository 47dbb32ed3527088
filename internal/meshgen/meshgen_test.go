package meshgen

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestListRegisteredShapes(t *testing.T) {
	shapes := List()

	want := []string{"box", "capsule", "cylinder", "rounded_box", "sphere"}
	if len(shapes) != len(want) {
		t.Fatalf("List() returned %d shapes, expected %d", len(shapes), len(want))
	}
	for i, id := range want {
		if shapes[i].ID != id {
			t.Errorf("List()[%d] = %q, expected %q", i, shapes[i].ID, id)
		}
		if shapes[i].Description == "" {
			t.Errorf("shape %q has no description", id)
		}
		if !Exists(id) {
			t.Errorf("Exists(%q) = false", id)
		}
		if info, ok := Lookup(id); !ok || info != shapes[i] {
			t.Errorf("Lookup(%q) = %+v, %v", id, info, ok)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("torus"); ok {
		t.Error("Lookup(torus) should fail")
	}
	if Exists("torus") {
		t.Error("Exists(torus) should be false")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() with duplicate id should panic")
		}
	}()
	Register("box", "again", buildBox)
}

func TestBuildUnknownShape(t *testing.T) {
	if _, err := Build(ShapeSpec{Kind: "torus"}); err == nil {
		t.Error("Build() with unknown shape should fail")
	}
}

func TestBuildInvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		spec ShapeSpec
	}{
		{"box zero size", ShapeSpec{Kind: "box", Size: mgl64.Vec3{0, 1, 1}}},
		{"box negative size", ShapeSpec{Kind: "box", Size: mgl64.Vec3{1, -1, 1}}},
		{"sphere zero radius", ShapeSpec{Kind: "sphere"}},
		{"cylinder no height", ShapeSpec{Kind: "cylinder", Radius: 1}},
		{"capsule no radius", ShapeSpec{Kind: "capsule", Height: 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.spec); err == nil {
				t.Errorf("Build(%+v) should fail", tc.spec)
			}
		})
	}
}

func TestBuildBoxIsExact(t *testing.T) {
	m, err := Build(ShapeSpec{Kind: "box", Size: mgl64.Vec3{1, 2, 3}})
	if err != nil {
		t.Fatalf("Build(box) failed: %v", err)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("box triangle count = %d, expected 12", m.TriangleCount())
	}
	min, max := m.Bounds()
	if min != (mgl64.Vec3{-0.5, -1, -1.5}) || max != (mgl64.Vec3{0.5, 1, 1.5}) {
		t.Errorf("box bounds = %v..%v", min, max)
	}
}

func TestBuildTessellatedShapes(t *testing.T) {
	tests := []struct {
		name   string
		spec   ShapeSpec
		extent mgl64.Vec3 // expected half extents
	}{
		{"sphere", ShapeSpec{Kind: "sphere", Radius: 2}, mgl64.Vec3{2, 2, 2}},
		{"cylinder", ShapeSpec{Kind: "cylinder", Radius: 1, Height: 4}, mgl64.Vec3{1, 1, 2}},
		{"capsule", ShapeSpec{Kind: "capsule", Radius: 1, Height: 2}, mgl64.Vec3{1, 1, 2}},
		{"rounded box", ShapeSpec{Kind: "rounded_box", Size: mgl64.Vec3{2, 2, 2}, Radius: 0.2}, mgl64.Vec3{1, 1, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Build(tc.spec)
			if err != nil {
				t.Fatalf("Build() failed: %v", err)
			}
			if m.IsEmpty() {
				t.Fatal("mesh is empty")
			}
			t.Logf("%s triangle count: %d", tc.name, m.TriangleCount())

			// Marching cubes approximates the surface; allow a generous margin.
			min, max := m.Bounds()
			for axis := 0; axis < 3; axis++ {
				tol := 0.25 * tc.extent[axis]
				if math.Abs(max[axis]-tc.extent[axis]) > tol {
					t.Errorf("axis %d max = %.3f, expected about %.3f", axis, max[axis], tc.extent[axis])
				}
				if math.Abs(min[axis]+tc.extent[axis]) > tol {
					t.Errorf("axis %d min = %.3f, expected about %.3f", axis, min[axis], -tc.extent[axis])
				}
			}
		})
	}
}

func TestCellsAreClamped(t *testing.T) {
	coarse, err := Build(ShapeSpec{Kind: "sphere", Radius: 1, Cells: 4})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	fine, err := Build(ShapeSpec{Kind: "sphere", Radius: 1, Cells: 16})
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if fine.TriangleCount() <= coarse.TriangleCount() {
		t.Errorf("finer resolution produced %d triangles, coarse %d", fine.TriangleCount(), coarse.TriangleCount())
	}
}
