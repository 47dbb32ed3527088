package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a collision mesh: a list of triangles in body-local space.
// It is independent of whatever geometry is used for rendering and is
// usually a simplified version of it.
type Mesh struct {
	Triangles []Triangle
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Clone returns a copy that does not share the triangle slice.
func (m Mesh) Clone() Mesh {
	if m.Triangles == nil {
		return Mesh{}
	}
	tris := make([]Triangle, len(m.Triangles))
	copy(tris, m.Triangles)
	return Mesh{Triangles: tris}
}

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty mesh returns zero vectors.
func (m Mesh) Bounds() (min, max mgl64.Vec3) {
	if m.IsEmpty() {
		return min, max
	}
	min = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, tri := range m.Triangles {
		for _, v := range tri {
			for axis := 0; axis < 3; axis++ {
				min[axis] = math.Min(min[axis], v[axis])
				max[axis] = math.Max(max[axis], v[axis])
			}
		}
	}
	return min, max
}

// BoxMesh returns an axis-aligned box of the given size centred on the
// origin, two triangles per face.
func BoxMesh(size mgl64.Vec3) Mesh {
	h := size.Mul(0.5)
	corner := func(sx, sy, sz float64) mgl64.Vec3 {
		return mgl64.Vec3{sx * h.X(), sy * h.Y(), sz * h.Z()}
	}

	// Corners indexed by sign bits (x, y, z): 0 = negative, 1 = positive.
	c := [8]mgl64.Vec3{
		corner(-1, -1, -1), corner(1, -1, -1), corner(1, 1, -1), corner(-1, 1, -1),
		corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1),
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, // -z
		{4, 5, 6, 7}, // +z
		{0, 1, 5, 4}, // -y
		{3, 7, 6, 2}, // +y
		{0, 4, 7, 3}, // -x
		{1, 2, 6, 5}, // +x
	}

	tris := make([]Triangle, 0, 12)
	for _, f := range faces {
		tris = append(tris,
			Tri(c[f[0]], c[f[1]], c[f[2]]),
			Tri(c[f[0]], c[f[2]], c[f[3]]),
		)
	}
	return Mesh{Triangles: tris}
}
