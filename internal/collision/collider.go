package collision

import (
	"github.com/vovakirdan/collider/internal/core"
	"github.com/vovakirdan/collider/internal/scene"
)

// MeshOverlap reports whether any triangle of a overlaps any triangle of b
// once both are moved to their bodies' world positions. It stops at the
// first overlapping pair. Every triangle pair is tested, so the cost is the
// product of the triangle counts; large scenes need a broad phase in front.
//
// The per-triangle test is core.TriangleOverlap, which over-reports: bodies
// whose triangle bounding boxes touch count as colliding.
func MeshOverlap(a, b scene.Body) bool {
	if a.Collider.IsEmpty() || b.Collider.IsEmpty() {
		return false
	}

	// Translate b once instead of once per a-triangle.
	bTris := make([]core.Triangle, b.Collider.TriangleCount())
	for j := range bTris {
		bTris[j] = b.WorldTriangle(j)
	}

	for i := range a.Collider.Triangles {
		aTri := a.WorldTriangle(i)
		for _, bTri := range bTris {
			if core.TriangleOverlap(aTri, bTri) {
				return true
			}
		}
	}
	return false
}

// Scan tests every unordered pair of bodies in the snapshot and returns the
// colliding ones as the result of the given cycle.
func Scan(snap scene.Snapshot, cycle uint64) *PairSet {
	set := NewPairSet(cycle, snap.Version)
	bodies := snap.Bodies
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if MeshOverlap(bodies[i], bodies[j]) {
				set.add(bodies[i].Name, bodies[j].Name)
			}
		}
	}
	return set
}
