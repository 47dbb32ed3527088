// Package core provides the geometric primitives and overlap predicates used
// by the collision detector, plus the character Screen that views draw
// scenes into. Vector types come from mathgl.
package core

import "github.com/go-gl/mathgl/mgl64"

// Triangle is three points in 3D space.
type Triangle [3]mgl64.Vec3

// Segment is a line segment between two points in 3D space.
type Segment [2]mgl64.Vec3

// Tri builds a triangle from three points.
func Tri(a, b, c mgl64.Vec3) Triangle {
	return Triangle{a, b, c}
}

// Translate returns the triangle moved by offset.
func (t Triangle) Translate(offset mgl64.Vec3) Triangle {
	return Triangle{t[0].Add(offset), t[1].Add(offset), t[2].Add(offset)}
}

// Rect is an axis-aligned 2D rectangle given by its top-left origin and size.
// Used for UI hit-testing.
type Rect struct {
	Origin mgl64.Vec2
	Size   mgl64.Vec2
}

// NewRect creates a rectangle from its origin and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Origin: mgl64.Vec2{x, y}, Size: mgl64.Vec2{w, h}}
}

// Contains reports whether p lies strictly inside the rectangle.
func (r Rect) Contains(p mgl64.Vec2) bool {
	return PointInRect(p, r.Origin, r.Size)
}

// PointInRect reports whether point lies strictly inside the rectangle
// starting at origin with the given size. Points on the boundary are outside.
func PointInRect(point, origin, size mgl64.Vec2) bool {
	if origin.Y() < point.Y() && point.Y() < origin.Y()+size.Y() {
		if origin.X() < point.X() && point.X() < origin.X()+size.X() {
			return true
		}
	}
	return false
}

// axisSpan tracks, per axis, whether some vertex of one set was seen at or
// below and at or above some vertex of the other set.
type axisSpan struct {
	lower  [3]bool
	higher [3]bool
}

func (s *axisSpan) observe(a, b mgl64.Vec3) {
	for axis := 0; axis < 3; axis++ {
		if a[axis] <= b[axis] {
			s.lower[axis] = true
		}
		if a[axis] >= b[axis] {
			s.higher[axis] = true
		}
	}
}

func (s *axisSpan) overlaps() bool {
	for axis := 0; axis < 3; axis++ {
		if !s.lower[axis] || !s.higher[axis] {
			return false
		}
	}
	return true
}

// TriangleOverlap reports whether the vertex ranges of a and b overlap on
// every axis. This is a bounding-box test over the two vertex sets, not an
// exact triangle intersection: it over-reports collisions for triangles whose
// boxes touch but whose surfaces are apart. The result is symmetric.
func TriangleOverlap(a, b Triangle) bool {
	var span axisSpan
	for i := range a {
		for j := range b {
			span.observe(a[i], b[j])
		}
	}
	return span.overlaps()
}

// LineTriangleOverlap applies the same bounding-box methodology as
// TriangleOverlap to a segment and a triangle.
func LineTriangleOverlap(l Segment, t Triangle) bool {
	var span axisSpan
	for i := range l {
		for j := range t {
			span.observe(l[i], t[j])
		}
	}
	return span.overlaps()
}
