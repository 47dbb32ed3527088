package tui

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/collider/internal/collision"
	"github.com/vovakirdan/collider/internal/core"
	"github.com/vovakirdan/collider/internal/scene"
)

// plotMargin is the world-space padding around the scene bounds.
const plotMargin = 0.5

// projection maps the world XY plane onto a screen area, +Y pointing up.
type projection struct {
	area     core.Area
	min, max mgl64.Vec2
}

func newProjection(area core.Area, lo, hi mgl64.Vec2) projection {
	for i := 0; i < 2; i++ {
		if hi[i]-lo[i] < 1e-9 {
			lo[i] -= 1
			hi[i] += 1
		}
	}
	return projection{area: area, min: lo, max: hi}
}

func (p projection) column(x float64) int {
	t := (x - p.min.X()) / (p.max.X() - p.min.X())
	return p.area.X + int(t*float64(p.area.W-1)+0.5)
}

func (p projection) row(y float64) int {
	t := (p.max.Y() - y) / (p.max.Y() - p.min.Y())
	return p.area.Y + int(t*float64(p.area.H-1)+0.5)
}

// cells returns the screen area covering the world rectangle lo..hi.
func (p projection) cells(lo, hi mgl64.Vec2) core.Area {
	x0, x1 := p.column(lo.X()), p.column(hi.X())
	y0, y1 := p.row(hi.Y()), p.row(lo.Y())
	return core.Area{X: x0, Y: y0, W: x1 - x0 + 1, H: y1 - y0 + 1}
}

// worldBounds returns the XY footprint of a body in world space.
func worldBounds(b scene.Body) (lo, hi mgl64.Vec2) {
	if b.Collider.IsEmpty() {
		p := b.Position.Vec2()
		return p, p
	}
	mn, mx := b.Collider.Bounds()
	return mn.Add(b.Position).Vec2(), mx.Add(b.Position).Vec2()
}

// sceneBounds returns the XY footprint of every body, padded by plotMargin.
func sceneBounds(snap scene.Snapshot) (lo, hi mgl64.Vec2) {
	for i, b := range snap.Bodies {
		blo, bhi := worldBounds(b)
		if i == 0 {
			lo, hi = blo, bhi
			continue
		}
		lo = mgl64.Vec2{min(lo.X(), blo.X()), min(lo.Y(), blo.Y())}
		hi = mgl64.Vec2{max(hi.X(), bhi.X()), max(hi.Y(), bhi.Y())}
	}
	margin := mgl64.Vec2{plotMargin, plotMargin}
	return lo.Sub(margin), hi.Add(margin)
}

// PlotScene draws a top-down view of every body into area. Each body is
// outlined at its bounding footprint and labelled with its name; bodies in
// a colliding pair are drawn red.
func PlotScene(s *core.Screen, area core.Area, snap scene.Snapshot, pairs *collision.PairSet) {
	if area.W < 3 || area.H < 3 {
		return
	}
	s.DrawFrame(area, core.ColorGray)
	if len(snap.Bodies) == 0 {
		s.DrawTextColored(area.X+2, area.Y+area.H/2, "empty scene", core.ColorGray)
		return
	}

	inner := core.Area{X: area.X + 1, Y: area.Y + 1, W: area.W - 2, H: area.H - 2}
	lo, hi := sceneBounds(snap)
	proj := newProjection(inner, lo, hi)

	for i, b := range snap.Bodies {
		color := core.PaletteColor(i)
		if len(pairs.Involving(b.Name)) > 0 {
			color = core.ColorRed
		}

		blo, bhi := worldBounds(b)
		cells := proj.cells(blo, bhi)
		if b.Collider.IsEmpty() {
			s.SetColored(cells.X, cells.Y, '·', color)
		} else {
			s.DrawFrame(cells, color)
		}
		s.DrawTextColored(cells.X, cells.Y-1, label(b.Name, cells.W), color)
	}
}

// label shortens a name to fit a body footprint, keeping at least one rune.
func label(name string, width int) string {
	runes := []rune(name)
	if width < 1 {
		width = 1
	}
	if len(runes) > width {
		runes = runes[:width]
	}
	return string(runes)
}
