package layout

import (
	"termaid/canvas"
	"termaid/diagram"
)

// extent accumulates the bounding box of everything a layout places. It
// always includes the origin.
type extent struct {
	minX, minY int
	maxX, maxY int // exclusive
}

func (e *extent) rect(r diagram.Rect) {
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	e.minX, e.minY = min(e.minX, r.X), min(e.minY, r.Y)
	e.maxX, e.maxY = max(e.maxX, r.X+r.Width), max(e.maxY, r.Y+r.Height)
}

func (e *extent) point(p diagram.Point) {
	e.rect(diagram.Rect{X: p.X, Y: p.Y, Width: 1, Height: 1})
}

func (e *extent) points(ps []diagram.Point) {
	for _, p := range ps {
		e.point(p)
	}
}

func (e *extent) text(at diagram.Point, lines []string) {
	e.rect(diagram.Rect{X: at.X, Y: at.Y, Width: canvas.MaxWidth(lines), Height: len(lines)})
}

// shift returns the offset that moves the extent into non-negative space.
func (e *extent) shift() diagram.Point {
	return diagram.Point{X: -e.minX, Y: -e.minY}
}

// size returns the width and height after applying shift.
func (e *extent) size() (int, int) {
	return e.maxX - e.minX, e.maxY - e.minY
}

func moveRect(r *diagram.Rect, d diagram.Point) {
	r.X += d.X
	r.Y += d.Y
}

func movePoint(p *diagram.Point, d diagram.Point) {
	p.X += d.X
	p.Y += d.Y
}

func movePoints(ps []diagram.Point, d diagram.Point) {
	for i := range ps {
		movePoint(&ps[i], d)
	}
}
