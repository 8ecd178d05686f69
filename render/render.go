// Package render draws laid out diagrams onto a character canvas.
//
// Every family renderer follows the same order: outlines and connectors
// first, so that lines merge into junctions, then markers, then text last
// so labels always win over whatever line passes underneath.
package render

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/layout"
)

// ErrNoModel is returned when a renderer is handed a result without the
// model it draws.
var ErrNoModel = errors.New("parsed result has no model for this renderer")

// Options configures every renderer.
type Options struct {
	ASCII   bool
	Spacing layout.Spacing
	Logger  *log.Logger
}

// withDefaults fills in the logger and clamps the spacing.
func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.Spacing = o.Spacing.Clamp()
	return o
}

func (o Options) canvas() *canvas.Canvas {
	return canvas.New(canvas.For(o.ASCII))
}

// junction turns the straight border glyph at p into a tee with an arm
// reaching out in direction out, where a connector leaves or meets the box.
// Corners and shaped borders are left alone.
func junction(c *canvas.Canvas, p diagram.Point, out diagram.Direction) {
	cs := c.Charset()
	var arms canvas.Arms
	switch c.Get(p) {
	case cs.Rect.Top:
		arms = canvas.ArmEast | canvas.ArmWest
	case cs.Rect.Left:
		arms = canvas.ArmNorth | canvas.ArmSouth
	default:
		return
	}
	c.SetBorder(p, cs.Line(arms|canvas.ArmFor(out), canvas.Solid))
}

// closed returns the polyline tracing the outline of r.
func closed(r diagram.Rect) []diagram.Point {
	x2, y2 := r.Right(), r.Bottom()
	return []diagram.Point{{X: r.X, Y: r.Y}, {X: x2, Y: r.Y}, {X: x2, Y: y2}, {X: r.X, Y: y2}, {X: r.X, Y: r.Y}}
}

// drawLines writes text lines one row apart starting at at.
func drawLines(c *canvas.Canvas, at diagram.Point, lines []string) {
	for i, l := range lines {
		c.DrawText(at.X, at.Y+i, l)
	}
}

// drawCompartments writes the header and section text of a box with
// dividers between the compartments.
func drawCompartments(c *canvas.Canvas, box diagram.Rect, text layout.Compartments, pad int) {
	c.DrawCentered(box.X+1, box.Y+1, box.Width-2, text.Header)
	for i, y := range text.Dividers(box) {
		c.DrawDivider(box, y)
		drawLines(c, diagram.Point{X: box.X + 1 + pad, Y: y + 1}, text.Sections[i])
	}
}

// endJunction marks where a connector end meets a box: At lies just outside
// the border and Dir points into the box.
func endJunction(c *canvas.Canvas, e layout.RouteEnd) {
	junction(c, e.At.Step(e.Dir), e.Dir.Opposite())
}

// drawConnector draws a relationship path and joins both ends to their
// boxes. The path stops at each At cell, so an arm toward the border is
// added there before the border becomes a tee.
func drawConnector(c *canvas.Canvas, points []diagram.Point, from, to layout.RouteEnd, s canvas.Style) {
	c.DrawPath(points, s)
	for _, e := range []layout.RouteEnd{from, to} {
		c.AddArms(e.At, canvas.ArmFor(e.Dir), s)
		endJunction(c, e)
	}
}

// endText writes the multiplicity or cardinality of a connector end.
func endText(c *canvas.Canvas, e layout.RouteEnd) {
	if e.Text != "" {
		c.DrawText(e.TextAt.X, e.TextAt.Y, e.Text)
	}
}
