package render

import (
	"github.com/cockroachdb/errors"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/layout"
	"termaid/parser"
)

// ClassRenderer draws class diagrams.
type ClassRenderer struct {
	opts Options
}

// NewClassRenderer creates a class diagram renderer.
func NewClassRenderer(opts Options) *ClassRenderer {
	return &ClassRenderer{opts: opts.withDefaults()}
}

// CanRender returns true for class diagrams.
func (r *ClassRenderer) CanRender(f parser.Family) bool {
	return f == parser.FamilyClass
}

// Render lays out the class diagram and returns the drawing.
func (r *ClassRenderer) Render(res *parser.Result) (string, error) {
	if res == nil || res.Class == nil {
		return "", errors.Wrap(ErrNoModel, "class")
	}
	l := layout.Class(res.Class, r.opts.Spacing, r.opts.Logger)
	c := r.opts.canvas()
	r.Draw(c, l)
	return c.String(), nil
}

// Draw paints a laid out class diagram onto c.
func (r *ClassRenderer) Draw(c *canvas.Canvas, l *layout.ClassLayout) {
	cs := c.Charset()
	c.Grow(l.Width, l.Height)

	for _, b := range l.Classes {
		c.DrawBox(b.Box, cs.Rect)
		drawCompartments(c, b.Box, b.Text, r.opts.Spacing.BoxPadding)
	}

	for _, rt := range l.Routes {
		style := canvas.Solid
		if rt.Rel.Dashed {
			style = canvas.Dotted
		}
		drawConnector(c, rt.Points, rt.From, rt.To, style)

		switch rt.Rel.Marker {
		case diagram.MarkerFrom:
			c.SetMarker(rt.From.At, ClassMarker(cs, rt.Rel.Type, rt.From.Dir))
		case diagram.MarkerTo:
			c.SetMarker(rt.To.At, ClassMarker(cs, rt.Rel.Type, rt.To.Dir))
		}
	}

	for _, rt := range l.Routes {
		endText(c, rt.From)
		endText(c, rt.To)
		if len(rt.Label) > 0 {
			c.DrawCentered(rt.LabelAt.X, rt.LabelAt.Y, canvas.MaxWidth(rt.Label), rt.Label)
		}
	}
}

// ClassMarker returns the UML end glyph for a relationship type. into is the
// direction of travel into the box the marker touches, so triangles and
// arrowheads point at that box.
func ClassMarker(cs *canvas.Charset, t diagram.RelationType, into diagram.Direction) rune {
	switch t {
	case diagram.RelInheritance, diagram.RelRealization:
		if cs.ASCII {
			return cs.Arrow(into)
		}
		return [4]rune{'△', '▷', '▽', '◁'}[into]
	case diagram.RelComposition:
		if cs.ASCII {
			return '*'
		}
		return '◆'
	case diagram.RelAggregation:
		if cs.ASCII {
			return 'o'
		}
		return '◇'
	}
	return cs.Arrow(into)
}
