package render

import (
	"github.com/cockroachdb/errors"

	"termaid/canvas"
	"termaid/layout"
	"termaid/parser"
)

// ERRenderer draws entity-relationship diagrams.
type ERRenderer struct {
	opts Options
}

// NewERRenderer creates an entity-relationship renderer.
func NewERRenderer(opts Options) *ERRenderer {
	return &ERRenderer{opts: opts.withDefaults()}
}

// CanRender returns true for entity-relationship diagrams.
func (r *ERRenderer) CanRender(f parser.Family) bool {
	return f == parser.FamilyER
}

// Render lays out the diagram and returns the drawing.
func (r *ERRenderer) Render(res *parser.Result) (string, error) {
	if res == nil || res.ER == nil {
		return "", errors.Wrap(ErrNoModel, "er")
	}
	l := layout.ER(res.ER, r.opts.Spacing, r.opts.Logger)
	c := r.opts.canvas()
	r.Draw(c, l)
	return c.String(), nil
}

// Draw paints a laid out entity-relationship diagram onto c. Identifying
// relationships are solid and the rest dotted; both ends carry their
// cardinality as text.
func (r *ERRenderer) Draw(c *canvas.Canvas, l *layout.ERLayout) {
	cs := c.Charset()
	c.Grow(l.Width, l.Height)

	for _, e := range l.Entities {
		c.DrawBox(e.Box, cs.Rect)
		drawCompartments(c, e.Box, e.Text, r.opts.Spacing.BoxPadding)
	}
	for _, rt := range l.Routes {
		style := canvas.Dotted
		if rt.Rel.Identifying {
			style = canvas.Solid
		}
		drawConnector(c, rt.Points, rt.From, rt.To, style)
	}
	for _, rt := range l.Routes {
		endText(c, rt.From)
		endText(c, rt.To)
		if len(rt.Label) > 0 {
			c.DrawCentered(rt.LabelAt.X, rt.LabelAt.Y, canvas.MaxWidth(rt.Label), rt.Label)
		}
	}
}
