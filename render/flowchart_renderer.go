package render

import (
	"strings"

	"github.com/cockroachdb/errors"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/layout"
	"termaid/parser"
)

// FlowchartRenderer handles rendering of flowchart and state diagrams
type FlowchartRenderer struct {
	opts Options
}

// NewFlowchartRenderer creates a new flowchart diagram renderer
func NewFlowchartRenderer(opts Options) *FlowchartRenderer {
	return &FlowchartRenderer{opts: opts.withDefaults()}
}

// CanRender returns true if this renderer can handle the given family.
func (r *FlowchartRenderer) CanRender(f parser.Family) bool {
	return f == parser.FamilyFlowchart || f == parser.FamilyState
}

// Render lays out the graph and returns the drawing.
func (r *FlowchartRenderer) Render(res *parser.Result) (string, error) {
	if res == nil || res.Graph == nil {
		return "", errors.Wrap(ErrNoModel, "flowchart")
	}
	l := layout.Grid(res.Graph, r.opts.Spacing, r.opts.Logger)
	c := r.opts.canvas()
	r.Draw(c, l)
	return c.String(), nil
}

// textBlock is text written after the drawing is final.
type textBlock struct {
	x, y  int
	span  int // centre each line in span cells; 0 writes lines left-aligned
	lines []string
}

// Draw paints a laid out flowchart onto c.
func (r *FlowchartRenderer) Draw(c *canvas.Canvas, l *layout.FlowLayout) {
	cs := c.Charset()
	c.Grow(l.Width, l.Height)
	var texts []textBlock

	for _, f := range l.Frames {
		c.DrawPath(closed(f.Box), canvas.Solid)
		if len(f.Label) > 0 {
			y := f.Box.Y
			if l.Flip {
				y = f.Box.Bottom()
			}
			texts = append(texts, textBlock{x: f.Box.X + 2, y: y, lines: []string{strings.Join(f.Label, " ")}})
		}
	}

	for _, n := range l.Nodes {
		if layout.IsPseudostate(n.Node.Shape) {
			c.SetMarker(diagram.Point{X: n.Box.CenterX(), Y: n.Box.CenterY()}, PseudostateGlyph(cs, n.Node.Shape))
			continue
		}
		c.DrawBox(n.Box, NodeStyle(cs, n.Node.Shape))
		top := n.Box.Y + (n.Box.Height-len(n.Lines))/2
		texts = append(texts, textBlock{x: n.Box.X + 1, y: top, span: n.Box.Width - 2, lines: n.Lines})
	}

	for _, e := range l.Edges {
		r.drawEdge(c, l, e)
		if len(e.Label) > 0 {
			texts = append(texts, textBlock{x: e.LabelAt.X, y: e.LabelAt.Y, span: canvas.MaxWidth(e.Label), lines: e.Label})
		}
	}

	if l.Flip {
		c.FlipVertical()
		_, h := c.Size()
		for i := range texts {
			texts[i].y = h - texts[i].y - len(texts[i].lines)
		}
	}
	for _, t := range texts {
		if t.span > 0 {
			c.DrawCentered(t.x, t.y, t.span, t.lines)
			continue
		}
		drawLines(c, diagram.Point{X: t.x, Y: t.y}, t.lines)
	}
	r.opts.Logger.Debug("flowchart drawn", "width", l.Width, "height", l.Height, "flip", l.Flip)
}

func lineStyle(s diagram.EdgeStyle) canvas.Style {
	switch s {
	case diagram.EdgeDotted:
		return canvas.Dotted
	case diagram.EdgeThick:
		return canvas.Thick
	}
	return canvas.Solid
}

// drawEdge draws the connector, tees where it leaves or meets a box border
// and arrowheads on the cells next to the borders.
func (r *FlowchartRenderer) drawEdge(c *canvas.Canvas, l *layout.FlowLayout, e layout.FlowEdge) {
	pts := e.Points
	if len(pts) < 2 {
		return
	}
	cs := c.Charset()
	c.DrawPath(pts, lineStyle(e.Edge.Style))

	onBorder := func(id string, p diagram.Point) bool {
		n := l.Node(id)
		return n != nil && !layout.IsPseudostate(n.Node.Shape) && n.Box.Contains(p)
	}

	first := pts[0]
	out, _ := diagram.DirectionBetween(first, pts[1])
	startBorder := onBorder(e.Edge.From, first)
	switch {
	case e.Edge.StartArrow && startBorder:
		c.SetMarker(first.Step(out), cs.Arrow(out.Opposite()))
		junction(c, first, out)
	case e.Edge.StartArrow:
		c.SetMarker(first, cs.Arrow(out.Opposite()))
	case startBorder:
		junction(c, first, out)
	}

	last := pts[len(pts)-1]
	in, _ := diagram.DirectionBetween(pts[len(pts)-2], last)
	endBorder := onBorder(e.Edge.To, last)
	switch {
	case e.Edge.EndArrow && endBorder:
		c.SetMarker(last.Step(in.Opposite()), cs.Arrow(in))
	case e.Edge.EndArrow:
		c.SetMarker(last, cs.Arrow(in))
	case endBorder:
		junction(c, last, in.Opposite())
	}
}
