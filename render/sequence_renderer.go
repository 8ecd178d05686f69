package render

import (
	"strings"

	"github.com/cockroachdb/errors"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/layout"
	"termaid/parser"
)

// SequenceRenderer handles rendering of sequence diagrams
type SequenceRenderer struct {
	opts   Options
	layout *layout.SequenceLayout
}

// NewSequenceRenderer creates a new sequence diagram renderer
func NewSequenceRenderer(opts Options) *SequenceRenderer {
	opts = opts.withDefaults()
	return &SequenceRenderer{
		opts:   opts,
		layout: layout.NewSequenceLayout(opts.Spacing, opts.Logger),
	}
}

// CanRender returns true if this renderer can handle the given family.
func (r *SequenceRenderer) CanRender(f parser.Family) bool {
	return f == parser.FamilySequence
}

// Render renders the sequence diagram and returns the string output.
func (r *SequenceRenderer) Render(res *parser.Result) (string, error) {
	if res == nil || res.Sequence == nil {
		return "", errors.Wrap(ErrNoModel, "sequence")
	}
	positions := r.layout.ComputePositions(res.Sequence)
	c := r.opts.canvas()
	r.Draw(c, positions)
	return c.String(), nil
}

// figure is the stick figure drawn for actors, one string per row.
var figure = [layout.FigureHeight]string{" o ", "/|\\", "/ \\"}

// Draw paints a complete sequence diagram onto c.
func (r *SequenceRenderer) Draw(c *canvas.Canvas, pos *layout.SequencePositions) {
	c.Grow(pos.Width, pos.Height)

	// Lifelines, with activations drawn over them in a solid stroke.
	for _, p := range pos.Participants {
		if p.LifelineBottom >= p.LifelineTop {
			c.DrawVerticalLine(p.LifelineX, p.LifelineTop, p.LifelineBottom, canvas.Dotted)
		}
	}
	for _, a := range pos.Activations {
		c.DrawVerticalLine(a.X, a.Top, a.Bottom, canvas.Thick)
	}

	for _, f := range pos.Frames {
		c.DrawPath(closed(f.Box), canvas.Solid)
		for _, dv := range f.Dividers {
			c.DrawHorizontalLine(f.Box.X, f.Box.Right(), dv.Y, canvas.Dotted)
		}
	}

	for _, m := range pos.Messages {
		r.drawMessage(c, m)
	}

	for _, n := range pos.Notes {
		drawNote(c, n, r.opts.Spacing.BoxPadding)
	}

	for _, p := range pos.Participants {
		drawParticipant(c, p, p.Head)
		drawParticipant(c, p, p.Foot)
	}

	for _, f := range pos.Frames {
		c.DrawText(f.Box.X+2, f.Box.Y, f.Title)
		for _, dv := range f.Dividers {
			if dv.Label != "" {
				c.DrawText(f.Box.X+2, dv.Y, dv.Label)
			}
		}
	}
	for _, m := range pos.Messages {
		if m.Self {
			drawLines(c, m.LabelAt, m.Label)
			continue
		}
		c.DrawCentered(m.LabelAt.X, m.LabelAt.Y, canvas.MaxWidth(m.Label), m.Label)
	}
}

func (r *SequenceRenderer) drawMessage(c *canvas.Canvas, m layout.MessagePosition) {
	cs := c.Charset()
	style := canvas.Solid
	if m.Message.Line == diagram.LineDashed {
		style = canvas.Dotted
	}

	if m.Self {
		x := m.FromX
		c.DrawPath([]diagram.Point{
			{X: x, Y: m.Y}, {X: x + 3, Y: m.Y}, {X: x + 3, Y: m.Y + 2}, {X: x, Y: m.Y + 2},
		}, style)
		if head := messageHead(cs, m.Message.Head, diagram.West); head != 0 {
			c.SetMarker(diagram.Point{X: x + 1, Y: m.Y + 2}, head)
		}
		return
	}

	c.DrawHorizontalLine(m.FromX, m.ToX, m.Y, style)
	dir := diagram.East
	if m.ToX < m.FromX {
		dir = diagram.West
	}
	if head := messageHead(cs, m.Message.Head, dir); head != 0 {
		c.SetMarker(diagram.Point{X: m.ToX, Y: m.Y}.Step(dir.Opposite()), head)
	}
}

// messageHead returns the glyph at the receiving end of a message pointing
// in dir, or 0 for a plain line.
func messageHead(cs *canvas.Charset, h diagram.ArrowHead, dir diagram.Direction) rune {
	switch h {
	case diagram.HeadFilled:
		return cs.Arrow(dir)
	case diagram.HeadOpen:
		if dir == diagram.West {
			return '<'
		}
		return '>'
	case diagram.HeadCross:
		return 'x'
	}
	return 0
}

// drawNote draws a note box, blanking whatever lifeline passes underneath.
func drawNote(c *canvas.Canvas, n layout.NoteBox, pad int) {
	b := n.Box
	c.DrawBox(b, c.Charset().Rect)
	inner := b.Width - 2
	for i := 0; i < b.Height-2; i++ {
		var text string
		if i < len(n.Lines) {
			text = n.Lines[i]
		}
		row := strings.Repeat(" ", pad) + text
		row += strings.Repeat(" ", max(inner-canvas.Width(row), 0))
		c.DrawText(b.X+1, b.Y+1+i, row)
	}
}

// drawParticipant draws a header or footer: a box with the name, or a stick
// figure with the name underneath.
func drawParticipant(c *canvas.Canvas, p layout.ParticipantPosition, at diagram.Rect) {
	if p.Actor.Kind == diagram.ActorFigure {
		for i, row := range figure {
			c.DrawText(p.LifelineX-1, at.Y+i, row)
		}
		c.DrawCentered(at.X, at.Y+layout.FigureHeight, at.Width, p.Lines)
		return
	}
	c.DrawBox(at, c.Charset().Rect)
	c.DrawCentered(at.X+1, at.Y+1, at.Width-2, p.Lines)
}
