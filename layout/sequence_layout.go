package layout

import (
	"sort"
	"strconv"

	"github.com/charmbracelet/log"

	"termaid/canvas"
	"termaid/diagram"
)

// Figure geometry for stick-figure actors: head, arms and legs above the name.
const (
	FigureWidth  = 3
	FigureHeight = 3
)

// selfLoopWidth is how far a self message loops to the right of its lifeline.
const selfLoopWidth = 3

// SequenceLayout implements a layout engine for UML sequence diagrams
type SequenceLayout struct {
	ParticipantSpacing int // Minimum horizontal gap between participant boxes
	MessageSpacing     int // Blank rows after each timeline step
	BoxPadding         int // Horizontal padding inside participant and note boxes

	logger *log.Logger
}

// SequencePositions holds computed positions for sequence diagram elements
type SequencePositions struct {
	Width, Height int
	Participants  []ParticipantPosition // in column order
	Messages      []MessagePosition     // in message order
	Notes         []NoteBox
	Frames        []FrameBox // outer frames before the frames they contain
	Activations   []ActivationSpan
}

// ParticipantPosition holds the computed position of a participant
type ParticipantPosition struct {
	Actor      *diagram.Actor
	Lines      []string
	Head, Foot diagram.Rect
	LifelineX  int
	// Lifeline rows, inclusive, between the header and the footer.
	LifelineTop, LifelineBottom int
}

// MessagePosition holds the computed position of a message. FromX and ToX are
// lifeline columns and Y is the arrow row; a self message loops over the rows
// Y to Y+2.
type MessagePosition struct {
	Message diagram.Message
	FromX   int
	ToX     int
	Y       int
	Self    bool
	Label   []string
	LabelAt diagram.Point
}

// NoteBox is a placed note.
type NoteBox struct {
	Note  diagram.Note
	Box   diagram.Rect
	Lines []string
}

// FrameBox is a placed block frame with its section dividers.
type FrameBox struct {
	Block    diagram.Block
	Box      diagram.Rect
	Title    string
	Dividers []FrameDivider
	Depth    int
}

// FrameDivider is a dashed row splitting a frame.
type FrameDivider struct {
	Y     int
	Label string
}

// ActivationSpan is a highlighted lifeline segment, rows inclusive.
type ActivationSpan struct {
	Actor       string
	X           int
	Top, Bottom int
}

// NewSequenceLayout creates a new sequence diagram layout engine
func NewSequenceLayout(sp Spacing, logger *log.Logger) *SequenceLayout {
	sp = sp.Clamp()
	return &SequenceLayout{
		ParticipantSpacing: max(sp.PaddingX, 1),
		MessageSpacing:     1,
		BoxPadding:         sp.BoxPadding,
		logger:             orDiscard(logger),
	}
}

// span is a minimum distance between two lifelines, a < b.
type span struct {
	a, b int
	need int
}

// MessageText returns the label lines of a message with its autonumber prefix.
func MessageText(m diagram.Message) []string {
	lines := canvas.Lines(m.Label)
	if m.Number > 0 {
		prefix := strconv.Itoa(m.Number) + "."
		if len(lines) == 0 || (len(lines) == 1 && lines[0] == "") {
			return []string{prefix}
		}
		lines[0] = prefix + " " + lines[0]
	}
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}

// noteSize is the outer size of a note box.
func (s *SequenceLayout) noteSize(lines []string) (int, int) {
	return canvas.MaxWidth(lines) + 2*s.BoxPadding + 2, len(lines) + 2
}

// participantSize is the header size of an actor.
func (s *SequenceLayout) participantSize(a *diagram.Actor, lines []string) (int, int) {
	if a.Kind == diagram.ActorFigure {
		return max(FigureWidth, canvas.MaxWidth(lines)), FigureHeight + len(lines)
	}
	return canvas.MaxWidth(lines) + 2*s.BoxPadding + 2, len(lines) + 2
}

// ComputePositions calculates positions for all elements without modifying the diagram
func (s *SequenceLayout) ComputePositions(d *diagram.SequenceDiagram) *SequencePositions {
	out := &SequencePositions{}
	if d == nil || len(d.Actors) == 0 {
		return out
	}
	n := len(d.Actors)

	out.Participants = make([]ParticipantPosition, n)
	headH := 0
	for i, a := range d.Actors {
		lines := canvas.Lines(a.Label)
		w, h := s.participantSize(a, lines)
		out.Participants[i] = ParticipantPosition{Actor: a, Lines: lines, Head: diagram.Rect{Width: w, Height: h}}
		headH = max(headH, h)
	}

	centres := s.columns(d, out.Participants)
	for i := range out.Participants {
		p := &out.Participants[i]
		p.LifelineX = centres[i]
		p.Head.X = centres[i] - p.Head.Width/2
	}

	s.timeline(d, out, centres, headH+1)

	e := &extent{}
	for i := range out.Participants {
		e.rect(out.Participants[i].Head)
		e.rect(out.Participants[i].Foot)
	}
	for _, m := range out.Messages {
		e.point(diagram.Point{X: m.FromX, Y: m.Y})
		e.point(diagram.Point{X: m.ToX, Y: m.Y})
		if m.Self {
			e.point(diagram.Point{X: m.FromX + selfLoopWidth, Y: m.Y + 2})
		}
		e.text(m.LabelAt, m.Label)
	}
	for _, nb := range out.Notes {
		e.rect(nb.Box)
	}
	for _, f := range out.Frames {
		e.rect(f.Box)
	}
	shift := e.shift()
	out.Width, out.Height = e.size()
	for i := range out.Participants {
		p := &out.Participants[i]
		moveRect(&p.Head, shift)
		moveRect(&p.Foot, shift)
		p.LifelineX += shift.X
		p.LifelineTop += shift.Y
		p.LifelineBottom += shift.Y
	}
	for i := range out.Messages {
		m := &out.Messages[i]
		m.FromX += shift.X
		m.ToX += shift.X
		m.Y += shift.Y
		movePoint(&m.LabelAt, shift)
	}
	for i := range out.Notes {
		moveRect(&out.Notes[i].Box, shift)
	}
	for i := range out.Frames {
		f := &out.Frames[i]
		moveRect(&f.Box, shift)
		for j := range f.Dividers {
			f.Dividers[j].Y += shift.Y
		}
	}
	for i := range out.Activations {
		a := &out.Activations[i]
		a.X += shift.X
		a.Top += shift.Y
		a.Bottom += shift.Y
	}

	s.logger.Debug("sequence layout", "actors", n, "messages", len(out.Messages), "frames", len(out.Frames), "notes", len(out.Notes))
	return out
}

// columns returns the lifeline column of every actor. Adjacent headers keep
// ParticipantSpacing apart; message, self-loop and note text widen the gaps
// they need, shortest spans first.
func (s *SequenceLayout) columns(d *diagram.SequenceDiagram, ps []ParticipantPosition) []int {
	n := len(ps)
	gap := make([]int, max(n-1, 0))
	for i := 0; i+1 < n; i++ {
		w, next := ps[i].Head.Width, ps[i+1].Head.Width
		gap[i] = w - w/2 + next/2 + s.ParticipantSpacing
	}

	var spans []span
	need := func(a, b, cells int) {
		if a > b {
			a, b = b, a
		}
		if a < 0 || b >= n || a == b {
			return
		}
		spans = append(spans, span{a, b, cells})
	}
	for _, m := range d.Messages {
		a, b := d.ActorIndex(m.From), d.ActorIndex(m.To)
		w := canvas.MaxWidth(MessageText(m))
		if a == b {
			need(a, a+1, max(selfLoopWidth+1, w+2)+2)
			continue
		}
		need(a, b, w+4)
	}
	for _, note := range d.Notes {
		if len(note.Actors) == 0 {
			continue
		}
		lines := canvas.Lines(note.Text)
		w, _ := s.noteSize(lines)
		first, last := d.ActorIndex(note.Actors[0]), d.ActorIndex(note.Actors[len(note.Actors)-1])
		switch note.Position {
		case diagram.NoteRightOf:
			need(first, first+1, w+3)
		case diagram.NoteLeftOf:
			need(first-1, first, w+3)
		default:
			if first == last {
				need(first-1, first, w/2+2)
				need(first, first+1, w-w/2+2)
			} else {
				need(first, last, w-4)
			}
		}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].b-spans[i].a < spans[j].b-spans[j].a })
	for _, sp := range spans {
		have := 0
		for i := sp.a; i < sp.b; i++ {
			have += gap[i]
		}
		if have < sp.need {
			gap[sp.b-1] += sp.need - have
		}
	}

	centres := make([]int, n)
	for i := 1; i < n; i++ {
		centres[i] = centres[i-1] + gap[i-1]
	}
	return centres
}

type openFrame struct {
	frame    int
	top      int
	minX     int
	maxX     int
	hasInner bool
}

func (o *openFrame) cover(x0, x1 int) {
	if !o.hasInner {
		o.minX, o.maxX, o.hasInner = x0, x1, true
		return
	}
	o.minX, o.maxX = min(o.minX, x0), max(o.maxX, x1)
}

// timeline walks the events top to bottom, assigning rows to messages,
// notes and frames, and closes with the footers.
func (s *SequenceLayout) timeline(d *diagram.SequenceDiagram, out *SequencePositions, centres []int, y int) {
	var stack []*openFrame
	cover := func(x0, x1 int) {
		if len(stack) > 0 {
			stack[len(stack)-1].cover(x0, x1)
		}
	}
	active := make(map[string][]int)
	lastArrow := -1

	for _, ev := range d.Events {
		arrow := -1
		switch ev.Kind {
		case diagram.EventMessage:
			m := d.Messages[ev.Ref]
			mp := s.message(d, m, centres, y)
			out.Messages = append(out.Messages, mp)
			lo, hi := min(mp.FromX, mp.ToX), max(mp.FromX, mp.ToX)
			if mp.Self {
				hi += selfLoopWidth
			}
			if len(mp.Label) > 0 {
				lo = min(lo, mp.LabelAt.X)
				hi = max(hi, mp.LabelAt.X+canvas.MaxWidth(mp.Label)-1)
			}
			cover(lo, hi)
			arrow = mp.Y
			y = mp.Y + 1
			if mp.Self {
				arrow = mp.Y + 2
				y = mp.Y + 3
			}
			y += s.MessageSpacing

		case diagram.EventNote:
			if len(d.Notes[ev.Ref].Actors) == 0 {
				continue
			}
			nb := s.note(d, d.Notes[ev.Ref], centres, y)
			out.Notes = append(out.Notes, nb)
			cover(nb.Box.X, nb.Box.Right())
			y = nb.Box.Bottom() + 1 + s.MessageSpacing

		case diagram.EventBlockStart:
			b := d.Blocks[ev.Ref]
			title := string(b.Type)
			if b.Label != "" {
				title += " [" + b.Label + "]"
			}
			out.Frames = append(out.Frames, FrameBox{Block: b, Title: canvas.Normalize(title), Depth: len(stack)})
			stack = append(stack, &openFrame{frame: len(out.Frames) - 1, top: y})
			y++

		case diagram.EventDivider:
			if len(stack) == 0 {
				continue
			}
			f := &out.Frames[stack[len(stack)-1].frame]
			var label string
			if l := f.Block.Dividers[ev.Sub].Label; l != "" {
				label = "[" + canvas.Normalize(l) + "]"
			}
			f.Dividers = append(f.Dividers, FrameDivider{Y: y, Label: label})
			y++

		case diagram.EventBlockEnd:
			if len(stack) == 0 {
				continue
			}
			o := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			f := &out.Frames[o.frame]
			if !o.hasInner {
				o.minX, o.maxX = centres[0], centres[0]
			}
			left := o.minX - 2
			right := max(o.maxX+2, left+canvas.Width(f.Title)+3)
			for _, dv := range f.Dividers {
				right = max(right, left+canvas.Width(dv.Label)+3)
			}
			f.Box = diagram.Rect{X: left, Y: o.top, Width: right - left + 1, Height: y - o.top + 1}
			cover(f.Box.X, f.Box.Right())
			y += 1 + s.MessageSpacing

		case diagram.EventActivate:
			top := y
			if lastArrow >= 0 {
				top = lastArrow
			}
			active[ev.Actor] = append(active[ev.Actor], top)
			arrow = lastArrow

		case diagram.EventDeactivate:
			starts := active[ev.Actor]
			if len(starts) == 0 {
				s.logger.Debug("deactivate without activation", "actor", ev.Actor)
				continue
			}
			top := starts[len(starts)-1]
			active[ev.Actor] = starts[:len(starts)-1]
			bottom := max(top, y-1)
			if lastArrow >= 0 {
				bottom = max(top, lastArrow)
			}
			out.Activations = append(out.Activations, ActivationSpan{
				Actor: ev.Actor, X: centres[d.ActorIndex(ev.Actor)], Top: top, Bottom: bottom,
			})
			arrow = lastArrow
		}
		lastArrow = arrow
	}

	for _, a := range d.Actors {
		for _, top := range active[a.ID] {
			out.Activations = append(out.Activations, ActivationSpan{
				Actor: a.ID, X: centres[d.ActorIndex(a.ID)], Top: top, Bottom: max(top, y-1),
			})
		}
	}

	for i := range out.Participants {
		p := &out.Participants[i]
		p.Foot = p.Head
		p.Foot.Y = y
		p.LifelineTop = p.Head.Bottom() + 1
		p.LifelineBottom = y - 1
	}
}

func (s *SequenceLayout) message(d *diagram.SequenceDiagram, m diagram.Message, centres []int, y int) MessagePosition {
	from, to := centres[d.ActorIndex(m.From)], centres[d.ActorIndex(m.To)]
	lines := MessageText(m)
	mp := MessagePosition{Message: m, FromX: from, ToX: to, Y: y + len(lines), Self: m.From == m.To, Label: lines}
	if mp.Self {
		mp.LabelAt = diagram.Point{X: from + 2, Y: y}
		return mp
	}
	lo, hi := min(from, to), max(from, to)
	w := canvas.MaxWidth(lines)
	mp.LabelAt = diagram.Point{X: lo + 1 + canvas.CenterOffset(w, hi-lo-1), Y: y}
	return mp
}

func (s *SequenceLayout) note(d *diagram.SequenceDiagram, note diagram.Note, centres []int, y int) NoteBox {
	lines := canvas.Lines(note.Text)
	w, h := s.noteSize(lines)
	first := centres[d.ActorIndex(note.Actors[0])]
	last := centres[d.ActorIndex(note.Actors[len(note.Actors)-1])]
	lo, hi := min(first, last), max(first, last)

	var x int
	switch note.Position {
	case diagram.NoteRightOf:
		x = lo + 2
	case diagram.NoteLeftOf:
		x = lo - 1 - w
	default:
		if lo != hi {
			w = max(w, hi-lo+5)
		}
		x = (lo+hi)/2 - w/2
	}
	return NoteBox{Note: note, Lines: lines, Box: diagram.Rect{X: x, Y: y, Width: w, Height: h}}
}
