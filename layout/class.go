package layout

import (
	"sort"

	"github.com/charmbracelet/log"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/pathfinding"
)

// ClassBox is a placed class.
type ClassBox struct {
	Class *diagram.Class
	Box   diagram.Rect
	Text  Compartments
	Level int
}

// RouteEnd is where a connector meets a box.
type RouteEnd struct {
	At     diagram.Point     // cell just outside the box border
	Dir    diagram.Direction // direction of travel into the box
	Text   string            // multiplicity or cardinality, may be empty
	TextAt diagram.Point
}

func (e *RouteEnd) annotate(text string) {
	e.Text = text
	switch e.Dir {
	case diagram.North, diagram.South:
		e.TextAt = diagram.Point{X: e.At.X + 2, Y: e.At.Y}
	case diagram.East:
		e.TextAt = diagram.Point{X: e.At.X - canvas.Width(text) + 1, Y: e.At.Y - 1}
	default:
		e.TextAt = diagram.Point{X: e.At.X, Y: e.At.Y - 1}
	}
}

// ClassRoute is a relationship drawn between two class boxes. Points run
// from the From end to the To end.
type ClassRoute struct {
	Rel      diagram.Relationship
	Points   []diagram.Point
	From, To RouteEnd
	Label    []string
	LabelAt  diagram.Point
}

// ClassLayout is the placed form of a class diagram.
type ClassLayout struct {
	Width, Height int
	Classes       []ClassBox
	Routes        []ClassRoute
}

// Class returns the placed class with the given id, or nil.
func (l *ClassLayout) Class(id string) *ClassBox {
	for i := range l.Classes {
		if l.Classes[i].Class.ID == id {
			return &l.Classes[i]
		}
	}
	return nil
}

// ClassText returns the compartments of a class box. A class without
// members has one compartment, attributes add a second and methods a third.
func ClassText(c *diagram.Class) Compartments {
	var t Compartments
	if c.Annotation != "" {
		t.Header = append(t.Header, "<<"+c.Annotation+">>")
	}
	name := c.Label
	if name == "" {
		name = c.ID
	}
	t.Header = append(t.Header, canvas.Lines(name)...)

	attrs := memberLines(c.Attributes)
	switch {
	case len(c.Methods) > 0:
		t.Sections = [][]string{attrs, memberLines(c.Methods)}
	case len(attrs) > 0:
		t.Sections = [][]string{attrs}
	}
	return t
}

func memberLines(ms []diagram.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = canvas.Normalize(m.String())
	}
	return out
}

type sideKey struct {
	id  string
	top bool
}

type attachment struct {
	route  int
	end    int // 0 for From, 1 for To
	toward int // centre column of the box at the other end
}

// Class lays out a class diagram: one row per level, rows centred, and
// relationships routed through the gaps between rows.
func Class(d *diagram.ClassDiagram, sp Spacing, logger *log.Logger) *ClassLayout {
	logger = orDiscard(logger)
	sp = sp.Clamp()
	out := &ClassLayout{}
	if len(d.Classes) == 0 {
		return out
	}

	ids := make([]string, len(d.Classes))
	for i, c := range d.Classes {
		ids[i] = c.ID
	}
	links := make([]Link, 0, len(d.Relationships))
	labelRows := 1
	for _, r := range d.Relationships {
		links = append(links, Link{From: r.Parent(), To: r.Child()})
		if r.Label != "" {
			labelRows = max(labelRows, len(canvas.Lines(r.Label)))
		}
	}
	levels := CappedLevels(ids, links)
	rows := Rows(ids, levels)

	gapX := max(sp.PaddingX, 2)
	gapY := max(sp.PaddingY, labelRows+2, 3)

	out.Classes = make([]ClassBox, len(d.Classes))
	index := make(map[string]int, len(ids))
	for i, c := range d.Classes {
		text := ClassText(c)
		w, h := text.Size(sp.BoxPadding)
		out.Classes[i] = ClassBox{Class: c, Text: text, Level: levels[c.ID], Box: diagram.Rect{Width: w, Height: h}}
		index[c.ID] = i
	}
	box := func(id string) *ClassBox { return &out.Classes[index[id]] }

	rowTop := make([]int, len(rows))
	rowBottom := make([]int, len(rows))
	rowW := make([]int, len(rows))
	widest, y := 0, 0
	for l, row := range rows {
		h := 0
		for i, id := range row {
			b := box(id).Box
			h = max(h, b.Height)
			rowW[l] += b.Width
			if i > 0 {
				rowW[l] += gapX
			}
		}
		rowTop[l], rowBottom[l] = y, y+h-1
		y += h + gapY
		widest = max(widest, rowW[l])
	}
	for l, row := range rows {
		x := (widest - rowW[l]) / 2
		for _, id := range row {
			b := box(id)
			b.Box.X, b.Box.Y = x, rowTop[l]
			x += b.Box.Width + gapX
		}
	}

	// Spread the connectors meeting one side of a box over its width,
	// ordered by where their other end sits.
	attached := make(map[sideKey][]attachment)
	var keys []sideKey
	attach := func(k sideKey, a attachment) {
		if _, ok := attached[k]; !ok {
			keys = append(keys, k)
		}
		attached[k] = append(attached[k], a)
	}
	for i, r := range d.Relationships {
		f, t := box(r.From), box(r.To)
		fc, tc := f.Box.CenterX(), t.Box.CenterX()
		switch {
		case r.From == r.To:
		case f.Level < t.Level:
			attach(sideKey{r.From, false}, attachment{i, 0, tc})
			attach(sideKey{r.To, true}, attachment{i, 1, fc})
		case f.Level > t.Level:
			attach(sideKey{r.From, true}, attachment{i, 0, tc})
			attach(sideKey{r.To, false}, attachment{i, 1, fc})
		default:
			attach(sideKey{r.From, false}, attachment{i, 0, tc})
			attach(sideKey{r.To, false}, attachment{i, 1, fc})
		}
	}
	ports := make([][2]int, len(d.Relationships))
	for _, k := range keys {
		list := attached[k]
		sort.SliceStable(list, func(i, j int) bool { return list[i].toward < list[j].toward })
		b := box(k.id).Box
		for n, a := range list {
			x := b.X + (n+1)*b.Width/(len(list)+1)
			ports[a.route][a.end] = min(max(x, b.X+1), b.Right()-1)
		}
	}

	gapMid := func(l int) int { return rowBottom[l] + 1 + (gapY-1)/2 }
	clearColumn := func(x, from, to int) bool {
		for l := from; l <= to; l++ {
			for _, id := range rows[l] {
				b := box(id).Box
				if x >= b.X-1 && x <= b.Right()+1 {
					return false
				}
			}
		}
		return true
	}

	boxes := make([]diagram.Rect, len(out.Classes))
	for i, c := range out.Classes {
		boxes[i] = c.Box
	}
	for i, r := range d.Relationships {
		f, t := box(r.From), box(r.To)
		fx, tx := ports[i][0], ports[i][1]
		var pts []diagram.Point
		var from, to RouteEnd

		switch {
		case r.From == r.To:
			pts, from, to = selfRoute(f.Box)
		case f.Level == t.Level:
			yd := rowBottom[f.Level] + 2
			from = RouteEnd{At: diagram.Point{X: fx, Y: f.Box.Bottom() + 1}, Dir: diagram.North}
			to = RouteEnd{At: diagram.Point{X: tx, Y: t.Box.Bottom() + 1}, Dir: diagram.North}
			pts = []diagram.Point{from.At, {X: fx, Y: yd}, {X: tx, Y: yd}, to.At}
		default:
			upper, lower, ux, lx := f, t, fx, tx
			if f.Level > t.Level {
				upper, lower, ux, lx = t, f, tx, fx
			}
			uEnd := RouteEnd{At: diagram.Point{X: ux, Y: upper.Box.Bottom() + 1}, Dir: diagram.North}
			lEnd := RouteEnd{At: diagram.Point{X: lx, Y: lower.Box.Y - 1}, Dir: diagram.South}
			ym1 := gapMid(upper.Level)
			if lower.Level == upper.Level+1 {
				pts = []diagram.Point{uEnd.At, {X: ux, Y: ym1}, {X: lx, Y: ym1}, lEnd.At}
			} else {
				ym2 := gapMid(lower.Level - 1)
				cx := ux
				for step := 0; ; step++ {
					if clearColumn(ux+step, upper.Level+1, lower.Level-1) {
						cx = ux + step
						break
					}
					if step > 0 && clearColumn(ux-step, upper.Level+1, lower.Level-1) {
						cx = ux - step
						break
					}
				}
				pts = []diagram.Point{uEnd.At, {X: ux, Y: ym1}, {X: cx, Y: ym1}, {X: cx, Y: ym2}, {X: lx, Y: ym2}, lEnd.At}
			}
			from, to = uEnd, lEnd
			if upper == t {
				from, to = lEnd, uEnd
				reverse(pts)
			}
		}

		from.annotate(r.FromMultiplicity)
		to.annotate(r.ToMultiplicity)
		route := ClassRoute{Rel: r, Points: compact(pts), From: from, To: to}
		if r.Label != "" {
			route.Label = canvas.Lines(r.Label)
			route.LabelAt = placeLabel(route.Points, route.Label, boxes)
		}
		out.Routes = append(out.Routes, route)
	}

	out.normalize()
	logger.Debug("class layout", "classes", len(out.Classes), "levels", len(rows), "relationships", len(out.Routes))
	return out
}

// selfRoute loops from the right side of a box round to its bottom edge.
func selfRoute(b diagram.Rect) ([]diagram.Point, RouteEnd, RouteEnd) {
	r, bottom := b.Right(), b.Bottom()
	from := RouteEnd{At: diagram.Point{X: r + 1, Y: b.Y + 1}, Dir: diagram.West}
	to := RouteEnd{At: diagram.Point{X: r - 1, Y: bottom + 1}, Dir: diagram.North}
	pts := []diagram.Point{from.At, {X: r + 2, Y: b.Y + 1}, {X: r + 2, Y: bottom + 2}, {X: r - 1, Y: bottom + 2}, to.At}
	return pts, from, to
}

// placeLabel centres a label on the midpoint of a route. When that would
// cover a box the label moves to the first clear row within the route's
// vertical span.
func placeLabel(pts []diagram.Point, lines []string, boxes []diagram.Rect) diagram.Point {
	w, h := canvas.MaxWidth(lines), len(lines)
	mid := midpoint(pts)
	at := diagram.Point{X: mid.X - w/2, Y: mid.Y - h/2}
	clear := func(p diagram.Point) bool {
		r := diagram.Rect{X: p.X, Y: p.Y, Width: w, Height: h}
		for _, b := range boxes {
			if b.Overlaps(r) {
				return false
			}
		}
		return true
	}
	if clear(at) {
		return at
	}
	top, bottom := pts[0].Y, pts[0].Y
	for _, p := range pts {
		top, bottom = min(top, p.Y), max(bottom, p.Y)
	}
	for y := top; y+h-1 <= bottom; y++ {
		if p := (diagram.Point{X: at.X, Y: y}); clear(p) {
			return p
		}
	}
	return at
}

// midpoint returns the point halfway along an orthogonal polyline.
func midpoint(pts []diagram.Point) diagram.Point {
	total := 0
	for i := 0; i+1 < len(pts); i++ {
		total += pathfinding.ManhattanDistance(pts[i], pts[i+1])
	}
	half := total / 2
	for i := 0; i+1 < len(pts); i++ {
		seg := pathfinding.ManhattanDistance(pts[i], pts[i+1])
		if half <= seg {
			d, _ := diagram.DirectionBetween(pts[i], pts[i+1])
			p := pts[i]
			for ; half > 0; half-- {
				p = p.Step(d)
			}
			return p
		}
		half -= seg
	}
	return pts[len(pts)-1]
}

// compact drops repeated points and collapses straight runs.
func compact(pts []diagram.Point) []diagram.Point {
	out := make([]diagram.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return pathfinding.SimplifyPath(diagram.Path{Points: out}).Points
}

func reverse(pts []diagram.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func (l *ClassLayout) normalize() {
	var ext extent
	for _, c := range l.Classes {
		ext.rect(c.Box)
	}
	for _, r := range l.Routes {
		ext.points(r.Points)
		if r.Label != nil {
			ext.text(r.LabelAt, r.Label)
		}
		for _, e := range []RouteEnd{r.From, r.To} {
			if e.Text != "" {
				ext.text(e.TextAt, []string{e.Text})
			}
		}
	}
	d := ext.shift()
	for i := range l.Classes {
		moveRect(&l.Classes[i].Box, d)
	}
	for i := range l.Routes {
		r := &l.Routes[i]
		movePoints(r.Points, d)
		movePoint(&r.LabelAt, d)
		movePoint(&r.From.At, d)
		movePoint(&r.To.At, d)
		movePoint(&r.From.TextAt, d)
		movePoint(&r.To.TextAt, d)
	}
	l.Width, l.Height = ext.size()
}
