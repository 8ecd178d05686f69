package layout

import (
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/pathfinding"
)

// EntityBox is a placed entity.
type EntityBox struct {
	Entity   *diagram.Entity
	Box      diagram.Rect
	Text     Compartments
	Row, Col int
}

// ERRoute is a relationship line between two entities. Points run from the
// From end to the To end.
type ERRoute struct {
	Rel      diagram.EntityRelation
	Points   []diagram.Point
	From, To RouteEnd
	Label    []string
	LabelAt  diagram.Point
}

// ERLayout is the placed form of an entity-relationship diagram.
type ERLayout struct {
	Width, Height int
	Entities      []EntityBox
	Routes        []ERRoute
}

// Entity returns the placed entity with the given id, or nil.
func (l *ERLayout) Entity(id string) *EntityBox {
	for i := range l.Entities {
		if l.Entities[i].Entity.ID == id {
			return &l.Entities[i]
		}
	}
	return nil
}

// EntityText returns the compartments of an entity box: the name, then one
// row per attribute with type, name, keys and comment aligned in columns.
func EntityText(e *diagram.Entity) Compartments {
	name := e.Label
	if name == "" {
		name = e.ID
	}
	t := Compartments{Header: canvas.Lines(name)}
	if len(e.Attributes) == 0 {
		return t
	}

	cols := make([][]string, len(e.Attributes))
	widths := make([]int, 4)
	for i, a := range e.Attributes {
		var comment string
		if a.Comment != "" {
			comment = `"` + a.Comment + `"`
		}
		cols[i] = []string{canvas.Normalize(a.Type), canvas.Normalize(a.Name), strings.Join(a.Keys, ","), canvas.Normalize(comment)}
		for j, c := range cols[i] {
			widths[j] = max(widths[j], canvas.Width(c))
		}
	}
	rows := make([]string, len(cols))
	for i, c := range cols {
		var b strings.Builder
		for j, cell := range c {
			if widths[j] == 0 {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[j]-canvas.Width(cell)))
		}
		rows[i] = strings.TrimRight(b.String(), " ")
	}
	t.Sections = [][]string{rows}
	return t
}

type erPort struct {
	route  int
	end    int
	toward int
}

// ER lays out an entity-relationship diagram on a square-ish grid in
// declaration order and routes relationships with A* between the boxes.
func ER(d *diagram.ERDiagram, sp Spacing, logger *log.Logger) *ERLayout {
	logger = orDiscard(logger)
	sp = sp.Clamp()
	out := &ERLayout{}
	n := len(d.Entities)
	if n == 0 {
		return out
	}

	cols := 1
	for cols*cols < n {
		cols++
	}
	rows := (n + cols - 1) / cols
	gapX := max(sp.PaddingX, 10)
	gapY := max(sp.PaddingY, 5)

	out.Entities = make([]EntityBox, n)
	index := make(map[string]int, n)
	colW := make([]int, cols)
	rowH := make([]int, rows)
	for i, e := range d.Entities {
		text := EntityText(e)
		w, h := text.Size(sp.BoxPadding)
		r, c := i/cols, i%cols
		out.Entities[i] = EntityBox{Entity: e, Text: text, Row: r, Col: c, Box: diagram.Rect{Width: w, Height: h}}
		index[e.ID] = i
		colW[c] = max(colW[c], w)
		rowH[r] = max(rowH[r], h)
	}
	colX := make([]int, cols)
	for c := 1; c < cols; c++ {
		colX[c] = colX[c-1] + colW[c-1] + gapX
	}
	rowY := make([]int, rows)
	for r := 1; r < rows; r++ {
		rowY[r] = rowY[r-1] + rowH[r-1] + gapY
	}
	boxes := make([]diagram.Rect, n)
	for i := range out.Entities {
		e := &out.Entities[i]
		e.Box.X = colX[e.Col] + (colW[e.Col]-e.Box.Width)/2
		e.Box.Y = rowY[e.Row]
		boxes[i] = e.Box
	}
	box := func(id string) *EntityBox { return &out.Entities[index[id]] }

	// Entities side by side meet on their facing sides, anything else leaves
	// the upper box from the bottom and enters the lower one from the top.
	sides := make([][2]side, len(d.Relations))
	attached := make(map[sideKeyER][]erPort)
	var keys []sideKeyER
	attach := func(k sideKeyER, p erPort) {
		if _, ok := attached[k]; !ok {
			keys = append(keys, k)
		}
		attached[k] = append(attached[k], p)
	}
	for i, rel := range d.Relations {
		f, t := box(rel.From), box(rel.To)
		if rel.From == rel.To {
			continue
		}
		var s [2]side
		switch {
		case f.Row == t.Row && f.Col < t.Col:
			s = [2]side{sideRight, sideLeft}
		case f.Row == t.Row:
			s = [2]side{sideLeft, sideRight}
		case f.Row < t.Row:
			s = [2]side{sideBottom, sideTop}
		default:
			s = [2]side{sideTop, sideBottom}
		}
		sides[i] = s
		attach(sideKeyER{rel.From, s[0]}, erPort{i, 0, toward(t.Box, s[0])})
		attach(sideKeyER{rel.To, s[1]}, erPort{i, 1, toward(f.Box, s[1])})
	}
	ends := make([][2]RouteEnd, len(d.Relations))
	for _, k := range keys {
		list := attached[k]
		sort.SliceStable(list, func(i, j int) bool { return list[i].toward < list[j].toward })
		b := box(k.id).Box
		for j, p := range list {
			ends[p.route][p.end] = spreadPort(b, k.side, j, len(list))
		}
	}

	finder := pathfinding.NewAStarPathFinder(pathfinding.DefaultPathCost)
	total := diagram.Rect{}
	for _, b := range boxes {
		total = total.Union(b)
	}
	bounds := pathfinding.CreateBoundsObstacleChecker(total.Inflate(3, 3))
	blocked := pathfinding.CreateRectObstacleChecker(boxes, 0)
	used := pathfinding.NewPathSet()

	for i, rel := range d.Relations {
		var pts []diagram.Point
		from, to := ends[i][0], ends[i][1]
		if rel.From == rel.To {
			pts, from, to = selfRoute(box(rel.From).Box)
		} else {
			path, err := finder.FindRoute(from.At, to.At, pathfinding.CombineObstacleCheckers(bounds, blocked), used.Checker())
			if err != nil {
				logger.Warn("relationship routed without obstacle avoidance", "from", rel.From, "to", rel.To, "err", err)
				path = diagram.Path{Points: elbow(from.At, to.At)}
			}
			used.Add(path)
			pts = path.Points
		}
		from.annotate(string(rel.FromCard))
		to.annotate(string(rel.ToCard))
		route := ERRoute{Rel: rel, Points: compact(pts), From: from, To: to}
		if rel.Label != "" {
			route.Label = canvas.Lines(rel.Label)
			route.LabelAt = placeLabel(route.Points, route.Label, boxes)
		}
		out.Routes = append(out.Routes, route)
	}

	out.normalize()
	logger.Debug("er layout", "entities", n, "rows", rows, "cols", cols, "relations", len(out.Routes))
	return out
}

type sideKeyER struct {
	id   string
	side side
}

// toward is the coordinate of other along the axis of side s.
func toward(other diagram.Rect, s side) int {
	if s == sideLeft || s == sideRight {
		return other.CenterY()
	}
	return other.CenterX()
}

// spreadPort returns the j-th of n evenly spaced ports on side s of b.
func spreadPort(b diagram.Rect, s side, j, n int) RouteEnd {
	along := func(lo, length int) int {
		return min(max(lo+(j+1)*length/(n+1), lo+1), lo+length-2)
	}
	switch s {
	case sideTop:
		return RouteEnd{At: diagram.Point{X: along(b.X, b.Width), Y: b.Y - 1}, Dir: diagram.South}
	case sideBottom:
		return RouteEnd{At: diagram.Point{X: along(b.X, b.Width), Y: b.Bottom() + 1}, Dir: diagram.North}
	case sideLeft:
		return RouteEnd{At: diagram.Point{X: b.X - 1, Y: along(b.Y, b.Height)}, Dir: diagram.East}
	default:
		return RouteEnd{At: diagram.Point{X: b.Right() + 1, Y: along(b.Y, b.Height)}, Dir: diagram.West}
	}
}

func (l *ERLayout) normalize() {
	var ext extent
	for _, e := range l.Entities {
		ext.rect(e.Box)
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
	for i := range l.Entities {
		moveRect(&l.Entities[i].Box, d)
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
