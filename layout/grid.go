package layout

import (
	"sort"

	"github.com/charmbracelet/log"

	"termaid/canvas"
	"termaid/diagram"
	"termaid/pathfinding"
)

// The grid layout places every node on a coarse grid where a node takes a
// 3x3 block of cells (border, content, border on both axes) and blocks are
// one gap cell apart. Edges are routed cell by cell over that grid; only
// then are column widths and row heights fixed and the grid mapped onto
// canvas coordinates.
const (
	blockSize = 3
	blockStep = blockSize + 1
)

// FlowNode is a flowchart node with its canvas box.
type FlowNode struct {
	Node  *diagram.Node
	Lines []string // label lines, nil for pseudostates
	Box   diagram.Rect
	Level int
	Slot  int
}

// FlowEdge is an edge routed on the canvas.
type FlowEdge struct {
	Edge    diagram.Edge
	Points  []diagram.Point // orthogonal polyline, corners only
	Label   []string
	LabelAt diagram.Point // top-left of the label block
}

// FlowFrame is the outline drawn around a subgraph.
type FlowFrame struct {
	Subgraph *diagram.Subgraph
	Box      diagram.Rect
	Label    []string
	Depth    int
}

// FlowLayout is the placed form of a flowchart or state diagram.
type FlowLayout struct {
	Width, Height int
	Nodes         []FlowNode
	Edges         []FlowEdge
	Frames        []FlowFrame
	// Flip asks the renderer to mirror the drawing vertically before
	// writing text, turning the top-down layout into bottom-to-top.
	Flip bool
}

// Node returns the placed node with the given id, or nil.
func (l *FlowLayout) Node(id string) *FlowNode {
	for i := range l.Nodes {
		if l.Nodes[i].Node.ID == id {
			return &l.Nodes[i]
		}
	}
	return nil
}

// IsPseudostate reports whether a shape is a synthetic start or end state.
func IsPseudostate(s diagram.Shape) bool {
	return s == diagram.ShapeStateStart || s == diagram.ShapeStateEnd
}

type side int

const (
	sideTop side = iota
	sideRight
	sideBottom
	sideLeft
)

type gridNode struct {
	node  *diagram.Node
	lines []string
	level int
	slot  int
	at    diagram.Point // top-left grid cell of the block
}

func (n *gridNode) port(s side) diagram.Point {
	switch s {
	case sideTop:
		return diagram.Point{X: n.at.X + 1, Y: n.at.Y}
	case sideRight:
		return diagram.Point{X: n.at.X + 2, Y: n.at.Y + 1}
	case sideBottom:
		return diagram.Point{X: n.at.X + 1, Y: n.at.Y + 2}
	default:
		return diagram.Point{X: n.at.X, Y: n.at.Y + 1}
	}
}

func (n *gridNode) textSize() (w, h int) {
	if n.lines == nil {
		return 1, 1
	}
	return canvas.MaxWidth(n.lines), len(n.lines)
}

// edgeSides picks the ports an edge leaves and enters through. Layouts
// running left to right use the same rules turned by a quarter.
func edgeSides(src, dst *gridNode, vertical bool) (side, side) {
	pick := func(v1, v2, h1, h2 side) (side, side) {
		if vertical {
			return v1, v2
		}
		return h1, h2
	}
	switch {
	case src == dst:
		return pick(sideRight, sideBottom, sideBottom, sideRight)
	case dst.level > src.level:
		return pick(sideBottom, sideTop, sideRight, sideLeft)
	case dst.level < src.level:
		return pick(sideRight, sideRight, sideBottom, sideBottom)
	case dst.slot > src.slot:
		return pick(sideRight, sideLeft, sideBottom, sideTop)
	default:
		return pick(sideLeft, sideRight, sideTop, sideBottom)
	}
}

// axis maps grid indices to canvas offsets.
type axis struct {
	pos  []int
	size []int
}

func newAxis(sizes []int) axis {
	pos := make([]int, len(sizes))
	at := 0
	for i, s := range sizes {
		pos[i] = at
		at += s
	}
	return axis{pos: pos, size: sizes}
}

func (a axis) center(i int) int { return a.pos[i] + a.size[i]/2 }

// span returns the canvas offset and extent of grid cells from..from+n-1.
func (a axis) span(from, n int) (int, int) {
	end := from + n - 1
	return a.pos[from], a.pos[end] + a.size[end] - a.pos[from]
}

// Grid lays out a flowchart or state graph.
func Grid(g *diagram.Graph, sp Spacing, logger *log.Logger) *FlowLayout {
	logger = orDiscard(logger)
	sp = sp.Clamp()
	out := &FlowLayout{Flip: g.Direction == diagram.DirectionBT}
	if len(g.Nodes) == 0 {
		return out
	}
	vertical := g.Direction.Vertical()

	ids := g.NodeIDs()
	links := make([]Link, 0, len(g.Edges))
	for _, e := range g.Edges {
		links = append(links, Link{From: e.From, To: e.To})
	}
	levels := Levels(ids, links)
	rows := Rows(ids, levels)

	nodes := make(map[string]*gridNode, len(ids))
	order := make([]*gridNode, 0, len(ids))
	blocked := make(map[diagram.Point]bool)
	gw, gh := 0, 0
	for lvl, row := range rows {
		for slot, id := range groupedOrder(g, row) {
			n := g.Node(id)
			gn := &gridNode{node: n, level: lvl, slot: slot}
			if !IsPseudostate(n.Shape) {
				text := n.Label
				if text == "" {
					text = n.ID
				}
				gn.lines = canvas.Lines(text)
			}
			main, cross := 1+lvl*blockStep, 1+slot*blockStep
			if vertical {
				gn.at = diagram.Point{X: cross, Y: main}
			} else {
				gn.at = diagram.Point{X: main, Y: cross}
			}
			for dx := 0; dx < blockSize; dx++ {
				for dy := 0; dy < blockSize; dy++ {
					blocked[diagram.Point{X: gn.at.X + dx, Y: gn.at.Y + dy}] = true
				}
			}
			gw = max(gw, gn.at.X+blockSize)
			gh = max(gh, gn.at.Y+blockSize)
			nodes[id] = gn
		}
	}
	for _, id := range ids {
		order = append(order, nodes[id])
	}

	// Route every edge over the grid, cheapest first come first served.
	finder := pathfinding.NewAStarPathFinder(pathfinding.DefaultPathCost)
	bounds := pathfinding.CreateBoundsObstacleChecker(diagram.Rect{Width: gw + 1, Height: gh + 1})
	used := pathfinding.NewPathSet()
	routes := make([][]diagram.Point, len(g.Edges))
	for i, e := range g.Edges {
		src, dst := nodes[e.From], nodes[e.To]
		if src == nil || dst == nil {
			continue
		}
		s1, s2 := edgeSides(src, dst, vertical)
		start, end := src.port(s1), dst.port(s2)
		isBlocked := func(p diagram.Point) bool {
			return p != start && p != end && blocked[p]
		}
		path, err := finder.FindRoute(start, end,
			pathfinding.CombineObstacleCheckers(bounds, isBlocked), used.Checker())
		if err != nil {
			logger.Warn("edge routed without obstacle avoidance", "from", e.From, "to", e.To, "err", err)
			path = diagram.Path{Points: elbow(start, end)}
		}
		used.Add(path)
		routes[i] = path.Points
	}

	// Column and row sizes.
	colW := make([]int, gw+1)
	rowH := make([]int, gh+1)
	for i := 1; i < gw; i++ {
		if i%blockStep == 0 {
			colW[i] = max(sp.PaddingX, 1)
		}
	}
	for i := 1; i < gh; i++ {
		if i%blockStep == 0 {
			rowH[i] = max(sp.PaddingY, 1)
		}
	}
	for _, n := range order {
		w, h := n.textSize()
		colW[n.at.X], colW[n.at.X+2] = 1, 1
		rowH[n.at.Y], rowH[n.at.Y+2] = 1, 1
		colW[n.at.X+1] = max(colW[n.at.X+1], w+2*sp.BoxPadding)
		rowH[n.at.Y+1] = max(rowH[n.at.Y+1], h+2*sp.BoxPadding)
	}
	for _, r := range routes {
		for _, p := range r {
			colW[p.X] = max(colW[p.X], 1)
			rowH[p.Y] = max(rowH[p.Y], 1)
		}
	}

	labelCells := make([]diagram.Point, len(g.Edges))
	taken := make(map[diagram.Point]bool)
	for i, e := range g.Edges {
		if e.Label == "" || routes[i] == nil {
			continue
		}
		lines := canvas.Lines(e.Label)
		c, horizontal := labelCell(routes[i], used, taken)
		taken[c] = true
		labelCells[i] = c
		w := canvas.MaxWidth(lines)
		if horizontal {
			colW[c.X] = max(colW[c.X], w+2)
			rowH[c.Y] = max(rowH[c.Y], len(lines))
		} else {
			colW[c.X] = max(colW[c.X], w)
			rowH[c.Y] = max(rowH[c.Y], len(lines)+2)
		}
	}

	xs, ys := newAxis(colW), newAxis(rowH)
	toCanvas := func(p diagram.Point) diagram.Point {
		return diagram.Point{X: xs.center(p.X), Y: ys.center(p.Y)}
	}

	for _, n := range order {
		x, w := xs.span(n.at.X, blockSize)
		y, h := ys.span(n.at.Y, blockSize)
		out.Nodes = append(out.Nodes, FlowNode{
			Node:  n.node,
			Lines: n.lines,
			Box:   diagram.Rect{X: x, Y: y, Width: w, Height: h},
			Level: n.level,
			Slot:  n.slot,
		})
	}

	for i, e := range g.Edges {
		if routes[i] == nil {
			continue
		}
		pts := make([]diagram.Point, 0, len(routes[i])+2)
		for _, p := range routes[i] {
			pts = append(pts, toCanvas(p))
		}
		pts = attachPseudostates(pts, out.Node(e.From), out.Node(e.To))
		fe := FlowEdge{Edge: e, Points: pathfinding.SimplifyPath(diagram.Path{Points: pts}).Points}
		if e.Label != "" {
			fe.Label = canvas.Lines(e.Label)
			c := toCanvas(labelCells[i])
			fe.LabelAt = diagram.Point{
				X: c.X - canvas.MaxWidth(fe.Label)/2,
				Y: c.Y - len(fe.Label)/2,
			}
		}
		out.Edges = append(out.Edges, fe)
	}

	out.Frames = frames(g.Subgraphs, out, 0)
	out.normalize()

	logger.Debug("flowchart layout",
		"nodes", len(out.Nodes), "levels", len(rows), "edges", len(out.Edges), "frames", len(out.Frames))
	return out
}

// groupedOrder returns row ids with members of one root subgraph kept
// together at the position of their first member.
func groupedOrder(g *diagram.Graph, row []string) []string {
	root := make(map[string]int)
	inner := make(map[string]int)
	pre := 0
	var walk func(sg *diagram.Subgraph, r int)
	walk = func(sg *diagram.Subgraph, r int) {
		pre++
		me := pre
		for _, id := range sg.Nodes {
			root[id], inner[id] = r, me
		}
		for _, c := range sg.Children {
			walk(c, r)
		}
	}
	for i, sg := range g.Subgraphs {
		walk(sg, i)
	}

	anchor := make(map[int]int)
	key := make(map[string]int, len(row))
	for i, id := range row {
		r, ok := root[id]
		if !ok {
			key[id] = i
			continue
		}
		if _, seen := anchor[r]; !seen {
			anchor[r] = i
		}
		key[id] = anchor[r]
	}
	out := append([]string(nil), row...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if key[a] != key[b] {
			return key[a] < key[b]
		}
		return inner[a] < inner[b]
	})
	return out
}

// labelCell picks the grid cell that carries an edge label: an interior
// cell of the route lying in a gap column (horizontal run) or gap row
// (vertical run), used by no other route, as close to the middle as
// possible. The second result reports a horizontal run.
func labelCell(route []diagram.Point, used *pathfinding.PathSet, taken map[diagram.Point]bool) (diagram.Point, bool) {
	mid := len(route) / 2
	best, bestScore := -1, 0
	for i := 1; i < len(route)-1; i++ {
		p := route[i]
		horizontal := route[i-1].Y == p.Y && route[i+1].Y == p.Y
		vertical := route[i-1].X == p.X && route[i+1].X == p.X
		aligned := (horizontal && p.X%blockStep == 0) || (vertical && p.Y%blockStep == 0)
		if !aligned || taken[p] {
			continue
		}
		score := abs(i - mid)
		if used.Uses(p) > 1 {
			score += len(route)
		}
		if best < 0 || score < bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		best = max(min(mid, len(route)-2), 0)
	}
	p := route[best]
	horizontal := best > 0 && route[best-1].Y == p.Y
	return p, horizontal
}

// attachPseudostates extends route ends into the blank box of a start or end
// state so the line touches the drawn glyph.
func attachPseudostates(pts []diagram.Point, src, dst *FlowNode) []diagram.Point {
	if len(pts) < 2 {
		return pts
	}
	if src != nil && IsPseudostate(src.Node.Shape) {
		c := diagram.Point{X: src.Box.CenterX(), Y: src.Box.CenterY()}
		if d, ok := diagram.DirectionBetween(c, pts[0]); ok && c != pts[0] {
			pts = append([]diagram.Point{c.Step(d)}, pts...)
		}
	}
	if dst != nil && IsPseudostate(dst.Node.Shape) {
		c := diagram.Point{X: dst.Box.CenterX(), Y: dst.Box.CenterY()}
		last := pts[len(pts)-1]
		if d, ok := diagram.DirectionBetween(c, last); ok && c != last {
			pts = append(pts, c.Step(d))
		}
	}
	return pts
}

// frames builds subgraph outlines children first so that a parent frame
// encloses the frames nested inside it.
func frames(subgraphs []*diagram.Subgraph, l *FlowLayout, depth int) []FlowFrame {
	var out []FlowFrame
	for _, sg := range subgraphs {
		children := frames(sg.Children, l, depth+1)
		var box diagram.Rect
		for _, id := range sg.Nodes {
			if n := l.Node(id); n != nil {
				box = box.Union(n.Box)
			}
		}
		for _, c := range children {
			if c.Depth == depth+1 {
				box = box.Union(c.Box)
			}
		}
		out = append(out, children...)
		if box.Width == 0 {
			continue
		}
		box = box.Inflate(2, 1)
		text := sg.Label
		if text == "" {
			text = sg.ID
		}
		lines := canvas.Lines(text)
		box.Width = max(box.Width, canvas.MaxWidth(lines)+4)
		out = append(out, FlowFrame{Subgraph: sg, Box: box, Label: lines, Depth: depth})
	}
	return out
}

// normalize shifts everything into non-negative coordinates and records the
// overall size.
func (l *FlowLayout) normalize() {
	var ext extent
	for _, n := range l.Nodes {
		ext.rect(n.Box)
	}
	for _, f := range l.Frames {
		ext.rect(f.Box)
	}
	for _, e := range l.Edges {
		ext.points(e.Points)
		if e.Label != nil {
			ext.text(e.LabelAt, e.Label)
		}
	}
	d := ext.shift()
	for i := range l.Nodes {
		moveRect(&l.Nodes[i].Box, d)
	}
	for i := range l.Frames {
		moveRect(&l.Frames[i].Box, d)
	}
	for i := range l.Edges {
		movePoints(l.Edges[i].Points, d)
		movePoint(&l.Edges[i].LabelAt, d)
	}
	l.Width, l.Height = ext.size()
}

// elbow returns a cell-by-cell L-shaped route, horizontal leg first.
func elbow(a, b diagram.Point) []diagram.Point {
	pts := []diagram.Point{a}
	p := a
	for p.X != b.X {
		if b.X > p.X {
			p.X++
		} else {
			p.X--
		}
		pts = append(pts, p)
	}
	for p.Y != b.Y {
		if b.Y > p.Y {
			p.Y++
		} else {
			p.Y--
		}
		pts = append(pts, p)
	}
	return pts
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
