package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid/diagram"
	"termaid/parser"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		links []Link
		want  map[string]int
	}{
		{
			name:  "chain",
			ids:   []string{"A", "B", "C"},
			links: []Link{{"A", "B"}, {"B", "C"}},
			want:  map[string]int{"A": 0, "B": 1, "C": 2},
		},
		{
			name:  "longest parent wins",
			ids:   []string{"A", "B", "C"},
			links: []Link{{"A", "C"}, {"A", "B"}, {"B", "C"}},
			want:  map[string]int{"A": 0, "B": 1, "C": 2},
		},
		{
			name:  "cycle drops the closing edge",
			ids:   []string{"A", "B", "C"},
			links: []Link{{"A", "B"}, {"B", "C"}, {"C", "A"}},
			want:  map[string]int{"A": 0, "B": 1, "C": 2},
		},
		{
			name:  "self and unknown links ignored",
			ids:   []string{"A", "B"},
			links: []Link{{"A", "A"}, {"A", "Z"}, {"Z", "B"}},
			want:  map[string]int{"A": 0, "B": 0},
		},
		{
			name:  "two node cycle",
			ids:   []string{"A", "B"},
			links: []Link{{"B", "A"}, {"A", "B"}},
			want:  map[string]int{"A": 0, "B": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Levels(tt.ids, tt.links))
		})
	}
}

func TestCappedLevels(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		links []Link
		want  map[string]int
	}{
		{
			name:  "chain",
			ids:   []string{"A", "B", "C"},
			links: []Link{{"A", "B"}, {"B", "C"}},
			want:  map[string]int{"A": 0, "B": 1, "C": 2},
		},
		{
			name:  "rootless cycle stays flat",
			ids:   []string{"A", "B"},
			links: []Link{{"A", "B"}, {"B", "A"}},
			want:  map[string]int{"A": 0, "B": 0},
		},
		{
			name:  "cycle below a root is capped",
			ids:   []string{"R", "A", "B"},
			links: []Link{{"R", "A"}, {"A", "B"}, {"B", "A"}},
			want:  map[string]int{"R": 0, "A": 1, "B": 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CappedLevels(tt.ids, tt.links))
		})
	}
}

func TestRows(t *testing.T) {
	rows := Rows([]string{"A", "B", "C", "D"}, map[string]int{"A": 0, "B": 1, "C": 0, "D": 1})
	assert.Equal(t, [][]string{{"A", "C"}, {"B", "D"}}, rows)
}

func parseGraph(t *testing.T, src string) *diagram.Graph {
	t.Helper()
	res, err := parser.Parse(src, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Graph)
	return res.Graph
}

// cells expands a polyline into every cell it covers.
func cells(points []diagram.Point) []diagram.Point {
	var out []diagram.Point
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		d, ok := diagram.DirectionBetween(a, b)
		if !ok {
			continue
		}
		for p := a; p != b; p = p.Step(d) {
			out = append(out, p)
		}
	}
	if len(points) > 0 {
		out = append(out, points[len(points)-1])
	}
	return out
}

func TestGrid_LeftToRight(t *testing.T) {
	l := Grid(parseGraph(t, "graph LR\nA --> B"), DefaultSpacing, nil)
	require.Len(t, l.Nodes, 2)
	a, b := l.Node("A"), l.Node("B")
	assert.Equal(t, 0, a.Level)
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, a.Box.Y, b.Box.Y)
	assert.Equal(t, 5, a.Box.Height)
	assert.Equal(t, 5, b.Box.X-a.Box.Right()-1, "gap between boxes is PaddingX")

	require.Len(t, l.Edges, 1)
	pts := l.Edges[0].Points
	require.Len(t, pts, 2)
	assert.Equal(t, diagram.Point{X: a.Box.Right(), Y: a.Box.CenterY()}, pts[0])
	assert.Equal(t, diagram.Point{X: b.Box.X, Y: b.Box.CenterY()}, pts[1])
	assert.Equal(t, b.Box.Right()+1, l.Width)
	assert.False(t, l.Flip)
}

func TestGrid_TopDown(t *testing.T) {
	l := Grid(parseGraph(t, "graph TD\nA --> B"), DefaultSpacing, nil)
	a, b := l.Node("A"), l.Node("B")
	assert.Equal(t, a.Box.X, b.Box.X)
	assert.Greater(t, b.Box.Y, a.Box.Bottom())

	pts := l.Edges[0].Points
	require.Len(t, pts, 2)
	assert.Equal(t, a.Box.CenterX(), pts[0].X)
	assert.Equal(t, a.Box.Bottom(), pts[0].Y)
	assert.Equal(t, b.Box.Y, pts[1].Y)
}

func TestGrid_BottomUpFlips(t *testing.T) {
	l := Grid(parseGraph(t, "graph BT\nA --> B"), DefaultSpacing, nil)
	assert.True(t, l.Flip)
	assert.Less(t, l.Node("A").Box.Y, l.Node("B").Box.Y, "laid out top-down before flipping")
}

func TestGrid_Spacing(t *testing.T) {
	l := Grid(parseGraph(t, "graph LR\nA --> B"), Spacing{PaddingX: 2, PaddingY: 2, BoxPadding: 0}, nil)
	a, b := l.Node("A"), l.Node("B")
	assert.Equal(t, 3, a.Box.Height)
	assert.Equal(t, 3, a.Box.Width)
	assert.Equal(t, 2, b.Box.X-a.Box.Right()-1)

	l = Grid(parseGraph(t, "graph LR\nA --> B"), Spacing{PaddingX: -4, PaddingY: -1, BoxPadding: -2}, nil)
	a, b = l.Node("A"), l.Node("B")
	assert.Equal(t, 3, a.Box.Width)
	assert.Equal(t, 1, b.Box.X-a.Box.Right()-1, "a route always keeps one cell")
}

func TestGrid_RoutesAvoidBoxes(t *testing.T) {
	l := Grid(parseGraph(t, `graph TD
	A --> B
	A --> C
	B --> D
	C --> D
	A --> D
	D --> A`), DefaultSpacing, nil)
	require.Len(t, l.Edges, 6)
	for _, e := range l.Edges {
		cs := cells(e.Points)
		require.NotEmpty(t, cs)
		for _, p := range cs[1 : len(cs)-1] {
			for _, n := range l.Nodes {
				assert.False(t, n.Box.Contains(p), "edge %s->%s crosses %s at %v", e.Edge.From, e.Edge.To, n.Node.ID, p)
			}
		}
	}
}

func TestGrid_EdgeLabel(t *testing.T) {
	l := Grid(parseGraph(t, "graph LR\nA -->|a long label| B"), DefaultSpacing, nil)
	a, b := l.Node("A"), l.Node("B")
	e := l.Edges[0]
	assert.Equal(t, []string{"a long label"}, e.Label)
	assert.Greater(t, e.LabelAt.X, a.Box.Right())
	assert.Less(t, e.LabelAt.X+len("a long label")-1, b.Box.X)
	assert.Equal(t, a.Box.CenterY(), e.LabelAt.Y)
}

func TestGrid_Subgraph(t *testing.T) {
	l := Grid(parseGraph(t, `graph TD
	subgraph one [Group One]
		A --> B
	end
	B --> C`), DefaultSpacing, nil)
	require.Len(t, l.Frames, 1)
	f := l.Frames[0]
	assert.Equal(t, []string{"Group One"}, f.Label)
	for _, id := range []string{"A", "B"} {
		n := l.Node(id)
		assert.True(t, f.Box.Contains(diagram.Point{X: n.Box.X, Y: n.Box.Y}))
		assert.True(t, f.Box.Contains(diagram.Point{X: n.Box.Right(), Y: n.Box.Bottom()}))
	}
	assert.False(t, f.Box.Overlaps(l.Node("C").Box))
	assert.GreaterOrEqual(t, f.Box.X, 0)
	assert.GreaterOrEqual(t, f.Box.Y, 0)
}

func TestGrid_Pseudostates(t *testing.T) {
	l := Grid(parseGraph(t, "stateDiagram-v2\n[*] --> Idle\nIdle --> [*]"), DefaultSpacing, nil)
	require.Len(t, l.Nodes, 3)
	start, end := l.Node("_start"), l.Node("_end")
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Nil(t, start.Lines)

	first := l.Edges[0].Points[0]
	assert.Equal(t, diagram.Point{X: start.Box.CenterX(), Y: start.Box.CenterY() + 1}, first)
	pts := l.Edges[1].Points
	last := pts[len(pts)-1]
	assert.Equal(t, diagram.Point{X: end.Box.CenterX(), Y: end.Box.CenterY() - 1}, last)
}

func TestGrid_SelfLoop(t *testing.T) {
	l := Grid(parseGraph(t, "graph TD\nA --> A"), DefaultSpacing, nil)
	a := l.Node("A")
	pts := l.Edges[0].Points
	assert.Equal(t, diagram.Point{X: a.Box.Right(), Y: a.Box.CenterY()}, pts[0])
	assert.Equal(t, diagram.Point{X: a.Box.CenterX(), Y: a.Box.Bottom()}, pts[len(pts)-1])
	assert.Greater(t, len(pts), 2)
}

func TestGrid_Deterministic(t *testing.T) {
	src := "graph TD\nA --> B & C\nB --> D\nC --> D\nD -.->|back| A"
	first := Grid(parseGraph(t, src), DefaultSpacing, nil)
	for i := 0; i < 5; i++ {
		next := Grid(parseGraph(t, src), DefaultSpacing, nil)
		require.Equal(t, len(first.Edges), len(next.Edges))
		for j := range first.Edges {
			assert.Equal(t, first.Edges[j].Points, next.Edges[j].Points)
			assert.Equal(t, first.Edges[j].LabelAt, next.Edges[j].LabelAt)
		}
	}
}

func TestGrid_Empty(t *testing.T) {
	l := Grid(diagram.NewGraph(diagram.DirectionTD), DefaultSpacing, nil)
	assert.Empty(t, l.Nodes)
	assert.Zero(t, l.Width)
}
