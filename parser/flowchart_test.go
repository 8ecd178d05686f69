package parser

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid/diagram"
)

func parseGraph(t *testing.T, src string) *diagram.Graph {
	t.Helper()
	g, err := ParseFlowchart(SplitLines(src), nil)
	require.NoError(t, err)
	return g
}

func edgePairs(g *diagram.Graph) [][2]string {
	var out [][2]string
	for _, e := range g.Edges {
		out = append(out, [2]string{e.From, e.To})
	}
	return out
}

func TestParseFlowchart_Header(t *testing.T) {
	tests := []struct {
		src  string
		want diagram.FlowDirection
	}{
		{"graph TD\nA", diagram.DirectionTD},
		{"graph tb\nA", diagram.DirectionTB},
		{"flowchart LR\nA", diagram.DirectionLR},
		{"graph BT;\nA", diagram.DirectionBT},
		{"flowchart rl\nA", diagram.DirectionRL},
		{"stateDiagram\n[*] --> A", diagram.DirectionTD},
		{"stateDiagram-v2\ndirection LR\n[*] --> A", diagram.DirectionLR},
	}
	for _, tt := range tests {
		g := parseGraph(t, tt.src)
		assert.Equal(t, tt.want, g.Direction, tt.src)
	}
}

func TestParseFlowchart_HeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"missing direction", "graph\nA --> B", ErrMissingDirection},
		{"invalid direction", "flowchart XY\nA --> B", ErrMissingDirection},
		{"unknown header", "digraph G\nA --> B", ErrUnknownHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFlowchart(SplitLines(tt.src), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Contains(t, err.Error(), "line 1")
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}

func TestParseFlowchart_Shapes(t *testing.T) {
	g := parseGraph(t, `graph TD
	a[rect]
	b(rounded)
	c{diamond}
	d([stadium])
	e((circle))
	f[[sub]]
	g(((double)))
	h{{hex}}
	i[(db)]
	j>flag]
	k[/trap\]
	l[\alt/]
	m`)

	want := map[string]diagram.Shape{
		"a": diagram.ShapeRectangle,
		"b": diagram.ShapeRounded,
		"c": diagram.ShapeDiamond,
		"d": diagram.ShapeStadium,
		"e": diagram.ShapeCircle,
		"f": diagram.ShapeSubroutine,
		"g": diagram.ShapeDoubleCircle,
		"h": diagram.ShapeHexagon,
		"i": diagram.ShapeCylinder,
		"j": diagram.ShapeAsymmetric,
		"k": diagram.ShapeTrapezoid,
		"l": diagram.ShapeTrapezoidAlt,
		"m": diagram.ShapeRectangle,
	}
	require.Len(t, g.Nodes, len(want))
	for id, shape := range want {
		n := g.Node(id)
		require.NotNil(t, n, id)
		assert.Equal(t, shape, n.Shape, id)
	}
	assert.Equal(t, "double", g.Node("g").Label)
	assert.Equal(t, "trap", g.Node("k").Label)
	assert.Equal(t, "m", g.Node("m").Label)
}

func TestParseFlowchart_Labels(t *testing.T) {
	g := parseGraph(t, `graph TD
	A["quoted [label]"] --> B[one<br>two]
	C("with <br/> break")`)
	assert.Equal(t, "quoted [label]", g.Node("A").Label)
	assert.Equal(t, "one\ntwo", g.Node("B").Label)
	assert.Equal(t, "with \n break", g.Node("C").Label)
}

func TestParseFlowchart_FirstDeclarationWins(t *testing.T) {
	g := parseGraph(t, `graph TD
	A[Start] --> B
	B --> A
	A(Other) --> C
	C{Choice}
	C[Again]`)

	a := g.Node("A")
	assert.Equal(t, "Start", a.Label)
	assert.Equal(t, diagram.ShapeRectangle, a.Shape)

	// A bare reference creates a placeholder that a later declaration fills.
	c := g.Node("C")
	assert.Equal(t, "Choice", c.Label)
	assert.Equal(t, diagram.ShapeDiamond, c.Shape)

	assert.Equal(t, []string{"A", "B", "C"}, g.NodeIDs())
}

func TestParseFlowchart_CartesianExpansion(t *testing.T) {
	g := parseGraph(t, "graph LR\nA & B -->|go| C & D")
	require.Len(t, g.Edges, 4)
	assert.Equal(t, [][2]string{{"A", "C"}, {"A", "D"}, {"B", "C"}, {"B", "D"}}, edgePairs(g))
	for _, e := range g.Edges {
		assert.Equal(t, "go", e.Label)
		assert.Equal(t, diagram.EdgeSolid, e.Style)
		assert.True(t, e.EndArrow)
	}
}

func TestParseFlowchart_Chains(t *testing.T) {
	g := parseGraph(t, "graph TD\nA --> B --> C & D -.-> E")
	assert.Equal(t, [][2]string{{"A", "B"}, {"B", "C"}, {"B", "D"}, {"C", "E"}, {"D", "E"}}, edgePairs(g))
	assert.Equal(t, diagram.EdgeDotted, g.Edges[4].Style)
}

func TestParseFlowchart_Links(t *testing.T) {
	tests := []struct {
		src        string
		style      diagram.EdgeStyle
		label      string
		startArrow bool
		endArrow   bool
	}{
		{"A --> B", diagram.EdgeSolid, "", false, true},
		{"A-->B", diagram.EdgeSolid, "", false, true},
		{"A ---> B", diagram.EdgeSolid, "", false, true},
		{"A --- B", diagram.EdgeSolid, "", false, false},
		{"A -.-> B", diagram.EdgeDotted, "", false, true},
		{"A -.- B", diagram.EdgeDotted, "", false, false},
		{"A ==> B", diagram.EdgeThick, "", false, true},
		{"A === B", diagram.EdgeThick, "", false, false},
		{"A <--> B", diagram.EdgeSolid, "", true, true},
		{"A <-.-> B", diagram.EdgeDotted, "", true, true},
		{"A <==> B", diagram.EdgeThick, "", true, true},
		{"A -- yes --> B", diagram.EdgeSolid, "yes", false, true},
		{"A -- two words --- B", diagram.EdgeSolid, "two words", false, false},
		{"A -. maybe .-> B", diagram.EdgeDotted, "maybe", false, true},
		{"A == sure ==> B", diagram.EdgeThick, "sure", false, true},
		{"A -->|pipe| B", diagram.EdgeSolid, "pipe", false, true},
		{`A -->|"quoted"| B`, diagram.EdgeSolid, "quoted", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			g := parseGraph(t, "graph TD\n"+tt.src)
			require.Len(t, g.Edges, 1)
			e := g.Edges[0]
			assert.Equal(t, "A", e.From)
			assert.Equal(t, "B", e.To)
			assert.Equal(t, tt.style, e.Style)
			assert.Equal(t, tt.label, e.Label)
			assert.Equal(t, tt.startArrow, e.StartArrow)
			assert.Equal(t, tt.endArrow, e.EndArrow)
		})
	}
}

func TestParseFlowchart_Subgraphs(t *testing.T) {
	g := parseGraph(t, `graph TD
	subgraph outer [Outer Group]
		A --> B
		subgraph inner
			direction LR
			C
		end
	end
	subgraph "Free label"
		D
	end
	A --> D`)

	require.Len(t, g.Subgraphs, 2)
	outer := g.Subgraphs[0]
	assert.Equal(t, "outer", outer.ID)
	assert.Equal(t, "Outer Group", outer.Label)
	assert.Equal(t, []string{"A", "B"}, outer.Nodes)
	require.Len(t, outer.Children, 1)
	assert.Equal(t, "inner", outer.Children[0].ID)
	assert.Equal(t, diagram.DirectionLR, outer.Children[0].Direction)
	assert.Equal(t, []string{"A", "B", "C"}, outer.AllNodes())

	free := g.Subgraphs[1]
	assert.Equal(t, "Free label", free.Label)
	assert.Equal(t, []string{"D"}, free.Nodes)
}

func TestParseFlowchart_Styles(t *testing.T) {
	g := parseGraph(t, `graph TD
	classDef hot fill:#f00,stroke:#333
	A:::hot --> B
	class B,C hot
	style A fill:#0f0
	style A stroke-width:2px`)

	assert.Equal(t, map[string]string{"fill": "#f00", "stroke": "#333"}, g.ClassDefs["hot"])
	assert.Equal(t, "hot", g.NodeClasses["A"])
	assert.Equal(t, "hot", g.NodeClasses["B"])
	assert.Equal(t, "hot", g.NodeClasses["C"])
	assert.Equal(t, map[string]string{"fill": "#0f0", "stroke-width": "2px"}, g.NodeStyles["A"])
}

func TestParseFlowchart_SkipsUnknownLines(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	g, err := ParseFlowchart(SplitLines("graph TD\nA --> B\nthis is not valid ]]\nB --> C"), logger)
	require.NoError(t, err)
	assert.Len(t, g.Edges, 2)
	assert.Contains(t, buf.String(), "skipping line")
	assert.Contains(t, buf.String(), "line=3")
}

func TestParseFlowchart_Semicolons(t *testing.T) {
	g := parseGraph(t, "graph TD; A --> B; B --> C[x;y]")
	assert.Len(t, g.Edges, 2)
	assert.Equal(t, "x;y", g.Node("C").Label)
}

func TestParseFlowchart_HyphenatedIDs(t *testing.T) {
	g := parseGraph(t, "graph TD\nstyle my-node fill:#f00\nmy-node --> B\nB-->x-y-z\nx-y-z---tail-2\nleft-a-.->right-b")
	assert.Equal(t, [][2]string{{"my-node", "B"}, {"B", "x-y-z"}, {"x-y-z", "tail-2"}, {"left-a", "right-b"}}, edgePairs(g))
	assert.Equal(t, map[string]string{"fill": "#f00"}, g.NodeStyles["my-node"])
	assert.Equal(t, diagram.EdgeDotted, g.Edges[3].Style)

	g = parseGraph(t, "graph LR\nA--go-->B-c")
	assert.Equal(t, [][2]string{{"A", "B-c"}}, edgePairs(g))
	assert.Equal(t, "go", g.Edges[0].Label)
}

func TestParseState_HyphenatedIDs(t *testing.T) {
	g := parseGraph(t, `stateDiagram-v2
	state "Waiting" as my-state
	[*] --> my-state
	my-state --> Done`)
	assert.Equal(t, [][2]string{{"_start", "my-state"}, {"my-state", "Done"}}, edgePairs(g))
	assert.Equal(t, "Waiting", g.Node("my-state").Label)
}

func TestParseState_Pseudostates(t *testing.T) {
	g := parseGraph(t, "stateDiagram-v2\n[*] --> Idle\nIdle --> [*]")
	require.Len(t, g.Edges, 2)
	assert.True(t, g.State)

	start, end := g.Node("_start"), g.Node("_end")
	require.NotNil(t, start)
	require.NotNil(t, end)
	assert.Equal(t, diagram.ShapeStateStart, start.Shape)
	assert.Equal(t, diagram.ShapeStateEnd, end.Shape)
	assert.Equal(t, diagram.ShapeRounded, g.Node("Idle").Shape)
	assert.Len(t, g.Nodes, 3)
}

func TestParseState_PseudostateNumbering(t *testing.T) {
	g := parseGraph(t, `stateDiagram-v2
	[*] --> A
	[*] --> B
	[*] --> C
	A --> [*]
	B --> [*]`)
	for _, id := range []string{"_start", "_start2", "_start3", "_end", "_end2"} {
		assert.NotNil(t, g.Node(id), id)
	}
	assert.Nil(t, g.Node("_start4"))
	assert.Nil(t, g.Node("_end3"))
}

func TestParseState_Statements(t *testing.T) {
	g := parseGraph(t, `stateDiagram-v2
	state "Waiting for input" as Wait
	state Check <<choice>>
	state Split <<fork>>
	Run : Running job
	Wait --> Check : submit
	note right of Wait : a note
	note left of Run
		multi line
	end note
	state Busy {
		direction LR
		Run --> Done
		--
		Other
	}`)

	assert.Equal(t, "Waiting for input", g.Node("Wait").Label)
	assert.Equal(t, diagram.ShapeDiamond, g.Node("Check").Shape)
	assert.Equal(t, diagram.ShapeRectangle, g.Node("Split").Shape)
	assert.Equal(t, "Running job", g.Node("Run").Label)

	require.Len(t, g.Edges, 2)
	assert.Equal(t, "submit", g.Edges[0].Label)

	require.Len(t, g.Subgraphs, 1)
	busy := g.Subgraphs[0]
	assert.Equal(t, "Busy", busy.ID)
	assert.Equal(t, diagram.DirectionLR, busy.Direction)
	assert.Equal(t, []string{"Run", "Done", "Other"}, busy.Nodes)
	assert.Nil(t, g.Node("multi"))
}
