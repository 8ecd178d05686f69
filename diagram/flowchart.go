package diagram

// FlowDirection is the main reading direction of a flowchart or state diagram.
type FlowDirection string

const (
	DirectionTD FlowDirection = "TD"
	DirectionTB FlowDirection = "TB"
	DirectionBT FlowDirection = "BT"
	DirectionLR FlowDirection = "LR"
	DirectionRL FlowDirection = "RL"
)

// Vertical reports whether levels advance along the y axis.
func (d FlowDirection) Vertical() bool {
	return d == DirectionTD || d == DirectionTB || d == DirectionBT || d == ""
}

// Shape is the outline drawn for a flowchart node.
type Shape string

const (
	ShapeRectangle    Shape = "rectangle"
	ShapeRounded      Shape = "rounded"
	ShapeDiamond      Shape = "diamond"
	ShapeStadium      Shape = "stadium"
	ShapeCircle       Shape = "circle"
	ShapeSubroutine   Shape = "subroutine"
	ShapeDoubleCircle Shape = "doublecircle"
	ShapeHexagon      Shape = "hexagon"
	ShapeCylinder     Shape = "cylinder"
	ShapeAsymmetric   Shape = "asymmetric"
	ShapeTrapezoid    Shape = "trapezoid"
	ShapeTrapezoidAlt Shape = "trapezoid-alt"
	ShapeStateStart   Shape = "state-start"
	ShapeStateEnd     Shape = "state-end"
)

// EdgeStyle is the stroke used for a flowchart link.
type EdgeStyle string

const (
	EdgeSolid  EdgeStyle = "solid"
	EdgeDotted EdgeStyle = "dotted"
	EdgeThick  EdgeStyle = "thick"
)

// Node is a flowchart node or a state.
type Node struct {
	ID    string
	Label string // may contain '\n'
	Shape Shape
}

// Edge is a directed link between two nodes.
type Edge struct {
	From       string
	To         string
	Label      string
	Style      EdgeStyle
	StartArrow bool
	EndArrow   bool
}

// Subgraph groups nodes. Composite states are represented as subgraphs too.
type Subgraph struct {
	ID        string
	Label     string
	Direction FlowDirection // override; empty when not set
	Nodes     []string      // directly contained node ids, in declaration order
	Children  []*Subgraph
}

// AllNodes returns the ids of every node contained in s or one of its descendants.
func (s *Subgraph) AllNodes() []string {
	out := append([]string(nil), s.Nodes...)
	for _, c := range s.Children {
		out = append(out, c.AllNodes()...)
	}
	return out
}

// Graph is the shared model for flowcharts and state diagrams.
type Graph struct {
	Direction FlowDirection
	State     bool // parsed from a stateDiagram header

	Nodes     []*Node // in first-declaration order
	Edges     []Edge
	Subgraphs []*Subgraph // roots of the subgraph tree

	ClassDefs   map[string]map[string]string // classDef name -> properties
	NodeClasses map[string]string            // node id -> class name
	NodeStyles  map[string]map[string]string // node id -> merged style properties

	index map[string]int
}

// NewGraph returns an empty graph reading in direction dir.
func NewGraph(dir FlowDirection) *Graph {
	return &Graph{
		Direction:   dir,
		ClassDefs:   make(map[string]map[string]string),
		NodeClasses: make(map[string]string),
		NodeStyles:  make(map[string]map[string]string),
		index:       make(map[string]int),
	}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if i, ok := g.index[id]; ok {
		return g.Nodes[i]
	}
	return nil
}

// AddNode registers n unless a node with the same id already exists. The
// existing node always wins; the returned node is the one stored in the graph.
func (g *Graph) AddNode(n *Node) *Node {
	if existing := g.Node(n.ID); existing != nil {
		return existing
	}
	if g.index == nil {
		g.index = make(map[string]int)
	}
	g.index[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	return n
}

// NodeIDs returns all node ids in declaration order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}
