package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"termaid/diagram"
)

var (
	reClassDef  = regexp.MustCompile(`^classDef\s+([\w,-]+)\s+(.+?);?$`)
	reClassStmt = regexp.MustCompile(`^class\s+([\w,\s-]+?)\s+([\w-]+);?$`)
	reStyle     = regexp.MustCompile(`^style\s+([\w-]+)\s+(.+?);?$`)
	reDirection = regexp.MustCompile(`(?i)^direction\s+(TB|TD|BT|LR|RL)$`)
	reSubgraph  = regexp.MustCompile(`^subgraph(?:\s+(.*))?$`)
	reSubIDLbl  = regexp.MustCompile(`^([\w-]+)\s*\[(.*)\]$`)
	reIgnored   = regexp.MustCompile(`^(linkStyle|click|accTitle|accDescr|callback)\b`)

	reStateComposite = regexp.MustCompile(`^state\s+(?:"([^"]*)"\s+as\s+)?([\w-]+)\s*\{$`)
	reStateAlias     = regexp.MustCompile(`^state\s+"([^"]*)"\s+as\s+([\w-]+)$`)
	reStateSpecial   = regexp.MustCompile(`^state\s+([\w-]+)\s*<<(choice|fork|join)>>$`)
	reStateBare      = regexp.MustCompile(`^state\s+([\w-]+)$`)
	reStateDesc      = regexp.MustCompile(`^([\w-]+)\s*:\s*(.+)$`)
	reNoteStart      = regexp.MustCompile(`(?i)^note\s+(left|right)\s+of\s+[\w-]+\s*$`)
	reNoteInline     = regexp.MustCompile(`(?i)^note\s+(left|right)\s+of\s+[\w-]+\s*:`)
)

// frame is an open subgraph or composite state.
type frame struct {
	sg *diagram.Subgraph
}

// graphBuilder accumulates a flowchart or state graph line by line.
type graphBuilder struct {
	g        *diagram.Graph
	logger   *log.Logger
	stack    []frame
	declared map[string]bool // node got an explicit shape or label
	member   map[string]bool // node already belongs to a subgraph
	starts   int
	ends     int
	subgraph int // counter for generated subgraph ids
	inNote   bool
}

// ParseFlowchart parses a graph, flowchart or stateDiagram source.
func ParseFlowchart(lines []Line, logger *log.Logger) (*diagram.Graph, error) {
	if logger == nil {
		logger = discard()
	}
	stmts := splitStatements(lines)
	if len(stmts) == 0 {
		return nil, errors.WithHint(ErrEmptyInput, "start the source with a header such as 'graph TD'")
	}
	header := stmts[0]
	b := &graphBuilder{
		logger:   logger,
		declared: make(map[string]bool),
		member:   make(map[string]bool),
	}

	fields := strings.Fields(header.Text)
	switch strings.ToLower(fields[0]) {
	case "graph", "flowchart":
		if len(fields) < 2 {
			return nil, headerError(ErrMissingDirection, header, grammarDirection,
				"add a direction after the keyword, for example 'graph TD'")
		}
		dir, ok := parseDirection(fields[1])
		if !ok || len(fields) > 2 {
			return nil, headerError(ErrMissingDirection, header, grammarDirection,
				"valid directions are TD, TB, BT, LR and RL")
		}
		b.g = diagram.NewGraph(dir)
	case "statediagram", "statediagram-v2":
		b.g = diagram.NewGraph(diagram.DirectionTD)
		b.g.State = true
	default:
		return nil, headerError(ErrUnknownHeader, header, grammarHeader,
			"the first statement must name the diagram kind")
	}

	for _, l := range stmts[1:] {
		b.statement(l)
	}
	for len(b.stack) > 0 {
		logger.Debug("closing unterminated group at end of input", "id", b.stack[len(b.stack)-1].sg.ID)
		b.close()
	}
	logger.Debug("parsed graph", "nodes", len(b.g.Nodes), "edges", len(b.g.Edges), "subgraphs", len(b.g.Subgraphs))
	return b.g, nil
}

// splitStatements splits lines on ';' outside quotes and brackets.
func splitStatements(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		depth, quoted, start := 0, false, 0
		for i, r := range l.Text {
			switch {
			case r == '"':
				quoted = !quoted
			case quoted:
			case r == '[' || r == '(' || r == '{':
				depth++
			case r == ']' || r == ')' || r == '}':
				depth--
			case r == ';' && depth <= 0:
				if s := strings.TrimSpace(l.Text[start:i]); s != "" {
					out = append(out, Line{No: l.No, Text: s})
				}
				start = i + 1
			}
		}
		if s := strings.TrimSpace(l.Text[start:]); s != "" {
			out = append(out, Line{No: l.No, Text: s})
		}
	}
	return out
}

func parseDirection(s string) (diagram.FlowDirection, bool) {
	switch d := diagram.FlowDirection(strings.ToUpper(s)); d {
	case diagram.DirectionTD, diagram.DirectionTB, diagram.DirectionBT, diagram.DirectionLR, diagram.DirectionRL:
		return d, true
	}
	return "", false
}

// statement classifies one line in fixed priority order.
func (b *graphBuilder) statement(l Line) {
	text := l.Text
	if b.inNote {
		if strings.EqualFold(text, "end note") {
			b.inNote = false
		}
		return
	}

	if m := reClassDef.FindStringSubmatch(text); m != nil {
		props := parseProps(m[2])
		for _, name := range strings.Split(m[1], ",") {
			b.g.ClassDefs[strings.TrimSpace(name)] = props
		}
		return
	}
	if m := reClassStmt.FindStringSubmatch(text); m != nil {
		for _, id := range strings.Split(m[1], ",") {
			if id = strings.TrimSpace(id); id != "" {
				b.g.NodeClasses[id] = m[2]
			}
		}
		return
	}
	if m := reStyle.FindStringSubmatch(text); m != nil {
		bag := b.g.NodeStyles[m[1]]
		if bag == nil {
			bag = make(map[string]string)
			b.g.NodeStyles[m[1]] = bag
		}
		for k, v := range parseProps(m[2]) {
			bag[k] = v
		}
		return
	}
	if m := reDirection.FindStringSubmatch(text); m != nil {
		dir, _ := parseDirection(m[1])
		switch {
		case len(b.stack) > 0:
			b.stack[len(b.stack)-1].sg.Direction = dir
		case b.g.State:
			b.g.Direction = dir
		default:
			skip(b.logger, l, "direction outside subgraph")
		}
		return
	}
	if b.open(l) {
		return
	}
	if b.isClose(text) {
		if len(b.stack) == 0 {
			skip(b.logger, l, "unbalanced group close")
			return
		}
		b.close()
		return
	}
	if reIgnored.MatchString(text) {
		skip(b.logger, l, "unsupported statement")
		return
	}
	if b.g.State && b.stateStatement(l) {
		return
	}
	b.chainStatement(l)
}

// open handles subgraph and composite state openings.
func (b *graphBuilder) open(l Line) bool {
	if b.g.State {
		m := reStateComposite.FindStringSubmatch(l.Text)
		if m == nil {
			return false
		}
		lbl := m[2]
		if m[1] != "" {
			lbl = m[1]
		}
		b.push(&diagram.Subgraph{ID: m[2], Label: label(lbl)})
		return true
	}
	m := reSubgraph.FindStringSubmatch(l.Text)
	if m == nil {
		return false
	}
	b.subgraph++
	decl := strings.TrimSpace(m[1])
	sg := &diagram.Subgraph{}
	switch {
	case decl == "":
		sg.ID = "subgraph" + strconv.Itoa(b.subgraph)
	case reSubIDLbl.MatchString(decl):
		sm := reSubIDLbl.FindStringSubmatch(decl)
		sg.ID, sg.Label = sm[1], label(sm[2])
	case strings.HasPrefix(decl, `"`) || strings.ContainsAny(decl, " \t"):
		sg.ID, sg.Label = "subgraph"+strconv.Itoa(b.subgraph), label(decl)
	default:
		sg.ID, sg.Label = decl, decl
	}
	b.push(sg)
	return true
}

func (b *graphBuilder) isClose(text string) bool {
	if b.g.State {
		return text == "}"
	}
	return text == "end"
}

func (b *graphBuilder) push(sg *diagram.Subgraph) {
	b.stack = append(b.stack, frame{sg: sg})
}

// close pops the innermost frame and attaches it to its parent or the roots.
func (b *graphBuilder) close() {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if len(b.stack) == 0 {
		b.g.Subgraphs = append(b.g.Subgraphs, top.sg)
		return
	}
	parent := b.stack[len(b.stack)-1].sg
	parent.Children = append(parent.Children, top.sg)
}

// stateStatement handles statements that only exist in state diagrams.
func (b *graphBuilder) stateStatement(l Line) bool {
	text := l.Text
	switch {
	case text == "--":
		return true
	case reNoteStart.MatchString(text):
		b.inNote = true
		return true
	case reNoteInline.MatchString(text):
		return true
	}
	if m := reStateAlias.FindStringSubmatch(text); m != nil {
		b.declare(nodeRef{id: m[2], label: label(m[1]), shape: diagram.ShapeRounded, explicit: true})
		return true
	}
	if m := reStateSpecial.FindStringSubmatch(text); m != nil {
		shape := diagram.ShapeRectangle
		if m[2] == "choice" {
			shape = diagram.ShapeDiamond
		}
		b.declare(nodeRef{id: m[1], shape: shape, explicit: true})
		return true
	}
	if m := reStateBare.FindStringSubmatch(text); m != nil {
		b.declare(nodeRef{id: m[1], label: m[1], shape: diagram.ShapeRounded})
		return true
	}
	if i := labelColon(text); i >= 0 && !strings.Contains(text[:i], "-->") {
		if m := reStateDesc.FindStringSubmatch(text); m != nil {
			b.declare(nodeRef{id: m[1], label: label(m[2]), shape: diagram.ShapeRounded, explicit: true})
			return true
		}
	}
	return false
}

// labelColon returns the index of the first ':' that is not part of ':::'.
func labelColon(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] != ':' {
			continue
		}
		if strings.HasPrefix(text[i:], ":::") {
			i += 2
			continue
		}
		return i
	}
	return -1
}

// chainStatement parses node declarations and edge chains.
func (b *graphBuilder) chainStatement(l Line) {
	text, edgeLabel := l.Text, ""
	if b.g.State {
		if i := labelColon(text); i >= 0 {
			text, edgeLabel = strings.TrimSpace(text[:i]), label(text[i+1:])
		}
	}
	c, ok := parseChain(text, b.g.State)
	if !ok {
		skip(b.logger, l, "no matching statement")
		return
	}

	ids := make([][]string, len(c.groups))
	for gi, group := range c.groups {
		for _, ref := range group {
			if ref.pseudo {
				ref = b.pseudostate(gi < len(c.links))
			} else if b.g.State && !ref.explicit {
				ref.shape = diagram.ShapeRounded
			}
			ids[gi] = append(ids[gi], b.declare(ref))
		}
	}
	for i, lk := range c.links {
		if edgeLabel != "" && lk.label == "" {
			lk.label = edgeLabel
		}
		for _, from := range ids[i] {
			for _, to := range ids[i+1] {
				b.g.Edges = append(b.g.Edges, diagram.Edge{
					From:       from,
					To:         to,
					Label:      lk.label,
					Style:      lk.style,
					StartArrow: lk.startArrow,
					EndArrow:   lk.endArrow,
				})
			}
		}
	}
}

// pseudostate materialises a [*] occurrence. Sources become start nodes and
// targets end nodes; every occurrence gets its own id.
func (b *graphBuilder) pseudostate(source bool) nodeRef {
	if source {
		b.starts++
		return nodeRef{id: numbered("_start", b.starts), shape: diagram.ShapeStateStart, explicit: true}
	}
	b.ends++
	return nodeRef{id: numbered("_end", b.ends), shape: diagram.ShapeStateEnd, explicit: true}
}

func numbered(base string, n int) string {
	if n == 1 {
		return base
	}
	return base + strconv.Itoa(n)
}

// declare adds or updates a node and returns its id. A bare reference only
// creates a placeholder; the first explicit shape or label is kept for good.
func (b *graphBuilder) declare(ref nodeRef) string {
	n := b.g.AddNode(&diagram.Node{ID: ref.id, Label: ref.label, Shape: ref.shape})
	if ref.explicit && !b.declared[ref.id] {
		n.Label, n.Shape = ref.label, ref.shape
		b.declared[ref.id] = true
	}
	if ref.class != "" {
		b.g.NodeClasses[ref.id] = ref.class
	}
	if len(b.stack) > 0 && !b.member[ref.id] {
		top := b.stack[len(b.stack)-1].sg
		top.Nodes = append(top.Nodes, ref.id)
		b.member[ref.id] = true
	}
	return ref.id
}

// parseProps reads "fill:#f9f,stroke:#333" into a property bag.
func parseProps(s string) map[string]string {
	props := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(kv, ":")
		if !ok {
			continue
		}
		props[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return props
}
