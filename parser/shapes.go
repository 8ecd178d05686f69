package parser

import (
	"regexp"
	"strings"
	"unicode"

	"termaid/diagram"
)

// shapeDelims is ordered from most to least specific delimiter so that
// A(((x))) is never read as A((x)) followed by stray text.
var shapeDelims = []struct {
	open, close string
	shape       diagram.Shape
}{
	{"(((", ")))", diagram.ShapeDoubleCircle},
	{"((", "))", diagram.ShapeCircle},
	{"([", "])", diagram.ShapeStadium},
	{"[[", "]]", diagram.ShapeSubroutine},
	{"[(", ")]", diagram.ShapeCylinder},
	{"{{", "}}", diagram.ShapeHexagon},
	{"[/", `\]`, diagram.ShapeTrapezoid},
	{`[\`, "/]", diagram.ShapeTrapezoidAlt},
	{"[", "]", diagram.ShapeRectangle},
	{"(", ")", diagram.ShapeRounded},
	{"{", "}", diagram.ShapeDiamond},
	{">", "]", diagram.ShapeAsymmetric},
}

// nodeRef is one node token of a chain statement.
type nodeRef struct {
	id       string
	label    string
	shape    diagram.Shape
	explicit bool // a bracketed shape was given
	class    string
	pseudo   bool // [*]
}

// link is one connector token of a chain statement.
type link struct {
	style      diagram.EdgeStyle
	startArrow bool
	endArrow   bool
	label      string
}

// linkPatterns are tried in order at the scanner position. Plain operators
// come before the inline-text forms so that "-->" is never read as "--" + text.
var linkPatterns = []struct {
	re    *regexp.Regexp
	style diagram.EdgeStyle
	text  bool
}{
	{regexp.MustCompile(`^(<?)(-{2,})(>)`), diagram.EdgeSolid, false},
	{regexp.MustCompile(`^(<?)(-{3,})()`), diagram.EdgeSolid, false},
	{regexp.MustCompile(`^(<?)(-\.+-)(>)`), diagram.EdgeDotted, false},
	{regexp.MustCompile(`^(<?)(-\.+-)()`), diagram.EdgeDotted, false},
	{regexp.MustCompile(`^(<?)(={2,})(>)`), diagram.EdgeThick, false},
	{regexp.MustCompile(`^(<?)(={3,})()`), diagram.EdgeThick, false},
	{regexp.MustCompile(`^(<?)--\s*([^\s\-=.>|][^|]*?)\s*-{2,}(>)`), diagram.EdgeSolid, true},
	{regexp.MustCompile(`^(<?)--\s*([^\s\-=.>|][^|]*?)\s*-{3,}()`), diagram.EdgeSolid, true},
	{regexp.MustCompile(`^(<?)-\.\s*([^\s\-=.>|][^|]*?)\s*\.+-(>)`), diagram.EdgeDotted, true},
	{regexp.MustCompile(`^(<?)-\.\s*([^\s\-=.>|][^|]*?)\s*\.+-()`), diagram.EdgeDotted, true},
	{regexp.MustCompile(`^(<?)==\s*([^\s\-=.>|][^|]*?)\s*={2,}(>)`), diagram.EdgeThick, true},
	{regexp.MustCompile(`^(<?)==\s*([^\s\-=.>|][^|]*?)\s*={3,}()`), diagram.EdgeThick, true},
}

var pipeLabel = regexp.MustCompile(`^\s*\|([^|]*)\|`)

// scanner is a small hand-written tokenizer for node/edge chains such as
// "A[x] & B --> C -.->|y| D:::hot".
type scanner struct {
	s     string
	pos   int
	state bool // accept [*] pseudostates
}

func (sc *scanner) rest() string { return sc.s[sc.pos:] }

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.s) && (sc.s[sc.pos] == ' ' || sc.s[sc.pos] == '\t') {
		sc.pos++
	}
}

func (sc *scanner) done() bool {
	sc.skipSpace()
	return sc.pos >= len(sc.s)
}

func isIDRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// startsLink reports whether a connector begins at s.
func startsLink(s string) bool {
	for _, p := range linkPatterns {
		if p.re.MatchString(s) {
			return true
		}
	}
	return false
}

// ident reads a node identifier. A '-' belongs to the identifier unless a
// connector starts there, so "my-node-->B" yields "my-node".
func (sc *scanner) ident() string {
	start := sc.pos
	rest := sc.rest()
	for i, r := range rest {
		if r == '-' && i > 0 && !startsLink(rest[i:]) {
			continue
		}
		if !isIDRune(r) {
			sc.pos = start + i
			return sc.s[start:sc.pos]
		}
	}
	sc.pos = len(sc.s)
	return sc.s[start:]
}

// node reads one node token with optional shape and :::class suffix.
func (sc *scanner) node() (nodeRef, bool) {
	sc.skipSpace()
	if sc.state && strings.HasPrefix(sc.rest(), "[*]") {
		sc.pos += 3
		return nodeRef{pseudo: true}, true
	}
	id := sc.ident()
	if id == "" {
		return nodeRef{}, false
	}
	ref := nodeRef{id: id, label: id, shape: diagram.ShapeRectangle}
	if lbl, shape, ok := sc.shape(); ok {
		ref.label, ref.shape, ref.explicit = lbl, shape, true
	}
	if strings.HasPrefix(sc.rest(), ":::") {
		sc.pos += 3
		ref.class = sc.ident()
	}
	return ref, true
}

// shape reads a bracketed label if one starts at the current position.
func (sc *scanner) shape() (string, diagram.Shape, bool) {
	rest := sc.rest()
	for _, d := range shapeDelims {
		if !strings.HasPrefix(rest, d.open) {
			continue
		}
		body := rest[len(d.open):]
		end := closing(body, d.close)
		if end < 0 {
			continue
		}
		sc.pos += len(d.open) + end + len(d.close)
		return label(body[:end]), d.shape, true
	}
	return "", "", false
}

// closing finds the close delimiter, skipping over a quoted label.
func closing(body, delim string) int {
	offset := 0
	trimmed := strings.TrimLeft(body, " ")
	if strings.HasPrefix(trimmed, `"`) {
		lead := len(body) - len(trimmed)
		if q := strings.Index(trimmed[1:], `"`); q >= 0 {
			offset = lead + q + 2
		}
	}
	i := strings.Index(body[offset:], delim)
	if i < 0 {
		return -1
	}
	return offset + i
}

// group reads nodes joined by '&'.
func (sc *scanner) group() ([]nodeRef, bool) {
	var refs []nodeRef
	for {
		ref, ok := sc.node()
		if !ok {
			return nil, false
		}
		refs = append(refs, ref)
		sc.skipSpace()
		if !strings.HasPrefix(sc.rest(), "&") {
			return refs, true
		}
		sc.pos++
	}
}

// link reads a connector with its optional inline or |pipe| label.
func (sc *scanner) link() (link, bool) {
	sc.skipSpace()
	rest := sc.rest()
	for _, p := range linkPatterns {
		m := p.re.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		sc.pos += len(m[0])
		l := link{style: p.style, startArrow: m[1] == "<", endArrow: m[3] == ">"}
		if p.text {
			l.label = label(m[2])
		}
		if pm := pipeLabel.FindStringSubmatch(sc.rest()); pm != nil {
			sc.pos += len(pm[0])
			l.label = label(pm[1])
		}
		return l, true
	}
	return link{}, false
}

// chain is a parsed statement: groups[i] and groups[i+1] are joined by links[i].
type chain struct {
	groups [][]nodeRef
	links  []link
}

// parseChain reads a full node/edge statement. It fails unless the whole
// text is consumed, so stray tokens never create half a statement.
func parseChain(text string, state bool) (chain, bool) {
	sc := &scanner{s: text, state: state}
	var c chain
	g, ok := sc.group()
	if !ok {
		return chain{}, false
	}
	c.groups = append(c.groups, g)
	for !sc.done() {
		l, ok := sc.link()
		if !ok {
			return chain{}, false
		}
		g, ok := sc.group()
		if !ok {
			return chain{}, false
		}
		c.links = append(c.links, l)
		c.groups = append(c.groups, g)
	}
	return c, true
}
