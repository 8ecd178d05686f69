package canvas

import "termaid/diagram"

// Style is the stroke used when drawing a connector line.
type Style int

const (
	Solid Style = iota
	Dotted
	Thick
)

// Arms is a bit set of the directions a line glyph reaches out to.
// Corners and junctions fall out of the union of the arms meeting in a cell.
type Arms uint8

const (
	ArmNorth Arms = 1 << iota
	ArmEast
	ArmSouth
	ArmWest
)

// ArmFor returns the arm pointing in direction d.
func ArmFor(d diagram.Direction) Arms {
	switch d {
	case diagram.North:
		return ArmNorth
	case diagram.East:
		return ArmEast
	case diagram.South:
		return ArmSouth
	default:
		return ArmWest
	}
}

// flipped swaps the north and south arms.
func (a Arms) flipped() Arms {
	out := a &^ (ArmNorth | ArmSouth)
	if a&ArmNorth != 0 {
		out |= ArmSouth
	}
	if a&ArmSouth != 0 {
		out |= ArmNorth
	}
	return out
}

// BoxStyle defines the characters used to draw a box outline.
// Left and Right are separate so shapes like stadiums can use ( and ).
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Top         rune
	Bottom      rune
	Left        rune
	Right       rune
}

// Charset holds the glyph tables for one output mode.
type Charset struct {
	ASCII bool

	lines   map[Style][16]rune
	arrows  [4]rune // indexed by diagram.Direction
	flips   map[rune]rune
	Divider BoxStyle // ├ ─ ┤ used for compartment separators (TopLeft/Top/TopRight)
	Rect    BoxStyle
	Round   BoxStyle
}

// solidTable builds an arms-indexed glyph table from the given runes.
func solidTable(h, v, ne, se, sw, nw, tN, tE, tS, tW, cross rune) [16]rune {
	var t [16]rune
	t[0] = ' '
	t[ArmNorth] = v
	t[ArmSouth] = v
	t[ArmNorth|ArmSouth] = v
	t[ArmEast] = h
	t[ArmWest] = h
	t[ArmEast|ArmWest] = h
	t[ArmNorth|ArmEast] = ne
	t[ArmSouth|ArmEast] = se
	t[ArmSouth|ArmWest] = sw
	t[ArmNorth|ArmWest] = nw
	t[ArmNorth|ArmEast|ArmWest] = tN
	t[ArmNorth|ArmSouth|ArmEast] = tE
	t[ArmSouth|ArmEast|ArmWest] = tS
	t[ArmNorth|ArmSouth|ArmWest] = tW
	t[ArmNorth|ArmEast|ArmSouth|ArmWest] = cross
	return t
}

// withStraights returns a copy of t using h and v for straight runs.
func withStraights(t [16]rune, h, v rune) [16]rune {
	t[ArmNorth], t[ArmSouth], t[ArmNorth|ArmSouth] = v, v, v
	t[ArmEast], t[ArmWest], t[ArmEast|ArmWest] = h, h, h
	return t
}

// Unicode returns the box-drawing glyph set.
func Unicode() *Charset {
	solid := solidTable('─', '│', '└', '┌', '┐', '┘', '┴', '├', '┬', '┤', '┼')
	return &Charset{
		lines: map[Style][16]rune{
			Solid:  solid,
			Dotted: withStraights(solid, '┄', '┆'),
			Thick:  solidTable('━', '┃', '┗', '┏', '┓', '┛', '┻', '┣', '┳', '┫', '╋'),
		},
		arrows: [4]rune{'▲', '►', '▼', '◄'},
		flips: map[rune]rune{
			'┌': '└', '└': '┌', '┐': '┘', '┘': '┐',
			'╭': '╰', '╰': '╭', '╮': '╯', '╯': '╮',
			'┬': '┴', '┴': '┬', '╔': '╚', '╚': '╔', '╗': '╝', '╝': '╗',
			'┏': '┗', '┗': '┏', '┓': '┛', '┛': '┓', '╦': '╩', '╩': '╦',
			'╱': '╲', '╲': '╱', '▲': '▼', '▼': '▲', '△': '▽', '▽': '△',
		},
		Divider: BoxStyle{TopLeft: '├', Top: '─', TopRight: '┤'},
		Rect: BoxStyle{
			TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
			Top: '─', Bottom: '─', Left: '│', Right: '│',
		},
		Round: BoxStyle{
			TopLeft: '╭', TopRight: '╮', BottomLeft: '╰', BottomRight: '╯',
			Top: '─', Bottom: '─', Left: '│', Right: '│',
		},
	}
}

// ASCII returns the plain seven-bit glyph set.
func ASCII() *Charset {
	solid := solidTable('-', '|', '+', '+', '+', '+', '+', '+', '+', '+', '+')
	return &Charset{
		ASCII: true,
		lines: map[Style][16]rune{
			Solid:  solid,
			Dotted: withStraights(solid, '.', ':'),
			Thick:  withStraights(solid, '=', '|'),
		},
		arrows: [4]rune{'^', '>', 'v', '<'},
		flips: map[rune]rune{
			'/': '\\', '\\': '/', '^': 'v', 'v': '^', '.': '\'', '\'': '.',
		},
		Divider: BoxStyle{TopLeft: '+', Top: '-', TopRight: '+'},
		Rect: BoxStyle{
			TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
			Top: '-', Bottom: '-', Left: '|', Right: '|',
		},
		Round: BoxStyle{
			TopLeft: '.', TopRight: '.', BottomLeft: '\'', BottomRight: '\'',
			Top: '-', Bottom: '-', Left: '|', Right: '|',
		},
	}
}

// For returns the ASCII set when ascii is true and the Unicode set otherwise.
func For(ascii bool) *Charset {
	if ascii {
		return ASCII()
	}
	return Unicode()
}

// Line returns the glyph for a cell with the given arms and stroke.
func (cs *Charset) Line(a Arms, s Style) rune {
	t, ok := cs.lines[s]
	if !ok {
		t = cs.lines[Solid]
	}
	return t[a&0x0f]
}

// Arrow returns the arrowhead pointing in direction d.
func (cs *Charset) Arrow(d diagram.Direction) rune {
	if d < diagram.North || d > diagram.West {
		return cs.arrows[diagram.South]
	}
	return cs.arrows[d]
}

// IsArrow reports whether r is one of this set's arrowheads.
func (cs *Charset) IsArrow(r rune) bool {
	for _, a := range cs.arrows {
		if a == r {
			return true
		}
	}
	return false
}

// Flip returns the vertically mirrored counterpart of r, or r itself.
func (cs *Charset) Flip(r rune) rune {
	if f, ok := cs.flips[r]; ok {
		return f
	}
	return r
}
