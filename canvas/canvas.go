// Package canvas provides a growable 2D character grid with merge-aware
// drawing primitives.
//
// Cells remember what drew them. Line cells merge with each other through
// their arms, so crossings and corners resolve to the right junction glyph.
// Box borders, markers and text are never replaced by a later line draw;
// only the explicit Set* calls overwrite them.
//
// Coordinate System:
//   - Origin (0,0) is top-left
//   - X increases rightward
//   - Y increases downward
//   - Every glyph occupies exactly one cell
//
// The grid only grows. Writing past the current size expands it to fit;
// writes at negative coordinates are dropped.
package canvas

import (
	"strings"

	"termaid/diagram"
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellLine
	cellBorder
	cellMarker
	cellText
)

type cell struct {
	r     rune
	kind  cellKind
	arms  Arms
	style Style
}

var blank = cell{r: ' '}

// Canvas is a dense rune grid behind grow-only resize.
type Canvas struct {
	rows   [][]cell
	width  int
	height int
	cs     *Charset
}

// New creates an empty canvas drawing with the given charset.
func New(cs *Charset) *Canvas {
	if cs == nil {
		cs = Unicode()
	}
	return &Canvas{cs: cs}
}

// Charset returns the glyph set the canvas draws with.
func (c *Canvas) Charset() *Charset {
	return c.cs
}

// Size returns the width and height of the canvas.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

// Get returns the character at the given position.
// Returns ' ' (space) if position is out of bounds.
func (c *Canvas) Get(p diagram.Point) rune {
	if p.X < 0 || p.X >= c.width || p.Y < 0 || p.Y >= c.height {
		return ' '
	}
	return c.rows[p.Y][p.X].r
}

// IsEmpty reports whether nothing has been drawn at p.
func (c *Canvas) IsEmpty(p diagram.Point) bool {
	if p.X < 0 || p.X >= c.width || p.Y < 0 || p.Y >= c.height {
		return true
	}
	return c.rows[p.Y][p.X].kind == cellEmpty
}

// Grow expands the canvas so that it is at least width x height.
func (c *Canvas) Grow(width, height int) {
	if width > c.width {
		for y := range c.rows {
			c.rows[y] = extend(c.rows[y], width)
		}
		c.width = width
	}
	for c.height < height {
		c.rows = append(c.rows, extend(nil, c.width))
		c.height++
	}
}

func extend(row []cell, width int) []cell {
	for len(row) < width {
		row = append(row, blank)
	}
	return row
}

// at returns the cell at p, growing the grid when needed. Negative
// coordinates yield nil.
func (c *Canvas) at(p diagram.Point) *cell {
	if p.X < 0 || p.Y < 0 {
		return nil
	}
	c.Grow(p.X+1, p.Y+1)
	return &c.rows[p.Y][p.X]
}

// SetText writes r at p, replacing whatever was there.
func (c *Canvas) SetText(p diagram.Point, r rune) {
	if cl := c.at(p); cl != nil {
		*cl = cell{r: r, kind: cellText}
	}
}

// DrawText renders text starting at (x, y), one rune per cell.
func (c *Canvas) DrawText(x, y int, text string) {
	for i, r := range []rune(text) {
		c.SetText(diagram.Point{X: x + i, Y: y}, r)
	}
}

// SetBorder writes a box border glyph at p. Text already drawn there is kept.
func (c *Canvas) SetBorder(p diagram.Point, r rune) {
	cl := c.at(p)
	if cl == nil || cl.kind == cellText {
		return
	}
	*cl = cell{r: r, kind: cellBorder}
}

// SetMarker writes an arrowhead or UML marker at p. Markers replace line
// glyphs but never borders or text.
func (c *Canvas) SetMarker(p diagram.Point, r rune) {
	cl := c.at(p)
	if cl == nil || cl.kind == cellBorder || cl.kind == cellText {
		return
	}
	*cl = cell{r: r, kind: cellMarker}
}

// AddArms merges line arms into the cell at p. Borders, markers and text are
// left untouched. When strokes differ the junction is drawn solid.
func (c *Canvas) AddArms(p diagram.Point, a Arms, s Style) {
	cl := c.at(p)
	if cl == nil {
		return
	}
	switch cl.kind {
	case cellBorder, cellMarker, cellText:
		return
	case cellLine:
		if cl.style != s {
			s = Solid
		}
		a |= cl.arms
	}
	*cl = cell{r: c.cs.Line(a, s), kind: cellLine, arms: a, style: s}
}

// DrawHorizontalLine draws a horizontal run from x1 to x2 inclusive.
func (c *Canvas) DrawHorizontalLine(x1, x2, y int, s Style) {
	c.DrawPath([]diagram.Point{{X: x1, Y: y}, {X: x2, Y: y}}, s)
}

// DrawVerticalLine draws a vertical run from y1 to y2 inclusive.
func (c *Canvas) DrawVerticalLine(x, y1, y2 int, s Style) {
	c.DrawPath([]diagram.Point{{X: x, Y: y1}, {X: x, Y: y2}}, s)
}

// DrawPath draws an orthogonal polyline. Consecutive points must share an
// axis; corners get their glyph from the two directions meeting there.
func (c *Canvas) DrawPath(points []diagram.Point, s Style) {
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		dir, ok := diagram.DirectionBetween(a, b)
		if !ok {
			continue
		}
		fwd, back := ArmFor(dir), ArmFor(dir.Opposite())
		for p := a; ; p = p.Step(dir) {
			var arms Arms
			if p != a {
				arms |= back
			}
			if p != b {
				arms |= fwd
			}
			c.AddArms(p, arms, s)
			if p == b {
				break
			}
		}
	}
}

// DrawBox draws the outline of r with the given style.
func (c *Canvas) DrawBox(r diagram.Rect, style BoxStyle) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	x2, y2 := r.Right(), r.Bottom()
	for x := r.X + 1; x < x2; x++ {
		c.SetBorder(diagram.Point{X: x, Y: r.Y}, style.Top)
		c.SetBorder(diagram.Point{X: x, Y: y2}, style.Bottom)
	}
	for y := r.Y + 1; y < y2; y++ {
		c.SetBorder(diagram.Point{X: r.X, Y: y}, style.Left)
		c.SetBorder(diagram.Point{X: x2, Y: y}, style.Right)
	}
	c.SetBorder(diagram.Point{X: r.X, Y: r.Y}, style.TopLeft)
	c.SetBorder(diagram.Point{X: x2, Y: r.Y}, style.TopRight)
	c.SetBorder(diagram.Point{X: r.X, Y: y2}, style.BottomLeft)
	c.SetBorder(diagram.Point{X: x2, Y: y2}, style.BottomRight)
}

// DrawDivider draws a horizontal compartment separator across box r at row y.
func (c *Canvas) DrawDivider(r diagram.Rect, y int) {
	d := c.cs.Divider
	c.SetBorder(diagram.Point{X: r.X, Y: y}, d.TopLeft)
	for x := r.X + 1; x < r.Right(); x++ {
		c.SetBorder(diagram.Point{X: x, Y: y}, d.Top)
	}
	c.SetBorder(diagram.Point{X: r.Right(), Y: y}, d.TopRight)
}

// FlipVertical mirrors the canvas top to bottom. Line arms swap north and
// south and direction-sensitive border and marker glyphs are remapped, so
// the result still reads as a connected drawing. Text cells are moved but not
// remapped; callers that need readable text draw it after flipping.
func (c *Canvas) FlipVertical() {
	for i, j := 0, len(c.rows)-1; i < j; i, j = i+1, j-1 {
		c.rows[i], c.rows[j] = c.rows[j], c.rows[i]
	}
	for y := range c.rows {
		for x := range c.rows[y] {
			cl := &c.rows[y][x]
			switch cl.kind {
			case cellLine:
				cl.arms = cl.arms.flipped()
				cl.r = c.cs.Line(cl.arms, cl.style)
			case cellBorder, cellMarker:
				cl.r = c.cs.Flip(cl.r)
			}
		}
	}
}

// String returns the canvas as newline-joined rows. Trailing spaces on each
// row and blank rows at either end are dropped.
func (c *Canvas) String() string {
	lines := make([]string, 0, c.height)
	var sb strings.Builder
	for y := 0; y < c.height; y++ {
		sb.Reset()
		for x := 0; x < c.width; x++ {
			sb.WriteRune(c.rows[y][x].r)
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}
