package layout

import (
	"termaid/canvas"
	"termaid/diagram"
)

// Compartments is the text of a box split by horizontal dividers: a
// centred header followed by left-aligned sections.
type Compartments struct {
	Header   []string
	Sections [][]string
}

// sectionRows is the height of a section; empty sections keep one blank row.
func sectionRows(s []string) int {
	return max(len(s), 1)
}

// Size returns the outer box size for the given horizontal text padding.
func (c Compartments) Size(pad int) (w, h int) {
	text := canvas.MaxWidth(c.Header)
	h = 2 + len(c.Header)
	for _, s := range c.Sections {
		text = max(text, canvas.MaxWidth(s))
		h += 1 + sectionRows(s)
	}
	return text + 2*pad + 2, h
}

// Dividers returns the canvas rows of the separators inside box.
func (c Compartments) Dividers(box diagram.Rect) []int {
	y := box.Y + 1 + len(c.Header)
	out := make([]int, 0, len(c.Sections))
	for _, s := range c.Sections {
		out = append(out, y)
		y += 1 + sectionRows(s)
	}
	return out
}
