package canvas

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts text to NFC so that precomposable accent sequences take
// a single cell.
func Normalize(text string) string {
	if norm.NFC.IsNormalString(text) {
		return text
	}
	return norm.NFC.String(text)
}

// Lines splits a label on '\n' after normalising it. An empty label yields a
// single empty line so that boxes always have a text row.
func Lines(label string) []string {
	return strings.Split(Normalize(label), "\n")
}

// Width returns the number of cells text occupies. Each rune is one cell.
func Width(text string) int {
	return utf8.RuneCountInString(text)
}

// MaxWidth returns the widest line.
func MaxWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, Width(l))
	}
	return w
}

// CenterOffset returns the left offset that centres text of width w in a
// span of the given width, favouring the left on odd remainders.
func CenterOffset(w, span int) int {
	if w >= span {
		return 0
	}
	return (span - w) / 2
}

// DrawCentered draws each line horizontally centred in the span starting
// at x, one row per line starting at y.
func (c *Canvas) DrawCentered(x, y, span int, lines []string) {
	for i, l := range lines {
		c.DrawText(x+CenterOffset(Width(l), span), y+i, l)
	}
}
