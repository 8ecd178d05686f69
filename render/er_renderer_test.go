package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid/diagram"
)

// armRunes lists the glyphs that reach out of their cell in each direction.
var armRunes = map[diagram.Direction]string{
	diagram.North: "│┆└┘┴├┤┼",
	diagram.South: "│┆┌┐┬├┤┼",
	diagram.East:  "─┄└┌┴├┬┼",
	diagram.West:  "─┄┐┘┴┬┤┼",
}

// tees maps each tee to the direction its stem points.
var tees = map[rune]diagram.Direction{
	'┬': diagram.South,
	'┴': diagram.North,
	'├': diagram.East,
	'┤': diagram.West,
}

// assertTeesConnected checks that the cell beyond every tee's stem is a
// line reaching back, or one of the extra glyphs allowed to end a stem.
func assertTeesConnected(t *testing.T, out, ends string) {
	t.Helper()
	var grid [][]rune
	for _, l := range strings.Split(out, "\n") {
		grid = append(grid, []rune(l))
	}
	at := func(p diagram.Point) rune {
		if p.Y < 0 || p.Y >= len(grid) || p.X < 0 || p.X >= len(grid[p.Y]) {
			return ' '
		}
		return grid[p.Y][p.X]
	}
	for y, row := range grid {
		for x, r := range row {
			stem, ok := tees[r]
			if !ok {
				continue
			}
			next := at(diagram.Point{X: x, Y: y}.Step(stem))
			connected := strings.ContainsRune(armRunes[stem.Opposite()], next) || strings.ContainsRune(ends, next)
			assert.True(t, connected, "%c at (%d,%d) meets %q\n%s", r, x, y, next, out)
		}
	}
}

func TestERRenderer_Identifying(t *testing.T) {
	out := renderSource(t, "erDiagram\nCUSTOMER ||--o{ ORDER : places", false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "┌──────────┐1"), lines[0])
	assert.Contains(t, lines[0], "0..*┌")
	assert.True(t, strings.HasPrefix(lines[1], "│ CUSTOMER ├─places"), lines[1])
	assert.Contains(t, lines[1], "places───┤ ORDER │")
	assert.NotContains(t, out, "┄")
}

func TestERRenderer_NonIdentifying(t *testing.T) {
	out := renderSource(t, "erDiagram\nPERSON }|..|{ TEAM : joins", false)
	assert.Contains(t, out, "┄")
	assert.Contains(t, out, "1..*")
	assert.Contains(t, out, "joins")
}

func TestERRenderer_Attributes(t *testing.T) {
	out := renderSource(t, `erDiagram
	CUSTOMER {
		string name PK
		int age
	}`, false)
	assert.Equal(t, strings.Join([]string{
		"┌────────────────┐",
		"│    CUSTOMER    │",
		"├────────────────┤",
		"│ string name PK │",
		"│ int    age     │",
		"└────────────────┘",
	}, "\n"), out)
}

func TestERRenderer_ASCII(t *testing.T) {
	out := renderSource(t, "erDiagram\nA ||..o| B : x", true)
	assert.Contains(t, out, ".")
	assert.Contains(t, out, "0..1")
	assert.NotContains(t, out, "┌")
}

func TestERRenderer_StemsReachTheLine(t *testing.T) {
	for _, src := range []string{
		"erDiagram\nCUSTOMER ||--o{ ORDER : places\nORDER ||--|{ LINE-ITEM : contains",
		"erDiagram\nCUSTOMER ||--o{ ORDER : places\nORDER ||--|{ LINE-ITEM : contains\nCUSTOMER }|..|{ DELIVERY-ADDRESS : uses",
		"erDiagram\nA ||--o{ B : x\nA ||--o{ C : y\nB }o--|| C : z\nCUSTOMER {\nstring name\n}\nCUSTOMER ||--o{ A : owns",
	} {
		out := renderSource(t, src, false)
		assertTeesConnected(t, out, "")
	}
}
