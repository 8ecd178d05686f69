package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid/diagram"
	"termaid/parser"
)

func layoutER(t *testing.T, src string) *ERLayout {
	t.Helper()
	res, err := parser.Parse(src, nil)
	require.NoError(t, err)
	require.NotNil(t, res.ER)
	return ER(res.ER, DefaultSpacing, nil)
}

func TestEntityText(t *testing.T) {
	e := &diagram.Entity{ID: "p", Label: "Person", Attributes: []diagram.Attribute{
		{Type: "string", Name: "name", Keys: []string{"PK"}, Comment: "the name"},
		{Type: "int", Name: "age"},
		{Type: "string", Name: "team", Keys: []string{"FK", "UK"}},
	}}
	text := EntityText(e)
	assert.Equal(t, []string{"Person"}, text.Header)
	require.Len(t, text.Sections, 1)
	assert.Equal(t, []string{
		`string name PK    "the name"`,
		`int    age`,
		`string team FK,UK`,
	}, text.Sections[0])

	assert.Empty(t, EntityText(&diagram.Entity{ID: "X"}).Sections)
	assert.Equal(t, []string{"X"}, EntityText(&diagram.Entity{ID: "X"}).Header)
}

func TestER_SideBySide(t *testing.T) {
	l := layoutER(t, "erDiagram\nCUSTOMER ||--o{ ORDER : places")
	c, o := l.Entity("CUSTOMER"), l.Entity("ORDER")
	require.NotNil(t, c)
	require.NotNil(t, o)
	assert.Equal(t, c.Box.Y, o.Box.Y)
	assert.Greater(t, o.Box.X, c.Box.Right())

	require.Len(t, l.Routes, 1)
	r := l.Routes[0]
	assert.True(t, r.Rel.Identifying)
	assert.Equal(t, diagram.Point{X: c.Box.Right() + 1, Y: c.Box.Y + 1}, r.From.At)
	assert.Equal(t, diagram.West, r.From.Dir)
	assert.Equal(t, diagram.Point{X: o.Box.X - 1, Y: o.Box.Y + 1}, r.To.At)
	assert.Equal(t, diagram.East, r.To.Dir)
	assert.Equal(t, []diagram.Point{r.From.At, r.To.At}, r.Points)

	assert.Equal(t, "1", r.From.Text)
	assert.Equal(t, diagram.Point{X: r.From.At.X, Y: r.From.At.Y - 1}, r.From.TextAt)
	assert.Equal(t, "0..*", r.To.Text)
	assert.Equal(t, r.To.At.X, r.To.TextAt.X+len("0..*")-1, "text ends next to the box it describes")

	assert.Equal(t, []string{"places"}, r.Label)
	assert.Greater(t, r.LabelAt.X, c.Box.Right())
	assert.Less(t, r.LabelAt.X+len("places")-1, o.Box.X)
}

func TestER_GridAndRouting(t *testing.T) {
	l := layoutER(t, `erDiagram
	A ||--|{ B : has
	C }o..o| D : links
	A ||--o{ D : reaches
	E ||--|| A : owns`)
	require.Len(t, l.Entities, 5)
	a, b, c, d, e := l.Entity("A"), l.Entity("B"), l.Entity("C"), l.Entity("D"), l.Entity("E")
	assert.Equal(t, [2]int{0, 0}, [2]int{a.Row, a.Col})
	assert.Equal(t, [2]int{0, 2}, [2]int{c.Row, c.Col})
	assert.Equal(t, [2]int{1, 0}, [2]int{d.Row, d.Col})
	assert.Equal(t, [2]int{1, 1}, [2]int{e.Row, e.Col})
	assert.Greater(t, d.Box.Y, a.Box.Bottom())
	assert.Equal(t, a.Box.Y, b.Box.Y)

	assert.False(t, l.Routes[1].Rel.Identifying)
	for _, r := range l.Routes {
		cs := cells(r.Points)
		require.NotEmpty(t, cs)
		assert.Equal(t, r.From.At, cs[0])
		assert.Equal(t, r.To.At, cs[len(cs)-1])
		for _, p := range cs {
			for _, en := range l.Entities {
				assert.False(t, en.Box.Contains(p), "%s-%s crosses %s at %v", r.Rel.From, r.Rel.To, en.Entity.ID, p)
			}
		}
	}

	reaches := l.Routes[2]
	assert.Equal(t, diagram.North, reaches.From.Dir, "leaves A from the bottom")
	assert.Equal(t, diagram.South, reaches.To.Dir, "enters D from the top")
	owns := l.Routes[3]
	assert.Equal(t, diagram.South, owns.From.Dir, "E is below A and is entered from its top")
	assert.Equal(t, e.Box.Y-1, owns.From.At.Y)
	assert.Equal(t, a.Box.Bottom()+1, owns.To.At.Y)
	assert.NotEqual(t, reaches.From.At, owns.To.At, "ports on one side are spread")
}

func TestER_SelfRelation(t *testing.T) {
	l := layoutER(t, "erDiagram\nEMPLOYEE |o--o{ EMPLOYEE : manages")
	emp := l.Entity("EMPLOYEE")
	r := l.Routes[0]
	for _, p := range cells(r.Points) {
		assert.False(t, emp.Box.Contains(p))
	}
	assert.Equal(t, "0..1", r.From.Text)
	assert.Equal(t, "0..*", r.To.Text)
}

func TestER_Deterministic(t *testing.T) {
	src := "erDiagram\nA ||--|{ B : x\nB ||--o{ C : y\nC }|..|{ A : z\nD ||--|| B : w"
	first := layoutER(t, src)
	for i := 0; i < 5; i++ {
		next := layoutER(t, src)
		for j := range first.Routes {
			assert.Equal(t, first.Routes[j].Points, next.Routes[j].Points)
			assert.Equal(t, first.Routes[j].LabelAt, next.Routes[j].LabelAt)
		}
	}
}

func TestER_Empty(t *testing.T) {
	l := ER(&diagram.ERDiagram{}, DefaultSpacing, nil)
	assert.Empty(t, l.Entities)
	assert.Zero(t, l.Width)
}
