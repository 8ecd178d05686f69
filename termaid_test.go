package termaid

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termaid/parser"
)

var samples = map[string]string{
	"flowchart": "graph TD\nA[Start] --> B{Ok?}\nB -->|yes| C\nB -->|no| D\nC & D --> E",
	"state":     "stateDiagram-v2\n[*] --> Idle\nIdle --> Busy : start\nBusy --> Idle : done\nBusy --> [*]",
	"sequence":  "sequenceDiagram\nAlice->>Bob: Hi\nloop retry\nBob-->>Alice: Hello\nend\nNote right of Bob: thinking",
	"class":     "classDiagram\nAnimal <|-- Dog\nAnimal <|-- Cat\nDog *-- Tail\nclass Animal {\n+String name\n+eat() bool\n}",
	"er":        "erDiagram\nCUSTOMER ||--o{ ORDER : places\nORDER ||--|{ LINE-ITEM : contains\nCUSTOMER }|..|{ DELIVERY-ADDRESS : uses",
}

func TestRender_Deterministic(t *testing.T) {
	for name, src := range samples {
		t.Run(name, func(t *testing.T) {
			first, err := Render(src, DefaultOptions())
			require.NoError(t, err)
			require.NotEmpty(t, first)
			for i := 0; i < 5; i++ {
				again, err := Render(src, DefaultOptions())
				require.NoError(t, err)
				assert.Equal(t, first, again)
			}
		})
	}
}

func TestRender_Concurrent(t *testing.T) {
	want := make(map[string]string, len(samples))
	for name, src := range samples {
		out, err := Render(src, Options{UseASCII: true})
		require.NoError(t, err)
		want[name] = out
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		for name, src := range samples {
			name, src := name, src
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := Render(src, Options{UseASCII: true})
				assert.NoError(t, err)
				assert.Equal(t, want[name], out)
			}()
		}
	}
	wg.Wait()
}

func TestRender_LeftToRight(t *testing.T) {
	out, err := Render("graph LR\nA --> B", DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "B")
	assert.Contains(t, out, "►")

	ascii, err := Render("graph LR\nA --> B", Options{UseASCII: true})
	require.NoError(t, err)
	assert.Contains(t, ascii, "A")
	assert.Contains(t, ascii, "B")
	assert.Contains(t, ascii, ">")
	assert.NotContains(t, ascii, "►")
	for _, r := range ascii {
		assert.Less(t, r, rune(128), "non-ASCII glyph %q", r)
	}
}

func TestRender_FirstDeclarationWins(t *testing.T) {
	out, err := Render("graph LR\nA[Start] --> B\nA(Other) --> C\nA --> D", DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Start")
	assert.NotContains(t, out, "Other")
	assert.NotContains(t, out, "╭", "the later rounded declaration is ignored")
}

func TestRender_CartesianExpansion(t *testing.T) {
	src := "graph TD\nA & B -->|go| C & D"
	res, err := parser.Parse(src, nil)
	require.NoError(t, err)
	assert.Len(t, res.Graph.Edges, 4)

	out, err := Render(src, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "go")
}

func TestRender_HyphenatedIDs(t *testing.T) {
	out, err := Render("graph TD\nstyle my-node fill:#f00\nmy-node --> B", DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "│ my-node │")
	assert.Contains(t, out, "│ B │")
}

func TestRender_StateScenario(t *testing.T) {
	src := "stateDiagram-v2\n[*] --> Idle\nIdle --> [*]"
	res, err := parser.Parse(src, nil)
	require.NoError(t, err)
	assert.Len(t, res.Graph.Edges, 2)
	assert.NotNil(t, res.Graph.Node("_start"))
	assert.NotNil(t, res.Graph.Node("_end"))
	assert.Nil(t, res.Graph.Node("_start2"))

	out, err := Render(src, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "●"))
	assert.Equal(t, 1, strings.Count(out, "◉"))
	assert.Contains(t, out, "Idle")
	assert.NotEqual(t, "", strings.Split(out, "\n")[0], "no blank rows above the drawing")
}

func TestRender_ClassScenario(t *testing.T) {
	out, err := Render("classDiagram\nAnimal <|-- Dog", DefaultOptions())
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	animal, dog, marker := -1, -1, -1
	for i, l := range lines {
		switch {
		case strings.Contains(l, "Animal"):
			animal = i
		case strings.Contains(l, "Dog"):
			dog = i
		case strings.Contains(l, "△"):
			marker = i
		}
	}
	require.NotEqual(t, -1, animal)
	assert.Less(t, animal, dog, "the parent sits on the upper level")
	assert.Equal(t, animal+2, marker, "the triangle touches the parent's bottom border")
}

func TestRender_MemberCompartment(t *testing.T) {
	out, err := Render("classDiagram\nclass Person {\n+String name\n}", DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "│ +String name │")
}

func TestRender_Options(t *testing.T) {
	wide, err := Render("graph LR\nA --> B", Options{PaddingX: 9})
	require.NoError(t, err)
	assert.Contains(t, wide, "├────────►│")

	tight, err := Render("graph LR\nA --> B", Options{PaddingX: -3, BoxBorderPadding: -1})
	require.NoError(t, err, "negative spacing is clamped")
	assert.Contains(t, tight, "A")

	assert.Equal(t, Options{PaddingX: 5, PaddingY: 5, BoxBorderPadding: 1}, DefaultOptions())
	def, err := Render("graph LR\nA --> B", Options{})
	require.NoError(t, err)
	explicit, err := Render("graph LR\nA --> B", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, explicit, def, "zero spacing takes the defaults")
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
		contains string
	}{
		{"empty", "", parser.ErrEmptyInput, ""},
		{"whitespace", "  \n\t\n", parser.ErrEmptyInput, ""},
		{"comments only", "%% nothing here", parser.ErrEmptyInput, ""},
		{"semicolon", ";", parser.ErrEmptyInput, ""},
		{"spaced semicolon", " ; ", parser.ErrEmptyInput, ""},
		{"missing direction", "graph", parser.ErrMissingDirection, "line 1"},
		{"bad direction", "flowchart XY\nA-->B", parser.ErrMissingDirection, "XY"},
		{"unknown header", "diagram of things\nA-->B", parser.ErrUnknownHeader, "diagram of things"},
		{"unsupported family", "gantt\ntitle x", parser.ErrUnsupportedFamily, "gantt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(tt.src, DefaultOptions())
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.NotEmpty(t, errors.GetAllHints(err))
		})
	}
}

func TestRender_LogsSkippedLines(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	out, err := Render("graph TD\nA --> B\nthis is not valid ]]\n", Options{Logger: logger})
	require.NoError(t, err)
	assert.Contains(t, out, "│ A │")
	assert.Contains(t, buf.String(), "this is not valid ]]")
}

func TestDetectFamily(t *testing.T) {
	for want, src := range map[Family]string{
		FamilyFlowchart: "flowchart LR\nA-->B",
		FamilyState:     "stateDiagram\n[*] --> A",
		FamilySequence:  "%% comment\nSEQUENCEDIAGRAM",
		FamilyClass:     "classDiagram",
		FamilyER:        "erDiagram",
	} {
		got, err := DetectFamily(src)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
