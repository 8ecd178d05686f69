package parser

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"

	"termaid/diagram"
)

// Family is a diagram family with its own grammar and layout.
type Family string

const (
	FamilyFlowchart Family = "flowchart"
	FamilyState     Family = "state"
	FamilySequence  Family = "sequence"
	FamilyClass     Family = "class"
	FamilyER        Family = "er"
)

// Families lists the supported families with their header keywords.
var Families = []struct {
	Family  Family
	Headers []string
}{
	{FamilyFlowchart, []string{"graph <dir>", "flowchart <dir>"}},
	{FamilyState, []string{"stateDiagram", "stateDiagram-v2"}},
	{FamilySequence, []string{"sequenceDiagram"}},
	{FamilyClass, []string{"classDiagram", "classDiagram-v2"}},
	{FamilyER, []string{"erDiagram"}},
}

// unsupported are recognised headers of diagram kinds without a text layout.
var unsupported = map[string]bool{
	"gantt": true, "pie": true, "journey": true, "gitgraph": true, "mindmap": true,
	"timeline": true, "quadrantchart": true, "requirementdiagram": true, "c4context": true,
	"sankey-beta": true, "xychart-beta": true, "block-beta": true, "packet-beta": true,
	"architecture-beta": true, "kanban": true, "zenuml": true,
}

// headerKeyword returns the lower-cased first word of a header line.
func headerKeyword(l Line) string {
	f := strings.Fields(strings.TrimSuffix(l.Text, ";"))
	if len(f) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(f[0], ";"))
}

// Detect picks the family from the first statement. Unknown headers fall
// through to the flowchart family, whose parser reports them.
func Detect(lines []Line) (Family, error) {
	if len(lines) == 0 {
		return "", errors.WithHint(ErrEmptyInput, "start the source with a header such as 'graph TD'")
	}
	switch kw := headerKeyword(lines[0]); {
	case kw == "sequencediagram":
		return FamilySequence, nil
	case kw == "classdiagram" || kw == "classdiagram-v2":
		return FamilyClass, nil
	case kw == "erdiagram":
		return FamilyER, nil
	case kw == "statediagram" || kw == "statediagram-v2":
		return FamilyState, nil
	case unsupported[kw]:
		return "", headerError(ErrUnsupportedFamily, lines[0], grammarHeader,
			"only flowchart, state, sequence, class and entity-relationship diagrams render as text")
	}
	return FamilyFlowchart, nil
}

// Result is a parsed diagram. Exactly one model field is set, matching Family.
type Result struct {
	Family   Family
	Graph    *diagram.Graph
	Class    *diagram.ClassDiagram
	Sequence *diagram.SequenceDiagram
	ER       *diagram.ERDiagram
}

// Parse detects the family of source and parses it. A nil logger discards
// debug output.
func Parse(source string, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = discard()
	}
	lines := SplitLines(source)
	family, err := Detect(lines)
	if err != nil {
		return nil, err
	}
	res := &Result{Family: family}
	switch family {
	case FamilySequence:
		res.Sequence, err = ParseSequence(lines, logger)
	case FamilyClass:
		res.Class, err = ParseClass(lines, logger)
	case FamilyER:
		res.ER, err = ParseER(lines, logger)
	default:
		res.Graph, err = ParseFlowchart(lines, logger)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
