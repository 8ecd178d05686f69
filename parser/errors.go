package parser

import "github.com/cockroachdb/errors"

var (
	// ErrEmptyInput is returned when the source has no statements.
	ErrEmptyInput = errors.New("empty diagram source")
	// ErrUnknownHeader is returned when the first statement is not a diagram header.
	ErrUnknownHeader = errors.New("unrecognized diagram header")
	// ErrMissingDirection is returned for a graph/flowchart header without a valid direction.
	ErrMissingDirection = errors.New("missing or invalid direction")
	// ErrUnsupportedFamily is returned for headers of diagram kinds that cannot be rendered as text.
	ErrUnsupportedFamily = errors.New("unsupported diagram family")
)

const (
	grammarHeader    = "one of: graph <dir>, flowchart <dir>, stateDiagram, stateDiagram-v2, sequenceDiagram, classDiagram, erDiagram"
	grammarDirection = "graph|flowchart followed by TD, TB, BT, LR or RL"
)

// headerError wraps sentinel with the offending line and the expected grammar.
func headerError(sentinel error, l Line, expected, hint string) error {
	err := errors.Wrapf(sentinel, "line %d %q: expected %s", l.No, l.Text, expected)
	return errors.WithHint(err, hint)
}
