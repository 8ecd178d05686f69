// Package termaid renders Mermaid-style diagram source as ASCII or Unicode
// character art.
//
// Flowcharts, state diagrams, sequence diagrams, class diagrams and
// entity-relationship diagrams are supported. The family is picked from the
// first statement of the source:
//
//	out, err := termaid.Render("graph LR\nA --> B", termaid.DefaultOptions())
//
// Rendering is deterministic and keeps no state between calls, so Render
// is safe to call from several goroutines at once.
package termaid

import (
	"io"

	"github.com/charmbracelet/log"

	"termaid/layout"
	"termaid/parser"
	"termaid/render"
)

// Family is a diagram family such as "flowchart" or "sequence".
type Family = parser.Family

// Supported families.
const (
	FamilyFlowchart = parser.FamilyFlowchart
	FamilyState     = parser.FamilyState
	FamilySequence  = parser.FamilySequence
	FamilyClass     = parser.FamilyClass
	FamilyER        = parser.FamilyER
)

// Options controls rendering. Zero spacing fields take their defaults and
// negative ones are clamped to zero.
type Options struct {
	UseASCII         bool // plain ASCII glyphs instead of box drawing
	PaddingX         int  // horizontal gap between boxes
	PaddingY         int  // vertical gap between boxes
	BoxBorderPadding int  // space between a box border and its text
	Logger           *log.Logger
}

// DefaultOptions returns Unicode output with the default spacing.
func DefaultOptions() Options {
	return Options{
		PaddingX:         layout.DefaultSpacing.PaddingX,
		PaddingY:         layout.DefaultSpacing.PaddingY,
		BoxBorderPadding: layout.DefaultSpacing.BoxPadding,
	}
}

func (o Options) spacing() layout.Spacing {
	sp := layout.Spacing{PaddingX: o.PaddingX, PaddingY: o.PaddingY, BoxPadding: o.BoxBorderPadding}
	if sp.PaddingX == 0 {
		sp.PaddingX = layout.DefaultSpacing.PaddingX
	}
	if sp.PaddingY == 0 {
		sp.PaddingY = layout.DefaultSpacing.PaddingY
	}
	if sp.BoxPadding == 0 {
		sp.BoxPadding = layout.DefaultSpacing.BoxPadding
	}
	return sp.Clamp()
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Render parses source and returns its drawing. Empty input, an unknown
// header or a flowchart header without a direction fail with an error
// naming the offending line; unrecognised statements are skipped.
func Render(source string, opts Options) (string, error) {
	logger := opts.logger()
	res, err := parser.Parse(source, logger)
	if err != nil {
		return "", err
	}
	logger.Debug("parsed diagram", "family", res.Family)

	reg := render.NewDefaultRegistry(render.Options{
		ASCII:   opts.UseASCII,
		Spacing: opts.spacing(),
		Logger:  logger,
	})
	return reg.Render(res)
}

// DetectFamily reports which family source belongs to without rendering it.
func DetectFamily(source string) (Family, error) {
	return parser.Detect(parser.SplitLines(source))
}
