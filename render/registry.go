package render

import (
	"github.com/cockroachdb/errors"

	"termaid/parser"
)

// ErrNoRenderer is returned when no registered renderer accepts a family.
var ErrNoRenderer = errors.New("no renderer available")

// DiagramRenderer draws one or more diagram families.
type DiagramRenderer interface {
	CanRender(f parser.Family) bool
	Render(res *parser.Result) (string, error)
}

// RendererRegistry manages diagram renderers by family.
type RendererRegistry struct {
	renderers []DiagramRenderer
	fallback  DiagramRenderer
}

// NewRendererRegistry creates a new renderer registry.
func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{
		renderers: make([]DiagramRenderer, 0),
	}
}

// NewDefaultRegistry returns a registry holding a renderer for every
// supported family, all sharing opts. Flowcharts are the fallback.
func NewDefaultRegistry(opts Options) *RendererRegistry {
	r := NewRendererRegistry()
	flow := NewFlowchartRenderer(opts)
	r.Register(flow)
	r.Register(NewSequenceRenderer(opts))
	r.Register(NewClassRenderer(opts))
	r.Register(NewERRenderer(opts))
	r.SetFallback(flow)
	return r
}

// Register adds a renderer to the registry.
func (r *RendererRegistry) Register(renderer DiagramRenderer) {
	r.renderers = append(r.renderers, renderer)
}

// SetFallback sets the default renderer to use when no specific renderer matches.
func (r *RendererRegistry) SetFallback(renderer DiagramRenderer) {
	r.fallback = renderer
}

// GetRenderer returns the appropriate renderer for the given family.
func (r *RendererRegistry) GetRenderer(f parser.Family) (DiagramRenderer, error) {
	for _, renderer := range r.renderers {
		if renderer.CanRender(f) {
			return renderer, nil
		}
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, errors.Wrapf(ErrNoRenderer, "family %q", f)
}

// Render renders a parsed diagram using the appropriate renderer.
func (r *RendererRegistry) Render(res *parser.Result) (string, error) {
	if res == nil {
		return "", ErrNoModel
	}
	renderer, err := r.GetRenderer(res.Family)
	if err != nil {
		return "", err
	}
	return renderer.Render(res)
}
