package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mermaidrender/core"
	"mermaidrender/layout"
)

// ErrUnknownFormat is returned for an output format with no renderer.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer turns a layout result into one output format.
type Renderer interface {
	// Metrics returns the text measurement layouts must use for this format.
	Metrics(opts core.Options) (layout.Metrics, error)
	Render(res *layout.Result, opts core.Options) (string, error)
}

// SVGRenderer produces vector output.
type SVGRenderer struct{}

func (SVGRenderer) Metrics(opts core.Options) (layout.Metrics, error) {
	return layout.NewFontMetrics(opts)
}

func (SVGRenderer) Render(res *layout.Result, opts core.Options) (string, error) {
	return SVG(res, opts)
}

// TextRenderer produces character-grid output.
type TextRenderer struct{}

func (TextRenderer) Metrics(core.Options) (layout.Metrics, error) {
	return layout.CellMetrics{}, nil
}

func (TextRenderer) Render(res *layout.Result, opts core.Options) (string, error) {
	return Text(res, opts)
}

// Registry maps output format names to renderers. Register everything
// before sharing a Registry between goroutines.
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// DefaultRegistry returns a registry with the "svg" and "text" formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("svg", SVGRenderer{})
	r.Register("text", TextRenderer{})
	return r
}

// Register adds or replaces the renderer for format. Names are case-insensitive.
func (r *Registry) Register(format string, rd Renderer) {
	r.renderers[strings.ToLower(format)] = rd
}

// Get returns the renderer for format.
func (r *Registry) Get(format string) (Renderer, error) {
	rd, ok := r.renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownFormat, format, strings.Join(r.Formats(), ", "))
	}
	return rd, nil
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.renderers))
	for f := range r.renderers {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Render draws res with the renderer registered for format.
func (r *Registry) Render(format string, res *layout.Result, opts core.Options) (string, error) {
	rd, err := r.Get(format)
	if err != nil {
		return "", err
	}
	return rd.Render(res, opts)
}
