// Package mermaidrender lays out diagram models and renders them as SVG or
// as box-drawing text.
//
// The pipeline is Diagram -> layout.Layout -> layout.Result -> renderer.
// Every call works on its own Result and canvas, so independent diagrams
// can be rendered from separate goroutines without synchronization.
package mermaidrender

import (
	"fmt"
	"io"
	"time"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/layout"
	"mermaidrender/render"
)

// Output formats of the default registry.
const (
	FormatSVG  = "svg"
	FormatText = "text"
)

// Renderer runs the layout and render pipeline with fixed options and a
// format registry.
type Renderer struct {
	opts     core.Options
	registry *render.Registry
}

// New builds a Renderer from functional options over the defaults.
func New(opts ...core.Option) (*Renderer, error) {
	o, err := core.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: o, registry: render.DefaultRegistry()}, nil
}

// Register adds an output format. Call it before sharing the Renderer.
func (r *Renderer) Register(format string, rd render.Renderer) {
	r.registry.Register(format, rd)
}

// Options returns the configuration in use.
func (r *Renderer) Options() core.Options {
	return r.opts
}

// Layout computes the geometry of d measured for format.
func (r *Renderer) Layout(d diagram.Diagram, format string) (*layout.Result, error) {
	rd, err := r.registry.Get(format)
	if err != nil {
		return nil, err
	}
	return r.layout(d, rd)
}

func (r *Renderer) layout(d diagram.Diagram, rd render.Renderer) (*layout.Result, error) {
	m, err := rd.Metrics(r.opts)
	if err != nil {
		return nil, fmt.Errorf("text metrics: %w", err)
	}
	if c, ok := m.(io.Closer); ok {
		defer c.Close()
	}
	res, err := layout.Layout(d, r.opts, m)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return res, nil
}

// Render lays out d and draws it in format.
func (r *Renderer) Render(d diagram.Diagram, format string) (string, error) {
	start := time.Now()
	rd, err := r.registry.Get(format)
	if err != nil {
		return "", err
	}
	res, err := r.layout(d, rd)
	if err != nil {
		return "", err
	}
	out, err := rd.Render(res, r.opts)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	r.opts.Log().Debug("rendered",
		"format", format,
		"kind", res.Kind.String(),
		"boxes", len(res.Boxes),
		"paths", len(res.Paths),
		"bytes", len(out),
		"elapsed", time.Since(start))
	return out, nil
}

func withOptions(opts core.Options) (*Renderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, registry: render.DefaultRegistry()}, nil
}

// Layout computes the geometry of d for format with opts.
func Layout(d diagram.Diagram, format string, opts core.Options) (*layout.Result, error) {
	r, err := withOptions(opts)
	if err != nil {
		return nil, err
	}
	return r.Layout(d, format)
}

// Render lays out d and draws it in format ("svg" or "text").
func Render(d diagram.Diagram, format string, opts core.Options) (string, error) {
	r, err := withOptions(opts)
	if err != nil {
		return "", err
	}
	return r.Render(d, format)
}

// RenderSVG renders d as a self-contained SVG document.
func RenderSVG(d diagram.Diagram, opts core.Options) (string, error) {
	return Render(d, FormatSVG, opts)
}

// RenderText renders d as box-drawing text, or ASCII when opts.UseASCII is set.
func RenderText(d diagram.Diagram, opts core.Options) (string, error) {
	return Render(d, FormatText, opts)
}
