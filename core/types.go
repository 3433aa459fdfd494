// Package core contains the configuration shared by the layout strategies and renderers.
package core

import (
	"errors"
	"fmt"
	"log/slog"

	"mermaidrender/diagram"
)

// DefaultMaxCrossingIterations bounds the crossing-reduction sweeps. It is a
// tuning knob; any positive value yields a valid, deterministic layout.
const DefaultMaxCrossingIterations = 24

// Options is the single configuration value read by layout and rendering.
// Build one with New so defaults are applied and the result is validated.
type Options struct {
	// Direction overrides the diagram's own direction for graph, class and
	// ER layouts. Empty means use the diagram's, falling back to top-down.
	Direction diagram.Direction

	// UseASCII selects the +-| glyph set in the grid renderer.
	UseASCII bool

	// Padding is the margin around vector output, in pixels.
	Padding float64

	// NodeSpacing and LayerSpacing are the vector gaps between nodes in a
	// rank and between ranks, in pixels.
	NodeSpacing  float64
	LayerSpacing float64

	// Font is the CSS font family written into vector output.
	Font string

	// Theme supplies the colors for vector output.
	Theme Theme

	// Transparent omits the background fill in vector output.
	Transparent bool

	// MaxCrossingIterations caps the crossing-reduction sweeps.
	MaxCrossingIterations int

	// Logger receives debug records about layout and rendering. Nil discards.
	Logger *slog.Logger
}

// Option mutates Options during construction.
type Option func(*Options) error

// Default returns the default configuration.
func Default() Options {
	return Options{
		Padding:               40,
		NodeSpacing:           24,
		LayerSpacing:          40,
		Font:                  "Inter",
		Theme:                 DefaultTheme(),
		MaxCrossingIterations: DefaultMaxCrossingIterations,
	}
}

// New applies opts over the defaults and validates the result.
func New(opts ...Option) (Options, error) {
	o := Default()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// ErrInvalidOption is wrapped by every validation failure.
var ErrInvalidOption = errors.New("invalid option")

// Validate checks every field.
func (o Options) Validate() error {
	if _, err := diagram.ParseDirection(string(o.Direction)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	if o.Padding < 0 {
		return fmt.Errorf("%w: padding %v is negative", ErrInvalidOption, o.Padding)
	}
	if o.NodeSpacing < 0 || o.LayerSpacing < 0 {
		return fmt.Errorf("%w: spacing %v/%v is negative", ErrInvalidOption, o.NodeSpacing, o.LayerSpacing)
	}
	if o.Font == "" {
		return fmt.Errorf("%w: font is empty", ErrInvalidOption)
	}
	if o.MaxCrossingIterations <= 0 {
		return fmt.Errorf("%w: max crossing iterations %d must be positive", ErrInvalidOption, o.MaxCrossingIterations)
	}
	if _, err := o.Theme.Resolve(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return nil
}

// Log returns the configured logger or one that discards everything.
func (o Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// WithDirection sets the layout direction from its Mermaid spelling.
func WithDirection(dir string) Option {
	return func(o *Options) error {
		d, err := diagram.ParseDirection(dir)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOption, err)
		}
		o.Direction = d
		return nil
	}
}

// WithASCII selects the ASCII glyph set for grid output.
func WithASCII(ascii bool) Option {
	return func(o *Options) error {
		o.UseASCII = ascii
		return nil
	}
}

// WithPadding sets the vector output margin.
func WithPadding(p float64) Option {
	return func(o *Options) error {
		o.Padding = p
		return nil
	}
}

// WithSpacing sets the vector node and layer gaps.
func WithSpacing(node, layer float64) Option {
	return func(o *Options) error {
		o.NodeSpacing, o.LayerSpacing = node, layer
		return nil
	}
}

// WithFont sets the vector font family.
func WithFont(family string) Option {
	return func(o *Options) error {
		o.Font = family
		return nil
	}
}

// WithTheme sets explicit theme colors.
func WithTheme(t Theme) Option {
	return func(o *Options) error {
		o.Theme = t
		return nil
	}
}

// WithThemeName selects one of the built-in themes.
func WithThemeName(name string) Option {
	return func(o *Options) error {
		t, ok := Themes[name]
		if !ok {
			return fmt.Errorf("%w: unknown theme %q", ErrInvalidOption, name)
		}
		o.Theme = t
		return nil
	}
}

// WithTransparent drops the background fill from vector output.
func WithTransparent(transparent bool) Option {
	return func(o *Options) error {
		o.Transparent = transparent
		return nil
	}
}

// WithMaxCrossingIterations sets the crossing-reduction sweep cap.
func WithMaxCrossingIterations(n int) Option {
	return func(o *Options) error {
		o.MaxCrossingIterations = n
		return nil
	}
}

// WithLogger routes debug records to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) error {
		o.Logger = l
		return nil
	}
}
