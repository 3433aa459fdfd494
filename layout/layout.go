// Package layout computes diagram geometry. Each diagram kind has its own
// strategy; all of them produce a Result that any renderer can draw.
package layout

import (
	"fmt"

	"mermaidrender/core"
	"mermaidrender/diagram"
)

// Strategy positions one kind of diagram.
type Strategy interface {
	Layout(d diagram.Diagram, opts core.Options, m Metrics) (*Result, error)
	Name() string
}

// Layout validates d and dispatches to the strategy for its kind.
func Layout(d diagram.Diagram, opts core.Options, m Metrics) (*Result, error) {
	if d == nil {
		return nil, fmt.Errorf("layout: nil diagram")
	}
	s, err := StrategyFor(d.Kind())
	if err != nil {
		return nil, err
	}
	return s.Layout(d, opts, m)
}

// StrategyFor returns the strategy that handles kind.
func StrategyFor(kind diagram.Kind) (Strategy, error) {
	switch kind {
	case diagram.KindGraph:
		return GraphStrategy{}, nil
	case diagram.KindSequence:
		return SequenceStrategy{}, nil
	case diagram.KindClass:
		return ClassStrategy{}, nil
	case diagram.KindER:
		return ERStrategy{}, nil
	}
	return nil, fmt.Errorf("layout: no strategy for %v diagrams", kind)
}

// GraphStrategy lays out flowcharts and state diagrams.
type GraphStrategy struct{}

func (GraphStrategy) Name() string { return "graph" }

func (GraphStrategy) Layout(d diagram.Diagram, opts core.Options, m Metrics) (*Result, error) {
	g, ok := d.(*diagram.Graph)
	if !ok {
		return nil, fmt.Errorf("graph layout: unexpected %T", d)
	}
	return LayoutGraph(g, opts, m)
}

// SequenceStrategy lays out sequence diagrams.
type SequenceStrategy struct{}

func (SequenceStrategy) Name() string { return "sequence" }

func (SequenceStrategy) Layout(d diagram.Diagram, opts core.Options, m Metrics) (*Result, error) {
	s, ok := d.(*diagram.Sequence)
	if !ok {
		return nil, fmt.Errorf("sequence layout: unexpected %T", d)
	}
	return LayoutSequence(s, opts, m)
}

// ClassStrategy lays out class diagrams.
type ClassStrategy struct{}

func (ClassStrategy) Name() string { return "class" }

func (ClassStrategy) Layout(d diagram.Diagram, opts core.Options, m Metrics) (*Result, error) {
	c, ok := d.(*diagram.Class)
	if !ok {
		return nil, fmt.Errorf("class layout: unexpected %T", d)
	}
	return LayoutClass(c, opts, m)
}

// ERStrategy lays out entity-relationship diagrams.
type ERStrategy struct{}

func (ERStrategy) Name() string { return "er" }

func (ERStrategy) Layout(d diagram.Diagram, opts core.Options, m Metrics) (*Result, error) {
	er, ok := d.(*diagram.ER)
	if !ok {
		return nil, fmt.Errorf("er layout: unexpected %T", d)
	}
	return LayoutER(er, opts, m)
}

// direction picks the option override, then the diagram's own direction.
func direction(opts core.Options, own diagram.Direction) diagram.Direction {
	return opts.Direction.Or(own).Or(diagram.TopDown)
}
