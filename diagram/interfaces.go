// Package diagram holds the parsed, typed diagram model consumed by the layout strategies.
//
// A Diagram is one of four kinds: *Graph (flowchart and state diagrams),
// *Sequence, *Class or *ER. Values are built by a parser and treated as
// read-only by everything downstream.
package diagram

import (
	"fmt"
	"strings"
)

// Kind identifies the diagram variant.
type Kind int

const (
	KindGraph Kind = iota
	KindSequence
	KindClass
	KindER
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGraph:
		return "graph"
	case KindSequence:
		return "sequence"
	case KindClass:
		return "class"
	case KindER:
		return "er"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Diagram is the tagged variant over the supported diagram kinds.
// The set of implementations is closed; switch on the concrete type to dispatch.
type Diagram interface {
	// Kind reports which variant this is.
	Kind() Kind

	// Validate checks the model's referential integrity and returns a
	// *ModelError naming the offending id on the first problem found.
	Validate() error

	sealed()
}

// Direction is the flow direction of a layered layout.
type Direction string

const (
	DirectionDefault Direction = ""
	TopDown          Direction = "TD"
	BottomUp         Direction = "BT"
	LeftRight        Direction = "LR"
	RightLeft        Direction = "RL"
)

// ParseDirection accepts the Mermaid spellings TD, TB, BT, LR and RL (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return DirectionDefault, nil
	case "TD", "TB":
		return TopDown, nil
	case "BT":
		return BottomUp, nil
	case "LR":
		return LeftRight, nil
	case "RL":
		return RightLeft, nil
	default:
		return DirectionDefault, fmt.Errorf("unknown direction %q", s)
	}
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool {
	return d == LeftRight || d == RightLeft
}

// Reversed reports whether ranks advance toward negative coordinates.
func (d Direction) Reversed() bool {
	return d == BottomUp || d == RightLeft
}

// Or returns d, or fallback when d is unset.
func (d Direction) Or(fallback Direction) Direction {
	if d == DirectionDefault {
		return fallback
	}
	return d
}
