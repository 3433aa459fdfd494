package layout

import (
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

// Role says what a box represents, which renderers use to pick a style.
type Role int

const (
	RoleNode Role = iota
	RoleParticipant
	RoleActor
	RoleNote
	RoleClass
	RoleEntity
)

// Align is the horizontal alignment of section text inside a box.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
)

// Box is a positioned, sized node.
type Box struct {
	ID    string
	Role  Role
	Shape diagram.Shape
	Rect  geometry.Rect

	// Lines is the title text, one entry per line.
	Lines []string

	// Sections holds body rows below the title (class attributes and
	// methods, entity attributes). Dividers gives the y offset from the
	// box top of the rule drawn above each section, in layout units.
	Sections [][]string
	Dividers []float64

	// Align applies to Sections; titles are always centred.
	Align Align
	// Mono asks vector output to draw Sections in a monospace face.
	Mono bool
}

// Marker is the terminator drawn at a path end.
type Marker int

const (
	MarkerNone Marker = iota
	MarkerArrow
	MarkerOpenArrow
	MarkerCircle
	MarkerCross
	MarkerTriangle      // hollow triangle: inheritance, realization
	MarkerDiamond       // hollow diamond: aggregation
	MarkerFilledDiamond // composition
	MarkerOne           // crow's foot: exactly one
	MarkerZeroOne
	MarkerMany
	MarkerZeroMany
)

// Cardinal reports whether m is one of the crow's-foot markers.
func (m Marker) Cardinal() bool {
	return m >= MarkerOne && m <= MarkerZeroMany
}

// Path is a routed edge, message or relationship.
type Path struct {
	ID     string
	From   string
	To     string
	Points geometry.Polyline

	Label   string
	LabelAt geometry.Point

	Style diagram.LineStyle
	Start Marker
	End   Marker

	// FromLabel and ToLabel are short end annotations such as class
	// cardinalities, anchored near the corresponding end.
	FromLabel   string
	ToLabel     string
	FromLabelAt geometry.Point
	ToLabelAt   geometry.Point

	SelfLoop bool
}

// FrameDivider is a dashed rule splitting a frame, with an optional label.
type FrameDivider struct {
	Y     float64
	Label string
}

// Frame is a labelled background rectangle: a graph cluster or a sequence block.
type Frame struct {
	ID       string
	Label    string
	Kind     string // "cluster", or the block kind for sequence frames
	Rect     geometry.Rect
	Header   float64 // height of the label band at the top
	Depth    int     // nesting depth, outermost 0
	Dividers []FrameDivider
}

// Lifeline is the vertical extension of a sequence participant.
type Lifeline struct {
	ID     string
	X      float64
	Top    float64
	Bottom float64
}

// Result is the geometry computed for one diagram. It is produced once by
// a strategy and read by exactly one renderer call.
type Result struct {
	Kind      diagram.Kind
	Direction diagram.Direction

	Boxes       []Box
	Paths       []Path
	Frames      []Frame
	Lifelines   []Lifeline
	Activations []geometry.Rect

	// Bounds is the canvas: origin at (0, 0), covering every element plus margin.
	Bounds geometry.Rect

	// CellWidth and CellHeight are the layout units per grid cell.
	CellWidth  float64
	CellHeight float64
}

// Box returns the box with the given id.
func (r *Result) Box(id string) (Box, bool) {
	for _, b := range r.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Box{}, false
}

// Empty reports whether there is nothing to draw.
func (r *Result) Empty() bool {
	return r == nil || (len(r.Boxes) == 0 && len(r.Paths) == 0 && len(r.Frames) == 0)
}

// Translate moves every element by (dx, dy).
func (r *Result) Translate(dx, dy float64) {
	for i := range r.Boxes {
		r.Boxes[i].Rect = r.Boxes[i].Rect.Translate(dx, dy)
	}
	for i := range r.Paths {
		p := &r.Paths[i]
		p.Points = p.Points.Translate(dx, dy)
		p.LabelAt = p.LabelAt.Add(dx, dy)
		p.FromLabelAt = p.FromLabelAt.Add(dx, dy)
		p.ToLabelAt = p.ToLabelAt.Add(dx, dy)
	}
	for i := range r.Frames {
		f := &r.Frames[i]
		f.Rect = f.Rect.Translate(dx, dy)
		for j := range f.Dividers {
			f.Dividers[j].Y += dy
		}
	}
	for i := range r.Lifelines {
		l := &r.Lifelines[i]
		l.X += dx
		l.Top += dy
		l.Bottom += dy
	}
	for i := range r.Activations {
		r.Activations[i] = r.Activations[i].Translate(dx, dy)
	}
}
