package diagram

import "fmt"

// Shape is the outline drawn for a graph node.
type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeRounded
	ShapeDiamond
	ShapeStadium
	ShapeCircle
	ShapeSubroutine
	ShapeDoubleCircle
	ShapeHexagon
	ShapeCylinder
	ShapeAsymmetric
	ShapeTrapezoid
	ShapeTrapezoidAlt
	ShapeStateStart
	ShapeStateEnd
)

var shapeNames = [...]string{
	"rectangle", "rounded", "diamond", "stadium", "circle", "subroutine",
	"doublecircle", "hexagon", "cylinder", "asymmetric", "trapezoid",
	"trapezoid-alt", "state-start", "state-end",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// LineStyle is the stroke used for an edge.
type LineStyle int

const (
	LineSolid LineStyle = iota
	LineDashed
	LineThick
)

func (l LineStyle) String() string {
	switch l {
	case LineSolid:
		return "solid"
	case LineDashed:
		return "dashed"
	case LineThick:
		return "thick"
	default:
		return fmt.Sprintf("line(%d)", int(l))
	}
}

// Head is the terminator at one end of an edge or message.
type Head int

const (
	HeadNone Head = iota
	HeadArrow
	HeadOpenArrow
	HeadCircle
	HeadCross
)

// Node is a vertex of a flowchart or state diagram.
type Node struct {
	ID    string
	Label string // may contain '\n' for multi-line labels
	Shape Shape
}

// Edge connects two graph nodes. Edges keep declaration order.
type Edge struct {
	From  string
	To    string
	Label string
	Line  LineStyle
	Start Head // terminator drawn at From
	End   Head // terminator drawn at To
}

// Group is a cluster (subgraph) of nodes. Groups nest through Groups.
type Group struct {
	ID     string
	Label  string
	Nodes  []string
	Groups []Group
}

// Graph is a flowchart or state diagram.
type Graph struct {
	Direction Direction
	Nodes     []Node
	Edges     []Edge
	Groups    []Group
}

func (*Graph) Kind() Kind { return KindGraph }
func (*Graph) sealed()    {}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks node ids, edge endpoints and cluster membership.
func (g *Graph) Validate() error {
	nodes := newIDIndex(KindGraph, "node", len(g.Nodes))
	for i, n := range g.Nodes {
		if err := nodes.add(n.ID, i); err != nil {
			return err
		}
	}
	for i, e := range g.Edges {
		if err := nodes.require(e.From, fmt.Sprintf("edge %d source", i)); err != nil {
			return err
		}
		if err := nodes.require(e.To, fmt.Sprintf("edge %d target", i)); err != nil {
			return err
		}
	}

	groups := newIDIndex(KindGraph, "group", len(g.Groups))
	owner := make(map[string]string)
	var walk func(gs []Group) error
	walk = func(gs []Group) error {
		for i, grp := range gs {
			if err := groups.add(grp.ID, i); err != nil {
				return err
			}
			if nodes.has(grp.ID) {
				return modelErr(KindGraph, grp.ID, "group", ErrDuplicateID)
			}
			for _, id := range grp.Nodes {
				if err := nodes.require(id, fmt.Sprintf("group %q member", grp.ID)); err != nil {
					return err
				}
				if prev, taken := owner[id]; taken {
					return modelErr(KindGraph, id, fmt.Sprintf("groups %q and %q member", prev, grp.ID), ErrClusterConflict)
				}
				owner[id] = grp.ID
			}
			if err := walk(grp.Groups); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(g.Groups)
}
