package layout

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

// TestValidator checks the geometric properties every layout must have.
type TestValidator struct {
	t *testing.T
}

// NewTestValidator creates a validator for the given test.
func NewTestValidator(t *testing.T) *TestValidator {
	return &TestValidator{t: t}
}

// ValidateNoOverlaps ensures no two boxes share any area.
func (v *TestValidator) ValidateNoOverlaps(res *Result) {
	v.t.Helper()
	for i := 0; i < len(res.Boxes); i++ {
		for j := i + 1; j < len(res.Boxes); j++ {
			a, b := res.Boxes[i], res.Boxes[j]
			if a.Rect.Intersects(b.Rect) {
				v.t.Errorf("boxes %s and %s overlap: %s and %s", a.ID, b.ID, rectString(a.Rect), rectString(b.Rect))
			}
		}
	}
}

// ValidateContainment ensures boxes, frames and path points lie inside Bounds.
func (v *TestValidator) ValidateContainment(res *Result) {
	v.t.Helper()
	if res.Bounds.X != 0 || res.Bounds.Y != 0 {
		v.t.Errorf("bounds origin is %v, want (0, 0)", res.Bounds)
	}
	for _, b := range res.Boxes {
		if !res.Bounds.ContainsRect(b.Rect) {
			v.t.Errorf("box %s %s outside bounds %s", b.ID, rectString(b.Rect), rectString(res.Bounds))
		}
	}
	for _, f := range res.Frames {
		if !res.Bounds.ContainsRect(f.Rect) {
			v.t.Errorf("frame %s %s outside bounds %s", f.ID, rectString(f.Rect), rectString(res.Bounds))
		}
	}
	for _, p := range res.Paths {
		for _, pt := range p.Points {
			if !res.Bounds.Contains(pt) {
				v.t.Errorf("path %s point %v outside bounds %s", p.ID, pt, rectString(res.Bounds))
			}
		}
	}
}

// ValidateEndpoints ensures every path starts on the boundary of its source
// box and ends on the boundary of its target box.
func (v *TestValidator) ValidateEndpoints(res *Result) {
	v.t.Helper()
	for _, p := range res.Paths {
		if len(p.Points) < 2 {
			v.t.Errorf("path %s has %d points", p.ID, len(p.Points))
			continue
		}
		from, ok := res.Box(p.From)
		require.True(v.t, ok, "no box %s", p.From)
		to, ok := res.Box(p.To)
		require.True(v.t, ok, "no box %s", p.To)
		first, last := p.Points[0], p.Points[len(p.Points)-1]
		if !from.Rect.OnBoundary(first) {
			v.t.Errorf("path %s starts at %v, not on %s boundary %s", p.ID, first, p.From, rectString(from.Rect))
		}
		if !to.Rect.OnBoundary(last) {
			v.t.Errorf("path %s ends at %v, not on %s boundary %s", p.ID, last, p.To, rectString(to.Rect))
		}
		if !p.Points.IsOrthogonal() {
			v.t.Errorf("path %s is not orthogonal: %v", p.ID, p.Points)
		}
	}
}

// ValidateDeterminism ensures the same input always yields the same result.
func (v *TestValidator) ValidateDeterminism(d diagram.Diagram, m Metrics, runs int) {
	v.t.Helper()
	first, err := Layout(d, core.Default(), m)
	require.NoError(v.t, err)
	for i := 1; i < runs; i++ {
		again, err := Layout(d, core.Default(), m)
		require.NoError(v.t, err)
		if !reflect.DeepEqual(first, again) {
			v.t.Errorf("layout not deterministic: run %d differs from run 0", i)
		}
	}
}

// ValidateGrid ensures grid layouts stay on whole cells.
func (v *TestValidator) ValidateGrid(res *Result) {
	v.t.Helper()
	whole := func(f float64) bool { return f == float64(int(f)) }
	for _, b := range res.Boxes {
		r := b.Rect
		if !whole(r.X) || !whole(r.Y) || !whole(r.Width) || !whole(r.Height) {
			v.t.Errorf("box %s off grid: %s", b.ID, rectString(r))
		}
	}
	for _, p := range res.Paths {
		for _, pt := range p.Points {
			if !whole(pt.X) || !whole(pt.Y) {
				v.t.Errorf("path %s point %v off grid", p.ID, pt)
			}
		}
	}
}

func rectString(r geometry.Rect) string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.X, r.Y, r.Width, r.Height)
}

// metricSystems returns both unit systems so every property is checked
// for grid and vector output.
func metricSystems(t *testing.T) map[string]Metrics {
	t.Helper()
	fm, err := NewFontMetrics(core.Default())
	require.NoError(t, err)
	t.Cleanup(func() { fm.Close() })
	return map[string]Metrics{"grid": CellMetrics{}, "vector": fm}
}

// GenerateLinearChain creates an N0 --> N1 --> ... chain.
func GenerateLinearChain(length int) *diagram.Graph {
	g := &diagram.Graph{}
	for i := 0; i < length; i++ {
		g.Nodes = append(g.Nodes, diagram.Node{ID: fmt.Sprintf("N%d", i), Label: fmt.Sprintf("Node %d", i)})
		if i > 0 {
			g.Edges = append(g.Edges, arrow(fmt.Sprintf("N%d", i-1), fmt.Sprintf("N%d", i)))
		}
	}
	return g
}

// GenerateTree creates a tree with the given branching factor and depth.
func GenerateTree(branching, depth int) *diagram.Graph {
	g := &diagram.Graph{Nodes: []diagram.Node{{ID: "T"}}}
	level := []string{"T"}
	for d := 0; d < depth; d++ {
		var next []string
		for _, parent := range level {
			for b := 0; b < branching; b++ {
				id := fmt.Sprintf("%s%d", parent, b)
				g.Nodes = append(g.Nodes, diagram.Node{ID: id})
				g.Edges = append(g.Edges, arrow(parent, id))
				next = append(next, id)
			}
		}
		level = next
	}
	return g
}

func arrow(from, to string) diagram.Edge {
	return diagram.Edge{From: from, To: to, End: diagram.HeadArrow}
}

func nodes(ids ...string) []diagram.Node {
	out := make([]diagram.Node, len(ids))
	for i, id := range ids {
		out[i] = diagram.Node{ID: id}
	}
	return out
}

// corpus is a set of diagrams covering every strategy and feature.
func corpus() map[string]diagram.Diagram {
	return map[string]diagram.Diagram{
		"chain": &diagram.Graph{
			Direction: diagram.LeftRight,
			Nodes:     []diagram.Node{{ID: "A", Label: "Start"}, {ID: "B", Label: "Decision"}, {ID: "C", Label: "End"}},
			Edges:     []diagram.Edge{arrow("A", "B"), arrow("B", "C")},
		},
		"branches": &diagram.Graph{
			Nodes: []diagram.Node{{ID: "A"}, {ID: "B", Shape: diagram.ShapeDiamond}, {ID: "C"}, {ID: "D"}},
			Edges: []diagram.Edge{
				arrow("A", "B"),
				{From: "B", To: "C", Label: "Yes", End: diagram.HeadArrow},
				{From: "B", To: "D", Label: "No", End: diagram.HeadArrow},
			},
		},
		"cycle": &diagram.Graph{
			Nodes: nodes("A", "B"),
			Edges: []diagram.Edge{arrow("A", "B"), arrow("B", "A")},
		},
		"long edges": &diagram.Graph{
			Nodes: nodes("A", "B", "C", "D", "E"),
			Edges: []diagram.Edge{
				arrow("A", "B"), arrow("B", "C"), arrow("C", "D"), arrow("A", "D"),
				arrow("A", "E"), {From: "E", To: "D", Line: diagram.LineDashed, End: diagram.HeadArrow},
				{From: "D", To: "A", Line: diagram.LineThick, End: diagram.HeadArrow},
			},
		},
		"clusters": &diagram.Graph{
			Nodes: nodes("a1", "a2", "b1", "b2", "c1", "x"),
			Edges: []diagram.Edge{
				arrow("a1", "a2"), arrow("b1", "b2"), arrow("a1", "b2"),
				arrow("x", "a1"), arrow("x", "b1"), arrow("a2", "c1"),
			},
			Groups: []diagram.Group{
				{ID: "outer", Label: "Outer", Nodes: []string{"a1", "a2"}, Groups: []diagram.Group{
					{ID: "inner", Label: "Inner", Nodes: []string{"c1"}},
				}},
				{ID: "right", Label: "Right side", Nodes: []string{"b1", "b2"}},
			},
		},
		"clusters LR": &diagram.Graph{
			Direction: diagram.LeftRight,
			Nodes:     nodes("a", "b", "c", "d"),
			Edges:     []diagram.Edge{arrow("a", "b"), arrow("c", "d"), arrow("a", "d")},
			Groups: []diagram.Group{
				{ID: "g1", Label: "one", Nodes: []string{"a", "b"}},
				{ID: "g2", Label: "two", Nodes: []string{"c", "d"}},
			},
		},
		"titled clusters":    titledClusters(diagram.TopDown),
		"titled clusters LR": titledClusters(diagram.LeftRight),
		"self loops": &diagram.Graph{
			Nodes: nodes("A", "B"),
			Edges: []diagram.Edge{arrow("A", "A"), {From: "A", To: "A", Label: "again", End: diagram.HeadArrow}, arrow("A", "B")},
		},
		"components": &diagram.Graph{
			Nodes: nodes("A", "B", "C", "D", "E"),
			Edges: []diagram.Edge{arrow("A", "B"), arrow("C", "D")},
		},
		"bottom up": &diagram.Graph{
			Direction: diagram.BottomUp,
			Nodes:     nodes("A", "B", "C"),
			Edges:     []diagram.Edge{arrow("A", "B"), arrow("A", "C")},
		},
		"right left": &diagram.Graph{
			Direction: diagram.RightLeft,
			Nodes:     nodes("A", "B", "C"),
			Edges:     []diagram.Edge{arrow("A", "B"), {From: "B", To: "C", Label: "go", Start: diagram.HeadCircle, End: diagram.HeadCross}},
		},
		"states": &diagram.Graph{
			Nodes: []diagram.Node{
				{ID: "start", Shape: diagram.ShapeStateStart},
				{ID: "Idle", Shape: diagram.ShapeRounded},
				{ID: "Busy", Shape: diagram.ShapeRounded},
				{ID: "end", Shape: diagram.ShapeStateEnd},
			},
			Edges: []diagram.Edge{arrow("start", "Idle"), {From: "Idle", To: "Busy", Label: "work", End: diagram.HeadArrow}, arrow("Busy", "Idle"), arrow("Busy", "end")},
		},
		"tree": GenerateTree(3, 2),
		"sequence": &diagram.Sequence{
			Participants: []diagram.Participant{{ID: "Alice"}, {ID: "Bob"}, {ID: "Carol", Actor: true}},
			Messages: []diagram.Message{
				{From: "Alice", To: "Bob", Label: "Hello", Head: diagram.HeadArrow, Index: 0, Activate: true},
				{From: "Bob", To: "Bob", Label: "think", Head: diagram.HeadArrow, Index: 1},
				{From: "Bob", To: "Carol", Label: "ask", Head: diagram.HeadOpenArrow, Index: 2},
				{From: "Bob", To: "Alice", Label: "Hi", Line: diagram.LineDashed, Head: diagram.HeadArrow, Index: 3, Deactivate: true},
			},
			Notes: []diagram.Note{{Over: []string{"Alice", "Bob"}, Position: diagram.NoteOver, Text: "greeting", After: 1}},
			Blocks: []diagram.Block{{Kind: diagram.BlockAlt, Label: "busy", Start: 1, End: 4, Dividers: []diagram.Divider{{Before: 3, Label: "free"}}}},
		},
		"class": &diagram.Class{
			Classes: []diagram.ClassNode{
				{ID: "Animal", Annotation: "abstract", Attributes: []diagram.Member{{Visibility: diagram.VisibilityPublic, Name: "name", Type: "string"}}, Methods: []diagram.Member{{Visibility: diagram.VisibilityPublic, Name: "speak()", Abstract: true}}},
				{ID: "Dog"},
				{ID: "Cat"},
				{ID: "Owner"},
			},
			Relations: []diagram.Relation{
				{From: "Animal", To: "Dog", Kind: diagram.RelationInheritance, MarkerAt: diagram.EndFrom},
				{From: "Animal", To: "Cat", Kind: diagram.RelationInheritance, MarkerAt: diagram.EndFrom},
				{From: "Owner", To: "Dog", Kind: diagram.RelationAggregation, MarkerAt: diagram.EndFrom, FromCardinality: "1", ToCardinality: "*", Label: "owns"},
				{From: "Cat", To: "Owner", Kind: diagram.RelationDependency},
			},
		},
		"er": &diagram.ER{
			Entities: []diagram.Entity{
				{ID: "CUSTOMER", Attributes: []diagram.Attribute{{Type: "string", Name: "name"}, {Type: "int", Name: "id", Keys: []diagram.Key{diagram.KeyPrimary}}}},
				{ID: "ORDER"},
				{ID: "LINE-ITEM", Attributes: []diagram.Attribute{{Type: "int", Name: "qty", Comment: "units"}}},
			},
			Relationships: []diagram.Relationship{
				{From: "CUSTOMER", To: "ORDER", FromCardinality: diagram.ExactlyOne, ToCardinality: diagram.ZeroOrMore, Label: "places", Identifying: true},
				{From: "LINE-ITEM", To: "ORDER", FromCardinality: diagram.OneOrMore, ToCardinality: diagram.ExactlyOne, Label: "belongs to"},
			},
		},
	}
}

// titledClusters has cluster titles much wider than their members.
func titledClusters(dir diagram.Direction) *diagram.Graph {
	return &diagram.Graph{
		Direction: dir,
		Nodes:     nodes("x", "a", "b", "c", "y"),
		Edges:     []diagram.Edge{arrow("x", "a"), arrow("x", "b"), arrow("x", "c"), arrow("x", "y"), arrow("a", "y")},
		Groups: []diagram.Group{
			{ID: "g1", Label: "a cluster title", Nodes: []string{"a"}},
			{ID: "g2", Label: "storage", Nodes: []string{"b"}},
			{ID: "g3", Label: "an even longer outer title", Groups: []diagram.Group{
				{ID: "g4", Label: "inner title", Nodes: []string{"c"}},
			}},
		},
	}
}
