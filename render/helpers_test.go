package render

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
	"mermaidrender/layout"
)

func arrow(from, to string) diagram.Edge {
	return diagram.Edge{From: from, To: to, End: diagram.HeadArrow}
}

// samples covers every diagram kind and the glyph-heavy features.
func samples() map[string]diagram.Diagram {
	return map[string]diagram.Diagram{
		"chain": &diagram.Graph{
			Direction: diagram.LeftRight,
			Nodes:     []diagram.Node{{ID: "A", Label: "Start"}, {ID: "B", Label: "Middle"}, {ID: "C", Label: "End"}},
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
			Nodes: []diagram.Node{{ID: "A"}, {ID: "B"}},
			Edges: []diagram.Edge{arrow("A", "B"), arrow("B", "A")},
		},
		"styles": &diagram.Graph{
			Nodes: []diagram.Node{
				{ID: "s", Shape: diagram.ShapeStateStart},
				{ID: "r", Label: "rounded", Shape: diagram.ShapeRounded},
				{ID: "sub", Label: "sub", Shape: diagram.ShapeSubroutine},
				{ID: "db", Label: "db", Shape: diagram.ShapeCylinder},
				{ID: "e", Shape: diagram.ShapeStateEnd},
			},
			Edges: []diagram.Edge{
				arrow("s", "r"),
				{From: "r", To: "sub", Line: diagram.LineDashed, End: diagram.HeadArrow},
				{From: "sub", To: "db", Line: diagram.LineThick, Start: diagram.HeadCircle, End: diagram.HeadCross},
				arrow("db", "e"),
			},
			Groups: []diagram.Group{{ID: "g", Label: "storage", Nodes: []string{"sub", "db"}}},
		},
		"sequence": &diagram.Sequence{
			Participants: []diagram.Participant{{ID: "Alice"}, {ID: "Bob"}, {ID: "Carol", Actor: true}},
			Messages: []diagram.Message{
				{From: "Alice", To: "Bob", Label: "hello", Head: diagram.HeadArrow, Index: 0, Activate: true},
				{From: "Bob", To: "Bob", Label: "think", Head: diagram.HeadArrow, Index: 1},
				{From: "Bob", To: "Carol", Label: "ask", Head: diagram.HeadOpenArrow, Index: 2},
				{From: "Bob", To: "Alice", Label: "hi", Line: diagram.LineDashed, Head: diagram.HeadArrow, Index: 3, Deactivate: true},
			},
			Notes:  []diagram.Note{{Over: []string{"Alice", "Bob"}, Position: diagram.NoteOver, Text: "greeting", After: 1}},
			Blocks: []diagram.Block{{Kind: diagram.BlockAlt, Label: "busy", Start: 1, End: 4, Dividers: []diagram.Divider{{Before: 3, Label: "free"}}}},
		},
		"class": &diagram.Class{
			Classes: []diagram.ClassNode{
				{ID: "Animal", Annotation: "abstract", Attributes: []diagram.Member{{Visibility: diagram.VisibilityPublic, Name: "name", Type: "string"}}},
				{ID: "Dog"},
				{ID: "Owner"},
			},
			Relations: []diagram.Relation{
				{From: "Animal", To: "Dog", Kind: diagram.RelationInheritance, MarkerAt: diagram.EndFrom},
				{From: "Owner", To: "Dog", Kind: diagram.RelationComposition, MarkerAt: diagram.EndFrom, FromCardinality: "1", ToCardinality: "*"},
			},
		},
		"er": &diagram.ER{
			Entities: []diagram.Entity{
				{ID: "CUSTOMER", Attributes: []diagram.Attribute{{Type: "int", Name: "id", Keys: []diagram.Key{diagram.KeyPrimary}}}},
				{ID: "ORDER"},
			},
			Relationships: []diagram.Relationship{
				{From: "CUSTOMER", To: "ORDER", FromCardinality: diagram.ExactlyOne, ToCardinality: diagram.ZeroOrMore, Label: "places", Identifying: true},
			},
		},
	}
}

func sortedNames(m map[string]diagram.Diagram) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// laidOut runs the layout with the metrics the renderer asks for.
func laidOut(t testing.TB, d diagram.Diagram, rd Renderer, opts core.Options) *layout.Result {
	t.Helper()
	m, err := rd.Metrics(opts)
	require.NoError(t, err)
	if fm, ok := m.(*layout.FontMetrics); ok {
		defer fm.Close()
	}
	res, err := layout.Layout(d, opts, m)
	require.NoError(t, err)
	return res
}

// cellResult builds a hand-made grid result with the given bounds.
func cellResult(w, h float64) *layout.Result {
	return &layout.Result{
		Kind:       diagram.KindGraph,
		Bounds:     geometry.Rect{Width: w, Height: h},
		CellWidth:  1,
		CellHeight: 1,
	}
}

func rect(x, y, w, h float64) geometry.Rect {
	return geometry.Rect{X: x, Y: y, Width: w, Height: h}
}

// generateChain creates an n-node chain with extra forward edges.
func generateChain(n, fanout int) *diagram.Graph {
	g := &diagram.Graph{}
	for i := 0; i < n; i++ {
		g.Nodes = append(g.Nodes, diagram.Node{ID: fmt.Sprintf("N%d", i), Label: fmt.Sprintf("Node %d", i)})
	}
	for i := 0; i < n-1; i++ {
		for j := 1; j <= fanout && i+j < n; j++ {
			g.Edges = append(g.Edges, arrow(fmt.Sprintf("N%d", i), fmt.Sprintf("N%d", i+j)))
		}
	}
	return g
}
