package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

func layoutOf(t *testing.T, name string, m Metrics) *Result {
	t.Helper()
	res, err := Layout(corpus()[name], core.Default(), m)
	require.NoError(t, err)
	return res
}

func box(t *testing.T, res *Result, id string) geometry.Rect {
	t.Helper()
	b, ok := res.Box(id)
	require.True(t, ok, "no box %s", id)
	return b.Rect
}

func path(t *testing.T, res *Result, id string) Path {
	t.Helper()
	for _, p := range res.Paths {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no path %s", id)
	return Path{}
}

func TestChainLeftRight(t *testing.T) {
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res := layoutOf(t, "chain", m)
			a, b, c := box(t, res, "A"), box(t, res, "B"), box(t, res, "C")
			assert.Less(t, a.Right(), b.X)
			assert.Less(t, b.Right(), c.X)
			assert.Equal(t, a.Center().Y, b.Center().Y, "a chain stays on one line")
			for _, p := range res.Paths {
				assert.Equal(t, geometry.East, p.Points.FinalHeading(), p.ID)
				assert.Equal(t, MarkerArrow, p.End)
			}
		})
	}
}

func TestBranchesShareRank(t *testing.T) {
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res := layoutOf(t, "branches", m)
			b, c, d := box(t, res, "B"), box(t, res, "C"), box(t, res, "D")
			assert.Equal(t, c.Y, d.Y)
			assert.Greater(t, c.Y, b.Bottom())
			assert.False(t, c.Intersects(d))

			yes := path(t, res, "edge-1")
			no := path(t, res, "edge-2")
			assert.Equal(t, "Yes", yes.Label)
			assert.Equal(t, "No", no.Label)
			assert.NotEqual(t, yes.LabelAt, no.LabelAt)
			assert.True(t, res.Bounds.Contains(yes.LabelAt))
		})
	}
}

func TestCycleRoutesBackEdgeUpward(t *testing.T) {
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res := layoutOf(t, "cycle", m)
			a, b := box(t, res, "A"), box(t, res, "B")
			assert.Greater(t, b.Y, a.Bottom())

			back := path(t, res, "edge-1")
			assert.Equal(t, "B", back.From)
			assert.Equal(t, "A", back.To)
			assert.True(t, a.OnBoundary(back.Points[len(back.Points)-1]))
			assert.Equal(t, geometry.North, back.Points.FinalHeading())
		})
	}
}

func TestSelfLoopsAreDistinct(t *testing.T) {
	res := layoutOf(t, "self loops", CellMetrics{})
	first, second := path(t, res, "edge-0"), path(t, res, "edge-1")
	assert.True(t, first.SelfLoop)
	assert.True(t, second.SelfLoop)
	assert.NotEqual(t, first.Points, second.Points)
	assert.False(t, path(t, res, "edge-2").SelfLoop)
}

func TestComponentsDoNotOverlap(t *testing.T) {
	res := layoutOf(t, "components", CellMetrics{})
	a, c, e := box(t, res, "A"), box(t, res, "C"), box(t, res, "E")
	assert.Less(t, a.Right(), c.X, "components are placed side by side in declaration order")
	assert.Less(t, c.Right(), e.X)
}

func TestReversedDirections(t *testing.T) {
	res := layoutOf(t, "bottom up", CellMetrics{})
	a, b := box(t, res, "A"), box(t, res, "B")
	assert.Less(t, b.Bottom(), a.Y, "BT puts sources at the bottom")

	res = layoutOf(t, "right left", CellMetrics{})
	a, b = box(t, res, "A"), box(t, res, "B")
	assert.Less(t, b.Right(), a.X, "RL puts sources on the right")
	p := path(t, res, "edge-1")
	assert.Equal(t, MarkerCircle, p.Start)
	assert.Equal(t, MarkerCross, p.End)
}

func TestStateShapes(t *testing.T) {
	res := layoutOf(t, "states", CellMetrics{})
	start := box(t, res, "start")
	assert.Equal(t, 3.0, start.Width)
	assert.Equal(t, 3.0, start.Height)
	b, _ := res.Box("end")
	assert.Equal(t, diagram.ShapeStateEnd, b.Shape)
	assert.Empty(t, b.Lines)
}

func TestClusterFrames(t *testing.T) {
	for sys, m := range metricSystems(t) {
		for _, name := range []string{"clusters", "clusters LR", "titled clusters", "titled clusters LR"} {
			t.Run(sys+"/"+name, func(t *testing.T) {
				d := corpus()[name].(*diagram.Graph)
				res := layoutOf(t, name, m)

				frames := make(map[string]Frame)
				for _, f := range res.Frames {
					assert.Equal(t, "cluster", f.Kind)
					frames[f.ID] = f
				}
				require.Len(t, frames, countGroups(d.Groups))

				var check func(gs []diagram.Group)
				check = func(gs []diagram.Group) {
					for _, g := range gs {
						f := frames[g.ID]
						assert.Equal(t, g.Label, f.Label)
						need := m.TextWidth(g.Label, GroupText) + m.Units().ClusterLabelPad
						assert.GreaterOrEqual(t, f.Rect.Width, need, "%s title fits", g.ID)
						members := groupMembers(g)
						for _, id := range members {
							assert.True(t, f.Rect.ContainsRect(box(t, res, id)), "%s inside %s", id, g.ID)
						}
						for _, n := range d.Nodes {
							if !contains(members, n.ID) {
								assert.False(t, f.Rect.Intersects(box(t, res, n.ID)), "%s outside %s", n.ID, g.ID)
							}
						}
						for _, child := range g.Groups {
							assert.True(t, f.Rect.ContainsRect(frames[child.ID].Rect))
						}
						check(g.Groups)
					}
				}
				check(d.Groups)

				// Sibling clusters never overlap.
				for i, g := range d.Groups {
					for _, h := range d.Groups[i+1:] {
						assert.False(t, frames[g.ID].Rect.Intersects(frames[h.ID].Rect), "%s and %s", g.ID, h.ID)
					}
				}
				assert.Equal(t, 0, res.Frames[0].Depth)
			})
		}
	}
}

func countGroups(gs []diagram.Group) int {
	n := len(gs)
	for _, g := range gs {
		n += countGroups(g.Groups)
	}
	return n
}

func groupMembers(g diagram.Group) []string {
	out := append([]string(nil), g.Nodes...)
	for _, c := range g.Groups {
		out = append(out, groupMembers(c)...)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, s := range ids {
		if s == id {
			return true
		}
	}
	return false
}

func TestClassHierarchy(t *testing.T) {
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res := layoutOf(t, "class", m)
			animal, dog, cat := box(t, res, "Animal"), box(t, res, "Dog"), box(t, res, "Cat")
			assert.Greater(t, dog.Y, animal.Bottom())
			assert.Equal(t, dog.Y, cat.Y)

			inherit := path(t, res, "edge-0")
			assert.Equal(t, "Dog", inherit.From)
			assert.Equal(t, "Animal", inherit.To)
			assert.Equal(t, MarkerTriangle, inherit.End)
			assert.Equal(t, diagram.LineSolid, inherit.Style)
			assert.Equal(t, geometry.North, inherit.Points.FinalHeading())

			owns := path(t, res, "edge-2")
			assert.Equal(t, "Dog", owns.From)
			assert.Equal(t, "Owner", owns.To)
			assert.Equal(t, MarkerDiamond, owns.End)
			assert.Equal(t, "*", owns.FromLabel)
			assert.Equal(t, "1", owns.ToLabel)

			dep := path(t, res, "edge-3")
			assert.Equal(t, MarkerOpenArrow, dep.End)
			assert.Equal(t, diagram.LineDashed, dep.Style)

			b, _ := res.Box("Animal")
			assert.Equal(t, RoleClass, b.Role)
			assert.Equal(t, []string{"«abstract»", "Animal"}, b.Lines)
			assert.Len(t, b.Dividers, 2)
			d, _ := res.Box("Dog")
			assert.Len(t, d.Dividers, 2, "empty sections still get their rule")
		})
	}
}

func TestClassGridBoxSize(t *testing.T) {
	res := layoutOf(t, "class", CellMetrics{})
	b, _ := res.Box("Animal")
	// Border, two title rows, rule, one attribute, rule, one method, border.
	assert.Equal(t, 8.0, b.Rect.Height)
	assert.Equal(t, []float64{3, 5}, b.Dividers)
}

func TestERRelationships(t *testing.T) {
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res := layoutOf(t, "er", m)
			cust, order := box(t, res, "CUSTOMER"), box(t, res, "ORDER")
			assert.Greater(t, order.Y, cust.Bottom())

			places := path(t, res, "edge-0")
			assert.Equal(t, "places", places.Label)
			assert.Equal(t, MarkerOne, places.Start)
			assert.Equal(t, MarkerZeroMany, places.End)
			assert.Equal(t, diagram.LineSolid, places.Style)

			belongs := path(t, res, "edge-1")
			assert.Equal(t, "LINE-ITEM", belongs.From)
			assert.Equal(t, "ORDER", belongs.To)
			assert.Equal(t, MarkerMany, belongs.Start)
			assert.Equal(t, diagram.LineDashed, belongs.Style)
			assert.True(t, box(t, res, "LINE-ITEM").OnBoundary(belongs.Points[0]))
		})
	}
}

func TestAttributeRowsAlign(t *testing.T) {
	rows := attributeRows([]diagram.Attribute{
		{Type: "string", Name: "name"},
		{Type: "int", Name: "id", Keys: []diagram.Key{diagram.KeyPrimary}, Comment: "surrogate"},
	})
	assert.Equal(t, []string{
		"string name",
		`int    id   PK "surrogate"`,
	}, rows)
}

func TestSequenceLayout(t *testing.T) {
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res := layoutOf(t, "sequence", m)
			alice, bob, carol := box(t, res, "Alice"), box(t, res, "Bob"), box(t, res, "Carol")
			assert.Less(t, alice.Right(), bob.X)
			assert.Less(t, bob.Right(), carol.X)
			assert.Equal(t, RoleActor, mustBox(res, "Carol").Role)
			require.Len(t, res.Lifelines, 3)

			var prev float64
			for i, p := range res.Paths {
				y := p.Points[0].Y
				if i > 0 {
					assert.Greater(t, y, prev, "%s is below the previous message", p.ID)
				}
				prev = y
			}

			hello := path(t, res, "msg-0")
			assert.Less(t, hello.Points[0].X, hello.Points[1].X)
			think := path(t, res, "msg-1")
			assert.True(t, think.SelfLoop)
			hi := path(t, res, "msg-3")
			assert.Equal(t, diagram.LineDashed, hi.Style)
			assert.Greater(t, hi.Points[0].X, hi.Points[1].X, "reply runs leftwards")

			require.NotEmpty(t, res.Activations)
			act := res.Activations[0]
			assert.LessOrEqual(t, act.Y, hello.Points[0].Y)
			assert.GreaterOrEqual(t, act.Bottom(), hi.Points[0].Y)

			require.Len(t, res.Frames, 1)
			f := res.Frames[0]
			assert.Equal(t, "alt", f.Kind)
			assert.Equal(t, "busy", f.Label)
			require.Len(t, f.Dividers, 1)
			assert.Equal(t, "free", f.Dividers[0].Label)
			assert.Less(t, f.Rect.Y, think.Points[0].Y)
			assert.Greater(t, f.Dividers[0].Y, path(t, res, "msg-2").Points[0].Y)
			assert.Less(t, f.Dividers[0].Y, hi.Points[0].Y)
			assert.Greater(t, f.Rect.Bottom(), hi.Points[0].Y)

			note := mustBox(res, "note-0")
			assert.Equal(t, RoleNote, note.Role)
			assert.Less(t, note.Rect.X, alice.Center().X)
			assert.Greater(t, note.Rect.Right(), bob.Center().X)
			// One message precedes the note, so it sits between the first two.
			assert.Greater(t, note.Rect.Y, hello.Points[0].Y)
			assert.Less(t, note.Rect.Bottom(), think.Points[0].Y)
			assert.LessOrEqual(t, note.Rect.Bottom(), f.Rect.Y)

			for _, l := range res.Lifelines {
				assert.Greater(t, l.Bottom, hi.Points[0].Y)
			}
		})
	}
}

func mustBox(res *Result, id string) Box {
	b, _ := res.Box(id)
	return b
}

func TestCrossingReduction(t *testing.T) {
	e := newEngine(CellMetrics{}.Units(), diagram.TopDown, 8, core.Default().Log())
	a := e.addNode("A", 5, 3, -1)
	b := e.addNode("B", 5, 3, -1)
	c := e.addNode("C", 5, 3, -1)
	d := e.addNode("D", 5, 3, -1)
	e.addEdge(a, d, true)
	e.addEdge(b, c, true)
	e.addEdge(a, c, true)

	e.breakCycles()
	e.assignRanks()
	e.findComponents()
	e.insertVirtualNodes()
	e.buildLayers()
	require.Len(t, e.layers, 1)

	layers := e.layers[0]
	layers[0] = []int{a, b}
	layers[1] = []int{c, d}
	e.setOrder(layers[0])
	e.setOrder(layers[1])
	down, _ := e.segments()
	require.Equal(t, 1, e.countCrossings(layers, down))

	e.reduceCrossings(0)
	assert.Equal(t, 0, e.countCrossings(e.layers[0], down))
	assert.Equal(t, 0, e.crossings)
	assert.Equal(t, []int{d, c}, e.layers[0][1])
}

func TestCrossingIterationCap(t *testing.T) {
	g := GenerateTree(3, 3)
	g.Edges = append(g.Edges, arrow("T00", "T22"), arrow("T20", "T02"))
	opts := core.Default()
	opts.MaxCrossingIterations = 1
	res, err := Layout(g, opts, CellMetrics{})
	require.NoError(t, err)
	v := NewTestValidator(t)
	v.ValidateNoOverlaps(res)
	v.ValidateEndpoints(res)
}

func TestMultiEdgesAreOffset(t *testing.T) {
	g := &diagram.Graph{
		Nodes: nodes("A", "B"),
		Edges: []diagram.Edge{arrow("A", "B"), arrow("A", "B"), arrow("A", "B")},
	}
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res, err := Layout(g, core.Default(), m)
			require.NoError(t, err)
			NewTestValidator(t).ValidateEndpoints(res)
			require.Len(t, res.Paths, 3)
			for i := 1; i < len(res.Paths); i++ {
				prev, cur := res.Paths[i-1].Points, res.Paths[i].Points
				assert.Less(t, prev[0].X, cur[0].X, "edge-%d leaves right of edge-%d", i, i-1)
				assert.Less(t, prev[len(prev)-1].X, cur[len(cur)-1].X, "edge-%d enters right of edge-%d", i, i-1)
			}
		})
	}
}

func TestSingleEdgeBetweenAlignedRanksIsStraight(t *testing.T) {
	g := &diagram.Graph{
		Nodes: []diagram.Node{{ID: "A", Label: "Animal"}, {ID: "B", Label: "Dog"}, {ID: "C", Label: "Puppy"}},
		Edges: []diagram.Edge{arrow("A", "B"), arrow("B", "C")},
	}
	for sys, m := range metricSystems(t) {
		t.Run(sys, func(t *testing.T) {
			res, err := Layout(g, core.Default(), m)
			require.NoError(t, err)
			for _, p := range res.Paths {
				require.Len(t, p.Points, 2, "%s: %v", p.ID, p.Points)
				assert.InDelta(t, p.Points[0].X, p.Points[1].X, geometry.Epsilon, p.ID)
			}
		})
	}
}
