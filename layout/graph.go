package layout

import (
	"fmt"
	"math"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

// LayoutGraph positions a flowchart or state diagram with the layered
// engine. Cycles are broken for ranking only; every path keeps its
// declared direction.
func LayoutGraph(g *diagram.Graph, opts core.Options, m Metrics) (*Result, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	u := m.Units()
	dir := direction(opts, g.Direction)
	res := &Result{Kind: diagram.KindGraph, Direction: dir}
	if len(g.Nodes) == 0 {
		finish(res, m, u)
		return res, nil
	}

	e := newEngine(u, dir, opts.MaxCrossingIterations, opts.Log())
	index := make(map[string]int, len(g.Nodes))
	clusterOf := make(map[string]int)
	var addGroups func(groups []diagram.Group, parent int)
	addGroups = func(groups []diagram.Group, parent int) {
		for _, grp := range groups {
			var lw float64
			if grp.Label != "" {
				lw = m.TextWidth(grp.Label, GroupText)
			}
			c := e.addCluster(grp.ID, grp.Label, parent, lw)
			for _, id := range grp.Nodes {
				clusterOf[id] = c
			}
			addGroups(grp.Groups, c)
		}
	}
	addGroups(g.Groups, -1)

	texts := make([][]string, len(g.Nodes))
	for i, n := range g.Nodes {
		w, h, ls := nodeSize(n, m, u)
		texts[i] = ls
		c, ok := clusterOf[n.ID]
		if !ok {
			c = -1
		}
		index[n.ID] = e.addNode(n.ID, w, h, c)
	}
	for i, ed := range g.Edges {
		e.addEdge(index[ed.From], index[ed.To], true)
		if ed.Label != "" && ed.From != ed.To {
			e.labelRoom[i] = labelRoom(m, u, ed.Label, dir)
		}
	}
	e.run()

	for i, n := range g.Nodes {
		res.Boxes = append(res.Boxes, Box{
			ID:    n.ID,
			Role:  RoleNode,
			Shape: n.Shape,
			Rect:  e.nodeRect(i),
			Lines: texts[i],
		})
	}
	rt := e.newRouter()
	loops := make(map[int]int)
	for i, ed := range g.Edges {
		p := Path{
			ID:    edgeID(i),
			From:  ed.From,
			To:    ed.To,
			Label: ed.Label,
			Style: ed.Line,
			Start: headMarker(ed.Start),
			End:   headMarker(ed.End),
		}
		if ed.From == ed.To {
			v := index[ed.From]
			p.Points = e.selfLoop(v, loops[v])
			p.SelfLoop = true
			loops[v]++
		} else {
			p.Points = rt.route(i)
		}
		p.LabelAt = labelAnchor(p, m, u)
		res.Paths = append(res.Paths, p)
	}
	res.Frames = e.frames()
	finish(res, m, u)
	return res, nil
}

func edgeID(i int) string { return fmt.Sprintf("edge-%d", i) }

// nodeSize measures a node's label and applies the shape's sizing rule.
// Grid units draw every shape in a rectangle, so only vector units get
// shape-specific sizes.
func nodeSize(n diagram.Node, m Metrics, u Units) (w, h float64, ls []string) {
	label := n.Label
	if label == "" && n.Shape != diagram.ShapeStateStart && n.Shape != diagram.ShapeStateEnd {
		label = n.ID
	}
	ls = lines(label)
	tw, th := blockSize(m, ls, NodeText)
	w = math.Max(tw+2*u.PadX, u.MinWidth)
	h = math.Max(th+2*u.PadY, u.MinHeight)

	switch n.Shape {
	case diagram.ShapeStateStart, diagram.ShapeStateEnd:
		if u.Grid {
			return 3, 3, nil
		}
		return 28, 28, nil
	}
	if !u.ShapeSizing {
		return w, h, ls
	}
	switch n.Shape {
	case diagram.ShapeDiamond:
		s := math.Max(w, h) + 24
		w, h = s, s
	case diagram.ShapeCircle, diagram.ShapeDoubleCircle:
		d := math.Max(math.Hypot(tw, th)+2*u.PadY+8, u.MinHeight)
		if n.Shape == diagram.ShapeDoubleCircle {
			d += 8
		}
		w, h = d, d
	case diagram.ShapeStadium, diagram.ShapeHexagon:
		w += h / 2
	case diagram.ShapeAsymmetric, diagram.ShapeTrapezoid, diagram.ShapeTrapezoidAlt:
		w += h / 2
	case diagram.ShapeCylinder:
		h += 14
	}
	return w, h, ls
}

// labelRoom is the rank gap needed for a label to sit on its edge with
// line visible on both sides.
func labelRoom(m Metrics, u Units, label string, dir diagram.Direction) float64 {
	w, h := blockSize(m, lines(label), EdgeText)
	if dir.Horizontal() {
		arrow := 16.0
		if u.Grid {
			arrow = 4
		}
		return w + 2*u.LabelPadX + arrow
	}
	arrow := 16.0
	if u.Grid {
		arrow = 2
	}
	return h + 2*u.LabelPadY + arrow
}

// labelAnchor places a path label at the middle of its longest segment;
// self-loop labels go beside the loop.
func labelAnchor(p Path, m Metrics, u Units) geometry.Point {
	if p.Label == "" || len(p.Points) == 0 {
		return geometry.Point{}
	}
	if p.SelfLoop && len(p.Points) >= 3 {
		w, _ := blockSize(m, lines(p.Label), EdgeText)
		a, b := p.Points[1], p.Points[2]
		x := a.X + u.LabelPadX + w/2
		y := (a.Y + b.Y) / 2
		if u.Grid {
			x = a.X + 1 + math.Ceil(w/2)
			y = math.Floor(y)
		}
		return geometry.Point{X: x, Y: y}
	}
	at := p.Points.LabelAnchor()
	if u.Grid {
		at = geometry.Point{X: math.Floor(at.X), Y: math.Floor(at.Y)}
	}
	return at
}

func headMarker(h diagram.Head) Marker {
	switch h {
	case diagram.HeadArrow:
		return MarkerArrow
	case diagram.HeadOpenArrow:
		return MarkerOpenArrow
	case diagram.HeadCircle:
		return MarkerCircle
	case diagram.HeadCross:
		return MarkerCross
	}
	return MarkerNone
}
