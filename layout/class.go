package layout

import (
	"math"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

var titleText = TextStyle{Size: 13, Weight: 600}

// Vector spacing of class boxes.
const (
	classPadX       = 8
	classHeader     = 32
	classAnnotation = 16
	classRow        = 20
	classSectionPad = 8
	classMinWidth   = 120
)

// sectionBox sizes a box with a title band and body sections separated by
// rules. In grid units each rule and each text row takes one row; in vector
// units rows and padding come from the given constants.
type sectionBox struct {
	title    []string
	sections [][]string
	keep     bool // draw every section rule even when a section is empty
}

func (sb sectionBox) size(m Metrics, u Units, header, row, pad, minWidth, padX float64) (w, h float64, dividers []float64) {
	tw, _ := blockSize(m, sb.title, titleText)
	var bw float64
	for _, s := range sb.sections {
		sw, _ := blockSize(m, s, MemberText)
		bw = math.Max(bw, sw)
	}
	if u.Grid {
		w = math.Max(math.Max(tw, bw)+4, u.MinWidth)
		h = 1 + float64(len(sb.title))
		for _, s := range sb.sections {
			if len(s) == 0 && !sb.keep {
				continue
			}
			dividers = append(dividers, h)
			h += 1 + float64(len(s))
		}
		return w, h + 1, dividers
	}
	w = math.Max(math.Max(tw, bw)+2*padX, minWidth)
	h = header
	for _, s := range sb.sections {
		if len(s) == 0 && !sb.keep {
			continue
		}
		dividers = append(dividers, h)
		h += float64(len(s))*row + pad
	}
	return w, h, dividers
}

// LayoutClass ranks classes by inheritance and realization only, parents
// above children. Every other relation docks on the facing sides of its
// two boxes.
func LayoutClass(c *diagram.Class, opts core.Options, m Metrics) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	u := m.Units()
	dir := direction(opts, c.Direction)
	res := &Result{Kind: diagram.KindClass, Direction: dir}
	if len(c.Classes) == 0 {
		finish(res, m, u)
		return res, nil
	}

	e := newEngine(u, dir, opts.MaxCrossingIterations, opts.Log())
	index := make(map[string]int, len(c.Classes))
	for _, cls := range c.Classes {
		box := classBox(cls, m, u)
		index[cls.ID] = e.addNode(cls.ID, box.Rect.Width, box.Rect.Height, -1)
		res.Boxes = append(res.Boxes, box)
	}
	edgeOf := make(map[int]int)
	for i, r := range c.Relations {
		if !r.Kind.Hierarchical() || r.From == r.To {
			continue
		}
		parent, child := r.From, r.To
		if r.MarkerAt == diagram.EndTo {
			parent, child = r.To, r.From
		}
		edgeOf[i] = e.addEdge(index[parent], index[child], true)
	}
	e.run()

	rects := make([]geometry.Rect, len(c.Classes))
	for i := range res.Boxes {
		rects[i] = e.nodeRect(i)
		res.Boxes[i].Rect = rects[i]
	}

	rt := e.newRouter()
	dk := newDocker(u, rects)
	docked := make(map[int]int)
	loops := make(map[int]int)
	for i, r := range c.Relations {
		from, to := r.To, r.From // paths run towards the marker end
		if r.MarkerAt == diagram.EndTo {
			from, to = r.From, r.To
		}
		if _, ok := edgeOf[i]; !ok && from != to {
			docked[i] = dk.add(index[from], index[to])
		}
	}
	dk.resolve()

	for i, r := range c.Relations {
		from, to := r.To, r.From
		fromCard, toCard := r.ToCardinality, r.FromCardinality
		if r.MarkerAt == diagram.EndTo {
			from, to = r.From, r.To
			fromCard, toCard = r.FromCardinality, r.ToCardinality
		}
		p := Path{
			ID:        edgeID(i),
			From:      from,
			To:        to,
			Label:     r.Label,
			Style:     relationStyle(r.Kind),
			End:       relationMarker(r.Kind),
			FromLabel: fromCard,
			ToLabel:   toCard,
		}
		switch {
		case from == to:
			v := index[from]
			p.Points = e.selfLoop(v, loops[v])
			p.SelfLoop = true
			loops[v]++
		case r.Kind.Hierarchical():
			// Ranked parent to child; drawn child to parent.
			p.Points = rt.route(edgeOf[i]).Reverse()
		default:
			p.Points = dk.route(docked[i])
		}
		p.LabelAt = labelAnchor(p, m, u)
		p.FromLabelAt = endLabelAnchor(p.Points, true, p.FromLabel, m, u)
		p.ToLabelAt = endLabelAnchor(p.Points, false, p.ToLabel, m, u)
		res.Paths = append(res.Paths, p)
	}
	finish(res, m, u)
	return res, nil
}

func classBox(cls diagram.ClassNode, m Metrics, u Units) Box {
	title := lines(cls.Title())
	header := float64(classHeader)
	if cls.Annotation != "" {
		title = append([]string{"«" + cls.Annotation + "»"}, title...)
		header += classAnnotation
	}
	attrs := make([]string, len(cls.Attributes))
	for i, a := range cls.Attributes {
		attrs[i] = a.String()
	}
	methods := make([]string, len(cls.Methods))
	for i, mt := range cls.Methods {
		methods[i] = mt.String()
	}
	sb := sectionBox{title: title, sections: [][]string{attrs, methods}, keep: true}
	w, h, dividers := sb.size(m, u, header, classRow, classSectionPad, classMinWidth, classPadX)
	return Box{
		ID:       cls.ID,
		Role:     RoleClass,
		Rect:     geometry.Rect{Width: w, Height: h},
		Lines:    title,
		Sections: sb.sections,
		Dividers: dividers,
		Align:    AlignLeft,
		Mono:     true,
	}
}

func relationStyle(k diagram.RelationKind) diagram.LineStyle {
	if k == diagram.RelationRealization || k == diagram.RelationDependency {
		return diagram.LineDashed
	}
	return diagram.LineSolid
}

func relationMarker(k diagram.RelationKind) Marker {
	switch k {
	case diagram.RelationInheritance, diagram.RelationRealization:
		return MarkerTriangle
	case diagram.RelationComposition:
		return MarkerFilledDiamond
	case diagram.RelationAggregation:
		return MarkerDiamond
	case diagram.RelationDependency:
		return MarkerOpenArrow
	}
	return MarkerArrow
}

// endLabelAnchor places a short annotation just off one end of a path,
// beside the first (or last) segment so it does not sit on the line.
func endLabelAnchor(pts geometry.Polyline, start bool, label string, m Metrics, u Units) geometry.Point {
	if label == "" || len(pts) < 2 {
		return geometry.Point{}
	}
	a, b := pts[0], pts[1]
	if !start {
		a, b = pts[len(pts)-1], pts[len(pts)-2]
	}
	w, h := blockSize(m, lines(label), EdgeText)
	along, side := 14.0, 10.0
	if u.Grid {
		along, side = 1, 0
	}
	dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
	switch {
	case dx != 0 && dy == 0:
		// Horizontal segment: above the line.
		x := a.X + dx*(along+w/2)
		y := a.Y - side - h/2
		if u.Grid {
			x = a.X + dx*(1+math.Floor(w/2))
			y = a.Y - 1
		}
		return geometry.Point{X: x, Y: y}
	default:
		// Vertical segment: to the right of the line.
		x := a.X + side + w/2
		y := a.Y + dy*(along+h/2)
		if u.Grid {
			x = a.X + 1 + math.Floor(w/2)
			y = a.Y + dy*along
		}
		return geometry.Point{X: x, Y: y}
	}
}

func sign(v float64) float64 {
	switch {
	case v > geometry.Epsilon:
		return 1
	case v < -geometry.Epsilon:
		return -1
	}
	return 0
}
