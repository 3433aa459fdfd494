package layout

import (
	"strings"

	"mermaidrender/canvas"
	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

// Vector spacing of entity boxes.
const (
	entityPadX     = 12
	entityHeader   = 32
	entityRow      = 22
	entityPad      = 8
	entityMinWidth = 140
)

// LayoutER places entities with the layered engine. Relationships carry no
// direction, so each one is oriented for ranking by breadth-first depth
// from the first entity of its component, ties broken by declaration
// order. Paths still run From to To.
func LayoutER(d *diagram.ER, opts core.Options, m Metrics) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	u := m.Units()
	dir := direction(opts, d.Direction)
	res := &Result{Kind: diagram.KindER, Direction: dir}
	if len(d.Entities) == 0 {
		finish(res, m, u)
		return res, nil
	}

	e := newEngine(u, dir, opts.MaxCrossingIterations, opts.Log())
	index := make(map[string]int, len(d.Entities))
	for _, ent := range d.Entities {
		box := entityBox(ent, m, u)
		index[ent.ID] = e.addNode(ent.ID, box.Rect.Width, box.Rect.Height, -1)
		res.Boxes = append(res.Boxes, box)
	}

	depth := erDepths(d, index)
	flipped := make(map[int]bool)
	for i, r := range d.Relationships {
		a, b := index[r.From], index[r.To]
		if depth[b] < depth[a] {
			a, b = b, a
			flipped[i] = true
		}
		e.addEdge(a, b, true)
		if a != b {
			e.labelRoom[i] = cardinalityRoom(m, u, r.Label, dir)
		}
	}
	e.run()

	for i := range res.Boxes {
		res.Boxes[i].Rect = e.nodeRect(i)
	}
	rt := e.newRouter()
	loops := make(map[int]int)
	for i, r := range d.Relationships {
		p := Path{
			ID:    edgeID(i),
			From:  r.From,
			To:    r.To,
			Label: r.Label,
			Style: diagram.LineSolid,
			Start: cardinalityMarker(r.FromCardinality),
			End:   cardinalityMarker(r.ToCardinality),
		}
		if !r.Identifying {
			p.Style = diagram.LineDashed
		}
		if r.From == r.To {
			v := index[r.From]
			p.Points = e.selfLoop(v, loops[v])
			p.SelfLoop = true
			loops[v]++
		} else {
			p.Points = rt.route(i)
			if flipped[i] {
				p.Points = p.Points.Reverse()
			}
		}
		p.LabelAt = labelAnchor(p, m, u)
		res.Paths = append(res.Paths, p)
	}
	finish(res, m, u)
	return res, nil
}

// erDepths runs a breadth-first search over the undirected relationship
// graph, starting each component at its first declared entity.
func erDepths(d *diagram.ER, index map[string]int) []int {
	adj := make([][]int, len(d.Entities))
	for _, r := range d.Relationships {
		a, b := index[r.From], index[r.To]
		adj[a] = append(adj[a], b)
		adj[b] = append(adj[b], a)
	}
	depth := make([]int, len(d.Entities))
	for i := range depth {
		depth[i] = -1
	}
	for root := range d.Entities {
		if depth[root] >= 0 {
			continue
		}
		depth[root] = 0
		queue := []int{root}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, w := range adj[v] {
				if depth[w] < 0 {
					depth[w] = depth[v] + 1
					queue = append(queue, w)
				}
			}
		}
	}
	return depth
}

func entityBox(ent diagram.Entity, m Metrics, u Units) Box {
	rows := attributeRows(ent.Attributes)
	sb := sectionBox{title: lines(ent.Title())}
	if len(rows) > 0 {
		sb.sections = [][]string{rows}
	}
	w, h, dividers := sb.size(m, u, entityHeader, entityRow, entityPad, entityMinWidth, entityPadX)
	return Box{
		ID:       ent.ID,
		Role:     RoleEntity,
		Rect:     geometry.Rect{Width: w, Height: h},
		Lines:    sb.title,
		Sections: sb.sections,
		Dividers: dividers,
		Align:    AlignLeft,
		Mono:     true,
	}
}

// attributeRows formats attributes as aligned columns: type, name, keys and
// a quoted comment.
func attributeRows(attrs []diagram.Attribute) []string {
	if len(attrs) == 0 {
		return nil
	}
	cols := make([][]string, len(attrs))
	widths := make([]int, 4)
	for i, a := range attrs {
		c := []string{a.Type, a.Name, a.KeyString(), ""}
		if a.Comment != "" {
			c[3] = `"` + a.Comment + `"`
		}
		cols[i] = c
		for j, s := range c {
			if w := canvas.StringWidth(s); w > widths[j] {
				widths[j] = w
			}
		}
	}
	rows := make([]string, len(attrs))
	for i, c := range cols {
		var b strings.Builder
		for j, s := range c {
			if widths[j] == 0 {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s)
			if j < len(c)-1 {
				b.WriteString(strings.Repeat(" ", widths[j]-canvas.StringWidth(s)))
			}
		}
		rows[i] = strings.TrimRight(b.String(), " ")
	}
	return rows
}

// cardinalityRoom is the rank gap a relationship needs for a crow's foot
// at each end plus its label between them.
func cardinalityRoom(m Metrics, u Units, label string, dir diagram.Direction) float64 {
	marks := 24.0
	if u.Grid {
		marks = 4
	}
	if label == "" {
		return marks + 2*u.LabelPadX
	}
	return labelRoom(m, u, label, dir) + marks
}

func cardinalityMarker(c diagram.Cardinality) Marker {
	switch c {
	case diagram.ZeroOrOne:
		return MarkerZeroOne
	case diagram.OneOrMore:
		return MarkerMany
	case diagram.ZeroOrMore:
		return MarkerZeroMany
	}
	return MarkerOne
}
