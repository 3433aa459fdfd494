package layout

import (
	"fmt"
	"math"
	"sort"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

// seqUnits are the sequence spacings of one unit system.
type seqUnits struct {
	laneGap     float64 // minimum distance between lane centres
	boxGap      float64 // minimum gap between neighbouring participant boxes
	actorHeight float64
	headerGap   float64 // lifeline run before the first row
	row         float64
	selfWidth   float64
	selfHeight  float64
	actWidth    float64
	actOffset   float64 // shift per nested activation
	noteWidth   float64
	noteGap     float64 // note distance from its lifeline
	framePad    float64
	frameNest   float64
	arrowRoom   float64 // line left visible beside a message label
}

var (
	vectorSeq = seqUnits{
		laneGap: 140, boxGap: 24, actorHeight: 40, headerGap: 20, row: 40,
		selfWidth: 40, selfHeight: 30, actWidth: 10, actOffset: 5,
		noteWidth: 120, noteGap: 12, framePad: 24, frameNest: 10, arrowRoom: 24,
	}
	gridSeq = seqUnits{
		laneGap: 0, boxGap: 4, actorHeight: 3, headerGap: 2, row: 3,
		selfWidth: 4, selfHeight: 1, actWidth: 1, actOffset: 1,
		noteWidth: 0, noteGap: 2, framePad: 2, frameNest: 1, arrowRoom: 4,
	}
)

type seqEventKind int

const (
	evMessage seqEventKind = iota
	evNote
	evBlockStart
	evDivider
	evBlockEnd
)

type seqEvent struct {
	kind  seqEventKind
	index int // message, note or block index
	div   int // divider index within the block
	row   int
	rows  int
}

// seqLayout holds the working state of one sequence layout.
type seqLayout struct {
	s     *diagram.Sequence
	m     Metrics
	u     Units
	su    seqUnits
	msgs  []diagram.Message
	lanes []string
	lane  map[string]int
	x     []float64 // lifeline x per lane
	top   float64   // bottom of the participant boxes
	base  float64

	active [][]float64 // per lane, stack of activation start y
	acts   []geometry.Rect
}

// LayoutSequence places participants in lanes, left to right in order of
// declaration and then first appearance, and stacks messages, notes and
// block rules in rows below them. Each event takes at least one row; row r
// sits at base + r*row.
func LayoutSequence(s *diagram.Sequence, opts core.Options, m Metrics) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	u := m.Units()
	res := &Result{Kind: diagram.KindSequence, Direction: diagram.TopDown}
	if len(s.Participants) == 0 {
		finish(res, m, u)
		return res, nil
	}
	sl := &seqLayout{s: s, m: m, u: u, su: vectorSeq, msgs: s.Ordered(), lanes: s.Lanes()}
	if u.Grid {
		sl.su = gridSeq
	}
	sl.lane = make(map[string]int, len(sl.lanes))
	for i, id := range sl.lanes {
		sl.lane[id] = i
	}
	sl.active = make([][]float64, len(sl.lanes))

	boxes := sl.participantBoxes()
	sl.placeLanes(boxes)
	for i := range boxes {
		boxes[i].Rect.X = sl.x[i] - sl.boxOffset(boxes[i].Rect.Width)
	}
	res.Boxes = boxes
	for _, b := range boxes {
		sl.top = math.Max(sl.top, b.Rect.Height)
	}

	events := sl.events()
	rows := 0
	for i := range events {
		events[i].row = rows
		rows += events[i].rows
	}
	sl.base = sl.top + sl.su.headerGap
	if !u.Grid {
		sl.base += sl.su.row / 2
	}

	msgPaths := make([]Path, len(sl.msgs))
	for _, ev := range events {
		switch ev.kind {
		case evMessage:
			msgPaths[ev.index] = sl.message(ev.index, sl.rowY(ev.row))
		case evNote:
			res.Boxes = append(res.Boxes, sl.note(ev.index, sl.rowTop(ev.row)))
		}
	}
	res.Paths = msgPaths

	last := sl.rowY(rows)
	if u.Grid {
		last = sl.rowTop(rows)
	}
	for i, st := range sl.active {
		for j := len(st) - 1; j >= 0; j-- {
			sl.closeActivation(i, j, last)
		}
	}
	res.Activations = sl.acts
	for i, id := range sl.lanes {
		res.Lifelines = append(res.Lifelines, Lifeline{ID: id, X: sl.x[i], Top: sl.top, Bottom: last})
	}
	res.Frames = sl.frames(events, msgPaths)

	opts.Log().Debug("sequence layout", "lanes", len(sl.lanes), "messages", len(sl.msgs), "rows", rows)
	finish(res, m, u)
	return res, nil
}

func (sl *seqLayout) rowY(r int) float64 { return sl.base + float64(r)*sl.su.row }

// rowTop is the first unit of row r: one cell above the line on the grid,
// half a row above it otherwise.
func (sl *seqLayout) rowTop(r int) float64 {
	if sl.u.Grid {
		return sl.rowY(r) - 1
	}
	return sl.rowY(r) - sl.su.row/2
}

// boxOffset is the distance from a box's left edge to its lifeline.
func (sl *seqLayout) boxOffset(w float64) float64 {
	if sl.u.Grid {
		return math.Floor((w - 1) / 2)
	}
	return w / 2
}

func (sl *seqLayout) participantBoxes() []Box {
	boxes := make([]Box, len(sl.lanes))
	for i, id := range sl.lanes {
		p, _ := sl.s.Participant(id)
		label := p.Label
		if label == "" {
			label = id
		}
		ls := lines(label)
		tw, th := blockSize(sl.m, ls, NodeText)
		w := math.Max(tw+2*sl.u.PadX, sl.u.MinWidth)
		h := math.Max(th+2*sl.u.PadY, sl.su.actorHeight)
		if !sl.u.Grid {
			w = math.Max(w, 80)
			h = sl.su.actorHeight
		}
		role := RoleParticipant
		if p.Actor {
			role = RoleActor
		}
		boxes[i] = Box{ID: id, Role: role, Rect: geometry.Rect{Width: w, Height: h}, Lines: ls}
	}
	return boxes
}

// placeLanes spaces lifelines so boxes, message labels, self-message loops
// and side notes all fit between neighbours.
func (sl *seqLayout) placeLanes(boxes []Box) {
	n := len(sl.lanes)
	need := make([]map[int]float64, n) // need[j][i]: distance lane j must keep from lane i < j
	for j := range need {
		need[j] = make(map[int]float64)
	}
	require := func(i, j int, d float64) {
		if i > j {
			i, j = j, i
		}
		if i == j || j >= n {
			return
		}
		if d > need[j][i] {
			need[j][i] = d
		}
	}
	for i := 0; i+1 < n; i++ {
		wa, wb := boxes[i].Rect.Width, boxes[i+1].Rect.Width
		require(i, i+1, math.Max(sl.su.laneGap, wa-sl.boxOffset(wa)+sl.boxOffset(wb)+sl.su.boxGap))
	}
	for _, msg := range sl.msgs {
		a, b := sl.lane[msg.From], sl.lane[msg.To]
		w, _ := blockSize(sl.m, lines(msg.Label), EdgeText)
		if a == b {
			require(a, a+1, sl.su.selfWidth+w+2*sl.u.LabelPadX+sl.su.boxGap)
			continue
		}
		require(a, b, w+2*sl.u.LabelPadX+sl.su.arrowRoom)
	}
	for _, nt := range sl.s.Notes {
		w := sl.noteWidth(nt)
		if len(nt.Over) == 1 {
			l := sl.lane[nt.Over[0]]
			switch nt.Position {
			case diagram.NoteRightOf:
				require(l, l+1, sl.su.noteGap+w+sl.su.boxGap)
			case diagram.NoteLeftOf:
				if l > 0 {
					require(l-1, l, sl.su.noteGap+w+sl.su.boxGap)
				}
			}
		}
	}

	sl.x = make([]float64, n)
	sl.x[0] = sl.boxOffset(boxes[0].Rect.Width)
	for j := 1; j < n; j++ {
		x := sl.x[j-1]
		for i, d := range need[j] {
			x = math.Max(x, sl.x[i]+d)
		}
		if sl.u.Grid {
			x = math.Ceil(x)
		}
		sl.x[j] = x
	}
}

func (sl *seqLayout) noteWidth(nt diagram.Note) float64 {
	tw, _ := blockSize(sl.m, lines(nt.Text), NodeText)
	return math.Max(tw+2*sl.u.PadX, sl.su.noteWidth)
}

func (sl *seqLayout) noteHeight(nt diagram.Note) float64 {
	_, th := blockSize(sl.m, lines(nt.Text), NodeText)
	return th + 2*sl.u.PadY
}

// events lists everything that takes rows, in drawing order. At each
// message position notes come first, then block ends, block starts and
// dividers, then the message itself.
func (sl *seqLayout) events() []seqEvent {
	n := len(sl.msgs)
	var evs []seqEvent
	for k := 0; k <= n; k++ {
		for i, nt := range sl.s.Notes {
			if nt.After == k || (k == n && nt.After > n) || (k == 0 && nt.After < 0) {
				rows := int(math.Ceil((sl.noteHeight(nt) + sl.su.row/4) / sl.su.row))
				if rows < 1 {
					rows = 1
				}
				evs = append(evs, seqEvent{kind: evNote, index: i, rows: rows})
			}
		}
		ends := sl.blocksWhere(func(b diagram.Block) bool { return b.End == k })
		sort.SliceStable(ends, func(i, j int) bool { return sl.s.Blocks[ends[i]].Start > sl.s.Blocks[ends[j]].Start })
		for _, b := range ends {
			evs = append(evs, seqEvent{kind: evBlockEnd, index: b, rows: 1})
		}
		starts := sl.blocksWhere(func(b diagram.Block) bool { return b.Start == k })
		sort.SliceStable(starts, func(i, j int) bool { return sl.s.Blocks[starts[i]].End > sl.s.Blocks[starts[j]].End })
		for _, b := range starts {
			evs = append(evs, seqEvent{kind: evBlockStart, index: b, rows: 1})
		}
		for bi, b := range sl.s.Blocks {
			for di, d := range b.Dividers {
				if d.Before == k {
					evs = append(evs, seqEvent{kind: evDivider, index: bi, div: di, rows: 1})
				}
			}
		}
		if k < n {
			rows := 1
			if m := sl.msgs[k]; m.From == m.To && sl.su.selfHeight >= sl.su.row/2 {
				rows = 2
			}
			evs = append(evs, seqEvent{kind: evMessage, index: k, rows: rows})
		}
	}
	return evs
}

func (sl *seqLayout) blocksWhere(f func(diagram.Block) bool) []int {
	var out []int
	for i, b := range sl.s.Blocks {
		if f(b) {
			out = append(out, i)
		}
	}
	return out
}

// edge returns where a message attaches to lane l when arriving from
// the given side (dir -1 from the left, +1 from the right): the lifeline
// itself, or the facing edge of the innermost activation.
func (sl *seqLayout) edge(l int, dir float64) float64 {
	depth := len(sl.active[l])
	x := sl.x[l]
	if sl.u.Grid {
		if dir < 0 {
			return x - 1
		}
		if depth == 0 {
			return x + 1
		}
		return x + float64(depth)
	}
	if depth == 0 {
		return x
	}
	left := x - sl.su.actWidth/2 + float64(depth-1)*sl.su.actOffset
	if dir < 0 {
		return left
	}
	return left + sl.su.actWidth
}

func (sl *seqLayout) message(k int, y float64) Path {
	msg := sl.msgs[k]
	a, b := sl.lane[msg.From], sl.lane[msg.To]
	if msg.Activate {
		sl.active[b] = append(sl.active[b], y)
	}
	p := Path{
		ID:    fmt.Sprintf("msg-%d", k),
		From:  msg.From,
		To:    msg.To,
		Label: msg.Label,
		Style: msg.Line,
		End:   headMarker(msg.Head),
	}
	w, h := blockSize(sl.m, lines(msg.Label), EdgeText)
	if a == b {
		x0 := sl.edge(a, 1)
		x1 := x0 + sl.su.selfWidth
		p.SelfLoop = true
		p.Points = geometry.Polyline{{X: x0, Y: y}, {X: x1, Y: y}, {X: x1, Y: y + sl.su.selfHeight}, {X: x0, Y: y + sl.su.selfHeight}}
		p.LabelAt = geometry.Point{X: x1 + sl.u.LabelPadX + w/2, Y: y + sl.su.selfHeight/2}
		if sl.u.Grid {
			p.LabelAt = geometry.Point{X: x1 + 2 + math.Floor(w/2), Y: y}
		}
	} else {
		dir := 1.0
		if b < a {
			dir = -1
		}
		x0, x1 := sl.edge(a, dir), sl.edge(b, -dir)
		p.Points = geometry.Polyline{{X: x0, Y: y}, {X: x1, Y: y}}
		mid := (sl.x[a] + sl.x[b]) / 2
		p.LabelAt = geometry.Point{X: mid, Y: y - sl.u.LabelPadY - h/2 - 2}
		if sl.u.Grid {
			p.LabelAt = geometry.Point{X: math.Floor(mid), Y: y - 1}
		}
	}
	if msg.Deactivate && len(sl.active[a]) > 0 {
		sl.closeActivation(a, len(sl.active[a])-1, y)
		sl.active[a] = sl.active[a][:len(sl.active[a])-1]
	}
	return p
}

// closeActivation records the activation at depth j of lane l as ending at y.
func (sl *seqLayout) closeActivation(l, j int, y float64) {
	top := sl.active[l][j]
	if sl.u.Grid {
		sl.acts = append(sl.acts, geometry.Rect{X: sl.x[l] + float64(j), Y: top, Width: 1, Height: math.Max(y-top+1, 1)})
		return
	}
	x := sl.x[l] - sl.su.actWidth/2 + float64(j)*sl.su.actOffset
	sl.acts = append(sl.acts, geometry.Rect{X: x, Y: top, Width: sl.su.actWidth, Height: math.Max(y-top, sl.su.row/4)})
}

func (sl *seqLayout) note(i int, top float64) Box {
	nt := sl.s.Notes[i]
	w, h := sl.noteWidth(nt), sl.noteHeight(nt)
	var x float64
	l := sl.lane[nt.Over[0]]
	switch {
	case len(nt.Over) > 1:
		lo, hi := sl.x[l], sl.x[l]
		for _, id := range nt.Over[1:] {
			lo = math.Min(lo, sl.x[sl.lane[id]])
			hi = math.Max(hi, sl.x[sl.lane[id]])
		}
		span := hi - lo + 2*sl.su.noteGap
		if span > w {
			w = span
		}
		x = (lo+hi)/2 - sl.boxOffset(w)
	case nt.Position == diagram.NoteRightOf:
		x = sl.x[l] + sl.su.noteGap
	case nt.Position == diagram.NoteLeftOf:
		x = sl.x[l] - sl.su.noteGap - w
	default:
		x = sl.x[l] - sl.boxOffset(w)
	}
	if sl.u.Grid {
		x = math.Floor(x)
	}
	return Box{
		ID:    fmt.Sprintf("note-%d", i),
		Role:  RoleNote,
		Rect:  geometry.Rect{X: x, Y: top, Width: w, Height: h},
		Lines: lines(nt.Text),
	}
}

// frames turns blocks into frames spanning their rows. Inner blocks are
// sized first so enclosing blocks can wrap them with extra padding.
func (sl *seqLayout) frames(events []seqEvent, paths []Path) []Frame {
	if len(sl.s.Blocks) == 0 {
		return nil
	}
	startRow := make(map[int]int)
	endRow := make(map[int]int)
	divRow := make(map[[2]int]int)
	for _, ev := range events {
		switch ev.kind {
		case evBlockStart:
			startRow[ev.index] = ev.row
		case evBlockEnd:
			endRow[ev.index] = ev.row
		case evDivider:
			divRow[[2]int{ev.index, ev.div}] = ev.row
		}
	}

	order := make([]int, len(sl.s.Blocks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := sl.s.Blocks[order[i]], sl.s.Blocks[order[j]]
		return a.End-a.Start < b.End-b.Start
	})

	rects := make([]geometry.Rect, len(sl.s.Blocks))
	depth := make([]int, len(sl.s.Blocks))
	done := make([]bool, len(sl.s.Blocks))
	for _, bi := range order {
		b := sl.s.Blocks[bi]
		var ext geometry.Extent
		for k := b.Start; k < b.End && k < len(paths); k++ {
			for _, pt := range paths[k].Points {
				ext.AddPoint(pt)
			}
			if paths[k].Label != "" {
				ext.AddRect(labelRect(sl.m, sl.u, paths[k].Label, paths[k].LabelAt))
			}
		}
		if ext.Empty() {
			ext.AddPoint(geometry.Point{X: sl.x[0]})
			ext.AddPoint(geometry.Point{X: sl.x[len(sl.x)-1]})
		}
		for _, other := range order {
			ob := sl.s.Blocks[other]
			if other == bi || !done[other] || ob.Start < b.Start || ob.End > b.End {
				continue
			}
			ext.AddRect(rects[other].Expand(sl.su.frameNest, 0))
		}
		r := ext.Rect()
		x0, x1 := r.X-sl.su.framePad, r.Right()+sl.su.framePad
		top := sl.rowTop(startRow[bi])
		bottom := sl.rowTop(endRow[bi])
		if !sl.u.Grid {
			top += sl.su.row / 4
			bottom += sl.su.row / 4
		}
		if sl.u.Grid {
			x0, x1 = math.Floor(x0), math.Ceil(x1)
			bottom++
		}
		rects[bi] = geometry.Rect{X: x0, Y: top, Width: x1 - x0, Height: bottom - top}
		done[bi] = true
	}

	// Depth counts enclosing blocks.
	for i, b := range sl.s.Blocks {
		for j, o := range sl.s.Blocks {
			if i != j && o.Start <= b.Start && b.End <= o.End && (o.End-o.Start > b.End-b.Start || (o.End-o.Start == b.End-b.Start && j < i)) {
				depth[i]++
			}
		}
	}

	header := 0.0
	if !sl.u.Grid {
		header = 20
	}
	out := make([]Frame, 0, len(sl.s.Blocks))
	for i, b := range sl.s.Blocks {
		f := Frame{
			ID:     fmt.Sprintf("block-%d", i),
			Label:  b.Label,
			Kind:   string(b.Kind),
			Rect:   rects[i],
			Header: header,
			Depth:  depth[i],
		}
		for di, d := range b.Dividers {
			y := sl.rowTop(divRow[[2]int{i, di}])
			if !sl.u.Grid {
				y += sl.su.row / 4
			}
			f.Dividers = append(f.Dividers, FrameDivider{Y: y, Label: d.Label})
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth < out[j].Depth })
	return out
}
