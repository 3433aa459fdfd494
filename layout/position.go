package layout

import (
	"math"
	"sort"

	"mermaidrender/geometry"
)

// snap keeps grid coordinates on whole cells.
func (e *engine) snap(v float64) float64 {
	if e.u.Grid {
		return math.Floor(v + 0.5)
	}
	return v
}

// mid is the offset from a node's left edge to the line its edges attach
// to. On the grid that is the middle cell rather than the middle point.
func (e *engine) mid(v int) float64 {
	if e.u.Grid {
		return math.Floor((e.pw(v) - 1) / 2)
	}
	return e.pw(v) / 2
}

func (e *engine) center(v int) float64 { return e.nodes[v].lp + e.mid(v) }

// assignRankCoordinates stacks the ranks along the rank axis. A rank is as
// deep as its deepest node; gaps grow to fit edge labels and cluster
// padding and headers.
func (e *engine) assignRankCoordinates() {
	for v := range e.nodes {
		r := e.nodes[v].rank
		if s := e.sw(v); s > e.rankSize[r] {
			e.rankSize[r] = s
		}
	}
	base := e.rankGap()
	gaps := make([]float64, len(e.rankTop))
	for r := range gaps {
		gaps[r] = base
	}
	for ei, need := range e.labelRoom {
		chain := e.chains[ei]
		for i := 0; i+1 < len(chain); i++ {
			r := e.nodes[chain[i]].rank
			gaps[r] = math.Max(gaps[r], need)
		}
	}

	above, below := e.clusterExtents()
	clear := e.snap(base / 2)
	for r := 0; r+1 < len(gaps); r++ {
		gaps[r] = math.Max(gaps[r], below[r]+above[r+1]+clear)
	}

	cursor := 0.0
	for r := range e.rankTop {
		e.rankTop[r] = cursor
		cursor += e.rankSize[r] + gaps[r]
	}
	for v, n := range e.nodes {
		off := (e.rankSize[n.rank] - e.sw(v)) / 2
		if e.u.Grid {
			off = math.Floor(off)
		}
		n.ts = e.rankTop[n.rank] + off
	}
}

// clusterExtents returns, per rank, how far cluster frames reach before the
// rank (above) and after it (below) along the rank axis.
func (e *engine) clusterExtents() (above, below []float64) {
	n := len(e.rankTop)
	above = make([]float64, n)
	below = make([]float64, n)
	if len(e.clusters) == 0 {
		return above, below
	}
	minR := make([]int, len(e.clusters))
	maxR := make([]int, len(e.clusters))
	for c := range minR {
		minR[c], maxR[c] = -1, -1
	}
	for _, nd := range e.nodes {
		for c := nd.cluster; c >= 0; c = e.clusters[c].parent {
			if minR[c] < 0 || nd.rank < minR[c] {
				minR[c] = nd.rank
			}
			if nd.rank > maxR[c] {
				maxR[c] = nd.rank
			}
		}
	}

	pad := e.u.ClusterPadY
	var lowHeader, highHeader float64
	switch {
	case e.horizontal():
		pad = e.u.ClusterPadX
	case e.dir.Reversed():
		highHeader = e.u.ClusterHeader
	default:
		lowHeader = e.u.ClusterHeader
	}

	low := make([]float64, len(e.clusters))
	high := make([]float64, len(e.clusters))
	// Children are always added after their parent.
	for c := len(e.clusters) - 1; c >= 0; c-- {
		if minR[c] < 0 {
			continue
		}
		var lo, hi float64
		for _, ch := range e.clusters[c].children {
			if minR[ch] == minR[c] {
				lo = math.Max(lo, low[ch])
			}
			if maxR[ch] >= 0 && maxR[ch] == maxR[c] {
				hi = math.Max(hi, high[ch])
			}
		}
		low[c] = lo + pad + lowHeader + e.clusters[c].room
		high[c] = hi + pad + highHeader + e.clusters[c].room
		above[minR[c]] = math.Max(above[minR[c]], low[c])
		below[maxR[c]] = math.Max(below[maxR[c]], high[c])
	}
	return above, below
}

// assignOrderCoordinates places the nodes of component c along the order
// axis: pack and centre each rank, pull nodes towards the median of their
// neighbours in alternating passes, then separate clusters.
func (e *engine) assignOrderCoordinates(c int) {
	layers := e.layers[c]
	for _, rank := range layers {
		cursor := 0.0
		for i, v := range rank {
			if i > 0 {
				cursor += e.orderGap(rank[i-1], v)
			}
			e.nodes[v].lp = cursor
			cursor += e.pw(v)
		}
		shift := -cursor / 2
		if e.u.Grid {
			shift = math.Floor(shift)
		}
		for _, v := range rank {
			e.nodes[v].lp += shift
		}
	}

	down, up := e.segments()
	for pass := 0; pass < 4; pass++ {
		if pass%2 == 0 {
			for r := 1; r < len(layers); r++ {
				e.alignRank(layers[r], up)
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				e.alignRank(layers[r], down)
			}
		}
	}
	e.separateClusters(c)
	e.resolveOverlaps(layers)
}

// alignRank moves each node of rank towards the median centre of its
// neighbours in adj. The forward and backward packings are averaged so
// crowding is shared on both sides, then a forward pass restores spacing.
func (e *engine) alignRank(rank []int, adj [][]int) {
	n := len(rank)
	if n == 0 {
		return
	}
	want := make([]float64, n)
	for i, v := range rank {
		want[i] = e.nodes[v].lp
		if nb := adj[v]; len(nb) > 0 {
			cs := make([]float64, len(nb))
			for j, w := range nb {
				cs[j] = e.center(w)
			}
			want[i] = e.snap(median(cs) - e.mid(v))
		}
	}
	fwd := make([]float64, n)
	for i, v := range rank {
		fwd[i] = want[i]
		if i > 0 {
			u := rank[i-1]
			fwd[i] = math.Max(fwd[i], fwd[i-1]+e.pw(u)+e.orderGap(u, v))
		}
	}
	bwd := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		v := rank[i]
		bwd[i] = want[i]
		if i < n-1 {
			w := rank[i+1]
			bwd[i] = math.Min(bwd[i], bwd[i+1]-e.orderGap(v, w)-e.pw(v))
		}
	}
	for i, v := range rank {
		lp := e.snap((fwd[i] + bwd[i]) / 2)
		if i > 0 {
			u := rank[i-1]
			lp = math.Max(lp, e.nodes[u].lp+e.pw(u)+e.orderGap(u, v))
		}
		e.nodes[v].lp = lp
	}
}

// resolveOverlaps pushes nodes right until every rank is properly spaced.
func (e *engine) resolveOverlaps(layers [][]int) {
	for _, rank := range layers {
		for i := 1; i < len(rank); i++ {
			u, v := rank[i-1], rank[i]
			if need := e.nodes[u].lp + e.pw(u) + e.orderGap(u, v); e.nodes[v].lp < need {
				e.nodes[v].lp = need
			}
		}
	}
}

type band struct {
	lo, hi     float64
	rmin, rmax int
	set        bool
}

func (b *band) add(lo, hi float64, r int) {
	if !b.set {
		*b = band{lo: lo, hi: hi, rmin: r, rmax: r, set: true}
		return
	}
	b.lo = math.Min(b.lo, lo)
	b.hi = math.Max(b.hi, hi)
	if r < b.rmin {
		b.rmin = r
	}
	if r > b.rmax {
		b.rmax = r
	}
}

func (b *band) merge(o band) {
	if !o.set {
		return
	}
	b.add(o.lo, o.hi, o.rmin)
	b.add(o.lo, o.hi, o.rmax)
}

// clusterBands returns every cluster's occupied span along the order axis,
// padding and header included, using the nodes of component c.
func (e *engine) clusterBands(c int) []band {
	bands := make([]band, len(e.clusters))
	for _, v := range e.comps[c] {
		if cl := e.nodes[v].cluster; cl >= 0 {
			bands[cl].add(e.nodes[v].lp, e.nodes[v].lp+e.pw(v), e.nodes[v].rank)
		}
	}
	pad, header := e.u.ClusterPadX, 0.0
	if e.horizontal() {
		pad, header = e.u.ClusterPadY, e.u.ClusterHeader
	}
	for cl := len(e.clusters) - 1; cl >= 0; cl-- {
		for _, ch := range e.clusters[cl].children {
			bands[cl].merge(bands[ch])
		}
		if bands[cl].set {
			bands[cl].lo -= pad + header
			bands[cl].hi += pad
			if !e.horizontal() {
				bands[cl].lo, bands[cl].hi = e.widen(bands[cl].lo, bands[cl].hi, e.clusters[cl].minWidth)
			}
		}
	}
	return bands
}

// orderUnitRef is a sibling at one nesting level: either a cluster or a
// node sitting directly in the enclosing scope.
type orderUnitRef struct {
	cluster int
	node    int
}

// separateClusters pushes sibling units apart until no two whose rank
// ranges overlap share any of the order axis. Moves only go right, and the
// number of rounds is capped.
func (e *engine) separateClusters(c int) {
	if len(e.clusters) == 0 {
		return
	}
	layers := e.layers[c]
	scopes := map[int][]orderUnitRef{}
	for cl, g := range e.clusters {
		scopes[g.parent] = append(scopes[g.parent], orderUnitRef{cluster: cl, node: -1})
	}
	for _, v := range e.comps[c] {
		scopes[e.nodes[v].cluster] = append(scopes[e.nodes[v].cluster], orderUnitRef{cluster: -1, node: v})
	}
	keys := make([]int, 0, len(scopes))
	for k := range scopes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	limit := 4*(len(e.comps[c])+len(e.clusters)) + 8
	for round := 0; round < limit; round++ {
		moved := false
		for _, scope := range keys {
			units := scopes[scope]
			for i := 0; i < len(units); i++ {
				for j := i + 1; j < len(units); j++ {
					bands := e.clusterBands(c)
					a, b := e.unitBand(units[i], bands), e.unitBand(units[j], bands)
					if !a.set || !b.set || a.rmax < b.rmin || b.rmax < a.rmin {
						continue
					}
					left, right, lb, rb := units[i], units[j], a, b
					if !e.unitBefore(units[i], units[j], a, b, layers) {
						left, right, lb, rb = units[j], units[i], b, a
					}
					gap := e.unitGap(left, right)
					if rb.lo < lb.hi+gap-geometry.Epsilon {
						e.shiftUnit(c, right, lb.hi+gap-rb.lo)
						moved = true
					}
				}
			}
		}
		e.resolveOverlaps(layers)
		if !moved {
			return
		}
	}
}

func (e *engine) unitBand(u orderUnitRef, bands []band) band {
	if u.cluster >= 0 {
		return bands[u.cluster]
	}
	n := e.nodes[u.node]
	return band{lo: n.lp, hi: n.lp + e.pw(u.node), rmin: n.rank, rmax: n.rank, set: true}
}

func (e *engine) unitGap(a, b orderUnitRef) float64 {
	if a.node >= 0 && b.node >= 0 {
		return e.orderGap(a.node, b.node)
	}
	if e.horizontal() {
		return e.u.NodeGapY
	}
	return e.u.NodeGapX
}

// unitBefore decides which unit goes left: the rank order where both have
// nodes in a common rank, otherwise their current centres.
func (e *engine) unitBefore(a, b orderUnitRef, ba, bb band, layers [][]int) bool {
	lo, hi := ba.rmin, ba.rmax
	if bb.rmin > lo {
		lo = bb.rmin
	}
	if bb.rmax < hi {
		hi = bb.rmax
	}
	for r := lo; r <= hi && r < len(layers); r++ {
		ia, ib := -1, -1
		for i, v := range layers[r] {
			if ia < 0 && e.unitHas(a, v) {
				ia = i
			}
			if ib < 0 && e.unitHas(b, v) {
				ib = i
			}
		}
		if ia >= 0 && ib >= 0 {
			return ia < ib
		}
	}
	ca, cb := (ba.lo+ba.hi)/2, (bb.lo+bb.hi)/2
	if ca != cb {
		return ca < cb
	}
	return a.cluster < b.cluster || (a.cluster == b.cluster && a.node < b.node)
}

func (e *engine) unitHas(u orderUnitRef, v int) bool {
	if u.cluster < 0 {
		return u.node == v
	}
	return e.inCluster(v, u.cluster)
}

func (e *engine) shiftUnit(c int, u orderUnitRef, d float64) {
	if e.u.Grid {
		d = math.Ceil(d)
	}
	if u.cluster < 0 {
		e.nodes[u.node].lp += d
		return
	}
	for _, v := range e.comps[c] {
		if e.inCluster(v, u.cluster) {
			e.nodes[v].lp += d
		}
	}
}

// placeComponents lays components side by side along the order axis.
func (e *engine) placeComponents() {
	gap := 2 * e.u.NodeGapX
	if e.horizontal() {
		gap = 2 * e.u.NodeGapY
	}
	cursor := 0.0
	for c, members := range e.comps {
		bands := e.clusterBands(c)
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range members {
			lo = math.Min(lo, e.nodes[v].lp)
			hi = math.Max(hi, e.nodes[v].lp+e.pw(v))
		}
		for _, b := range bands {
			if b.set {
				lo = math.Min(lo, b.lo)
				hi = math.Max(hi, b.hi)
			}
		}
		if math.IsInf(lo, 1) {
			continue
		}
		off := cursor - lo
		for _, v := range members {
			e.nodes[v].lp += off
		}
		cursor = hi + off + gap
	}
}

// widen grows [lo, hi] about its centre to at least need. Grid spans grow
// by whole cells, the odd one going to the right.
func (e *engine) widen(lo, hi, need float64) (float64, float64) {
	d := need - (hi - lo)
	if d <= geometry.Epsilon {
		return lo, hi
	}
	left := d / 2
	if e.u.Grid {
		d = math.Ceil(d)
		left = math.Floor(d / 2)
	}
	return lo - left, hi + d - left
}

// memberExtent covers the nodes of cluster c and its already computed
// child frames.
func (e *engine) memberExtent(c int, rects []geometry.Rect, set []bool) geometry.Extent {
	var ext geometry.Extent
	for v, n := range e.nodes {
		if n.cluster != c {
			continue
		}
		if n.virtual {
			ext.AddRect(e.toRect(n.lp, e.pw(v), n.ts, 0))
		} else {
			ext.AddRect(e.nodeRect(v))
		}
	}
	for _, ch := range e.clusters[c].children {
		if set[ch] {
			ext.AddRect(rects[ch])
		}
	}
	return ext
}

// clusterRects computes cluster rectangles in x/y, children before their
// parents, each wide enough for its title.
func (e *engine) clusterRects() ([]geometry.Rect, []bool) {
	rects := make([]geometry.Rect, len(e.clusters))
	set := make([]bool, len(e.clusters))
	for c := len(e.clusters) - 1; c >= 0; c-- {
		ext := e.memberExtent(c, rects, set)
		if ext.Empty() {
			continue
		}
		r := ext.Rect().Expand(e.u.ClusterPadX, e.u.ClusterPadY)
		r.Y -= e.u.ClusterHeader
		r.Height += e.u.ClusterHeader
		lo, hi := e.widen(r.X, r.Right(), e.clusters[c].minWidth)
		r.X, r.Width = lo, hi-lo
		rects[c], set[c] = r, true
	}
	return rects, set
}

// reserveLabelRoom handles titles wider than a frame whose width runs along
// the rank axis: each such cluster gets half the shortfall as extra reach on
// both sides, and the caller restacks the ranks. It reports whether any
// cluster needed room.
func (e *engine) reserveLabelRoom() bool {
	if !e.horizontal() || len(e.clusters) == 0 {
		return false
	}
	rects, set := e.clusterRects()
	grew := false
	for c := range e.clusters {
		if !set[c] {
			continue
		}
		ext := e.memberExtent(c, rects, set)
		span := ext.Rect().Width + 2*e.u.ClusterPadX
		if d := e.clusters[c].minWidth - span; d > geometry.Epsilon {
			room := d / 2
			if e.u.Grid {
				room = math.Ceil(room)
			}
			e.clusters[c].room = room
			grew = true
		}
	}
	return grew
}

// frames returns the cluster frames, parents before children.
func (e *engine) frames() []Frame {
	if len(e.clusters) == 0 {
		return nil
	}
	rects, set := e.clusterRects()
	var out []Frame
	for c, g := range e.clusters {
		if !set[c] {
			continue
		}
		out = append(out, Frame{
			ID:     g.id,
			Label:  g.label,
			Kind:   "cluster",
			Rect:   rects[c],
			Header: e.u.ClusterHeader,
			Depth:  g.depth,
		})
	}
	return out
}
