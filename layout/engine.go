package layout

import (
	"log/slog"
	"sort"

	"mermaidrender/diagram"
	"mermaidrender/geometry"
)

// engine is the layered (Sugiyama) placement shared by the graph, class
// and ER strategies. Callers add sized nodes, edges and clusters, call run,
// then read back rectangles, routes and frames.
//
// Two edge lists are kept: edges holds the caller's edges in their declared
// direction; dag holds the ranking edges after cycle breaking. Reversal only
// ever happens in dag.
type engine struct {
	u       Units
	dir     diagram.Direction
	maxIter int
	log     *slog.Logger

	nodes    []*gnode
	edges    []gedge
	clusters []gcluster

	dag       []dagEdge
	chains    map[int][]int   // caller edge index -> node chain in dag orientation
	labelRoom map[int]float64 // caller edge index -> rank gap its label needs
	comps     [][]int         // real and virtual nodes per component
	layers    [][][]int       // component -> rank -> ordered nodes

	rankTop  []float64
	rankSize []float64

	crossings int
	sweeps    int
}

type gnode struct {
	id      string
	virtual bool
	w, h    float64 // size in x/y
	cluster int     // innermost cluster, -1 for none
	rank    int
	order   int
	comp    int

	lp float64 // left edge along the order axis
	ts float64 // top edge along the rank axis
}

type gedge struct {
	from, to int
	rank     bool // participates in ranking and ordering
}

type dagEdge struct {
	from, to int
	edge     int
	reversed bool
}

type gcluster struct {
	id, label string
	parent    int
	depth     int
	children  []int

	minWidth float64 // frame width its label needs along x
	room     float64 // extra rank-axis reach per side for minWidth
}

func newEngine(u Units, dir diagram.Direction, maxIter int, log *slog.Logger) *engine {
	if maxIter <= 0 {
		maxIter = 1
	}
	return &engine{u: u, dir: dir, maxIter: maxIter, log: log, chains: make(map[int][]int), labelRoom: make(map[int]float64)}
}

func (e *engine) addNode(id string, w, h float64, cluster int) int {
	e.nodes = append(e.nodes, &gnode{id: id, w: w, h: h, cluster: cluster})
	return len(e.nodes) - 1
}

func (e *engine) addEdge(from, to int, rank bool) int {
	e.edges = append(e.edges, gedge{from: from, to: to, rank: rank})
	return len(e.edges) - 1
}

// addCluster registers a cluster under parent (-1 for the top level).
// labelWidth is the measured width of its title; zero when untitled.
func (e *engine) addCluster(id, label string, parent int, labelWidth float64) int {
	depth := 0
	if parent >= 0 {
		depth = e.clusters[parent].depth + 1
	}
	g := gcluster{id: id, label: label, parent: parent, depth: depth}
	if labelWidth > 0 {
		g.minWidth = labelWidth + e.u.ClusterLabelPad
	}
	e.clusters = append(e.clusters, g)
	c := len(e.clusters) - 1
	if parent >= 0 {
		e.clusters[parent].children = append(e.clusters[parent].children, c)
	}
	return c
}

// horizontal reports whether ranks advance along x.
func (e *engine) horizontal() bool { return e.dir.Horizontal() }

// pw and sw are a node's extent along the order and rank axes.
func (e *engine) pw(v int) float64 {
	n := e.nodes[v]
	if n.virtual {
		return e.u.VirtualSize
	}
	if e.horizontal() {
		return n.h
	}
	return n.w
}

func (e *engine) sw(v int) float64 {
	n := e.nodes[v]
	if n.virtual {
		return 0
	}
	if e.horizontal() {
		return n.w
	}
	return n.h
}

// orderGap is the spacing between neighbours in a rank.
func (e *engine) orderGap(a, b int) float64 {
	g := e.u.NodeGapX
	if e.horizontal() {
		g = e.u.NodeGapY
	}
	if e.nodes[a].virtual || e.nodes[b].virtual {
		g /= 2
		if e.u.Grid {
			g = float64(int(g))
			if g < 1 {
				g = 1
			}
		}
	}
	return g
}

func (e *engine) rankGap() float64 {
	if e.horizontal() {
		return e.u.RankGapX
	}
	return e.u.RankGapY
}

// run executes every phase.
func (e *engine) run() {
	if len(e.nodes) == 0 {
		return
	}
	e.breakCycles()
	e.assignRanks()
	e.findComponents()
	e.insertVirtualNodes()
	e.buildLayers()
	for c := range e.layers {
		e.initialOrder(c)
		e.reduceCrossings(c)
	}
	e.assignRankCoordinates()
	if e.reserveLabelRoom() {
		e.assignRankCoordinates()
	}
	for c := range e.layers {
		e.assignOrderCoordinates(c)
	}
	e.placeComponents()
	e.log.Debug("layered layout",
		"nodes", len(e.nodes), "edges", len(e.edges), "clusters", len(e.clusters),
		"ranks", len(e.rankTop), "components", len(e.layers),
		"crossings", e.crossings, "sweeps", e.sweeps)
}

// breakCycles walks the ranking edges depth-first in declaration order and
// reverses, in dag only, every edge that closes a cycle.
func (e *engine) breakCycles() {
	adj := make([][]int, len(e.nodes))
	for i, ed := range e.edges {
		if ed.rank && ed.from != ed.to {
			adj[ed.from] = append(adj[ed.from], i)
		}
	}
	const (
		unvisited = iota
		onStack
		done
	)
	state := make([]int, len(e.nodes))
	reversed := make([]bool, len(e.edges))
	var visit func(v int)
	visit = func(v int) {
		state[v] = onStack
		for _, ei := range adj[v] {
			w := e.edges[ei].to
			switch state[w] {
			case onStack:
				reversed[ei] = true
			case unvisited:
				visit(w)
			}
		}
		state[v] = done
	}
	for v := range e.nodes {
		if state[v] == unvisited {
			visit(v)
		}
	}

	e.dag = e.dag[:0]
	for i, ed := range e.edges {
		if !ed.rank || ed.from == ed.to {
			continue
		}
		if reversed[i] {
			e.dag = append(e.dag, dagEdge{from: ed.to, to: ed.from, edge: i, reversed: true})
		} else {
			e.dag = append(e.dag, dagEdge{from: ed.from, to: ed.to, edge: i})
		}
	}
}

// assignRanks gives every node the length of the longest dag path reaching it.
func (e *engine) assignRanks() {
	indeg := make([]int, len(e.nodes))
	out := make([][]int, len(e.nodes))
	for _, d := range e.dag {
		indeg[d.to]++
		out[d.from] = append(out[d.from], d.to)
	}
	queue := make([]int, 0, len(e.nodes))
	for v := range e.nodes {
		e.nodes[v].rank = 0
		if indeg[v] == 0 {
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range out[v] {
			if r := e.nodes[v].rank + 1; r > e.nodes[w].rank {
				e.nodes[w].rank = r
			}
			indeg[w]--
			if indeg[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
}

// findComponents groups nodes joined by ranking edges or by sharing a
// cluster subtree. Components are numbered by their first node.
func (e *engine) findComponents() {
	parent := make([]int, len(e.nodes))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}
	for _, d := range e.dag {
		union(d.from, d.to)
	}
	firstIn := make(map[int]int) // top-level cluster -> first member
	for v, n := range e.nodes {
		if n.cluster < 0 {
			continue
		}
		top := e.topCluster(n.cluster)
		if f, ok := firstIn[top]; ok {
			union(f, v)
		} else {
			firstIn[top] = v
		}
	}

	ids := make(map[int]int)
	e.comps = e.comps[:0]
	for v := range e.nodes {
		r := find(v)
		c, ok := ids[r]
		if !ok {
			c = len(e.comps)
			ids[r] = c
			e.comps = append(e.comps, nil)
		}
		e.nodes[v].comp = c
		e.comps[c] = append(e.comps[c], v)
	}
}

func (e *engine) topCluster(c int) int {
	for e.clusters[c].parent >= 0 {
		c = e.clusters[c].parent
	}
	return c
}

// clusterChain lists the clusters enclosing v, outermost first.
func (e *engine) clusterChain(v int) []int {
	var chain []int
	for c := e.nodes[v].cluster; c >= 0; c = e.clusters[c].parent {
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// commonCluster returns the innermost cluster enclosing both a and b.
func (e *engine) commonCluster(a, b int) int {
	ca, cb := e.clusterChain(a), e.clusterChain(b)
	common := -1
	for i := 0; i < len(ca) && i < len(cb) && ca[i] == cb[i]; i++ {
		common = ca[i]
	}
	return common
}

// inCluster reports whether v lies inside cluster c or one of its descendants.
func (e *engine) inCluster(v, c int) bool {
	for x := e.nodes[v].cluster; x >= 0; x = e.clusters[x].parent {
		if x == c {
			return true
		}
	}
	return false
}

// insertVirtualNodes splits every dag edge spanning several ranks into a
// chain with one dummy node per intermediate rank.
func (e *engine) insertVirtualNodes() {
	for _, d := range e.dag {
		from, to := e.nodes[d.from], e.nodes[d.to]
		chain := []int{d.from}
		if span := to.rank - from.rank; span > 1 {
			cl := e.commonCluster(d.from, d.to)
			for r := from.rank + 1; r < to.rank; r++ {
				e.nodes = append(e.nodes, &gnode{virtual: true, cluster: cl, rank: r, comp: from.comp})
				v := len(e.nodes) - 1
				e.comps[from.comp] = append(e.comps[from.comp], v)
				chain = append(chain, v)
			}
		}
		e.chains[d.edge] = append(chain, d.to)
	}
}

// buildLayers buckets each component's nodes by rank.
func (e *engine) buildLayers() {
	maxRank := 0
	for _, n := range e.nodes {
		if n.rank > maxRank {
			maxRank = n.rank
		}
	}
	e.layers = make([][][]int, len(e.comps))
	for c, members := range e.comps {
		layers := make([][]int, maxRank+1)
		for _, v := range members {
			r := e.nodes[v].rank
			layers[r] = append(layers[r], v)
		}
		e.layers[c] = layers
	}
	e.rankTop = make([]float64, maxRank+1)
	e.rankSize = make([]float64, maxRank+1)
}

// segments returns, for every node, its neighbours one rank below and one
// rank above along the chains, in edge order.
func (e *engine) segments() (down, up [][]int) {
	down = make([][]int, len(e.nodes))
	up = make([][]int, len(e.nodes))
	for _, d := range e.dag {
		chain := e.chains[d.edge]
		for i := 0; i+1 < len(chain); i++ {
			down[chain[i]] = append(down[chain[i]], chain[i+1])
			up[chain[i+1]] = append(up[chain[i+1]], chain[i])
		}
	}
	return down, up
}

// nodeRect returns the node's rectangle in final x/y coordinates.
func (e *engine) nodeRect(v int) geometry.Rect {
	return e.toRect(e.nodes[v].lp, e.pw(v), e.nodes[v].ts, e.sw(v))
}

// toRect maps an order/rank-axis box to x/y.
func (e *engine) toRect(lp, pw, ts, sw float64) geometry.Rect {
	switch e.dir {
	case diagram.BottomUp:
		return geometry.Rect{X: lp, Y: -(ts + sw), Width: pw, Height: sw}
	case diagram.LeftRight:
		return geometry.Rect{X: ts, Y: lp, Width: sw, Height: pw}
	case diagram.RightLeft:
		return geometry.Rect{X: -(ts + sw), Y: lp, Width: sw, Height: pw}
	default:
		return geometry.Rect{X: lp, Y: ts, Width: pw, Height: sw}
	}
}

// toPoint maps an order/rank-axis point to x/y.
func (e *engine) toPoint(p, s float64) geometry.Point {
	switch e.dir {
	case diagram.BottomUp:
		return geometry.Point{X: p, Y: -s}
	case diagram.LeftRight:
		return geometry.Point{X: s, Y: p}
	case diagram.RightLeft:
		return geometry.Point{X: -s, Y: p}
	default:
		return geometry.Point{X: p, Y: s}
	}
}

// sortedByIndex returns vs sorted ascending; used for deterministic seeds.
func sortedByIndex(vs []int) []int {
	out := append([]int(nil), vs...)
	sort.Ints(out)
	return out
}
