package layout

import "sort"

// initialOrder seeds each rank of component c with depth-first discovery
// order from the sources, then groups cluster members together.
func (e *engine) initialOrder(c int) {
	down, _ := e.segments()
	layers := e.layers[c]
	visited := make(map[int]bool)
	seq := make(map[int]int)
	next := 0
	var visit func(v int)
	visit = func(v int) {
		visited[v] = true
		seq[v] = next
		next++
		for _, w := range down[v] {
			if !visited[w] {
				visit(w)
			}
		}
	}
	for _, rank := range layers {
		for _, v := range sortedByIndex(rank) {
			if !visited[v] {
				visit(v)
			}
		}
	}
	for _, rank := range layers {
		sort.SliceStable(rank, func(i, j int) bool { return seq[rank[i]] < seq[rank[j]] })
		e.setOrder(rank)
	}
	keys := e.clusterKeys(layers)
	for r, rank := range layers {
		layers[r] = e.arrange(rank, 0, func(v int) float64 { return e.normPos(layers, v) }, keys)
		e.setOrder(layers[r])
	}
}

func (e *engine) setOrder(rank []int) {
	for i, v := range rank {
		e.nodes[v].order = i
	}
}

// normPos places v on [0,1] within its rank so ranks of different widths
// can be compared.
func (e *engine) normPos(layers [][]int, v int) float64 {
	n := len(layers[e.nodes[v].rank])
	if n <= 1 {
		return 0.5
	}
	return float64(e.nodes[v].order) / float64(n-1)
}

// clusterKeys averages the normalised positions of every node inside each
// cluster, across all ranks. Using one key per cluster for a whole sweep
// keeps sibling clusters in the same relative order on every rank.
func (e *engine) clusterKeys(layers [][]int) []float64 {
	if len(e.clusters) == 0 {
		return nil
	}
	sum := make([]float64, len(e.clusters))
	cnt := make([]int, len(e.clusters))
	for _, rank := range layers {
		for _, v := range rank {
			p := e.normPos(layers, v)
			for c := e.nodes[v].cluster; c >= 0; c = e.clusters[c].parent {
				sum[c] += p
				cnt[c]++
			}
		}
	}
	for c := range sum {
		if cnt[c] > 0 {
			sum[c] /= float64(cnt[c])
		}
	}
	return sum
}

type orderUnit struct {
	key     float64
	cluster int
	nodes   []int
}

// arrange sorts one rank by value while keeping every cluster contiguous.
// At each nesting depth a cluster moves as one unit keyed by its cluster
// key; loose nodes are keyed by value. The sort is stable, so equal keys
// keep their previous order.
func (e *engine) arrange(rank []int, depth int, value func(int) float64, keys []float64) []int {
	var units []*orderUnit
	byCluster := make(map[int]*orderUnit)
	for _, v := range rank {
		chain := e.clusterChain(v)
		if len(chain) > depth {
			c := chain[depth]
			u := byCluster[c]
			if u == nil {
				u = &orderUnit{key: keys[c], cluster: c}
				byCluster[c] = u
				units = append(units, u)
			}
			u.nodes = append(u.nodes, v)
			continue
		}
		units = append(units, &orderUnit{key: value(v), cluster: -1, nodes: []int{v}})
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].key < units[j].key })

	out := make([]int, 0, len(rank))
	for _, u := range units {
		if u.cluster >= 0 {
			out = append(out, e.arrange(u.nodes, depth+1, value, keys)...)
		} else {
			out = append(out, u.nodes...)
		}
	}
	return out
}

// reduceCrossings runs alternating median sweeps over component c. It stops
// at the iteration cap, when no crossings remain, or after a down and up
// pass that brought no improvement, and keeps the best order seen.
func (e *engine) reduceCrossings(c int) {
	layers := e.layers[c]
	if len(layers) < 2 {
		return
	}
	down, up := e.segments()
	best := cloneLayers(layers)
	bestCross := e.countCrossings(layers, down)
	stale := 0
	for it := 0; it < e.maxIter && bestCross > 0; it++ {
		e.sweeps++
		keys := e.clusterKeys(layers)
		if it%2 == 0 {
			for r := 1; r < len(layers); r++ {
				layers[r] = e.medianSort(layers, r, up, keys)
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				layers[r] = e.medianSort(layers, r, down, keys)
			}
		}
		if cross := e.countCrossings(layers, down); cross < bestCross {
			best = cloneLayers(layers)
			bestCross = cross
			stale = 0
		} else if stale++; stale >= 2 {
			break
		}
	}
	for r := range layers {
		layers[r] = best[r]
		e.setOrder(layers[r])
	}
	e.crossings += bestCross
}

// medianSort reorders rank r by the median position of each node's
// neighbours in the adjacent rank. Nodes without neighbours keep their
// own position as value.
func (e *engine) medianSort(layers [][]int, r int, adj [][]int, keys []float64) []int {
	values := make(map[int]float64, len(layers[r]))
	for _, v := range layers[r] {
		nb := adj[v]
		if len(nb) == 0 {
			values[v] = e.normPos(layers, v)
			continue
		}
		ps := make([]float64, len(nb))
		for i, w := range nb {
			ps[i] = e.normPos(layers, w)
		}
		values[v] = median(ps)
	}
	out := e.arrange(layers[r], 0, func(v int) float64 { return values[v] }, keys)
	e.setOrder(out)
	return out
}

func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}

// countCrossings counts pairs of segments between adjacent ranks whose
// endpoints are in opposite order.
func (e *engine) countCrossings(layers [][]int, down [][]int) int {
	total := 0
	type seg struct{ a, b int }
	for r := 0; r+1 < len(layers); r++ {
		var segs []seg
		for _, v := range layers[r] {
			for _, w := range down[v] {
				segs = append(segs, seg{e.nodes[v].order, e.nodes[w].order})
			}
		}
		for i := 0; i < len(segs); i++ {
			for j := i + 1; j < len(segs); j++ {
				s, t := segs[i], segs[j]
				if (s.a < t.a && s.b > t.b) || (s.a > t.a && s.b < t.b) {
					total++
				}
			}
		}
	}
	return total
}

func cloneLayers(layers [][]int) [][]int {
	out := make([][]int, len(layers))
	for i, l := range layers {
		out[i] = append([]int(nil), l...)
	}
	return out
}
