package layout

import (
	"math"
	"sort"

	"mermaidrender/geometry"
)

// router turns dag chains into orthogonal polylines. Each edge leaves its
// upper node through a port on the facing side, runs straight down through
// any dummy nodes, and changes lane only inside the channel between two
// ranks, on a track of its own.
type router struct {
	e      *engine
	ports  map[portKey]float64
	tracks map[segKey]float64
}

type portKey struct {
	edge   int
	bottom bool // true for the side facing higher ranks
}

type segKey struct {
	edge, seg int
}

func (e *engine) newRouter() *router {
	rt := &router{e: e, ports: make(map[portKey]float64), tracks: make(map[segKey]float64)}
	rt.assignPorts()
	rt.assignTracks()
	return rt
}

// assignPorts spreads the edges on each side of a node evenly across that
// side, ordered by the position of the other end so they do not cross.
func (rt *router) assignPorts() {
	e := rt.e
	outs := make(map[int][]int)
	ins := make(map[int][]int)
	for _, d := range e.dag {
		chain := e.chains[d.edge]
		outs[chain[0]] = append(outs[chain[0]], d.edge)
		ins[chain[len(chain)-1]] = append(ins[chain[len(chain)-1]], d.edge)
	}
	place := func(v int, edges []int, bottom bool) {
		other := func(ei int) int {
			chain := e.chains[ei]
			if bottom {
				return chain[1]
			}
			return chain[len(chain)-2]
		}
		sort.SliceStable(edges, func(i, j int) bool {
			ci, cj := e.center(other(edges[i])), e.center(other(edges[j]))
			if ci != cj {
				return ci < cj
			}
			return edges[i] < edges[j]
		})
		for i, ei := range edges {
			rt.ports[portKey{ei, bottom}] = rt.portPos(v, i, len(edges))
		}
	}
	for v := range e.nodes {
		if es := outs[v]; len(es) > 0 {
			place(v, es, true)
		}
		if es := ins[v]; len(es) > 0 {
			place(v, es, false)
		}
	}
}

// portPos is the i-th of k evenly spaced attachment points on v's side.
func (rt *router) portPos(v, i, k int) float64 {
	e := rt.e
	lp, pw := e.nodes[v].lp, e.pw(v)
	if !e.u.Grid {
		return lp + pw*float64(i+1)/float64(k+1)
	}
	if k == 1 {
		// Same cell as the centre alignment used, so aligned ranks stay straight.
		return e.center(v)
	}
	p := lp + math.Floor((pw-1)*float64(i+1)/float64(k+1)+0.5)
	if pw >= 3 {
		p = geometry.Clamp(p, lp+1, lp+pw-2)
	}
	return p
}

// lane returns where segment seg of edge ei sits along the order axis at
// its upper and lower ends.
func (rt *router) lane(ei, seg int) (upper, lower float64) {
	e := rt.e
	chain := e.chains[ei]
	upper = e.center(chain[seg])
	if seg == 0 {
		upper = rt.ports[portKey{ei, true}]
	}
	lower = e.center(chain[seg+1])
	if seg+1 == len(chain)-1 {
		lower = rt.ports[portKey{ei, false}]
	}
	return upper, lower
}

type jog struct {
	key    segKey
	lo, hi float64
}

// assignTracks gives every lane change its own track in the channel below
// its rank, colouring overlapping intervals with distinct tracks.
func (rt *router) assignTracks() {
	e := rt.e
	above, below := e.clusterExtents()
	byGap := make(map[int][]jog)
	for _, d := range e.dag {
		chain := e.chains[d.edge]
		for seg := 0; seg+1 < len(chain); seg++ {
			a, b := rt.lane(d.edge, seg)
			if geometry.Near(a, b) {
				continue
			}
			r := e.nodes[chain[seg]].rank
			byGap[r] = append(byGap[r], jog{key: segKey{d.edge, seg}, lo: math.Min(a, b), hi: math.Max(a, b)})
		}
	}
	sep := 4.0
	if e.u.Grid {
		sep = 1
	}
	for r, jogs := range byGap {
		sort.Slice(jogs, func(i, j int) bool {
			if jogs[i].lo != jogs[j].lo {
				return jogs[i].lo < jogs[j].lo
			}
			if jogs[i].hi != jogs[j].hi {
				return jogs[i].hi < jogs[j].hi
			}
			return jogs[i].key.edge < jogs[j].key.edge
		})
		var ends []float64
		assigned := make([]int, len(jogs))
		for i, j := range jogs {
			t := -1
			for k, end := range ends {
				if end+sep <= j.lo {
					t = k
					break
				}
			}
			if t < 0 {
				ends = append(ends, 0)
				t = len(ends) - 1
			}
			ends[t] = j.hi
			assigned[i] = t
		}

		lo := e.rankTop[r] + e.rankSize[r] + below[r]
		hi := e.rankTop[r+1] - above[r+1]
		n := float64(len(ends))
		for i, j := range jogs {
			s := lo + (hi-lo)*float64(assigned[i]+1)/(n+1)
			if e.u.Grid {
				s = geometry.Clamp(math.Floor(s+0.5), lo, math.Max(lo, hi-1))
			}
			rt.tracks[j.key] = s
		}
	}
}

// route returns the polyline of ranking edge ei in its declared direction.
func (rt *router) route(ei int) geometry.Polyline {
	e := rt.e
	chain, ok := e.chains[ei]
	if !ok {
		return nil
	}
	first, last := chain[0], chain[len(chain)-1]
	var pts geometry.Polyline
	add := func(p, s float64) { pts = append(pts, e.toPoint(p, s)) }

	add(rt.ports[portKey{ei, true}], e.nodes[first].ts+e.sw(first))
	for seg := 0; seg+1 < len(chain); seg++ {
		a, b := rt.lane(ei, seg)
		if geometry.Near(a, b) {
			continue
		}
		s := rt.tracks[segKey{ei, seg}]
		add(a, s)
		add(b, s)
	}
	add(rt.ports[portKey{ei, false}], e.nodes[last].ts)

	pts = pts.Simplify()
	for _, d := range e.dag {
		if d.edge == ei && d.reversed {
			return pts.Reverse()
		}
	}
	return pts
}

// selfLoop routes the k-th loop on node v out of its right side and back
// in through the top, each further loop reaching out wider.
func (e *engine) selfLoop(v, k int) geometry.Polyline {
	r := e.nodeRect(v)
	d := e.u.LoopSize * float64(k+1)
	cy := r.Y + r.Height/2
	qx := r.X + r.Width*3/4
	if e.u.Grid {
		cy = r.Y + math.Floor((r.Height-1)/2)
		qx = r.X + math.Floor((r.Width-1)*3/4+0.5)
	}
	right, top := r.Right(), r.Y
	return geometry.Polyline{
		{X: right, Y: cy},
		{X: right + d, Y: cy},
		{X: right + d, Y: top - d},
		{X: qx, Y: top - d},
		{X: qx, Y: top},
	}
}
