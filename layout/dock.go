package layout

import (
	"math"
	"sort"

	"mermaidrender/geometry"
)

// docker routes relations that take no part in ranking. Each end docks on
// the side of its box that faces the other box; several ends on one side
// are spread along it. The route is a Z through the gap between the boxes,
// or a detour around the rank when the straight corridor is blocked.
type docker struct {
	u     Units
	rects []geometry.Rect
	links [][2]int
	sides [][2]geometry.Direction
	at    [][2]geometry.Point
}

func newDocker(u Units, rects []geometry.Rect) *docker {
	return &docker{u: u, rects: rects}
}

// add registers a link between boxes a and b and returns its index.
func (d *docker) add(a, b int) int {
	d.links = append(d.links, [2]int{a, b})
	return len(d.links) - 1
}

// facing picks the sides of a and b that look at each other, along the
// axis with the wider gap.
func facing(a, b geometry.Rect) (geometry.Direction, geometry.Direction) {
	dx := math.Max(b.X-a.Right(), a.X-b.Right())
	dy := math.Max(b.Y-a.Bottom(), a.Y-b.Bottom())
	if dy >= dx && dy >= 0 {
		if b.Y >= a.Bottom() {
			return geometry.South, geometry.North
		}
		return geometry.North, geometry.South
	}
	if b.Center().X >= a.Center().X {
		return geometry.East, geometry.West
	}
	return geometry.West, geometry.East
}

type dockEnd struct {
	link, end int
}

// resolve assigns sides and spread dock points to every link.
func (d *docker) resolve() {
	d.sides = make([][2]geometry.Direction, len(d.links))
	d.at = make([][2]geometry.Point, len(d.links))
	type sideKey struct {
		box  int
		side geometry.Direction
	}
	groups := make(map[sideKey][]dockEnd)
	var keys []sideKey
	for i, l := range d.links {
		sa, sb := facing(d.rects[l[0]], d.rects[l[1]])
		d.sides[i] = [2]geometry.Direction{sa, sb}
		for end, side := range []geometry.Direction{sa, sb} {
			k := sideKey{l[end], side}
			if _, ok := groups[k]; !ok {
				keys = append(keys, k)
			}
			groups[k] = append(groups[k], dockEnd{i, end})
		}
	}
	for _, k := range keys {
		ends := groups[k]
		other := func(de dockEnd) geometry.Point {
			return d.rects[d.links[de.link][1-de.end]].Center()
		}
		sort.SliceStable(ends, func(i, j int) bool {
			pi, pj := other(ends[i]), other(ends[j])
			if k.side.Vertical() {
				return pi.X < pj.X
			}
			return pi.Y < pj.Y
		})
		for i, de := range ends {
			d.at[de.link][de.end] = d.spread(d.rects[k.box], k.side, i, len(ends))
		}
	}
}

// spread returns the i-th of k points along one side of r.
func (d *docker) spread(r geometry.Rect, side geometry.Direction, i, k int) geometry.Point {
	t := float64(i+1) / float64(k+1)
	along := func(lo, size float64) float64 {
		if !d.u.Grid {
			return lo + size*t
		}
		v := lo + math.Floor((size-1)*t+0.5)
		if size >= 3 {
			v = geometry.Clamp(v, lo+1, lo+size-2)
		}
		return v
	}
	switch side {
	case geometry.North:
		return geometry.Point{X: along(r.X, r.Width), Y: r.Y}
	case geometry.South:
		return geometry.Point{X: along(r.X, r.Width), Y: r.Bottom()}
	case geometry.West:
		return geometry.Point{X: r.X, Y: along(r.Y, r.Height)}
	default:
		return geometry.Point{X: r.Right(), Y: along(r.Y, r.Height)}
	}
}

// route returns link i as an orthogonal polyline from its first box to its second.
func (d *docker) route(i int) geometry.Polyline {
	l := d.links[i]
	pa, pb := d.at[i][0], d.at[i][1]
	var pts geometry.Polyline
	if d.sides[i][0].Vertical() {
		my := d.snap((pa.Y + pb.Y) / 2)
		pts = geometry.Polyline{pa, {X: pa.X, Y: my}, {X: pb.X, Y: my}, pb}
	} else {
		mx := d.snap((pa.X + pb.X) / 2)
		pts = geometry.Polyline{pa, {X: mx, Y: pa.Y}, {X: mx, Y: pb.Y}, pb}
	}
	if !d.blocked(pts, l[0], l[1]) {
		return pts.Simplify()
	}
	return d.detour(l[0], l[1], d.sides[i][0].Vertical()).Simplify()
}

func (d *docker) snap(v float64) float64 {
	if d.u.Grid {
		return math.Floor(v)
	}
	return v
}

// blocked reports whether any segment passes through a box other than a and b.
func (d *docker) blocked(pts geometry.Polyline, a, b int) bool {
	for j, r := range d.rects {
		if j == a || j == b {
			continue
		}
		for k := 0; k+1 < len(pts); k++ {
			if segmentHits(r, pts[k], pts[k+1]) {
				return true
			}
		}
	}
	return false
}

// segmentHits reports whether the axis-aligned segment pq touches r.
func segmentHits(r geometry.Rect, p, q geometry.Point) bool {
	seg := geometry.Rect{
		X: math.Min(p.X, q.X), Y: math.Min(p.Y, q.Y),
		Width: math.Abs(q.X - p.X), Height: math.Abs(q.Y - p.Y),
	}
	return seg.X <= r.Right() && r.X <= seg.Right() && seg.Y <= r.Bottom() && r.Y <= seg.Bottom()
}

// detour goes around every box in the way: over the top when the ends are
// side by side, past the right of everything between them otherwise.
func (d *docker) detour(a, b int, vertical bool) geometry.Polyline {
	ra, rb := d.rects[a], d.rects[b]
	gap := d.u.LoopSize
	if vertical {
		lo, hi := math.Min(ra.Y, rb.Y), math.Max(ra.Bottom(), rb.Bottom())
		x := math.Max(ra.Right(), rb.Right())
		for _, r := range d.rects {
			if r.Bottom() >= lo && r.Y <= hi {
				x = math.Max(x, r.Right())
			}
		}
		x += gap
		pa := d.spread(ra, geometry.East, 0, 1)
		pb := d.spread(rb, geometry.East, 0, 1)
		return geometry.Polyline{pa, {X: x, Y: pa.Y}, {X: x, Y: pb.Y}, pb}
	}
	lo, hi := math.Min(ra.X, rb.X), math.Max(ra.Right(), rb.Right())
	y := math.Min(ra.Y, rb.Y)
	for _, r := range d.rects {
		if r.Right() >= lo && r.X <= hi {
			y = math.Min(y, r.Y)
		}
	}
	y -= gap
	pa := d.spread(ra, geometry.North, 0, 1)
	pb := d.spread(rb, geometry.North, 0, 1)
	return geometry.Polyline{pa, {X: pa.X, Y: y}, {X: pb.X, Y: y}, pb}
}
