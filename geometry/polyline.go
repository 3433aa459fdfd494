package geometry

import "math"

// Polyline is an ordered list of points joined by straight segments.
type Polyline []Point

// Clone returns an independent copy.
func (pl Polyline) Clone() Polyline {
	out := make(Polyline, len(pl))
	copy(out, pl)
	return out
}

// Reverse returns the points in reverse order.
func (pl Polyline) Reverse() Polyline {
	out := make(Polyline, len(pl))
	for i, p := range pl {
		out[len(pl)-1-i] = p
	}
	return out
}

// Translate returns the polyline moved by (dx, dy).
func (pl Polyline) Translate(dx, dy float64) Polyline {
	out := make(Polyline, len(pl))
	for i, p := range pl {
		out[i] = p.Add(dx, dy)
	}
	return out
}

// Length returns the total length of all segments.
func (pl Polyline) Length() float64 {
	var total float64
	for i := 1; i < len(pl); i++ {
		total += pl[i-1].Dist(pl[i])
	}
	return total
}

// Simplify drops repeated points and interior points that lie on a straight
// run between their neighbours. Endpoints are always kept.
func (pl Polyline) Simplify() Polyline {
	if len(pl) < 2 {
		return pl.Clone()
	}
	dedup := make(Polyline, 0, len(pl))
	for _, p := range pl {
		if len(dedup) > 0 && dedup[len(dedup)-1].Eq(p) {
			continue
		}
		dedup = append(dedup, p)
	}
	if len(dedup) < 3 {
		return dedup
	}
	out := Polyline{dedup[0]}
	for i := 1; i < len(dedup)-1; i++ {
		prev, cur, next := out[len(out)-1], dedup[i], dedup[i+1]
		if collinear(prev, cur, next) {
			continue
		}
		out = append(out, cur)
	}
	return append(out, dedup[len(dedup)-1])
}

// collinear reports whether b lies on the segment a-c and the run does not double back.
func collinear(a, b, c Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(cross) > Epsilon {
		return false
	}
	dot := (b.X-a.X)*(c.X-b.X) + (b.Y-a.Y)*(c.Y-b.Y)
	return dot >= -Epsilon
}

// Orthogonal replaces every diagonal segment with two axis-aligned legs.
// With verticalFirst the vertical leg comes first.
func (pl Polyline) Orthogonal(verticalFirst bool) Polyline {
	if len(pl) < 2 {
		return pl.Clone()
	}
	out := Polyline{pl[0]}
	for i := 1; i < len(pl); i++ {
		a, b := out[len(out)-1], pl[i]
		if !Near(a.X, b.X) && !Near(a.Y, b.Y) {
			if verticalFirst {
				out = append(out, Point{a.X, b.Y})
			} else {
				out = append(out, Point{b.X, a.Y})
			}
		}
		out = append(out, b)
	}
	return out
}

// IsOrthogonal reports whether every segment is horizontal or vertical.
func (pl Polyline) IsOrthogonal() bool {
	for i := 1; i < len(pl); i++ {
		if !Near(pl[i-1].X, pl[i].X) && !Near(pl[i-1].Y, pl[i].Y) {
			return false
		}
	}
	return true
}

// LabelAnchor returns the midpoint of the longest segment, the conventional
// place for an edge label. The earliest of equally long segments wins.
func (pl Polyline) LabelAnchor() Point {
	switch len(pl) {
	case 0:
		return Point{}
	case 1:
		return pl[0]
	}
	best, bestLen := 1, -1.0
	for i := 1; i < len(pl); i++ {
		if l := pl[i-1].Dist(pl[i]); l > bestLen+Epsilon {
			best, bestLen = i, l
		}
	}
	a, b := pl[best-1], pl[best]
	return Point{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// FinalHeading returns the direction of the last non-degenerate segment.
func (pl Polyline) FinalHeading() Direction {
	for i := len(pl) - 1; i > 0; i-- {
		if d := Heading(pl[i-1], pl[i]); d != None {
			return d
		}
	}
	return None
}

// InitialHeading returns the direction of the first non-degenerate segment.
func (pl Polyline) InitialHeading() Direction {
	for i := 1; i < len(pl); i++ {
		if d := Heading(pl[i-1], pl[i]); d != None {
			return d
		}
	}
	return None
}

// Bounds returns the bounding rectangle of the points.
func (pl Polyline) Bounds() Rect {
	var e Extent
	for _, p := range pl {
		e.AddPoint(p)
	}
	return e.Rect()
}

// Along returns the point at distance d from the start, walking the segments.
// d is clamped to the polyline's length.
func (pl Polyline) Along(d float64) Point {
	if len(pl) == 0 {
		return Point{}
	}
	for i := 1; i < len(pl); i++ {
		seg := pl[i-1].Dist(pl[i])
		if d <= seg && seg > 0 {
			t := d / seg
			return Point{pl[i-1].X + (pl[i].X-pl[i-1].X)*t, pl[i-1].Y + (pl[i].Y-pl[i-1].Y)*t}
		}
		d -= seg
	}
	return pl[len(pl)-1]
}

// ClipToRect returns the point where the segment from r's centre toward
// target leaves r. target must lie outside r.
func ClipToRect(r Rect, target Point) Point {
	c := r.Center()
	dx, dy := target.X-c.X, target.Y-c.Y
	if math.Abs(dx) <= Epsilon && math.Abs(dy) <= Epsilon {
		return c
	}
	hw, hh := r.Width/2, r.Height/2
	tx, ty := math.Inf(1), math.Inf(1)
	if math.Abs(dx) > Epsilon {
		tx = hw / math.Abs(dx)
	}
	if math.Abs(dy) > Epsilon {
		ty = hh / math.Abs(dy)
	}
	t := math.Min(tx, ty)
	return Point{c.X + dx*t, c.Y + dy*t}
}
