package geometry

import "math"

// Point is a position in layout units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{p.X + dx, p.Y + dy} }

// Eq reports whether two points coincide within Epsilon.
func (p Point) Eq(q Point) bool { return Near(p.X, q.X) && Near(p.Y, q.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(q.X-p.X, q.Y-p.Y) }

// Direction is a cardinal direction of travel.
type Direction int

const (
	North Direction = iota
	East
	South
	West
	None
)

// String returns the name of the direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "None"
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Vertical reports whether d is North or South.
func (d Direction) Vertical() bool { return d == North || d == South }

// Heading returns the dominant direction of travel from a to b.
// Ties between axes resolve to the horizontal one.
func Heading(a, b Point) Direction {
	dx, dy := b.X-a.X, b.Y-a.Y
	if math.Abs(dx) <= Epsilon && math.Abs(dy) <= Epsilon {
		return None
	}
	if math.Abs(dx) >= math.Abs(dy) {
		if dx > 0 {
			return East
		}
		return West
	}
	if dy > 0 {
		return South
	}
	return North
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's centre point.
func (r Rect) Center() Point { return Point{r.X + r.Width/2, r.Y + r.Height/2} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r or on its boundary.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X-Epsilon && p.X <= r.Right()+Epsilon &&
		p.Y >= r.Y-Epsilon && p.Y <= r.Bottom()+Epsilon
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return r.Contains(Point{o.X, o.Y}) && r.Contains(Point{o.Right(), o.Bottom()})
}

// Interior reports whether p lies strictly inside r.
func (r Rect) Interior(p Point) bool {
	return p.X > r.X+Epsilon && p.X < r.Right()-Epsilon &&
		p.Y > r.Y+Epsilon && p.Y < r.Bottom()-Epsilon
}

// OnBoundary reports whether p lies on the edge of r.
func (r Rect) OnBoundary(p Point) bool {
	return r.Contains(p) && !r.Interior(p)
}

// Intersects reports whether r and o overlap with positive area.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right()-Epsilon && o.X < r.Right()-Epsilon &&
		r.Y < o.Bottom()-Epsilon && o.Y < r.Bottom()-Epsilon
}

// Union returns the smallest rectangle containing r and o. An empty
// operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 && r.Height == 0 {
		return o
	}
	if o.Width == 0 && o.Height == 0 {
		return r
	}
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{x, y, math.Max(r.Right(), o.Right()) - x, math.Max(r.Bottom(), o.Bottom()) - y}
}

// Expand grows r by dx on the left and right and dy on the top and bottom.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{r.X - dx, r.Y - dy, r.Width + 2*dx, r.Height + 2*dy}
}

// Translate moves r by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{r.X + dx, r.Y + dy, r.Width, r.Height}
}

// RectAround returns a rectangle of the given size centred on c.
func RectAround(c Point, w, h float64) Rect {
	return Rect{c.X - w/2, c.Y - h/2, w, h}
}

// Extent accumulates the bounding box of points and rectangles.
type Extent struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

// AddPoint extends the extent to include p.
func (e *Extent) AddPoint(p Point) {
	if !e.set {
		e.MinX, e.MaxX, e.MinY, e.MaxY = p.X, p.X, p.Y, p.Y
		e.set = true
		return
	}
	e.MinX = math.Min(e.MinX, p.X)
	e.MaxX = math.Max(e.MaxX, p.X)
	e.MinY = math.Min(e.MinY, p.Y)
	e.MaxY = math.Max(e.MaxY, p.Y)
}

// AddRect extends the extent to include r.
func (e *Extent) AddRect(r Rect) {
	e.AddPoint(Point{r.X, r.Y})
	e.AddPoint(Point{r.Right(), r.Bottom()})
}

// Empty reports whether nothing was added.
func (e *Extent) Empty() bool { return !e.set }

// Rect returns the accumulated bounds.
func (e *Extent) Rect() Rect {
	if !e.set {
		return Rect{}
	}
	return Rect{e.MinX, e.MinY, e.MaxX - e.MinX, e.MaxY - e.MinY}
}
