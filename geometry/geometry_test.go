package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectIntersects(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlap", Rect{5, 5, 10, 10}, true},
		{"shared edge", Rect{10, 0, 5, 5}, false},
		{"disjoint", Rect{20, 20, 1, 1}, false},
		{"contained", Rect{2, 2, 1, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(a))
		})
	}
}

func TestRectBoundary(t *testing.T) {
	r := Rect{10, 10, 20, 10}
	assert.True(t, r.OnBoundary(Pt(20, 10)))
	assert.True(t, r.OnBoundary(Pt(30, 15)))
	assert.True(t, r.OnBoundary(Pt(10, 20)))
	assert.False(t, r.OnBoundary(Pt(20, 15)), "centre is interior")
	assert.False(t, r.OnBoundary(Pt(40, 15)), "outside")
	assert.Equal(t, Pt(20, 15), r.Center())
}

func TestRectUnion(t *testing.T) {
	u := Rect{}.Union(Rect{5, 5, 2, 2})
	assert.Equal(t, Rect{5, 5, 2, 2}, u)
	u = u.Union(Rect{0, 10, 1, 1})
	assert.Equal(t, Rect{0, 5, 7, 6}, u)
}

func TestPolylineSimplify(t *testing.T) {
	pl := Polyline{Pt(0, 0), Pt(0, 0), Pt(0, 5), Pt(0, 10), Pt(5, 10), Pt(10, 10)}
	assert.Equal(t, Polyline{Pt(0, 0), Pt(0, 10), Pt(10, 10)}, pl.Simplify())

	// A run that doubles back keeps its turning point.
	back := Polyline{Pt(0, 0), Pt(10, 0), Pt(5, 0)}
	assert.Equal(t, back, back.Simplify())

	assert.Len(t, Polyline{Pt(1, 1)}.Simplify(), 1)
}

func TestPolylineOrthogonal(t *testing.T) {
	pl := Polyline{Pt(0, 0), Pt(10, 10)}
	assert.Equal(t, Polyline{Pt(0, 0), Pt(0, 10), Pt(10, 10)}, pl.Orthogonal(true))
	assert.Equal(t, Polyline{Pt(0, 0), Pt(10, 0), Pt(10, 10)}, pl.Orthogonal(false))
	assert.True(t, pl.Orthogonal(true).IsOrthogonal())
	assert.False(t, pl.IsOrthogonal())
}

func TestLabelAnchorAndHeadings(t *testing.T) {
	pl := Polyline{Pt(0, 0), Pt(0, 2), Pt(10, 2), Pt(10, 4)}
	assert.Equal(t, Pt(5, 2), pl.LabelAnchor())
	assert.Equal(t, South, pl.InitialHeading())
	assert.Equal(t, South, pl.FinalHeading())
	assert.Equal(t, North, pl.Reverse().InitialHeading())
	assert.Equal(t, Pt(0, 1), pl.Along(1))
	assert.Equal(t, Pt(4, 2), pl.Along(6))
	assert.Equal(t, Pt(10, 4), pl.Along(100))
	assert.Equal(t, Rect{0, 0, 10, 4}, pl.Bounds())
}

func TestClipToRect(t *testing.T) {
	r := Rect{0, 0, 10, 10}
	assert.Equal(t, Pt(10, 5), ClipToRect(r, Pt(20, 5)))
	assert.Equal(t, Pt(5, 0), ClipToRect(r, Pt(5, -20)))
	p := ClipToRect(r, Pt(30, 30))
	assert.True(t, r.OnBoundary(p))
}

func TestCellAndRound(t *testing.T) {
	assert.Equal(t, 3, Cell(2.5, 1))
	assert.Equal(t, 2, Cell(2.49, 1))
	assert.Equal(t, 2, Cell(16, 8))
	assert.Equal(t, 0.33, Round2(1.0/3))
	assert.Equal(t, 0.0, Round2(-0.001))
	assert.Equal(t, East, Heading(Pt(0, 0), Pt(3, 3)))
	assert.Equal(t, West, East.Opposite())
}
