// Package geometry provides the points, rectangles and polylines shared by
// the layout strategies and both renderers. Coordinates are float64 layout
// units with the origin at the top-left and y increasing downward.
package geometry

import "math"

// Epsilon is the tolerance used for boundary and collinearity tests.
const Epsilon = 1e-6

// Round2 rounds v to two decimals. Renderers format through it so output
// stays byte-stable across platforms.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

// Cell converts a layout coordinate to an integer cell index for the given
// units-per-cell ratio. Halves round up so boundaries map consistently.
func Cell(v, unit float64) int {
	if unit <= 0 {
		unit = 1
	}
	return int(math.Floor(v/unit + 0.5))
}

// Near reports whether a and b differ by at most Epsilon.
func Near(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -1, 0 or 1.
func Sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}
