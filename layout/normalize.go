package layout

import (
	"math"

	"mermaidrender/geometry"
)

// finish moves everything so the drawing starts at the margin and sets
// Bounds to cover it, margin included, with the origin at (0, 0).
func finish(res *Result, m Metrics, u Units) {
	res.CellWidth, res.CellHeight = u.CellWidth, u.CellHeight
	ext := extent(res, m, u)
	if ext.Empty() {
		res.Bounds = geometry.Rect{}
		return
	}
	r := ext.Rect()
	minX, minY := r.X, r.Y
	if u.Grid {
		minX, minY = math.Floor(minX), math.Floor(minY)
	}
	res.Translate(u.Margin-minX, u.Margin-minY)

	w, h := r.Right()-minX+2*u.Margin, r.Bottom()-minY+2*u.Margin
	if u.Grid {
		w, h = math.Ceil(w), math.Ceil(h)
	}
	res.Bounds = geometry.Rect{Width: w, Height: h}
}

// extent is the union of every drawn element, labels included.
func extent(res *Result, m Metrics, u Units) geometry.Extent {
	var ext geometry.Extent
	for _, b := range res.Boxes {
		ext.AddRect(b.Rect)
	}
	for _, f := range res.Frames {
		ext.AddRect(f.Rect)
	}
	for _, p := range res.Paths {
		for _, pt := range p.Points {
			ext.AddPoint(pt)
		}
		if p.Label != "" {
			ext.AddRect(labelRect(m, u, p.Label, p.LabelAt))
		}
		if p.FromLabel != "" {
			ext.AddRect(labelRect(m, u, p.FromLabel, p.FromLabelAt))
		}
		if p.ToLabel != "" {
			ext.AddRect(labelRect(m, u, p.ToLabel, p.ToLabelAt))
		}
	}
	for _, l := range res.Lifelines {
		ext.AddPoint(geometry.Point{X: l.X, Y: l.Top})
		ext.AddPoint(geometry.Point{X: l.X, Y: l.Bottom})
	}
	for _, a := range res.Activations {
		ext.AddRect(a)
	}
	return ext
}

// labelRect is the area a label occupies around its anchor, including
// its background padding.
func labelRect(m Metrics, u Units, label string, at geometry.Point) geometry.Rect {
	w, h := blockSize(m, lines(label), EdgeText)
	if u.Grid {
		// Centred on the anchor cell: columns at-floor(w/2) .. at-floor(w/2)+w-1.
		return geometry.Rect{X: at.X - math.Floor(w/2), Y: at.Y - math.Floor((h-1)/2), Width: w, Height: h}
	}
	return geometry.RectAround(at, w+2*u.LabelPadX, h+2*u.LabelPadY)
}
