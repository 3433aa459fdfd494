package render

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
	"mermaidrender/layout"
)

// Pixel size of one grid cell when a cell-unit result is drawn as vector.
const (
	pixelsPerColumn = 8
	pixelsPerRow    = 16
)

// Stroke widths.
const (
	strokeBox   = 1
	strokeEdge  = 1.5
	strokeThick = 3
)

// SVG renders res as a self-contained SVG document with inline attributes.
// Results laid out in grid cells are scaled to pixels. An empty result
// yields a zero-sized document.
func SVG(res *layout.Result, opts core.Options) (string, error) {
	pal, err := opts.Theme.Resolve()
	if err != nil {
		return "", fmt.Errorf("resolve theme: %w", err)
	}
	fm, err := layout.NewFontMetrics(opts)
	if err != nil {
		return "", err
	}
	defer fm.Close()

	s := &svgWriter{pal: pal, opts: opts, m: fm, sx: 1, sy: 1}
	if res.Empty() {
		s.header(0, 0)
		s.b.WriteString("</svg>\n")
		return s.b.String(), nil
	}
	if res.CellWidth > 0 && res.CellWidth < pixelsPerColumn {
		s.sx = pixelsPerColumn / res.CellWidth
	}
	if res.CellHeight > 0 && res.CellHeight < pixelsPerRow {
		s.sy = pixelsPerRow / res.CellHeight
	}

	w, h := res.Bounds.Width*s.sx, res.Bounds.Height*s.sy
	s.header(w, h)
	if !opts.Transparent {
		fmt.Fprintf(&s.b, "<rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n", num(w), num(h), pal.Bg)
	}
	for _, f := range res.Frames {
		s.frame(f)
	}
	for _, l := range res.Lifelines {
		fmt.Fprintf(&s.b, "<line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-width=\"1\" stroke-dasharray=\"4 4\"/>\n",
			s.x(l.X), s.y(l.Top), s.x(l.X), s.y(l.Bottom), pal.Line)
	}
	for _, a := range res.Activations {
		s.rect(s.scale(a), 0, pal.NodeFill, pal.NodeStroke, "")
	}
	for _, p := range res.Paths {
		s.path(p)
	}
	for _, b := range res.Boxes {
		s.box(b)
	}
	for _, p := range res.Paths {
		s.label(p.Label, p.LabelAt, true)
		s.label(p.FromLabel, p.FromLabelAt, false)
		s.label(p.ToLabel, p.ToLabelAt, false)
	}
	s.b.WriteString("</svg>\n")
	return s.b.String(), nil
}

type svgWriter struct {
	b      strings.Builder
	pal    core.Palette
	opts   core.Options
	m      *layout.FontMetrics
	sx, sy float64
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(geometry.Round2(v), 'f', -1, 64)
}

func esc(s string) string { return html.EscapeString(s) }

func (s *svgWriter) x(v float64) string { return num(v * s.sx) }
func (s *svgWriter) y(v float64) string { return num(v * s.sy) }

func (s *svgWriter) pt(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X * s.sx, Y: p.Y * s.sy}
}

func (s *svgWriter) scale(r geometry.Rect) geometry.Rect {
	return geometry.Rect{X: r.X * s.sx, Y: r.Y * s.sy, Width: r.Width * s.sx, Height: r.Height * s.sy}
}

func (s *svgWriter) header(w, h float64) {
	fmt.Fprintf(&s.b, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\" font-family=\"%s\">\n",
		num(w), num(h), num(w), num(h), esc(s.opts.Font))
}

func (s *svgWriter) rect(r geometry.Rect, rx float64, fill, stroke, extra string) {
	fmt.Fprintf(&s.b, "<rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"", num(r.X), num(r.Y), num(r.Width), num(r.Height))
	if rx > 0 {
		fmt.Fprintf(&s.b, " rx=\"%s\"", num(rx))
	}
	fmt.Fprintf(&s.b, " fill=\"%s\"", fill)
	if stroke != "" {
		fmt.Fprintf(&s.b, " stroke=\"%s\" stroke-width=\"%d\"", stroke, strokeBox)
	}
	s.b.WriteString(extra)
	s.b.WriteString("/>\n")
}

func (s *svgWriter) line(a, b geometry.Point, stroke string, width float64, extra string) {
	fmt.Fprintf(&s.b, "<line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-width=\"%s\"%s/>\n",
		num(a.X), num(a.Y), num(b.X), num(b.Y), stroke, num(width), extra)
}

func points(pts ...geometry.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

func (s *svgWriter) polygon(fill, stroke string, pts ...geometry.Point) {
	fmt.Fprintf(&s.b, "<polygon points=\"%s\" fill=\"%s\"", points(pts...), fill)
	if stroke != "" {
		fmt.Fprintf(&s.b, " stroke=\"%s\" stroke-width=\"%d\"", stroke, strokeBox)
	}
	s.b.WriteString("/>\n")
}

func (s *svgWriter) circle(c geometry.Point, r float64, fill, stroke string) {
	fmt.Fprintf(&s.b, "<circle cx=\"%s\" cy=\"%s\" r=\"%s\" fill=\"%s\"", num(c.X), num(c.Y), num(r), fill)
	if stroke != "" {
		fmt.Fprintf(&s.b, " stroke=\"%s\" stroke-width=\"%d\"", stroke, strokeBox)
	}
	s.b.WriteString("/>\n")
}

// text writes one line; anchor is start, middle or end.
func (s *svgWriter) text(p geometry.Point, t string, st layout.TextStyle, fill, anchor string) {
	fmt.Fprintf(&s.b, "<text x=\"%s\" y=\"%s\" font-size=\"%s\" font-weight=\"%d\" fill=\"%s\" text-anchor=\"%s\" dominant-baseline=\"central\"",
		num(p.X), num(p.Y), num(st.Size), st.Weight, fill, anchor)
	if st.Mono {
		s.b.WriteString(" font-family=\"monospace\"")
	}
	fmt.Fprintf(&s.b, ">%s</text>\n", esc(t))
}

func (s *svgWriter) frame(f layout.Frame) {
	r := s.scale(f.Rect)
	st := layout.GroupText
	if f.Kind == "cluster" {
		s.rect(r, 6, s.pal.GroupFill, s.pal.NodeStroke, "")
		hdr := f.Header * s.sy
		if hdr > 0 {
			s.rect(geometry.Rect{X: r.X + 0.5, Y: r.Y + 0.5, Width: r.Width - 1, Height: hdr}, 0, s.pal.GroupHeader, "", "")
			s.line(geometry.Pt(r.X, r.Y+hdr), geometry.Pt(r.Right(), r.Y+hdr), s.pal.InnerStroke, 1, "")
		}
		if f.Label != "" {
			y := r.Y + max(hdr, st.Size*2)/2
			s.text(geometry.Pt(r.X+12, y), f.Label, st, s.pal.TextSecond, "start")
		}
		return
	}

	s.rect(r, 0, "none", s.pal.NodeStroke, "")
	tag := f.Kind
	tw := s.m.TextWidth(tag, st) + 16
	th := max(f.Header*s.sy, st.Size+8)
	tab := geometry.Rect{X: r.X, Y: r.Y, Width: tw, Height: th}
	s.polygon(s.pal.GroupHeader, s.pal.NodeStroke,
		geometry.Pt(tab.X, tab.Y), geometry.Pt(tab.Right(), tab.Y),
		geometry.Pt(tab.Right(), tab.Bottom()-6), geometry.Pt(tab.Right()-6, tab.Bottom()),
		geometry.Pt(tab.X, tab.Bottom()))
	s.text(geometry.Pt(tab.X+8, tab.Y+th/2), tag, st, s.pal.Text, "start")
	if f.Label != "" {
		s.text(geometry.Pt(tab.Right()+8, tab.Y+th/2), "["+f.Label+"]", layout.EdgeText, s.pal.TextSecond, "start")
	}
	for _, d := range f.Dividers {
		y := d.Y * s.sy
		s.line(geometry.Pt(r.X, y), geometry.Pt(r.Right(), y), s.pal.NodeStroke, 1, " stroke-dasharray=\"4 4\"")
		if d.Label != "" {
			s.text(geometry.Pt(r.Center().X, y+layout.EdgeText.Size), "["+d.Label+"]", layout.EdgeText, s.pal.TextSecond, "middle")
		}
	}
}

func (s *svgWriter) path(p layout.Path) {
	pts := make([]geometry.Point, len(p.Points))
	for i, q := range p.Points {
		pts[i] = s.pt(q)
	}
	if len(pts) < 2 {
		return
	}
	width := strokeEdge
	extra := ""
	switch p.Style {
	case diagram.LineDashed:
		extra = " stroke-dasharray=\"4 4\""
	case diagram.LineThick:
		width = strokeThick
	}
	fmt.Fprintf(&s.b, "<polyline points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\" stroke-linejoin=\"round\"%s/>\n",
		points(pts...), s.pal.Line, num(width), extra)

	if p.End != layout.MarkerNone {
		s.marker(p.End, pts[len(pts)-1], back(pts, len(pts)-1, -1))
	}
	if p.Start != layout.MarkerNone {
		s.marker(p.Start, pts[0], back(pts, 0, 1))
	}
}

// back returns the first point before pts[i] (walking by step) that differs
// from it, so the marker heading is defined on degenerate segments too.
func back(pts []geometry.Point, i, step int) geometry.Point {
	for j := i + step; j >= 0 && j < len(pts); j += step {
		if !pts[j].Eq(pts[i]) {
			return pts[j]
		}
	}
	return pts[i].Add(-1, 0)
}

// marker draws m with its tip at tip, for a path arriving from prev.
func (s *svgWriter) marker(m layout.Marker, tip, prev geometry.Point) {
	dx, dy := tip.X-prev.X, tip.Y-prev.Y
	l := math.Hypot(dx, dy)
	ux, uy := dx/l, dy/l
	// at returns the point a units behind the tip and b units to its side.
	at := func(a, b float64) geometry.Point {
		return geometry.Point{X: tip.X - ux*a - uy*b, Y: tip.Y - uy*a + ux*b}
	}
	ink := s.pal.Arrow
	bar := func(a float64) { s.line(at(a, -6), at(a, 6), ink, strokeEdge, "") }
	crow := func() {
		s.line(at(12, 0), at(0, -7), ink, strokeEdge, "")
		s.line(at(12, 0), tip, ink, strokeEdge, "")
		s.line(at(12, 0), at(0, 7), ink, strokeEdge, "")
	}

	switch m {
	case layout.MarkerArrow:
		s.polygon(ink, "", tip, at(10, 5), at(10, -5))
	case layout.MarkerOpenArrow:
		fmt.Fprintf(&s.b, "<polyline points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\"/>\n",
			points(at(10, 5), tip, at(10, -5)), ink, num(strokeEdge))
	case layout.MarkerTriangle:
		s.polygon(s.pal.Bg, ink, tip, at(12, 7), at(12, -7))
	case layout.MarkerCircle:
		s.circle(at(5, 0), 4, s.pal.Bg, ink)
	case layout.MarkerCross:
		s.line(at(1, -4), at(9, 4), ink, strokeEdge, "")
		s.line(at(1, 4), at(9, -4), ink, strokeEdge, "")
	case layout.MarkerDiamond:
		s.polygon(s.pal.Bg, ink, tip, at(8, 5), at(16, 0), at(8, -5))
	case layout.MarkerFilledDiamond:
		s.polygon(ink, ink, tip, at(8, 5), at(16, 0), at(8, -5))
	case layout.MarkerOne:
		bar(6)
		bar(10)
	case layout.MarkerZeroOne:
		bar(6)
		s.circle(at(14, 0), 4, s.pal.Bg, ink)
	case layout.MarkerMany:
		crow()
		bar(16)
	case layout.MarkerZeroMany:
		crow()
		s.circle(at(18, 0), 4, s.pal.Bg, ink)
	}
}

// label draws a text block centred on at, over a background plate when
// boxed so it stays legible on top of lines.
func (s *svgWriter) label(t string, at geometry.Point, boxed bool) {
	if t == "" {
		return
	}
	c := s.pt(at)
	st := layout.EdgeText
	ls := splitLines(t)
	var w float64
	for _, l := range ls {
		w = max(w, s.m.TextWidth(l, st))
	}
	h := float64(len(ls)) * st.Size
	if boxed {
		s.rect(geometry.RectAround(c, w+12, h+6), 3, s.pal.Bg, "", " fill-opacity=\"0.9\"")
	}
	top := c.Y - h/2
	for i, l := range ls {
		s.text(geometry.Pt(c.X, top+(float64(i)+0.5)*st.Size), l, st, s.pal.TextSecond, "middle")
	}
}

func (s *svgWriter) box(b layout.Box) {
	r := s.scale(b.Rect)
	fill, stroke := s.pal.NodeFill, s.pal.NodeStroke
	switch b.Role {
	case layout.RoleParticipant:
		s.rect(r, 4, fill, stroke, "")
	case layout.RoleActor:
		s.actor(r)
	case layout.RoleNote:
		s.polygon(s.pal.GroupHeader, stroke,
			geometry.Pt(r.X, r.Y), geometry.Pt(r.Right()-8, r.Y), geometry.Pt(r.Right(), r.Y+8),
			geometry.Pt(r.Right(), r.Bottom()), geometry.Pt(r.X, r.Bottom()))
	case layout.RoleClass, layout.RoleEntity:
		s.sectioned(b, r)
		return
	default:
		s.shape(b.Shape, r)
	}

	switch b.Shape {
	case diagram.ShapeStateStart, diagram.ShapeStateEnd:
		return
	}
	st := layout.NodeText
	n := float64(len(b.Lines))
	c := r.Center()
	if b.Role == layout.RoleActor {
		c.Y = r.Bottom() - st.Size
	}
	top := c.Y - n*st.Size/2
	for i, l := range b.Lines {
		s.text(geometry.Pt(c.X, top+(float64(i)+0.5)*st.Size), l, st, s.pal.Text, "middle")
	}
}

// actor draws a stick figure above the name.
func (s *svgWriter) actor(r geometry.Rect) {
	ink := s.pal.NodeStroke
	cx := r.Center().X
	head := r.Y + 8
	s.circle(geometry.Pt(cx, head), 7, s.pal.NodeFill, ink)
	s.line(geometry.Pt(cx, head+7), geometry.Pt(cx, head+22), ink, strokeEdge, "")
	s.line(geometry.Pt(cx-10, head+12), geometry.Pt(cx+10, head+12), ink, strokeEdge, "")
	s.line(geometry.Pt(cx, head+22), geometry.Pt(cx-8, head+32), ink, strokeEdge, "")
	s.line(geometry.Pt(cx, head+22), geometry.Pt(cx+8, head+32), ink, strokeEdge, "")
}

func (s *svgWriter) shape(sh diagram.Shape, r geometry.Rect) {
	fill, stroke := s.pal.NodeFill, s.pal.NodeStroke
	c := r.Center()
	switch sh {
	case diagram.ShapeRounded:
		s.rect(r, 8, fill, stroke, "")
	case diagram.ShapeStadium:
		s.rect(r, r.Height/2, fill, stroke, "")
	case diagram.ShapeCircle:
		s.circle(c, min(r.Width, r.Height)/2, fill, stroke)
	case diagram.ShapeDoubleCircle:
		rad := min(r.Width, r.Height) / 2
		s.circle(c, rad, fill, stroke)
		s.circle(c, rad-4, "none", stroke)
	case diagram.ShapeDiamond:
		s.polygon(fill, stroke, geometry.Pt(c.X, r.Y), geometry.Pt(r.Right(), c.Y), geometry.Pt(c.X, r.Bottom()), geometry.Pt(r.X, c.Y))
	case diagram.ShapeHexagon:
		in := min(r.Width/4, r.Height/2)
		s.polygon(fill, stroke,
			geometry.Pt(r.X+in, r.Y), geometry.Pt(r.Right()-in, r.Y), geometry.Pt(r.Right(), c.Y),
			geometry.Pt(r.Right()-in, r.Bottom()), geometry.Pt(r.X+in, r.Bottom()), geometry.Pt(r.X, c.Y))
	case diagram.ShapeSubroutine:
		s.rect(r, 0, fill, stroke, "")
		s.line(geometry.Pt(r.X+8, r.Y), geometry.Pt(r.X+8, r.Bottom()), stroke, strokeBox, "")
		s.line(geometry.Pt(r.Right()-8, r.Y), geometry.Pt(r.Right()-8, r.Bottom()), stroke, strokeBox, "")
	case diagram.ShapeCylinder:
		ry := min(r.Height/8, 8)
		rx := r.Width / 2
		fmt.Fprintf(&s.b, "<path d=\"M %s %s A %s %s 0 0 0 %s %s L %s %s A %s %s 0 0 1 %s %s Z\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%d\"/>\n",
			num(r.X), num(r.Y+ry), num(rx), num(ry), num(r.Right()), num(r.Y+ry),
			num(r.Right()), num(r.Bottom()-ry), num(rx), num(ry), num(r.X), num(r.Bottom()-ry),
			fill, stroke, strokeBox)
		fmt.Fprintf(&s.b, "<ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%d\"/>\n",
			num(c.X), num(r.Y+ry), num(rx), num(ry), fill, stroke, strokeBox)
	case diagram.ShapeAsymmetric:
		s.polygon(fill, stroke, geometry.Pt(r.X, r.Y), geometry.Pt(r.Right(), r.Y), geometry.Pt(r.Right(), r.Bottom()),
			geometry.Pt(r.X, r.Bottom()), geometry.Pt(r.X+r.Height/4, c.Y))
	case diagram.ShapeTrapezoid:
		in := r.Height / 3
		s.polygon(fill, stroke, geometry.Pt(r.X+in, r.Y), geometry.Pt(r.Right()-in, r.Y), geometry.Pt(r.Right(), r.Bottom()), geometry.Pt(r.X, r.Bottom()))
	case diagram.ShapeTrapezoidAlt:
		in := r.Height / 3
		s.polygon(fill, stroke, geometry.Pt(r.X, r.Y), geometry.Pt(r.Right(), r.Y), geometry.Pt(r.Right()-in, r.Bottom()), geometry.Pt(r.X+in, r.Bottom()))
	case diagram.ShapeStateStart:
		s.circle(c, min(r.Width, r.Height)/2, s.pal.Text, "")
	case diagram.ShapeStateEnd:
		rad := min(r.Width, r.Height) / 2
		s.circle(c, rad, s.pal.Bg, s.pal.Text)
		s.circle(c, rad-4, s.pal.Text, "")
	default:
		s.rect(r, 0, fill, stroke, "")
	}
}

// sectioned draws a class or entity box: a title band, then each section
// under its divider with evenly spaced rows.
func (s *svgWriter) sectioned(b layout.Box, r geometry.Rect) {
	s.rect(r, 0, s.pal.NodeFill, s.pal.NodeStroke, "")
	band := r.Height
	if len(b.Dividers) > 0 {
		band = b.Dividers[0] * s.sy
	}
	s.rect(geometry.Rect{X: r.X + 0.5, Y: r.Y + 0.5, Width: r.Width - 1, Height: band - 0.5}, 0, s.pal.KeyBadge, "", "")

	st := layout.TextStyle{Size: layout.NodeText.Size, Weight: 600}
	n := float64(len(b.Lines))
	top := r.Y + band/2 - n*st.Size/2
	for i, l := range b.Lines {
		s.text(geometry.Pt(r.Center().X, top+(float64(i)+0.5)*st.Size), l, st, s.pal.Text, "middle")
	}

	row := layout.MemberText
	row.Mono = b.Mono
	inset := 8.0
	if b.Role == layout.RoleEntity {
		inset = 12
	}
	for i, rows := range b.Sections {
		if i >= len(b.Dividers) {
			break
		}
		y0 := r.Y + b.Dividers[i]*s.sy
		y1 := r.Bottom()
		if i+1 < len(b.Dividers) {
			y1 = r.Y + b.Dividers[i+1]*s.sy
		}
		s.line(geometry.Pt(r.X, y0), geometry.Pt(r.Right(), y0), s.pal.InnerStroke, strokeBox, "")
		if len(rows) == 0 {
			continue
		}
		step := (y1 - y0 - 8) / float64(len(rows))
		for j, l := range rows {
			y := y0 + 4 + (float64(j)+0.5)*step
			if b.Align == layout.AlignLeft {
				s.text(geometry.Pt(r.X+inset, y), l, row, s.pal.TextSecond, "start")
			} else {
				s.text(geometry.Pt(r.Center().X, y), l, row, s.pal.TextSecond, "middle")
			}
		}
	}
}
