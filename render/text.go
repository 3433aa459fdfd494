package render

import (
	"log/slog"
	"strings"

	"mermaidrender/canvas"
	"mermaidrender/core"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
	"mermaidrender/layout"
)

// Text draws res on a character grid and returns the rows trimmed to the
// occupied area. Coordinates are mapped to cells with the result's
// CellWidth and CellHeight, so results computed with CellMetrics map one
// to one. An empty result renders as the empty string.
func Text(res *layout.Result, opts core.Options) (string, error) {
	if res.Empty() {
		return "", nil
	}
	grid, err := draw(res, opts)
	if err != nil {
		return "", err
	}
	return grid.String(), nil
}

// draw rasterizes a non-empty result onto a fresh grid.
func draw(res *layout.Result, opts core.Options) (*canvas.Grid, error) {
	t := &textRenderer{res: res, g: GlyphsFor(opts.UseASCII), log: opts.Log(), cw: res.CellWidth, ch: res.CellHeight}
	w, h := t.cx(res.Bounds.Width)+1, t.cy(res.Bounds.Height)+1
	grid, err := canvas.New(w, h)
	if err != nil {
		return nil, err
	}
	t.grid = grid

	for _, f := range res.Frames {
		t.frame(f)
	}
	for _, l := range res.Lifelines {
		t.lifeline(l)
	}
	for _, a := range res.Activations {
		t.activation(a)
	}
	for _, p := range res.Paths {
		t.path(p)
	}
	for _, p := range res.Paths {
		t.labels(p)
	}
	for _, b := range res.Boxes {
		t.box(b)
	}
	for _, l := range res.Lifelines {
		t.lifelineTee(l)
	}

	t.log.Debug("text render", "kind", res.Kind.String(), "width", w, "height", h, "truncated", t.truncated)
	return grid, nil
}

type textRenderer struct {
	res    *layout.Result
	g      Glyphs
	grid   *canvas.Grid
	log    *slog.Logger
	cw, ch float64

	truncated int
}

type cell struct{ x, y int }

func (t *textRenderer) cx(v float64) int { return geometry.Cell(v, t.cw) }
func (t *textRenderer) cy(v float64) int { return geometry.Cell(v, t.ch) }

// cells returns the first and last cell a rectangle covers: [x, x+w)
// becomes columns x..x+w-1.
func (t *textRenderer) cells(r geometry.Rect) (x0, y0, x1, y1 int) {
	x0, y0 = t.cx(r.X), t.cy(r.Y)
	x1, y1 = t.cx(r.Right())-1, t.cy(r.Bottom())-1
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return x0, y0, x1, y1
}

func (t *textRenderer) set(x, y int, r rune, layer canvas.Layer) {
	// Off-grid writes are clipped.
	_, _ = t.grid.Set(x, y, r, layer)
}

func (t *textRenderer) border(x0, y0, x1, y1 int, st BoxStyle, layer canvas.Layer) {
	for x := x0 + 1; x < x1; x++ {
		t.set(x, y0, st.Horizontal, layer)
		t.set(x, y1, st.Horizontal, layer)
	}
	for y := y0 + 1; y < y1; y++ {
		t.set(x0, y, st.Vertical, layer)
		t.set(x1, y, st.Vertical, layer)
	}
	t.set(x0, y0, st.TopLeft, layer)
	t.set(x1, y0, st.TopRight, layer)
	t.set(x0, y1, st.BottomLeft, layer)
	t.set(x1, y1, st.BottomRight, layer)
}

// write draws s at (x, y), cut with an ellipsis to at most width cells.
func (t *textRenderer) write(x, y int, s string, width int, layer canvas.Layer) {
	if width <= 0 || s == "" {
		return
	}
	s = t.plain(s)
	cut := canvas.Truncate(s, width, t.g.ASCII)
	if cut != s {
		t.truncated++
		t.log.Debug("text truncated", "text", s, "width", width)
	}
	t.grid.DrawText(x, y, cut, layer, x+width)
}

// plain maps the guillemets used for class annotations to ASCII when the
// ASCII set is selected. Both forms are one cell wide.
func (t *textRenderer) plain(s string) string {
	if !t.g.ASCII {
		return s
	}
	return strings.NewReplacer("«", "<", "»", ">").Replace(s)
}

func (t *textRenderer) frame(f layout.Frame) {
	x0, y0, x1, y1 := t.cells(f.Rect)
	t.border(x0, y0, x1, y1, t.g.Sharp, canvas.LayerFrame)

	title := f.Label
	if f.Kind != "cluster" {
		title = f.Kind
		if f.Label != "" {
			title += " [" + f.Label + "]"
		}
	}
	if title != "" {
		t.write(x0+2, y0, " "+title+" ", x1-x0-3, canvas.LayerText)
	}
	for _, d := range f.Dividers {
		y := t.cy(d.Y)
		for x := x0 + 1; x < x1; x++ {
			t.set(x, y, t.g.FrameDividerH, canvas.LayerFrame)
		}
		t.set(x0, y, t.g.Sharp.TeeLeft, canvas.LayerFrame)
		t.set(x1, y, t.g.Sharp.TeeRight, canvas.LayerFrame)
		if d.Label != "" {
			t.write(x0+2, y, "["+d.Label+"]", x1-x0-3, canvas.LayerText)
		}
	}
}

func (t *textRenderer) lifeline(l layout.Lifeline) {
	x := t.cx(l.X)
	for y := t.cy(l.Top); y <= t.cy(l.Bottom); y++ {
		t.set(x, y, t.g.Lifeline, canvas.LayerFrame)
	}
}

// lifelineTee joins a lifeline to the bottom border of its participant.
func (t *textRenderer) lifelineTee(l layout.Lifeline) {
	b, ok := t.res.Box(l.ID)
	if !ok {
		return
	}
	_, _, _, y1 := t.cells(b.Rect)
	t.set(t.cx(l.X), y1, t.g.LifelineTee, canvas.LayerBox)
}

func (t *textRenderer) activation(a geometry.Rect) {
	x0, y0, x1, y1 := t.cells(a)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			t.set(x, y, t.g.Activation, canvas.LayerMarker)
		}
	}
}

// walk expands a polyline into the ordered cells it passes through.
// Diagonal steps, which only scaled vector results can produce, are
// walked horizontally first.
func (t *textRenderer) walk(pts geometry.Polyline) []cell {
	var out []cell
	for i, p := range pts {
		c := cell{t.cx(p.X), t.cy(p.Y)}
		if i == 0 {
			out = append(out, c)
			continue
		}
		cur := out[len(out)-1]
		for cur != c {
			switch {
			case cur.x < c.x:
				cur.x++
			case cur.x > c.x:
				cur.x--
			case cur.y < c.y:
				cur.y++
			default:
				cur.y--
			}
			out = append(out, cur)
		}
	}
	return out
}

func armToward(a, b cell) canvas.Arms {
	switch {
	case b.x > a.x:
		return canvas.ArmEast
	case b.x < a.x:
		return canvas.ArmWest
	case b.y > a.y:
		return canvas.ArmSouth
	case b.y < a.y:
		return canvas.ArmNorth
	}
	return 0
}

func heading(a, b cell) geometry.Direction {
	switch armToward(a, b) {
	case canvas.ArmNorth:
		return geometry.North
	case canvas.ArmSouth:
		return geometry.South
	case canvas.ArmWest:
		return geometry.West
	}
	return geometry.East
}

func (t *textRenderer) path(p layout.Path) {
	cs := t.walk(p.Points)
	if len(cs) < 2 {
		return
	}
	ls := t.g.lineSet(p.Style)
	for i, c := range cs {
		var arms canvas.Arms
		if i > 0 {
			arms |= armToward(c, cs[i-1])
		}
		if i+1 < len(cs) {
			arms |= armToward(c, cs[i+1])
		}
		straight := arms == canvas.ArmsHorizontal || arms == canvas.ArmsVertical
		if p.Style == diagram.LineDashed && straight && i%2 == 1 && i+1 < len(cs) {
			continue
		}
		t.set(c.x, c.y, ls.segment(arms), canvas.LayerPath)
	}

	if p.End != layout.MarkerNone {
		n := len(cs)
		d := p.Points.FinalHeading()
		if d == geometry.None {
			d = heading(cs[n-2], cs[n-1])
		}
		t.marker(p.End, cs, n-1, -1, d, p.To)
	}
	if p.Start != layout.MarkerNone {
		d := p.Points.InitialHeading().Opposite()
		if d == geometry.None {
			d = heading(cs[1], cs[0])
		}
		t.marker(p.Start, cs, 0, 1, d, p.From)
	}
}

// marker draws m at the end cell cs[i], stepping one cell back along the
// path (by step) when that cell is on the border of the box it touches,
// so the glyph sits on the last cell outside the box.
func (t *textRenderer) marker(m layout.Marker, cs []cell, i, step int, d geometry.Direction, boxID string) {
	if b, ok := t.res.Box(boxID); ok {
		x0, y0, x1, y1 := t.cells(b.Rect)
		c := cs[i]
		if c.x >= x0 && c.x <= x1 && c.y >= y0 && c.y <= y1 && i+step >= 0 && i+step < len(cs) {
			i += step
		}
	}
	head, behind := t.g.marker(m, d)
	if head == 0 {
		return
	}
	t.set(cs[i].x, cs[i].y, head, canvas.LayerMarker)
	if j := i + step; behind != 0 && j >= 0 && j < len(cs) {
		t.set(cs[j].x, cs[j].y, behind, canvas.LayerMarker)
	}
}

func (t *textRenderer) labels(p layout.Path) {
	t.label(p.Label, p.LabelAt)
	t.label(p.FromLabel, p.FromLabelAt)
	t.label(p.ToLabel, p.ToLabelAt)
}

// label centres a text block on the anchor cell.
func (t *textRenderer) label(text string, at geometry.Point) {
	if text == "" {
		return
	}
	ls := splitLines(text)
	w := 0
	for _, l := range ls {
		w = max(w, canvas.StringWidth(l))
	}
	x := t.cx(at.X) - w/2
	y := t.cy(at.Y) - (len(ls)-1)/2
	for i, l := range ls {
		lw := canvas.StringWidth(l)
		t.write(x+(w-lw)/2, y+i, l, lw, canvas.LayerText)
	}
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br>", "\n")
	return strings.Split(s, "\n")
}

func (t *textRenderer) box(b layout.Box) {
	x0, y0, x1, y1 := t.cells(b.Rect)
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			t.set(x, y, ' ', canvas.LayerBox)
		}
	}
	st := t.g.boxStyle(b)
	t.border(x0, y0, x1, y1, st, canvas.LayerBox)

	switch b.Shape {
	case diagram.ShapeStateStart:
		t.set((x0+x1)/2, (y0+y1)/2, t.g.StateStart, canvas.LayerBox)
		return
	case diagram.ShapeStateEnd:
		t.set((x0+x1)/2, (y0+y1)/2, t.g.StateEnd, canvas.LayerBox)
		return
	}

	inner := x1 - x0 - 1
	if y1-y0 < 2 {
		// No inner row: the first line goes on the top border.
		if len(b.Lines) > 0 {
			w := min(canvas.StringWidth(t.plain(b.Lines[0])), inner)
			t.write(x0+1+(inner-w)/2, y0, b.Lines[0], inner, canvas.LayerBox)
		}
		return
	}
	if len(b.Sections) == 0 {
		rows := y1 - y0 - 1
		top := y0 + 1 + (rows-len(b.Lines))/2
		for i, l := range b.Lines {
			if i >= rows {
				break
			}
			t.centred(x0, inner, top+i, l)
		}
		return
	}

	for i, l := range b.Lines {
		if y0+1+i >= y1 {
			break
		}
		t.centred(x0, inner, y0+1+i, l)
	}
	for s, rows := range b.Sections {
		if s >= len(b.Dividers) {
			break
		}
		dy := t.cy(b.Rect.Y+b.Dividers[s]) - y0
		y := y0 + dy
		for x := x0 + 1; x < x1; x++ {
			t.set(x, y, st.Horizontal, canvas.LayerBox)
		}
		t.set(x0, y, st.TeeLeft, canvas.LayerBox)
		t.set(x1, y, st.TeeRight, canvas.LayerBox)
		for i, l := range rows {
			if y+1+i >= y1 {
				break
			}
			if b.Align == layout.AlignLeft {
				t.write(x0+2, y+1+i, l, inner-2, canvas.LayerBox)
			} else {
				t.centred(x0, inner, y+1+i, l)
			}
		}
	}
}

// centred writes one line centred in the inner columns of a box, keeping a
// blank column against each border when there is room.
func (t *textRenderer) centred(x0, inner, y int, s string) {
	room := inner
	if room > 2 {
		room -= 2
	}
	w := min(canvas.StringWidth(t.plain(s)), room)
	t.write(x0+1+(inner-w)/2, y, s, room, canvas.LayerBox)
}
