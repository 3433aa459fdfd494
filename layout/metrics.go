package layout

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"mermaidrender/canvas"
	"mermaidrender/core"
)

// TextStyle describes how a run of text is set.
type TextStyle struct {
	Size   float64 // font size in pixels
	Weight int     // CSS weight, 400 regular
	Mono   bool
}

// Text styles used by the vector layouts.
var (
	NodeText   = TextStyle{Size: 13, Weight: 500}
	EdgeText   = TextStyle{Size: 11, Weight: 400}
	GroupText  = TextStyle{Size: 12, Weight: 600}
	MemberText = TextStyle{Size: 11, Weight: 400, Mono: true}
)

// Metrics measures text in layout units.
type Metrics interface {
	// TextWidth returns the advance width of a single line.
	TextWidth(s string, st TextStyle) float64
	// LineHeight returns the vertical space taken by one line.
	LineHeight(st TextStyle) float64
	// Units returns the spacing constants that go with this unit system.
	Units() Units
}

// Units holds the spacing constants of one unit system.
type Units struct {
	// Grid asks strategies to keep coordinates on whole cells.
	Grid bool

	Margin              float64
	PadX, PadY          float64 // text inset inside a box
	MinWidth, MinHeight float64
	NodeGapX, NodeGapY  float64 // between neighbours in a rank, per axis
	RankGapX, RankGapY  float64 // between ranks, per axis
	ClusterPadX         float64
	ClusterPadY         float64
	ClusterHeader       float64 // extra band above a cluster for its label
	ClusterLabelPad     float64 // frame width beyond its label's width
	VirtualSize         float64 // footprint of a dummy node along the order axis
	LoopSize            float64 // reach of a self-loop beyond its box
	LabelPadX           float64
	LabelPadY           float64
	ShapeSizing         bool // apply diamond/circle/state sizing rules

	CellWidth, CellHeight float64
}

// lines splits a label into display lines.
func lines(label string) []string {
	if label == "" {
		return nil
	}
	label = strings.ReplaceAll(label, "<br>", "\n")
	label = strings.ReplaceAll(label, "<br/>", "\n")
	return strings.Split(label, "\n")
}

// blockSize returns the widest line and the total height of a text block.
func blockSize(m Metrics, ls []string, st TextStyle) (w, h float64) {
	for _, l := range ls {
		if lw := m.TextWidth(l, st); lw > w {
			w = lw
		}
	}
	return w, float64(len(ls)) * m.LineHeight(st)
}

// CellMetrics measures in terminal cells: one unit per column and per row.
type CellMetrics struct{}

// TextWidth returns the display width in cells.
func (CellMetrics) TextWidth(s string, _ TextStyle) float64 {
	return float64(canvas.StringWidth(s))
}

// LineHeight is always one row.
func (CellMetrics) LineHeight(TextStyle) float64 { return 1 }

// Units returns the grid spacing: boxes are text+4 wide and lines+2 tall.
// Cluster labels sit on the frame's top border, so there is no header band.
func (CellMetrics) Units() Units {
	return Units{
		Grid:            true,
		Margin:          1,
		PadX:            2,
		PadY:            1,
		MinWidth:        4,
		MinHeight:       3,
		NodeGapX:        4,
		NodeGapY:        2,
		RankGapX:        6,
		RankGapY:        4,
		ClusterPadX:     2,
		ClusterPadY:     2,
		ClusterHeader:   0,
		ClusterLabelPad: 6, // "┌─ " and " ─┐" around the title
		VirtualSize:     1,
		LoopSize:        2,
		LabelPadX:       1,
		LabelPadY:       0,
		CellWidth:       1,
		CellHeight:      1,
	}
}

var (
	regularFont = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(goregular.TTF) })
	monoFont    = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gomono.TTF) })
)

type faceKey struct {
	size float64
	mono bool
}

// FontMetrics measures with the Go fonts, in pixels. Faces are cached per
// size; the cache is guarded so one value may be shared between goroutines.
type FontMetrics struct {
	opts core.Options

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFontMetrics parses the embedded fonts and returns metrics for vector
// layouts using the spacing in opts.
func NewFontMetrics(opts core.Options) (*FontMetrics, error) {
	if _, err := regularFont(); err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	if _, err := monoFont(); err != nil {
		return nil, fmt.Errorf("parse mono font: %w", err)
	}
	return &FontMetrics{opts: opts, faces: make(map[faceKey]font.Face)}, nil
}

func (m *FontMetrics) face(st TextStyle) (font.Face, error) {
	key := faceKey{st.Size, st.Mono}
	if f, ok := m.faces[key]; ok {
		return f, nil
	}
	src := regularFont
	if st.Mono {
		src = monoFont
	}
	fnt, err := src()
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{Size: st.Size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	m.faces[key] = f
	return f, nil
}

// TextWidth measures s and widens it for heavier weights, since the
// embedded face is regular only.
func (m *FontMetrics) TextWidth(s string, st TextStyle) float64 {
	if s == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, err := m.face(st)
	if err != nil {
		// Fall back to the average-advance estimate.
		return float64(canvas.StringWidth(s)) * st.Size * 0.55
	}
	w := float64(font.MeasureString(f, s)) / 64
	switch {
	case st.Mono:
	case st.Weight >= 600:
		w *= 0.58 / 0.52
	case st.Weight >= 500:
		w *= 0.55 / 0.52
	}
	return w
}

// LineHeight is the font size.
func (m *FontMetrics) LineHeight(st TextStyle) float64 { return st.Size }

// Units returns pixel spacing taken from the options.
func (m *FontMetrics) Units() Units {
	return Units{
		Margin:          m.opts.Padding,
		PadX:            16,
		PadY:            10,
		MinWidth:        60,
		MinHeight:       36,
		NodeGapX:        m.opts.NodeSpacing,
		NodeGapY:        m.opts.NodeSpacing,
		RankGapX:        m.opts.LayerSpacing,
		RankGapY:        m.opts.LayerSpacing,
		ClusterPadX:     16,
		ClusterPadY:     16,
		ClusterHeader:   28,
		ClusterLabelPad: 24,
		VirtualSize:     8,
		LoopSize:        20,
		LabelPadX:       6,
		LabelPadY:       3,
		ShapeSizing:     true,
		CellWidth:       8,
		CellHeight:      16,
	}
}

// Close releases the cached faces.
func (m *FontMetrics) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, f := range m.faces {
		f.Close()
		delete(m.faces, k)
	}
	return nil
}
