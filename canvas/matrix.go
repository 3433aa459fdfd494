package canvas

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Common errors
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// continuation marks the right half of a double-width character.
const continuation rune = 0

// Grid is a rune arena with a per-cell layer mask.
//
// A Grid belongs to a single render call and is not safe for concurrent use.
//
// Coordinate System:
//   - Origin (0,0) is top-left
//   - X increases rightward
//   - Y increases downward
//   - All coordinates are in character cells
type Grid struct {
	width  int
	height int
	cells  []rune
	layers []Layer
	// clusters keeps multi-rune graphemes whose first rune is in cells.
	clusters map[int]string
	merger   *CharacterMerger
}

// New allocates a width x height grid filled with spaces.
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	g := &Grid{
		width:    width,
		height:   height,
		cells:    make([]rune, width*height),
		layers:   make([]Layer, width*height),
		clusters: make(map[int]string),
		merger:   NewCharacterMerger(),
	}
	for i := range g.cells {
		g.cells[i] = ' '
	}
	return g, nil
}

// Size returns the width and height of the grid.
func (g *Grid) Size() (width, height int) {
	return g.width, g.height
}

// Merger exposes the glyph merger, for callers that need glyph arms.
func (g *Grid) Merger() *CharacterMerger {
	return g.merger
}

func (g *Grid) index(x, y int) (int, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, false
	}
	return y*g.width + x, true
}

// Get returns the glyph at (x, y), or a space outside the grid.
func (g *Grid) Get(x, y int) rune {
	i, ok := g.index(x, y)
	if !ok {
		return ' '
	}
	return g.cells[i]
}

// LayerAt returns the layer that last wrote (x, y).
func (g *Grid) LayerAt(x, y int) Layer {
	i, ok := g.index(x, y)
	if !ok {
		return LayerEmpty
	}
	return g.layers[i]
}

// Set writes r at (x, y) on the given layer. A lower layer never replaces a
// higher one. Within the path and frame layers glyphs are merged through
// the junction table; markers keep the first glyph written; other layers
// overwrite. It reports whether the cell changed hands or content.
func (g *Grid) Set(x, y int, r rune, layer Layer) (bool, error) {
	i, ok := g.index(x, y)
	if !ok {
		return false, ErrOutOfBounds
	}
	cur := g.layers[i]
	switch {
	case cur > layer:
		return false, nil
	case cur == layer && (layer == LayerPath || layer == LayerFrame):
		r = g.merger.Merge(g.cells[i], r)
	case cur == layer && layer == LayerMarker:
		return false, nil
	}
	g.release(i)
	g.cells[i] = r
	g.layers[i] = layer
	return true, nil
}

// release clears the other half of a wide character about to be overwritten.
func (g *Grid) release(i int) {
	delete(g.clusters, i)
	if g.cells[i] == continuation && i > 0 {
		g.cells[i-1] = ' '
		g.layers[i-1] = LayerEmpty
		delete(g.clusters, i-1)
		return
	}
	if (i+1)%g.width != 0 && i+1 < len(g.cells) && g.cells[i+1] == continuation {
		g.cells[i+1] = ' '
		g.layers[i+1] = LayerEmpty
	}
}

// DrawText writes s starting at (x, y) on the given layer, stopping before
// column limit (exclusive; pass -1 for the grid edge). Cells held by a
// higher layer are skipped but still advance the cursor. It returns the
// number of columns advanced.
func (g *Grid) DrawText(x, y int, s string, layer Layer, limit int) int {
	if limit < 0 || limit > g.width {
		limit = g.width
	}
	col := x
	for _, gr := range graphemes(s) {
		if col+gr.width > limit {
			break
		}
		first, _ := utf8.DecodeRuneInString(gr.text)
		if ok, _ := g.Set(col, y, first, layer); ok {
			i, _ := g.index(col, y)
			if len(gr.text) > utf8.RuneLen(first) {
				g.clusters[i] = gr.text
			}
			for k := 1; k < gr.width; k++ {
				if j, in := g.index(col+k, y); in && g.layers[j] <= layer {
					g.release(j)
					g.cells[j] = continuation
					g.layers[j] = layer
				}
			}
		}
		col += gr.width
	}
	return col - x
}

// Rows returns each row as a string, with wide-character continuations removed.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		b.Reset()
		for x := 0; x < g.width; x++ {
			i := y*g.width + x
			switch {
			case g.cells[i] == continuation:
			case g.clusters[i] != "":
				b.WriteString(g.clusters[i])
			default:
				b.WriteRune(g.cells[i])
			}
		}
		rows[y] = b.String()
	}
	return rows
}

// String returns the grid trimmed to its occupied bounding box.
func (g *Grid) String() string {
	return TrimText(strings.Join(g.Rows(), "\n"))
}
