// Package canvas provides the character grid the text renderer draws into.
//
// A Grid is a flat arena of cells indexed by row*width+col. Every cell also
// records the layer that wrote it, so later strokes can respect earlier ones:
// box borders are never overwritten by paths, and crossing paths are merged
// into junction glyphs instead of replacing each other.
package canvas

// Layer is the drawing priority of a cell. Higher layers win.
type Layer uint8

const (
	LayerEmpty Layer = iota
	LayerFrame
	LayerPath
	LayerMarker
	LayerText
	LayerBox
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerEmpty:
		return "empty"
	case LayerFrame:
		return "frame"
	case LayerPath:
		return "path"
	case LayerMarker:
		return "marker"
	case LayerText:
		return "text"
	case LayerBox:
		return "box"
	default:
		return "layer?"
	}
}
