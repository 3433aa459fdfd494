package canvas

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// cellWidth is pinned to narrow East Asian ambiguous widths so output does
// not depend on the caller's locale.
var cellWidth = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// StringWidth returns the display width of s in terminal cells.
func StringWidth(s string) int {
	return cellWidth.StringWidth(s)
}

// Ellipsis returns the truncation marker for the glyph set.
func Ellipsis(ascii bool) string {
	if ascii {
		return "..."
	}
	return "…"
}

// Truncate shortens s to at most width cells, ending it with the ellipsis
// when anything was cut. Strings that already fit are returned unchanged.
func Truncate(s string, width int, ascii bool) string {
	if width <= 0 {
		return ""
	}
	if StringWidth(s) <= width {
		return s
	}
	tail := Ellipsis(ascii)
	if StringWidth(tail) > width {
		tail = strings.Repeat(".", width)
		if !ascii {
			tail = strings.Repeat("…", width)
		}
		return tail
	}
	return cellWidth.Truncate(s, width, tail)
}

// grapheme is one user-perceived character and its width in cells.
type grapheme struct {
	text  string
	width int
}

// graphemes splits s into clusters so combining marks stay with their base.
func graphemes(s string) []grapheme {
	var out []grapheme
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		w := cellWidth.StringWidth(cluster)
		if w == 0 {
			// Control or zero-width cluster on its own; nothing to place.
			continue
		}
		out = append(out, grapheme{text: cluster, width: w})
	}
	return out
}
