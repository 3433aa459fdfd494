package core

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the semantic colors for vector output. Bg and Fg are
// required; every other role is derived from them when left empty.
// Colors are "#rgb", "#rrggbb" or a named color such as "navy".
type Theme struct {
	Bg      string
	Fg      string
	Line    string // edge strokes
	Accent  string // arrowheads and markers
	Muted   string // secondary text
	Surface string // node fill
	Border  string // node stroke
}

// Palette is a theme with every role resolved to a "#rrggbb" value.
type Palette struct {
	Bg          string
	Text        string
	TextSecond  string
	TextMuted   string
	TextFaint   string
	Line        string
	Arrow       string
	NodeFill    string
	NodeStroke  string
	GroupFill   string
	GroupHeader string
	InnerStroke string
	KeyBadge    string
}

// Percentages of Fg mixed into Bg for roles the theme leaves unset.
const (
	mixTextSecond  = 60
	mixTextMuted   = 40
	mixTextFaint   = 25
	mixLine        = 30
	mixArrow       = 50
	mixNodeFill    = 3
	mixNodeStroke  = 20
	mixGroupHeader = 5
	mixInnerStroke = 12
	mixKeyBadge    = 10
)

// DefaultTheme is a light zinc palette.
func DefaultTheme() Theme {
	return Theme{Bg: "#FFFFFF", Fg: "#27272A"}
}

// Themes are the built-in named palettes.
var Themes = map[string]Theme{
	"zinc-light":        DefaultTheme(),
	"zinc-dark":         {Bg: "#18181B", Fg: "#FAFAFA"},
	"tokyo-night":       {Bg: "#1a1b26", Fg: "#a9b1d6", Line: "#3d59a1", Accent: "#7aa2f7", Muted: "#565f89"},
	"tokyo-night-storm": {Bg: "#24283b", Fg: "#a9b1d6", Line: "#3d59a1", Accent: "#7aa2f7", Muted: "#565f89"},
	"tokyo-night-light": {Bg: "#d5d6db", Fg: "#343b58", Line: "#34548a", Accent: "#34548a", Muted: "#9699a3"},
	"catppuccin-mocha":  {Bg: "#1e1e2e", Fg: "#cdd6f4", Line: "#585b70", Accent: "#cba6f7", Muted: "#6c7086"},
	"catppuccin-latte":  {Bg: "#eff1f5", Fg: "#4c4f69", Line: "#9ca0b0", Accent: "#8839ef", Muted: "#9ca0b0"},
	"nord":              {Bg: "#2e3440", Fg: "#d8dee9", Line: "#4c566a", Accent: "#88c0d0", Muted: "#616e88"},
	"nord-light":        {Bg: "#eceff4", Fg: "#2e3440", Line: "#aab1c0", Accent: "#5e81ac", Muted: "#7b88a1"},
	"dracula":           {Bg: "#282a36", Fg: "#f8f8f2", Line: "#6272a4", Accent: "#bd93f9", Muted: "#6272a4"},
	"github-light":      {Bg: "#ffffff", Fg: "#1f2328", Line: "#d1d9e0", Accent: "#0969da", Muted: "#59636e"},
	"github-dark":       {Bg: "#0d1117", Fg: "#e6edf3", Line: "#3d444d", Accent: "#4493f8", Muted: "#9198a1"},
	"solarized-light":   {Bg: "#fdf6e3", Fg: "#657b83", Line: "#93a1a1", Accent: "#268bd2", Muted: "#93a1a1"},
	"solarized-dark":    {Bg: "#002b36", Fg: "#839496", Line: "#586e75", Accent: "#268bd2", Muted: "#586e75"},
	"one-dark":          {Bg: "#282c34", Fg: "#abb2bf", Line: "#4b5263", Accent: "#c678dd", Muted: "#5c6370"},
}

// ParseColor accepts hex notation or a color name known to tcell.
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return colorful.Color{}, fmt.Errorf("empty color")
	}
	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		return c, nil
	}
	tc := tcell.GetColor(strings.ToLower(s))
	if tc == tcell.ColorDefault {
		return colorful.Color{}, fmt.Errorf("unknown color name %q", s)
	}
	r, g, b := tc.RGB()
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
}

// Resolve parses every color and fills unset roles by mixing Fg into Bg.
func (t Theme) Resolve() (Palette, error) {
	if t.Bg == "" && t.Fg == "" {
		t = DefaultTheme()
	}
	bg, err := ParseColor(t.Bg)
	if err != nil {
		return Palette{}, fmt.Errorf("theme bg: %w", err)
	}
	fg, err := ParseColor(t.Fg)
	if err != nil {
		return Palette{}, fmt.Errorf("theme fg: %w", err)
	}
	mix := func(pct int) string {
		return bg.BlendRgb(fg, float64(pct)/100).Clamped().Hex()
	}
	role := func(name, explicit string, pct int) (string, error) {
		if explicit == "" {
			return mix(pct), nil
		}
		c, err := ParseColor(explicit)
		if err != nil {
			return "", fmt.Errorf("theme %s: %w", name, err)
		}
		return c.Hex(), nil
	}

	p := Palette{
		Bg:          bg.Hex(),
		Text:        fg.Hex(),
		TextFaint:   mix(mixTextFaint),
		GroupFill:   bg.Hex(),
		GroupHeader: mix(mixGroupHeader),
		InnerStroke: mix(mixInnerStroke),
		KeyBadge:    mix(mixKeyBadge),
	}
	for _, r := range []struct {
		name     string
		explicit string
		pct      int
		dst      *string
	}{
		{"muted", t.Muted, mixTextSecond, &p.TextSecond},
		{"muted", t.Muted, mixTextMuted, &p.TextMuted},
		{"line", t.Line, mixLine, &p.Line},
		{"accent", t.Accent, mixArrow, &p.Arrow},
		{"surface", t.Surface, mixNodeFill, &p.NodeFill},
		{"border", t.Border, mixNodeStroke, &p.NodeStroke},
	} {
		v, err := role(r.name, r.explicit, r.pct)
		if err != nil {
			return Palette{}, err
		}
		*r.dst = v
	}
	return p, nil
}
