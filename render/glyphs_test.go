package render

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"mermaidrender/canvas"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
	"mermaidrender/layout"
)

// runes collects every rune field of v, recursing into structs.
func runes(v reflect.Value) []rune {
	var out []rune
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			out = append(out, runes(v.Field(i))...)
		}
	case reflect.Int32:
		out = append(out, rune(v.Int()))
	}
	return out
}

func TestASCIIGlyphSet(t *testing.T) {
	for _, r := range runes(reflect.ValueOf(ASCIIGlyphs)) {
		assert.True(t, r > 0 && r < 128, "glyph %q is not ASCII", r)
	}
	for _, r := range runes(reflect.ValueOf(UnicodeGlyphs)) {
		assert.NotZero(t, r)
	}
	assert.True(t, GlyphsFor(true).ASCII)
	assert.False(t, GlyphsFor(false).ASCII)
}

func TestLineSetSegment(t *testing.T) {
	ls := UnicodeGlyphs.Solid
	tests := []struct {
		arms canvas.Arms
		want rune
	}{
		{canvas.ArmsHorizontal, '─'},
		{canvas.ArmsVertical, '│'},
		{canvas.ArmEast, '─'},
		{canvas.ArmNorth, '│'},
		{canvas.ArmEast | canvas.ArmSouth, '╭'},
		{canvas.ArmWest | canvas.ArmSouth, '╮'},
		{canvas.ArmNorth | canvas.ArmEast, '╰'},
		{canvas.ArmNorth | canvas.ArmWest, '╯'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(ls.segment(tt.arms)), "arms %v", tt.arms)
	}
	assert.Equal(t, '━', UnicodeGlyphs.lineSet(diagram.LineThick).Horizontal)
	assert.Equal(t, ':', ASCIIGlyphs.lineSet(diagram.LineDashed).Vertical)
}

func TestMarkerGlyphs(t *testing.T) {
	g := UnicodeGlyphs
	tests := []struct {
		m      layout.Marker
		d      geometry.Direction
		head   rune
		behind rune
	}{
		{layout.MarkerArrow, geometry.East, '▶', 0},
		{layout.MarkerArrow, geometry.North, '▲', 0},
		{layout.MarkerTriangle, geometry.South, '▽', 0},
		{layout.MarkerFilledDiamond, geometry.West, '◆', 0},
		{layout.MarkerOne, geometry.East, '╫', 0},
		{layout.MarkerOne, geometry.South, '╪', 0},
		{layout.MarkerZeroOne, geometry.East, '┼', 'o'},
		{layout.MarkerMany, geometry.West, '>', 0},
		{layout.MarkerZeroMany, geometry.South, '^', 'o'},
		{layout.MarkerMany, geometry.North, 'v', 0},
		{layout.MarkerNone, geometry.East, 0, 0},
	}
	for _, tt := range tests {
		head, behind := g.marker(tt.m, tt.d)
		assert.Equal(t, tt.head, head, "marker %d heading %v", tt.m, tt.d)
		assert.Equal(t, tt.behind, behind, "marker %d heading %v", tt.m, tt.d)
	}
}

func TestBoxStyle(t *testing.T) {
	g := UnicodeGlyphs
	assert.Equal(t, g.Rounded, g.boxStyle(layout.Box{Shape: diagram.ShapeStadium}))
	assert.Equal(t, g.Double, g.boxStyle(layout.Box{Shape: diagram.ShapeSubroutine}))
	assert.Equal(t, g.Slanted, g.boxStyle(layout.Box{Shape: diagram.ShapeDiamond}))
	assert.Equal(t, g.Sharp, g.boxStyle(layout.Box{Shape: diagram.ShapeCylinder}))
	assert.Equal(t, g.Rounded, g.boxStyle(layout.Box{Role: layout.RoleActor}))
	assert.Equal(t, g.Sharp, g.boxStyle(layout.Box{Role: layout.RoleClass, Shape: diagram.ShapeRounded}))
}
