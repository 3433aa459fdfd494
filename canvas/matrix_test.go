package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidSize(t *testing.T) {
	_, err := New(0, 3)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(3, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestSetLayerPriority(t *testing.T) {
	g, err := New(5, 3)
	require.NoError(t, err)

	ok, err := g.Set(1, 1, '│', LayerBox)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Set(1, 1, '─', LayerPath)
	require.NoError(t, err)
	assert.False(t, ok, "paths must not overwrite box borders")
	assert.Equal(t, '│', g.Get(1, 1))

	_, _ = g.Set(2, 1, '─', LayerPath)
	_, _ = g.Set(2, 1, '│', LayerPath)
	assert.Equal(t, '┼', g.Get(2, 1), "crossing paths merge")

	_, _ = g.Set(3, 1, '─', LayerPath)
	_, _ = g.Set(3, 1, 'Y', LayerText)
	assert.Equal(t, 'Y', g.Get(3, 1), "text covers paths")
	assert.Equal(t, LayerText, g.LayerAt(3, 1))

	_, _ = g.Set(0, 0, '▶', LayerMarker)
	_, _ = g.Set(0, 0, '◀', LayerMarker)
	assert.Equal(t, '▶', g.Get(0, 0), "first marker wins")

	_, err = g.Set(9, 9, 'x', LayerText)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, ' ', g.Get(-1, 0))
}

func TestDrawTextWideAndCombining(t *testing.T) {
	g, err := New(10, 1)
	require.NoError(t, err)

	n := g.DrawText(0, 0, "日本", LayerText, -1)
	assert.Equal(t, 4, n)
	n = g.DrawText(4, 0, "éx", LayerText, -1)
	assert.Equal(t, 2, n)
	assert.Equal(t, "日本éx", g.String())

	// Overwriting half of a wide character clears the other half.
	_, _ = g.Set(1, 0, '-', LayerBox)
	assert.Equal(t, " -本éx", g.Rows()[0][:len(" -本éx")])
}

func TestDrawTextRespectsLimitAndBoxes(t *testing.T) {
	g, err := New(8, 1)
	require.NoError(t, err)
	_, _ = g.Set(2, 0, '|', LayerBox)

	n := g.DrawText(0, 0, "abcdef", LayerText, 5)
	assert.Equal(t, 5, n)
	assert.Equal(t, "ab|de", g.String())
}

func TestTrimText(t *testing.T) {
	in := strings.Join([]string{
		"          ",
		"   ┌──┐   ",
		"   │A │  ",
		"   └──┘",
		"",
		"     ",
	}, "\n")
	want := "┌──┐\n│A │\n└──┘"
	assert.Equal(t, want, TrimText(in))
	assert.Equal(t, want, TrimText(TrimText(in)), "trimming is idempotent")
	assert.Equal(t, "", TrimText("   \n  \n"))
	assert.Equal(t, "a\n\n b", TrimText("  a  \n\n   b"))
}

func TestGridStringTrims(t *testing.T) {
	g, err := New(6, 4)
	require.NoError(t, err)
	_, _ = g.Set(2, 1, '+', LayerBox)
	_, _ = g.Set(3, 2, '+', LayerBox)
	assert.Equal(t, "+\n +", g.String())
}
