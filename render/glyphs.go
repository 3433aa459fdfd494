package render

import (
	"github.com/gdamore/tcell/v2"

	"mermaidrender/canvas"
	"mermaidrender/diagram"
	"mermaidrender/geometry"
	"mermaidrender/layout"
)

// BoxStyle defines the characters used to draw a box border.
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
	TeeLeft     rune // divider meeting the left border
	TeeRight    rune // divider meeting the right border
}

// LineSet is one family of path glyphs.
type LineSet struct {
	Horizontal  rune
	Vertical    rune
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
}

// ArrowSet holds one glyph per heading.
type ArrowSet struct {
	Right rune
	Left  rune
	Up    rune
	Down  rune
}

func (a ArrowSet) toward(d geometry.Direction) rune {
	switch d {
	case geometry.North:
		return a.Up
	case geometry.South:
		return a.Down
	case geometry.West:
		return a.Left
	}
	return a.Right
}

// Glyphs is the complete character set of the grid renderer.
type Glyphs struct {
	ASCII bool

	Sharp   BoxStyle
	Rounded BoxStyle
	Double  BoxStyle
	Slanted BoxStyle // diamonds and hexagons

	Solid  LineSet
	Dashed LineSet
	Thick  LineSet

	Arrow     ArrowSet
	OpenArrow ArrowSet
	Triangle  ArrowSet
	Crow      ArrowSet // crow's foot, prongs toward the heading

	Circle, Cross            rune
	Diamond, FilledDiamond   rune
	One, ZeroOne, Zero       rune
	OneVertical, ZeroOneVert rune
	StateStart, StateEnd     rune
	Lifeline, Activation     rune
	LifelineTee              rune
	FrameDividerH            rune
}

// UnicodeGlyphs uses box-drawing characters.
var UnicodeGlyphs = Glyphs{
	Sharp: BoxStyle{
		TopLeft: tcell.RuneULCorner, TopRight: tcell.RuneURCorner,
		BottomLeft: tcell.RuneLLCorner, BottomRight: tcell.RuneLRCorner,
		Horizontal: tcell.RuneHLine, Vertical: tcell.RuneVLine,
		TeeLeft: tcell.RuneLTee, TeeRight: tcell.RuneRTee,
	},
	Rounded: BoxStyle{
		TopLeft: '╭', TopRight: '╮', BottomLeft: '╰', BottomRight: '╯',
		Horizontal: tcell.RuneHLine, Vertical: tcell.RuneVLine,
		TeeLeft: tcell.RuneLTee, TeeRight: tcell.RuneRTee,
	},
	Double: BoxStyle{
		TopLeft: '╔', TopRight: '╗', BottomLeft: '╚', BottomRight: '╝',
		Horizontal: '═', Vertical: '║', TeeLeft: '╟', TeeRight: '╢',
	},
	Slanted: BoxStyle{
		TopLeft: '/', TopRight: '\\', BottomLeft: '\\', BottomRight: '/',
		Horizontal: tcell.RuneHLine, Vertical: tcell.RuneVLine,
		TeeLeft: tcell.RuneLTee, TeeRight: tcell.RuneRTee,
	},

	Solid:  LineSet{tcell.RuneHLine, tcell.RuneVLine, '╭', '╮', '╰', '╯'},
	Dashed: LineSet{'╌', '╎', '╭', '╮', '╰', '╯'},
	Thick:  LineSet{'━', '┃', '┏', '┓', '┗', '┛'},

	Arrow:     ArrowSet{'▶', '◀', '▲', '▼'},
	OpenArrow: ArrowSet{'▷', '◁', '△', '▽'},
	Triangle:  ArrowSet{'▷', '◁', '△', '▽'},
	Crow:      ArrowSet{'<', '>', 'v', '^'},

	Circle: 'o', Cross: 'x',
	Diamond: '◇', FilledDiamond: '◆',
	One: '╫', ZeroOne: tcell.RunePlus, Zero: 'o',
	OneVertical: '╪', ZeroOneVert: tcell.RunePlus,
	StateStart: '●', StateEnd: '◎',
	Lifeline: '┆', Activation: '┃', LifelineTee: tcell.RuneTTee,
	FrameDividerH: '┄',
}

// ASCIIGlyphs uses only + - | and printable ASCII.
var ASCIIGlyphs = Glyphs{
	ASCII: true,
	Sharp: BoxStyle{
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		Horizontal: '-', Vertical: '|', TeeLeft: '+', TeeRight: '+',
	},
	Rounded: BoxStyle{
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		Horizontal: '-', Vertical: '|', TeeLeft: '+', TeeRight: '+',
	},
	Double: BoxStyle{
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		Horizontal: '=', Vertical: '|', TeeLeft: '+', TeeRight: '+',
	},
	Slanted: BoxStyle{
		TopLeft: '/', TopRight: '\\', BottomLeft: '\\', BottomRight: '/',
		Horizontal: '-', Vertical: '|', TeeLeft: '+', TeeRight: '+',
	},

	Solid:  LineSet{'-', '|', '+', '+', '+', '+'},
	Dashed: LineSet{'-', ':', '+', '+', '+', '+'},
	Thick:  LineSet{'=', '|', '+', '+', '+', '+'},

	Arrow:     ArrowSet{'>', '<', '^', 'v'},
	OpenArrow: ArrowSet{'>', '<', '^', 'v'},
	Triangle:  ArrowSet{'>', '<', '^', 'v'},
	Crow:      ArrowSet{'<', '>', 'v', '^'},

	Circle: 'o', Cross: 'x',
	Diamond: 'o', FilledDiamond: '*',
	One: '#', ZeroOne: '+', Zero: 'o',
	OneVertical: '#', ZeroOneVert: '+',
	StateStart: '*', StateEnd: '@',
	Lifeline: ':', Activation: '#', LifelineTee: '+',
	FrameDividerH: '-',
}

// GlyphsFor selects the glyph set.
func GlyphsFor(ascii bool) Glyphs {
	if ascii {
		return ASCIIGlyphs
	}
	return UnicodeGlyphs
}

// boxStyle picks the border for a box from its role and shape.
func (g Glyphs) boxStyle(b layout.Box) BoxStyle {
	switch b.Role {
	case layout.RoleActor:
		return g.Rounded
	case layout.RoleNode:
	default:
		return g.Sharp
	}
	switch b.Shape {
	case diagram.ShapeRounded, diagram.ShapeStadium, diagram.ShapeCircle,
		diagram.ShapeStateStart, diagram.ShapeStateEnd:
		return g.Rounded
	case diagram.ShapeSubroutine, diagram.ShapeDoubleCircle:
		return g.Double
	case diagram.ShapeDiamond, diagram.ShapeHexagon:
		return g.Slanted
	}
	return g.Sharp
}

func (g Glyphs) lineSet(s diagram.LineStyle) LineSet {
	switch s {
	case diagram.LineDashed:
		return g.Dashed
	case diagram.LineThick:
		return g.Thick
	}
	return g.Solid
}

// segment returns the glyph for a cell whose line reaches out along arms.
// A lone arm is drawn as the full straight run on its axis.
func (ls LineSet) segment(arms canvas.Arms) rune {
	switch arms {
	case canvas.ArmEast | canvas.ArmSouth:
		return ls.TopLeft
	case canvas.ArmWest | canvas.ArmSouth:
		return ls.TopRight
	case canvas.ArmNorth | canvas.ArmEast:
		return ls.BottomLeft
	case canvas.ArmNorth | canvas.ArmWest:
		return ls.BottomRight
	}
	if arms&canvas.ArmsVertical != 0 && arms&canvas.ArmsHorizontal == 0 {
		return ls.Vertical
	}
	return ls.Horizontal
}

// marker returns the glyph drawn for m on a path arriving with heading d,
// plus the glyph of the cell behind it for the two-cell crow's feet.
func (g Glyphs) marker(m layout.Marker, d geometry.Direction) (rune, rune) {
	switch m {
	case layout.MarkerArrow:
		return g.Arrow.toward(d), 0
	case layout.MarkerOpenArrow:
		return g.OpenArrow.toward(d), 0
	case layout.MarkerTriangle:
		return g.Triangle.toward(d), 0
	case layout.MarkerCircle:
		return g.Circle, 0
	case layout.MarkerCross:
		return g.Cross, 0
	case layout.MarkerDiamond:
		return g.Diamond, 0
	case layout.MarkerFilledDiamond:
		return g.FilledDiamond, 0
	case layout.MarkerOne:
		if d.Vertical() {
			return g.OneVertical, 0
		}
		return g.One, 0
	case layout.MarkerZeroOne:
		if d.Vertical() {
			return g.ZeroOneVert, g.Zero
		}
		return g.ZeroOne, g.Zero
	case layout.MarkerMany:
		return g.Crow.toward(d), 0
	case layout.MarkerZeroMany:
		return g.Crow.toward(d), g.Zero
	}
	return 0, 0
}
