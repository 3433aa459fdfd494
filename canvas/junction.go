package canvas

import "github.com/gdamore/tcell/v2"

// Arms is the set of directions a line glyph reaches out to.
type Arms uint8

const (
	ArmNorth Arms = 1 << iota
	ArmEast
	ArmSouth
	ArmWest

	ArmsHorizontal = ArmEast | ArmWest
	ArmsVertical   = ArmNorth | ArmSouth
)

type family uint8

const (
	familyLight family = iota
	familyHeavy
	familyDouble
	familyASCII
)

type lineGlyph struct {
	arms Arms
	fam  family
}

// CharacterMerger combines two glyphs written to the same cell.
// Line glyphs are decomposed into arms, united, and mapped back to a glyph,
// so a horizontal run crossing a vertical one becomes a cross, a corner
// meeting a straight run becomes a tee, and so on.
type CharacterMerger struct {
	decompose map[rune]lineGlyph
	compose   map[family]map[Arms]rune
}

// NewCharacterMerger creates a merger knowing the light, heavy, double and ASCII line sets.
func NewCharacterMerger() *CharacterMerger {
	m := &CharacterMerger{
		decompose: make(map[rune]lineGlyph),
		compose:   make(map[family]map[Arms]rune),
	}
	m.initializeMergeRules()
	return m
}

func (m *CharacterMerger) add(f family, a Arms, r rune, canonical bool) {
	m.decompose[r] = lineGlyph{a, f}
	if !canonical {
		return
	}
	if m.compose[f] == nil {
		m.compose[f] = make(map[Arms]rune)
	}
	m.compose[f][a] = r
}

func (m *CharacterMerger) initializeMergeRules() {
	type entry struct {
		a Arms
		r rune
	}
	families := map[family][]entry{
		familyLight: {
			{ArmsHorizontal, tcell.RuneHLine},
			{ArmsVertical, tcell.RuneVLine},
			{ArmEast | ArmSouth, tcell.RuneULCorner},
			{ArmWest | ArmSouth, tcell.RuneURCorner},
			{ArmNorth | ArmEast, tcell.RuneLLCorner},
			{ArmNorth | ArmWest, tcell.RuneLRCorner},
			{ArmsVertical | ArmEast, tcell.RuneLTee},
			{ArmsVertical | ArmWest, tcell.RuneRTee},
			{ArmsHorizontal | ArmSouth, tcell.RuneTTee},
			{ArmsHorizontal | ArmNorth, tcell.RuneBTee},
			{ArmsHorizontal | ArmsVertical, tcell.RunePlus},
		},
		familyHeavy: {
			{ArmsHorizontal, '━'}, {ArmsVertical, '┃'},
			{ArmEast | ArmSouth, '┏'}, {ArmWest | ArmSouth, '┓'},
			{ArmNorth | ArmEast, '┗'}, {ArmNorth | ArmWest, '┛'},
			{ArmsVertical | ArmEast, '┣'}, {ArmsVertical | ArmWest, '┫'},
			{ArmsHorizontal | ArmSouth, '┳'}, {ArmsHorizontal | ArmNorth, '┻'},
			{ArmsHorizontal | ArmsVertical, '╋'},
		},
		familyDouble: {
			{ArmsHorizontal, '═'}, {ArmsVertical, '║'},
			{ArmEast | ArmSouth, '╔'}, {ArmWest | ArmSouth, '╗'},
			{ArmNorth | ArmEast, '╚'}, {ArmNorth | ArmWest, '╝'},
			{ArmsVertical | ArmEast, '╠'}, {ArmsVertical | ArmWest, '╣'},
			{ArmsHorizontal | ArmSouth, '╦'}, {ArmsHorizontal | ArmNorth, '╩'},
			{ArmsHorizontal | ArmsVertical, '╬'},
		},
	}
	for f, entries := range families {
		for _, e := range entries {
			m.add(f, e.a, e.r, true)
		}
	}

	// Rounded corners and dashed runs decompose into light arms but are
	// never produced by a merge.
	m.add(familyLight, ArmEast|ArmSouth, '╭', false)
	m.add(familyLight, ArmWest|ArmSouth, '╮', false)
	m.add(familyLight, ArmNorth|ArmEast, '╰', false)
	m.add(familyLight, ArmNorth|ArmWest, '╯', false)
	m.add(familyLight, ArmsHorizontal, '╌', false)
	m.add(familyLight, ArmsVertical, '╎', false)
	m.add(familyLight, ArmsHorizontal, '┄', false)
	m.add(familyLight, ArmsVertical, '┆', false)

	m.add(familyASCII, ArmsHorizontal, '-', true)
	m.add(familyASCII, ArmsVertical, '|', true)
	m.add(familyASCII, ArmsHorizontal|ArmsVertical, '+', true)
	m.add(familyASCII, ArmsHorizontal, '=', false)
	m.add(familyASCII, ArmsVertical, ':', false)
}

// ArmsOf returns the arms of a line glyph, or 0 for anything else.
func (m *CharacterMerger) ArmsOf(r rune) Arms {
	return m.decompose[r].arms
}

// Merge combines the glyph already in a cell with a new one.
func (m *CharacterMerger) Merge(existing, new rune) rune {
	if existing == ' ' || existing == 0 {
		return new
	}
	if existing == new {
		return existing
	}

	// Arrowheads are never overwritten, and win over plain lines.
	if IsArrow(existing) {
		return existing
	}
	if IsArrow(new) {
		return new
	}

	a, okA := m.decompose[existing]
	b, okB := m.decompose[new]
	if !okA || !okB {
		// Text or an unknown glyph: keep what is there.
		return existing
	}
	union := a.arms | b.arms
	if union == a.arms {
		return existing
	}

	fam := a.fam
	switch {
	case a.fam == familyASCII || b.fam == familyASCII:
		fam = familyASCII
	case a.fam != b.fam:
		fam = familyLight
	}
	if fam == familyASCII {
		switch {
		case union&ArmsVertical == 0:
			return '-'
		case union&ArmsHorizontal == 0:
			return '|'
		default:
			return '+'
		}
	}
	if r, ok := m.compose[fam][union]; ok {
		return r
	}
	// A lone stub merged with its opposite, e.g. east + west, is covered
	// above; anything else widens to the full straight run.
	if union&ArmsVertical == 0 {
		return m.compose[fam][ArmsHorizontal]
	}
	if union&ArmsHorizontal == 0 {
		return m.compose[fam][ArmsVertical]
	}
	return m.compose[fam][ArmsHorizontal|ArmsVertical]
}

// IsArrow reports whether r is an arrowhead glyph.
func IsArrow(r rune) bool {
	switch r {
	case '▶', '◀', '▲', '▼', '>', '<', '^', 'v',
		tcell.RuneRArrow, tcell.RuneLArrow, tcell.RuneUArrow, tcell.RuneDArrow:
		return true
	}
	return false
}
