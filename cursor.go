package mterm

// CursorStyle selects how the renderer should paint the cursor glyph.
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Attrs is the current SGR attribute triple applied to newly written cells.
type Attrs struct {
	Fg    Color
	Bg    Color
	Ul    Color
	UlOn  bool
}

// defaultAttrs returns the reset state for SGR 0.
func defaultAttrs() Attrs {
	return Attrs{Fg: DefaultForeground, Bg: DefaultBackground, Ul: NoColor, UlOn: false}
}

// resolvedUl returns the underline color to store on a fragment: NoColor
// unless underline is currently on.
func (a Attrs) resolvedUl() Color {
	if !a.UlOn {
		return NoColor
	}
	return a.Ul
}

// savedCursor is the per-screen DEC-style save/restore slot.
type savedCursor struct {
	x, y  int
	attrs Attrs
	set   bool // false until SaveCursor has run on this screen
}
