package mterm

import "testing"

func TestProjectBottomShowsLatestLines(t *testing.T) {
	term := NewTerminal(3, 10, DefaultScrollbackCap)
	term.PutCodepoints([]rune("L0"))
	term.CarriageReturn()
	term.LineFeed()
	term.PutCodepoints([]rune("L1"))
	term.CarriageReturn()
	term.LineFeed()
	term.PutCodepoints([]rune("L2"))

	v := Project(term, 0, 3, 10)
	if len(v.Lines) != 3 {
		t.Fatalf("want 3 lines, got %d", len(v.Lines))
	}
	if string(v.Lines[0].Text) != "L0" || string(v.Lines[1].Text) != "L1" || string(v.Lines[2].Text) != "L2" {
		t.Fatalf("unexpected lines: %+v", v.Lines)
	}
	if !v.CursorVisible || v.CursorY != 2 || v.CursorX != 2 {
		t.Fatalf("cursor = visible=%v (%d,%d), want visible (2,2)", v.CursorVisible, v.CursorY, v.CursorX)
	}
}

func TestProjectScrollOffsetRevealsScrollback(t *testing.T) {
	term := NewTerminal(2, 10, DefaultScrollbackCap)
	for i := 0; i < 5; i++ {
		term.PutCodepoints([]rune{rune('A' + i)})
		term.CarriageReturn()
		term.LineFeed()
	}
	// 5 line feeds on a 2-row screen: 1 fill feed, 4 eviction feeds -> scrollback
	// holds A,B,C,D in order and the primary grid holds [E, blank-cursor-line].
	if term.Scrollback().Len() != 4 {
		t.Fatalf("scrollback len = %d, want 4", term.Scrollback().Len())
	}

	atBottom := Project(term, 0, 2, 10)
	if string(atBottom.Lines[0].Text) != "E" || len(atBottom.Lines[1].Text) != 0 {
		t.Fatalf("bottom view = %+v", atBottom.Lines)
	}
	if !atBottom.CursorVisible || atBottom.CursorY != 1 {
		t.Fatalf("cursor = visible=%v y=%d, want visible at row 1", atBottom.CursorVisible, atBottom.CursorY)
	}

	scrolledUp := Project(term, 2, 2, 10)
	if string(scrolledUp.Lines[0].Text) != "C" || string(scrolledUp.Lines[1].Text) != "D" {
		t.Fatalf("scrolled view = %+v", scrolledUp.Lines)
	}
	if scrolledUp.CursorVisible {
		t.Fatalf("cursor should not be visible when scrolled away from bottom")
	}
}

func TestProjectClampsScrollOffsetPastTop(t *testing.T) {
	term := NewTerminal(2, 10, DefaultScrollbackCap)
	term.PutCodepoints([]rune("A"))

	v := Project(term, 1_000_000, 2, 10)
	if string(v.Lines[0].Text) != "A" {
		t.Fatalf("clamped view = %+v", v.Lines)
	}
}

func TestProjectAlternateScreenForcesOffsetZero(t *testing.T) {
	term := NewTerminal(3, 10, DefaultScrollbackCap)
	term.PutCodepoints([]rune("primary"))
	term.SwitchToAlternate()
	term.PutCodepoints([]rune("alt"))

	v := Project(term, 50, 3, 10)
	if string(v.Lines[0].Text) != "alt" {
		t.Fatalf("alternate view = %+v, want alternate grid only", v.Lines)
	}
	if !v.CursorVisible || v.CursorY != 0 {
		t.Fatalf("cursor = visible=%v y=%d, want visible at row 0", v.CursorVisible, v.CursorY)
	}
}

func TestProjectDoesNotCopyRows(t *testing.T) {
	term := NewTerminal(2, 10, DefaultScrollbackCap)
	term.PutCodepoints([]rune("AB"))

	v := Project(term, 0, 2, 10)
	row := term.Active().Grid.Row(term.Active().Y)
	if &v.Lines[0].Text[0] != &row.Text[0] {
		t.Fatalf("view copied row text instead of borrowing it")
	}
}
