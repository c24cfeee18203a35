package mterm

import "testing"

func newTestTerminal() *Terminal {
	return NewTerminal(3, 10, DefaultScrollbackCap)
}

func TestParserScenario1(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("Hi\r\nX"))

	if got := string(term.Active().Grid.Row(0).Text); got != "Hi" {
		t.Fatalf("row0 = %q", got)
	}
	if got := string(term.Active().Grid.Row(1).Text); got != "X" {
		t.Fatalf("row1 = %q", got)
	}
	y, x := term.CursorPos()
	if y != 1 || x != 1 {
		t.Fatalf("cursor = (%d,%d), want (1,1)", y, x)
	}
}

func TestParserScenario2SGRCoalesced(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("\x1b[31mABC\x1b[0mDEF"))

	row := term.Active().Grid.Row(0)
	if string(row.Text) != "ABCDEF" {
		t.Fatalf("text = %q", string(row.Text))
	}
	if len(row.Fragments) != 2 {
		t.Fatalf("want 2 fragments, got %+v", row.Fragments)
	}
	if row.Fragments[0].Pos != 0 || row.Fragments[0].Fg != BasicColor(1) {
		t.Fatalf("fragment0 = %+v", row.Fragments[0])
	}
	if row.Fragments[1].Pos != 3 || row.Fragments[1].Fg != DefaultForeground {
		t.Fatalf("fragment1 = %+v", row.Fragments[1])
	}
}

func TestParserScenario3CursorBack(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("XYZ\x1b[2DQ"))

	row := term.Active().Grid.Row(0)
	if string(row.Text) != "XQZ" {
		t.Fatalf("text = %q", string(row.Text))
	}
	_, x := term.CursorPos()
	if x != 2 {
		t.Fatalf("cursor x = %d, want 2", x)
	}
}

func TestParserScenario4EraseLine(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("ABC\x1b[2K"))

	row := term.Active().Grid.Row(0)
	if row.Len() != 0 {
		t.Fatalf("row len = %d, want 0", row.Len())
	}
	_, x := term.CursorPos()
	if x != 3 {
		t.Fatalf("cursor x = %d, want 3", x)
	}
}

func TestParserScenario5AlternateScreen(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("preexisting"))
	before := string(term.Active().Grid.Row(0).Text)
	beforeY, beforeX := term.CursorPos()

	p.Feed([]byte("\x1b[?1049h\x1b[HAB\x1b[?1049l"))

	if term.IsAlternate() {
		t.Fatalf("expected primary screen active after 1049l")
	}
	if got := string(term.Active().Grid.Row(0).Text); got != before {
		t.Fatalf("primary row mutated: got %q, want %q", got, before)
	}
	y, x := term.CursorPos()
	if y != beforeY || x != beforeX {
		t.Fatalf("cursor not restored: got (%d,%d), want (%d,%d)", y, x, beforeY, beforeX)
	}
}

func TestParserScenario6Scrollback(t *testing.T) {
	// 24 rows hold 24 lines with zero eviction (23 line feeds to walk the
	// cursor from row 0 to row 23); each line feed issued once the cursor
	// is already at the bottom row evicts exactly one row, per §8's scroll
	// discipline property. 26 "x\r\n" lines is 23 fill feeds + 3 eviction feeds.
	term := NewTerminal(24, 80, DefaultScrollbackCap)
	p := NewParser(term)
	for i := 0; i < 26; i++ {
		p.Feed([]byte("x\r\n"))
	}
	if term.Scrollback().Len() != 3 {
		t.Fatalf("scrollback len = %d, want 3", term.Scrollback().Len())
	}
	y, _ := term.CursorPos()
	if y != 23 {
		t.Fatalf("cursor y = %d, want 23", y)
	}
	if string(term.Scrollback().Line(0).Text) != "x" {
		t.Fatalf("scrollback[0] = %q", string(term.Scrollback().Line(0).Text))
	}
}

func TestParserResetsAfterMalformedEscape(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("junk"))
	p.Feed([]byte{0x1B, 0x01}) // ESC followed by an unknown introducer byte
	p.Feed([]byte("\x1bc"))    // ESC c: full reset

	row := term.Active().Grid.Row(0)
	if row.Len() != 0 {
		t.Fatalf("expected blank grid after reset, row len = %d", row.Len())
	}
	y, x := term.CursorPos()
	if y != 0 || x != 0 {
		t.Fatalf("cursor = (%d,%d), want (0,0)", y, x)
	}
}

func TestParserPSPrefixNotRecolored(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("PS something long enough"))
	row := term.Active().Grid.Row(0)
	for _, f := range row.Fragments {
		if f.Fg == BrightColor(2) {
			t.Fatalf("PS-prefix recoloring hack was reproduced: %+v", row.Fragments)
		}
	}
}

func TestParserOSCPayloadGoesToHookNotGrid(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	var captured []byte
	p.OSC = func(data []byte) { captured = data }
	p.Feed([]byte("\x1b]0;my title\x07A"))

	if string(captured) != "0;my title" {
		t.Fatalf("OSC payload = %q", string(captured))
	}
	row := term.Active().Grid.Row(0)
	if string(row.Text) != "A" {
		t.Fatalf("text after OSC = %q", string(row.Text))
	}
}

func TestParserIndexedAndTruecolorSGR(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	p.Feed([]byte("\x1b[38;5;196mA\x1b[0m\x1b[38;2;10;20;30mB"))

	row := term.Active().Grid.Row(0)
	if len(row.Fragments) < 2 {
		t.Fatalf("want at least 2 fragments, got %+v", row.Fragments)
	}
	if row.Fragments[0].Fg != IndexedColor(196) {
		t.Fatalf("fragment0 fg = %+v, want indexed 196", row.Fragments[0].Fg)
	}
}

func TestParserSplitUTF8AcrossFeeds(t *testing.T) {
	term := newTestTerminal()
	p := NewParser(term)
	euro := []byte{0xE2, 0x82, 0xAC}
	p.Feed(euro[:1])
	p.Feed(euro[1:])
	row := term.Active().Grid.Row(0)
	if string(row.Text) != "€" {
		t.Fatalf("text = %q, want euro sign", string(row.Text))
	}
}
