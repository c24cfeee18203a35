package mterm

import "testing"

func checkInvariants(t *testing.T, r *Row) {
	t.Helper()
	for i := 1; i < len(r.Fragments); i++ {
		if r.Fragments[i].Pos <= r.Fragments[i-1].Pos {
			t.Fatalf("F1 violated: fragments not strictly sorted: %+v", r.Fragments)
		}
		if r.Fragments[i].sameAttrs(r.Fragments[i-1]) {
			t.Fatalf("F2 violated: adjacent duplicate attrs: %+v", r.Fragments)
		}
	}
	if len(r.Fragments) > 0 && r.Fragments[0].Pos != 0 {
		t.Fatalf("F3 violated: first fragment not at pos 0: %+v", r.Fragments)
	}
}

func TestRowAppendAndSetText(t *testing.T) {
	r := NewRow()
	r.AppendText([]rune("Hi"))
	if string(r.Text) != "Hi" {
		t.Fatalf("got %q", string(r.Text))
	}
	r.SetText(4, []rune("X"))
	if string(r.Text) != "Hi  X" {
		t.Fatalf("got %q", string(r.Text))
	}
	checkInvariants(t, r)
}

func TestSetColorOverEmptyRowInstallsOneFragment(t *testing.T) {
	r := NewRow()
	r.SetColor(0, 5, RGB(1, 2, 3), NoColor, NoColor)
	if len(r.Fragments) != 1 || r.Fragments[0].Pos != 0 {
		t.Fatalf("got %+v", r.Fragments)
	}
	checkInvariants(t, r)
}

func TestSetColorScenario2(t *testing.T) {
	// ESC[31m ABC ESC[0m DEF -> row text "ABCDEF", fragments [{0,red},{3,default}]
	r := NewRow()
	red := BasicColor(1)
	r.AppendText([]rune("ABC"))
	r.SetColor(0, 2, red, NoColor, NoColor)
	r.AppendText([]rune("DEF"))
	r.SetColor(3, 5, DefaultForeground, NoColor, NoColor)
	checkInvariants(t, r)
	if string(r.Text) != "ABCDEF" {
		t.Fatalf("text = %q", string(r.Text))
	}
	if len(r.Fragments) != 2 {
		t.Fatalf("want 2 fragments (coalesced), got %+v", r.Fragments)
	}
	if r.Fragments[0].Pos != 0 || r.Fragments[0].Fg != red {
		t.Fatalf("fragment0 = %+v", r.Fragments[0])
	}
	if r.Fragments[1].Pos != 3 || r.Fragments[1].Fg != DefaultForeground {
		t.Fatalf("fragment1 = %+v", r.Fragments[1])
	}
}

func TestSetColorIdempotent(t *testing.T) {
	r := NewRow()
	r.AppendText([]rune("hello world"))
	c := RGB(10, 20, 30)
	r.SetColor(2, 7, c, NoColor, NoColor)
	first := append([]Fragment(nil), r.Fragments...)
	r.SetColor(2, 7, c, NoColor, NoColor)
	if len(first) != len(r.Fragments) {
		t.Fatalf("idempotence violated: %+v vs %+v", first, r.Fragments)
	}
	for i := range first {
		if first[i] != r.Fragments[i] {
			t.Fatalf("idempotence violated at %d: %+v vs %+v", i, first[i], r.Fragments[i])
		}
	}
	checkInvariants(t, r)
}

func TestSetColorCommutesOverDisjointRanges(t *testing.T) {
	mk := func() *Row {
		r := NewRow()
		r.AppendText([]rune("0123456789"))
		return r
	}
	x := RGB(1, 1, 1)
	y := RGB(2, 2, 2)

	r1 := mk()
	r1.SetColor(0, 2, x, NoColor, NoColor)
	r1.SetColor(5, 7, y, NoColor, NoColor)

	r2 := mk()
	r2.SetColor(5, 7, y, NoColor, NoColor)
	r2.SetColor(0, 2, x, NoColor, NoColor)

	if len(r1.Fragments) != len(r2.Fragments) {
		t.Fatalf("commutation violated: %+v vs %+v", r1.Fragments, r2.Fragments)
	}
	for i := range r1.Fragments {
		if r1.Fragments[i] != r2.Fragments[i] {
			t.Fatalf("commutation violated at %d: %+v vs %+v", i, r1.Fragments[i], r2.Fragments[i])
		}
	}
	checkInvariants(t, r1)
	checkInvariants(t, r2)
}

func TestEraseRoundTrip(t *testing.T) {
	r := NewRow()
	r.AppendText([]rune("abcdefgh"))
	r.SetColor(0, 3, RGB(1, 1, 1), NoColor, NoColor)
	r.SetColor(4, 7, RGB(2, 2, 2), NoColor, NoColor)

	r.Erase(2, 4)
	if string(r.Text) != "abfgh" {
		t.Fatalf("got %q", string(r.Text))
	}
	if r.Len() != 5 {
		t.Fatalf("want len 5, got %d", r.Len())
	}
	checkInvariants(t, r)
}

func TestSetColorClippedToRowLength(t *testing.T) {
	r := NewRow()
	r.AppendText([]rune("ab"))
	r.SetColor(0, 100, RGB(9, 9, 9), NoColor, NoColor)
	checkInvariants(t, r)
	if len(r.Fragments) != 1 {
		t.Fatalf("got %+v", r.Fragments)
	}
}

func TestSetColorNoOpWhenRangeInverted(t *testing.T) {
	r := NewRow()
	r.AppendText([]rune("ab"))
	r.SetColor(5, 1, RGB(1, 1, 1), NoColor, NoColor)
	if len(r.Fragments) != 0 {
		t.Fatalf("expected no-op, got %+v", r.Fragments)
	}
}
