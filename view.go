package mterm

// StyledLine is a read-only reference to one visible row, borrowed from the
// terminal's grid or scrollback — the view never copies row contents.
type StyledLine struct {
	Text      []rune
	Fragments []Fragment
}

// View is the read-only projection produced by Project: a vertical slice of
// visible lines plus cursor visibility/position, ready for an external
// renderer to paint.
type View struct {
	Lines         []StyledLine
	CursorVisible bool
	CursorX       int
	CursorY       int // row index within Lines, when CursorVisible
}

// Project maps (scrollOffset, viewport) to a sequence of visible styled
// lines plus cursor position, per §4.6. scrollOffset is in lines, 0 = bottom,
// clamped to [0, scrollback.Len()+primary.Rows()-viewportRows]. On the
// alternate screen the scroll offset is forced to 0 and only the alternate
// grid is visible. Project does not mutate the terminal and is safe to call
// under a shared (read) lock while a writer holds the exclusive lock only
// between calls.
func Project(t *Terminal, scrollOffset, viewportRows, viewportCols int) View {
	if t.IsAlternate() {
		return projectScreen(t.alternate, viewportRows, viewportCols)
	}

	sb := t.scrollback
	maxOffset := sb.Len() + t.primary.Grid.Rows() - viewportRows
	if maxOffset < 0 {
		maxOffset = 0
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if scrollOffset > maxOffset {
		scrollOffset = maxOffset
	}

	// lastVisible and firstVisible are indices into scrollback and primary
	// concatenated: the last and first lines visible at scrollOffset.
	totalLines := sb.Len() + t.primary.Grid.Rows()
	lastVisible := totalLines - 1 - scrollOffset
	firstVisible := lastVisible - viewportRows + 1

	lines := make([]StyledLine, 0, viewportRows)
	cursorVisible := false
	cursorX, cursorY := 0, 0

	for i := firstVisible; i <= lastVisible; i++ {
		var row *Row
		if i < 0 {
			row = nil
		} else if i < sb.Len() {
			row = sb.Line(i)
		} else {
			row = t.primary.Grid.Row(i - sb.Len())
		}

		if row == nil {
			lines = append(lines, StyledLine{})
		} else {
			lines = append(lines, StyledLine{Text: row.Text, Fragments: row.Fragments})
		}

		absCursorLine := sb.Len() + t.primary.Y
		if i == absCursorLine {
			cursorVisible = true
			cursorX = clampInt(t.primary.X, 0, viewportCols)
			cursorY = len(lines) - 1
		}
	}

	return View{Lines: lines, CursorVisible: cursorVisible, CursorX: cursorX, CursorY: cursorY}
}

func projectScreen(s *Screen, viewportRows, viewportCols int) View {
	rows := s.Grid.Rows()
	n := viewportRows
	if n > rows {
		n = rows
	}
	lines := make([]StyledLine, 0, n)
	for y := 0; y < n; y++ {
		row := s.Grid.Row(y)
		if row == nil {
			lines = append(lines, StyledLine{})
			continue
		}
		lines = append(lines, StyledLine{Text: row.Text, Fragments: row.Fragments})
	}
	return View{
		Lines:         lines,
		CursorVisible: s.Y >= 0 && s.Y < n,
		CursorX:       clampInt(s.X, 0, viewportCols),
		CursorY:       s.Y,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
