package mterm

// ClearMode selects the extent of a screen or line clear.
type ClearMode int

const (
	ClearBelow ClearMode = iota
	ClearAbove
	ClearAll
)

// Screen is one of the two grids (primary or alternate) plus its own cursor
// and save/restore slot, per §3.
type Screen struct {
	Grid  *Grid
	X, Y  int
	saved savedCursor
}

func newScreen(rows, cols int) *Screen {
	return &Screen{Grid: NewGrid(rows, cols)}
}

func (s *Screen) clampY(rows int) {
	if s.Y < 0 {
		s.Y = 0
	}
	if s.Y >= rows {
		s.Y = rows - 1
	}
}

// Terminal holds the two screens, scrollback, and current SGR attributes —
// the whole of the C4 screen model. It is not safe for concurrent use by
// itself; Emulator (the façade) supplies the locking described in §5.
type Terminal struct {
	rows, cols int
	tabWidth   int

	primary   *Screen
	alternate *Screen
	isAlt     bool

	scrollback *Scrollback
	attrs      Attrs
}

// NewTerminal builds a two-screen terminal of the given size.
func NewTerminal(rows, cols int, scrollbackCap int) *Terminal {
	t := &Terminal{
		rows:       rows,
		cols:       cols,
		tabWidth:   8,
		primary:    newScreen(rows, cols),
		alternate:  newScreen(rows, cols),
		scrollback: NewScrollback(scrollbackCap),
		attrs:      defaultAttrs(),
	}
	return t
}

// Active returns the currently visible screen.
func (t *Terminal) Active() *Screen {
	if t.isAlt {
		return t.alternate
	}
	return t.primary
}

// IsAlternate reports whether the alternate screen is active.
func (t *Terminal) IsAlternate() bool { return t.isAlt }

// Scrollback exposes the scrollback deque for view projection.
func (t *Terminal) Scrollback() *Scrollback { return t.scrollback }

// Attrs returns the current SGR attribute triple.
func (t *Terminal) Attrs() Attrs { return t.attrs }

// SetAttrs replaces the current SGR attribute triple (used by the parser's SGR handler).
func (t *Terminal) SetAttrs(a Attrs) { t.attrs = a }

// CursorPos returns the active screen's cursor (row, col).
func (t *Terminal) CursorPos() (int, int) {
	s := t.Active()
	return s.Y, s.X
}

// Rows/Cols report the configured screen dimensions.
func (t *Terminal) Rows() int { return t.rows }
func (t *Terminal) Cols() int { return t.cols }

// PutCodepoints writes cps at the cursor, extending the row as needed and
// attaching the current SGR attributes via Row.SetColor. On the alternate
// screen, writing past cols-1 truncates; on the primary screen the row may
// grow past cols (C6 clips it visually).
func (t *Terminal) PutCodepoints(cps []rune) {
	if len(cps) == 0 {
		return
	}
	s := t.Active()
	if t.isAlt && s.X+len(cps) > t.cols {
		if s.X >= t.cols {
			return
		}
		cps = cps[:t.cols-s.X]
	}
	row := s.Grid.Row(s.Y)
	if row == nil {
		return
	}
	start := s.X
	row.SetText(start, cps)
	end := start + len(cps) - 1
	row.SetColor(start, end, t.attrs.Fg, t.attrs.resolvedUl(), t.attrs.Bg)
	s.X = end + 1
}

// LineFeed advances the cursor to the next row, scrolling per §4.4: on the
// primary screen at the bottom row it evicts the top row to scrollback; on
// the alternate screen it rotates (top dropped, blank appended).
func (t *Terminal) LineFeed() {
	s := t.Active()
	if s.Y < t.rows-1 {
		s.Y++
		return
	}
	if t.isAlt {
		s.Grid.PushBlankBottom()
		return
	}
	t.ScrollUp()
}

// ScrollUp evicts the primary grid's top row to scrollback and appends a
// blank row at the bottom. Used by LineFeed at the bottom row.
func (t *Terminal) ScrollUp() {
	evicted := t.primary.Grid.PushBlankBottom()
	t.scrollback.Push(evicted)
}

// CarriageReturn moves the cursor to column 0.
func (t *Terminal) CarriageReturn() { t.Active().X = 0 }

// Backspace moves the cursor left one column (cursor-only semantics, the
// adopted reading of the open BS question — see DESIGN.md).
func (t *Terminal) Backspace() {
	s := t.Active()
	if s.X > 0 {
		s.X--
	}
}

// Tab advances the cursor to the next tab stop.
func (t *Terminal) Tab() {
	s := t.Active()
	next := (s.X/t.tabWidth + 1) * t.tabWidth
	if t.isAlt && next >= t.cols {
		next = t.cols - 1
	}
	s.X = next
}

// MoveCursorAbs sets the cursor to an absolute position, clamped per screen.
func (t *Terminal) MoveCursorAbs(row, col int) {
	s := t.Active()
	s.Y = row
	s.X = col
	t.clampCursor(s)
}

// MoveCursorRel moves the cursor by a relative offset, clamped per screen.
func (t *Terminal) MoveCursorRel(drow, dcol int) {
	s := t.Active()
	s.Y += drow
	s.X += dcol
	t.clampCursor(s)
}

// clampCursor enforces §4.4: the alternate screen clamps to [0,rows)x[0,cols);
// the primary screen only clamps Y (a short row is legal).
func (t *Terminal) clampCursor(s *Screen) {
	if s.Y < 0 {
		s.Y = 0
	}
	if s.Y >= t.rows {
		s.Y = t.rows - 1
	}
	if s.X < 0 {
		s.X = 0
	}
	if t.isAlt && s.X >= t.cols {
		s.X = t.cols - 1
	}
}

// DeleteChars removes n cells at the cursor, shifting the remainder of the
// row left.
func (t *Terminal) DeleteChars(n int) {
	if n <= 0 {
		return
	}
	s := t.Active()
	row := s.Grid.Row(s.Y)
	if row == nil {
		return
	}
	end := s.X + n - 1
	row.Erase(s.X, end)
}

// EraseChars overwrites n cells at the cursor with spaces of the current
// attributes, keeping row length unchanged.
func (t *Terminal) EraseChars(n int) {
	if n <= 0 {
		return
	}
	s := t.Active()
	row := s.Grid.Row(s.Y)
	if row == nil {
		return
	}
	end := s.X + n - 1
	if end >= row.Len() {
		end = row.Len() - 1
	}
	if end < s.X {
		return
	}
	row.SetSpaces(s.X, end)
	row.SetColor(s.X, end, t.attrs.Fg, t.attrs.resolvedUl(), t.attrs.Bg)
}

// InsertLines inserts n blank rows above the cursor. On the primary screen
// rows pushed off the bottom go to scrollback; on the alternate screen they
// are dropped.
func (t *Terminal) InsertLines(n int) {
	s := t.Active()
	for i := 0; i < n; i++ {
		dropped := s.Grid.InsertBlankAt(s.Y)
		if !t.isAlt && dropped != nil {
			t.scrollback.Push(dropped)
		}
	}
}

// DeleteLines removes n rows starting at the cursor, shifting the rest up
// and appending blank rows at the bottom.
func (t *Terminal) DeleteLines(n int) {
	s := t.Active()
	for i := 0; i < n; i++ {
		s.Grid.DeleteAt(s.Y)
	}
}

// ClearScreen clears the active grid per mode.
func (t *Terminal) ClearScreen(mode ClearMode) {
	s := t.Active()
	switch mode {
	case ClearAll:
		s.Grid.Clear()
	case ClearBelow:
		if row := s.Grid.Row(s.Y); row != nil {
			row.Erase(s.X, row.Len()-1)
		}
		for y := s.Y + 1; y < t.rows; y++ {
			if row := s.Grid.Row(y); row != nil {
				row.Erase(0, row.Len()-1)
			}
		}
	case ClearAbove:
		for y := 0; y < s.Y; y++ {
			if row := s.Grid.Row(y); row != nil {
				row.Erase(0, row.Len()-1)
			}
		}
		if row := s.Grid.Row(s.Y); row != nil {
			row.Erase(0, s.X)
		}
	}
}

// ClearLine clears the row at the cursor per mode (right/left/all of the line).
func (t *Terminal) ClearLine(mode ClearMode) {
	s := t.Active()
	row := s.Grid.Row(s.Y)
	if row == nil {
		return
	}
	switch mode {
	case ClearBelow: // "right" of cursor
		row.Erase(s.X, row.Len()-1)
	case ClearAbove: // "left" of cursor, inclusive
		row.Erase(0, s.X)
	case ClearAll:
		row.Erase(0, row.Len()-1)
	}
}

// SaveCursor stores (x,y) and current attributes for the active screen.
func (t *Terminal) SaveCursor() {
	s := t.Active()
	s.saved = savedCursor{x: s.X, y: s.Y, attrs: t.attrs, set: true}
}

// RestoreCursor restores a previously saved (x,y) and attributes for the
// active screen; a no-op if nothing was ever saved.
func (t *Terminal) RestoreCursor() {
	s := t.Active()
	if !s.saved.set {
		return
	}
	s.X, s.Y = s.saved.x, s.saved.y
	t.attrs = s.saved.attrs
	t.clampCursor(s)
}

// SwitchToAlternate activates the alternate screen, clearing it first.
func (t *Terminal) SwitchToAlternate() {
	if t.isAlt {
		return
	}
	t.alternate.Grid.Clear()
	t.alternate.X, t.alternate.Y = 0, 0
	t.isAlt = true
}

// SwitchToPrimary activates the primary screen, leaving its state untouched.
func (t *Terminal) SwitchToPrimary() {
	t.isAlt = false
}

// Reset performs a full reset (ESC c): clears both screens, resets cursors
// and attributes, and deactivates the alternate screen.
func (t *Terminal) Reset() {
	t.primary.Grid.Clear()
	t.primary.X, t.primary.Y = 0, 0
	t.alternate.Grid.Clear()
	t.alternate.X, t.alternate.Y = 0, 0
	t.isAlt = false
	t.attrs = defaultAttrs()
}

// Resize changes the terminal's row/col count. Shrinking rows scrolls
// overflow content on the primary screen to scrollback; cursors are clamped.
func (t *Terminal) Resize(rows, cols int) {
	if rows < t.rows {
		excess := t.rows - rows
		for i := 0; i < excess && t.primary.Grid.Rows() > rows; i++ {
			if row := t.primary.Grid.PopFront(); row != nil {
				t.scrollback.Push(row)
			}
		}
		t.primary.Y -= excess
	}
	t.primary.Grid.Resize(rows)
	t.alternate.Grid.Resize(rows)
	t.rows, t.cols = rows, cols
	t.primary.clampY(rows)
	t.alternate.clampY(rows)
}
