package mterm

// Grid is an ordered sequence of rows with bounded length equal to its row
// count; row 0 is the top of the visible grid.
type Grid struct {
	rows []*Row
	cols int
}

// NewGrid allocates a grid of blank rows.
func NewGrid(rows, cols int) *Grid {
	g := &Grid{cols: cols}
	g.rows = make([]*Row, rows)
	for i := range g.rows {
		g.rows[i] = NewRow()
	}
	return g
}

// Rows reports the current row count.
func (g *Grid) Rows() int { return len(g.rows) }

// Cols reports the configured column count.
func (g *Grid) Cols() int { return g.cols }

// Row returns the row at index y, or nil if out of range.
func (g *Grid) Row(y int) *Row {
	if y < 0 || y >= len(g.rows) {
		return nil
	}
	return g.rows[y]
}

// PushBlankBottom drops the top row (returning it) and appends a blank row
// at the bottom — the rotation LineFeed and ScrollUp build on.
func (g *Grid) PushBlankBottom() *Row {
	evicted := g.rows[0]
	copy(g.rows, g.rows[1:])
	g.rows[len(g.rows)-1] = NewRow()
	return evicted
}

// InsertBlankAt inserts a blank row at index y, shifting rows below it down;
// the bottom row is dropped (returned to the caller, who may push it to
// scrollback on the primary screen) so the grid stays exactly Rows() long.
func (g *Grid) InsertBlankAt(y int) *Row {
	if y < 0 || y >= len(g.rows) {
		return nil
	}
	dropped := g.rows[len(g.rows)-1]
	copy(g.rows[y+1:], g.rows[y:len(g.rows)-1])
	g.rows[y] = NewRow()
	return dropped
}

// DeleteAt removes the row at index y, shifting rows below it up and
// appending a blank row at the bottom.
func (g *Grid) DeleteAt(y int) {
	if y < 0 || y >= len(g.rows) {
		return
	}
	copy(g.rows[y:], g.rows[y+1:])
	g.rows[len(g.rows)-1] = NewRow()
}

// PopFront removes and returns the first row, shrinking the grid by one —
// used when shrinking terminal height and scrolling overflow to history.
func (g *Grid) PopFront() *Row {
	if len(g.rows) == 0 {
		return nil
	}
	row := g.rows[0]
	g.rows = g.rows[1:]
	return row
}

// Clear replaces every row with a fresh blank row.
func (g *Grid) Clear() {
	for i := range g.rows {
		g.rows[i] = NewRow()
	}
}

// Resize changes the row count in place, growing with blank rows at the
// bottom or truncating from the bottom (the caller is responsible for moving
// truncated rows to scrollback first if that is the desired behavior).
func (g *Grid) Resize(rows int) {
	if rows == len(g.rows) {
		return
	}
	if rows < len(g.rows) {
		g.rows = g.rows[:rows]
		return
	}
	for len(g.rows) < rows {
		g.rows = append(g.rows, NewRow())
	}
}
