package mterm

import "sort"

// Fragment is a color-run: the attributes (fg, underline, bg) in effect from
// Pos up to (but not including) the next fragment's Pos, or end-of-row.
type Fragment struct {
	Pos int
	Fg  Color
	Ul  Color
	Bg  Color
}

func (f Fragment) sameAttrs(g Fragment) bool {
	return f.Fg == g.Fg && f.Ul == g.Ul && f.Bg == g.Bg
}

// defaultFragment is the implicit style of a row with no fragments at all.
var defaultFragment = Fragment{Pos: 0, Fg: NoColor, Ul: NoColor, Bg: NoColor}

// Row is one screen line: an ordered codepoint sequence plus a run-length
// color encoding obeying F1 (strictly sorted by Pos), F2 (no two adjacent
// fragments share all three colors) and F3 (first fragment at Pos==0, or no
// fragments at all).
type Row struct {
	Text      []rune
	Fragments []Fragment
}

// NewRow returns an empty row with no text and no fragments (uniformly default style).
func NewRow() *Row {
	return &Row{}
}

// Len returns the number of codepoints currently stored.
func (r *Row) Len() int { return len(r.Text) }

// AppendText extends Text; Fragments are untouched — appended cells inherit
// the last run's style implicitly.
func (r *Row) AppendText(cps []rune) {
	r.Text = append(r.Text, cps...)
}

// SetText overwrites starting at offset, padding with spaces if offset is
// past the current length. Fragments are not changed.
func (r *Row) SetText(offset int, cps []rune) {
	if offset < 0 {
		offset = 0
	}
	r.padTo(offset)
	end := offset + len(cps)
	if end > len(r.Text) {
		r.Text = append(r.Text, make([]rune, end-len(r.Text))...)
	}
	copy(r.Text[offset:end], cps)
}

// SetSpaces fills the inclusive range [start,end] with spaces, padding the
// row if needed. Fragments are unchanged.
func (r *Row) SetSpaces(start, end int) {
	if start < 0 {
		start = 0
	}
	if end < start {
		return
	}
	r.padTo(end + 1)
	for i := start; i <= end && i < len(r.Text); i++ {
		r.Text[i] = ' '
	}
}

func (r *Row) padTo(n int) {
	for len(r.Text) < n {
		r.Text = append(r.Text, ' ')
	}
}

// Erase physically removes the inclusive range [start,end]; subsequent cells
// shift left. Fragments intersecting the range are clipped or dropped, and
// later fragments have Pos decreased by the erased length.
func (r *Row) Erase(start, end int) {
	if start < 0 {
		start = 0
	}
	if end >= len(r.Text) {
		end = len(r.Text) - 1
	}
	if start > end {
		return
	}
	width := end - start + 1

	r.Text = append(r.Text[:start], r.Text[end+1:]...)

	var kept []Fragment
	// inside is the last fragment starting within the erased range; it still
	// covers the cells after end (up to the next fragment), so it is clipped
	// to begin at `start` once those cells have shifted left.
	var inside Fragment
	hasInside := false
	for _, f := range r.Fragments {
		switch {
		case f.Pos < start:
			kept = append(kept, f)
		case f.Pos > end:
			if hasInside && f.Pos > end+1 {
				kept = append(kept, Fragment{Pos: start, Fg: inside.Fg, Ul: inside.Ul, Bg: inside.Bg})
			}
			hasInside = false
			kept = append(kept, Fragment{Pos: f.Pos - width, Fg: f.Fg, Ul: f.Ul, Bg: f.Bg})
		default:
			inside, hasInside = f, true
		}
	}
	if hasInside && start < len(r.Text) {
		kept = append(kept, Fragment{Pos: start, Fg: inside.Fg, Ul: inside.Ul, Bg: inside.Bg})
	}
	r.Fragments = coalesce(kept)
}

// upperBound returns the index of the first fragment with Pos > pos.
func (r *Row) upperBound(pos int) int {
	return sort.Search(len(r.Fragments), func(i int) bool {
		return r.Fragments[i].Pos > pos
	})
}

// attrsAt returns the fragment in effect at pos (or the implicit default).
func (r *Row) attrsAt(pos int) Fragment {
	idx := r.upperBound(pos) - 1
	if idx < 0 {
		return defaultFragment
	}
	return r.Fragments[idx]
}

// SetColor is the splicing operation: the exact inclusive column range
// [startPos,endPos] carries (fg,ul,bg); columns outside are unchanged.
// Binary-searches the covering runs, builds a small ordered candidate buffer,
// coalesces it (enforcing F2), and splices it back in place of the affected
// fragment slice.
func (r *Row) SetColor(startPos, endPos int, fg, ul, bg Color) {
	if len(r.Text) == 0 {
		r.Fragments = coalesce([]Fragment{{Pos: 0, Fg: fg, Ul: ul, Bg: bg}})
		return
	}
	if endPos >= len(r.Text) {
		endPos = len(r.Text) - 1
	}
	if startPos < 0 {
		startPos = 0
	}
	if startPos > endPos {
		return
	}

	idxStart := r.upperBound(startPos) - 1
	idxEnd := r.upperBound(endPos) - 1

	// coveringStartPos is where the run active at startPos actually begins:
	// the real fragment's Pos, or 0 for the implicit default run when no
	// fragment covers startPos at all.
	coveringStartPos := 0
	var coveringStart Fragment = defaultFragment
	if idxStart >= 0 {
		coveringStartPos = r.Fragments[idxStart].Pos
		coveringStart = r.Fragments[idxStart]
	}
	needsPrefix := coveringStartPos < startPos

	var candidates []Fragment

	// (a)/(b) the covering-start run, kept unchanged for the prefix
	// [coveringStartPos, startPos-1], unless it already begins exactly at
	// startPos (in which case it is wholly superseded by the new run below).
	if needsPrefix {
		candidates = append(candidates, Fragment{Pos: coveringStartPos, Fg: coveringStart.Fg, Ul: coveringStart.Ul, Bg: coveringStart.Bg})
	}

	// (c) the new run.
	candidates = append(candidates, Fragment{Pos: startPos, Fg: fg, Ul: ul, Bg: bg})

	// (d) reinstate the attributes that were active at endPos (possibly the
	// implicit default), if that run extends past endPos and isn't already
	// picked up unchanged by the successor.
	nextPos := len(r.Text)
	hasSuccessor := idxEnd+1 < len(r.Fragments)
	if hasSuccessor {
		nextPos = r.Fragments[idxEnd+1].Pos
	}
	needsReinstate := nextPos > endPos+1 && endPos+1 < len(r.Text)
	if needsReinstate {
		tail := r.attrsAt(endPos)
		candidates = append(candidates, Fragment{Pos: endPos + 1, Fg: tail.Fg, Ul: tail.Ul, Bg: tail.Bg})
	}

	// (e) the successor run, if one starts exactly at endPos+1.
	if hasSuccessor && r.Fragments[idxEnd+1].Pos == endPos+1 {
		candidates = append(candidates, r.Fragments[idxEnd+1])
	}

	coalesced := coalesce(candidates)

	spliceFrom := idxStart
	if spliceFrom < 0 {
		spliceFrom = 0
	}
	spliceTo := idxEnd + 1
	if hasSuccessor && r.Fragments[idxEnd+1].Pos == endPos+1 {
		spliceTo = idxEnd + 2
	}
	if spliceTo > len(r.Fragments) {
		spliceTo = len(r.Fragments)
	}

	out := make([]Fragment, 0, len(r.Fragments)+len(coalesced))
	out = append(out, r.Fragments[:spliceFrom]...)
	out = append(out, coalesced...)
	out = append(out, r.Fragments[spliceTo:]...)
	r.Fragments = coalesce(out)
}

// coalesce enforces F2 (no two adjacent fragments carry identical colors) in
// one pass. It keeps the first fragment as is and does not check F3; callers
// supply a list whose first entry is already at the right position.
func coalesce(in []Fragment) []Fragment {
	out := make([]Fragment, 0, len(in))
	for _, f := range in {
		if len(out) > 0 && out[len(out)-1].sameAttrs(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
