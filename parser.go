package mterm

// Handler is the set of VT operations the escape/ANSI state machine
// dispatches to; Terminal (C4) satisfies it directly. Narrowing the
// interface to exactly the operations this parser needs keeps the FSM
// decoupled from the screen model's internals.
type Handler interface {
	PutCodepoints(cps []rune)
	CarriageReturn()
	LineFeed()
	Backspace()
	Tab()
	MoveCursorAbs(row, col int)
	MoveCursorRel(drow, dcol int)
	CursorPos() (row, col int)
	DeleteChars(n int)
	EraseChars(n int)
	InsertLines(n int)
	DeleteLines(n int)
	ClearScreen(mode ClearMode)
	ClearLine(mode ClearMode)
	SaveCursor()
	RestoreCursor()
	SwitchToAlternate()
	SwitchToPrimary()
	Reset()
	Attrs() Attrs
	SetAttrs(Attrs)
}

type parserState int

const (
	stateGround parserState = iota
	stateEsc
	stateCSI
	stateOSC
)

// Parser is the byte-driven {GROUND,ESC,CSI,OSC} automaton of §4.5. It owns
// a scratch buffer for the sequence in progress and a short text
// accumulator, flushed to Handler.PutCodepoints at the next control byte,
// sequence start, or end of input.
type Parser struct {
	h     Handler
	state parserState

	textBuf []rune
	pending []byte // incomplete UTF-8 sequence carried across Feed calls

	paramBuf    []byte
	privateMode bool

	oscBuf     []byte
	oscEscSeen bool

	// OSC, if set, receives the raw payload of any OSC sequence (titles,
	// hyperlinks, palette queries). The core itself never interprets it.
	OSC func(data []byte)
}

// NewParser returns a parser in state GROUND, dispatching to h.
func NewParser(h Handler) *Parser {
	return &Parser{h: h}
}

// Feed processes a chunk of bytes from the PTY bridge, in order. It never
// returns an error: malformed input is recovered from per §7 (BadEncoding,
// EscapeMalformed) by resetting to GROUND and discarding the offending bytes.
func (p *Parser) Feed(data []byte) {
	if len(p.pending) > 0 {
		data = append(p.pending, data...)
		p.pending = nil
	}

	i := 0
	for i < len(data) {
		b := data[i]
		switch p.state {
		case stateGround:
			i = p.stepGround(data, i, b)
		case stateEsc:
			i = p.stepEsc(data, i, b)
		case stateCSI:
			i = p.stepCSI(data, i, b)
		case stateOSC:
			i = p.stepOSC(data, i, b)
		}
	}
	p.flushText()
}

func (p *Parser) stepGround(data []byte, i int, b byte) int {
	switch {
	case b == 0x1B:
		p.flushText()
		p.state = stateEsc
		return i + 1
	case b == 0x0D:
		p.flushText()
		p.h.CarriageReturn()
		return i + 1
	case b == 0x0A:
		p.flushText()
		p.h.LineFeed()
		return i + 1
	case b == 0x08:
		p.flushText()
		p.h.Backspace()
		return i + 1
	case b == 0x09:
		p.flushText()
		p.h.Tab()
		return i + 1
	case b == 0x07:
		return i + 1 // bell: silently dropped in GROUND
	case b < 0x20:
		// other C0 controls (0x01-0x06, 0x0B, 0x0C, 0x0E-0x1F) accumulate as text
		p.textBuf = append(p.textBuf, rune(b))
		return i + 1
	default:
		n, ok := utf8SeqLen(b)
		if !ok {
			return i + 1 // bad lead byte: drop and resync
		}
		if i+n > len(data) {
			p.pending = append(p.pending, data[i:]...)
			return len(data)
		}
		cp, consumed, err := DecodeUTF8(data[i : i+n])
		if err != nil {
			return i + 1 // BadEncoding: drop offending byte, continue
		}
		p.textBuf = append(p.textBuf, cp)
		return i + consumed
	}
}

func (p *Parser) stepEsc(data []byte, i int, b byte) int {
	switch b {
	case '[':
		p.state = stateCSI
		p.paramBuf = p.paramBuf[:0]
		p.privateMode = false
		return i + 1
	case ']':
		p.state = stateOSC
		p.oscBuf = p.oscBuf[:0]
		p.oscEscSeen = false
		return i + 1
	case '7':
		p.h.SaveCursor()
		p.resetToGround()
		return i + 1
	case '8':
		p.h.RestoreCursor()
		p.resetToGround()
		return i + 1
	case 'c':
		p.h.Reset()
		p.resetToGround()
		return i + 1
	case 'D':
		p.h.LineFeed()
		p.resetToGround()
		return i + 1
	case 'E':
		p.h.LineFeed()
		p.h.CarriageReturn()
		p.resetToGround()
		return i + 1
	case 'H':
		// set tab stop: ignored, per spec's CSI table (no tab-stop model kept)
		p.resetToGround()
		return i + 1
	case 'M':
		p.h.MoveCursorRel(-1, 0)
		p.resetToGround()
		return i + 1
	default:
		// unknown introducer byte: malformed, return to GROUND without effect
		p.resetToGround()
		return i + 1
	}
}

func (p *Parser) stepCSI(data []byte, i int, b byte) int {
	switch {
	case b == '?' && len(p.paramBuf) == 0:
		p.privateMode = true
		return i + 1
	case b >= 0x30 && b <= 0x3F:
		p.paramBuf = append(p.paramBuf, b)
		return i + 1
	case b >= 0x40 && b <= 0x7E:
		p.dispatchCSI(b)
		p.resetToGround()
		return i + 1
	default:
		// malformed sequence: abort to GROUND, drop the buffered sequence
		p.resetToGround()
		return i + 1
	}
}

func (p *Parser) stepOSC(data []byte, i int, b byte) int {
	if p.oscEscSeen {
		p.oscEscSeen = false
		if b == '\\' {
			p.dispatchOSC()
			p.resetToGround()
			return i + 1
		}
		// not a valid ST: treat the pending ESC as a fresh escape introducer
		p.resetToGround()
		p.state = stateEsc
		return i // reprocess b in the ESC state
	}
	switch b {
	case 0x07:
		p.dispatchOSC()
		p.resetToGround()
		return i + 1
	case 0x1B:
		if i+1 >= len(data) {
			p.oscEscSeen = true
			return i + 1
		}
		if data[i+1] == '\\' {
			p.dispatchOSC()
			p.resetToGround()
			return i + 2
		}
		p.resetToGround()
		p.state = stateEsc
		return i + 1
	default:
		p.oscBuf = append(p.oscBuf, b)
		return i + 1
	}
}

func (p *Parser) resetToGround() {
	p.state = stateGround
	p.paramBuf = p.paramBuf[:0]
	p.privateMode = false
}

func (p *Parser) flushText() {
	if len(p.textBuf) == 0 {
		return
	}
	p.h.PutCodepoints(p.textBuf)
	p.textBuf = p.textBuf[:0]
}

func (p *Parser) dispatchOSC() {
	if p.OSC != nil {
		p.OSC(append([]byte(nil), p.oscBuf...))
	}
}

// parseParams splits a CSI parameter buffer (with any leading '?' already
// stripped by the caller) on ';' into decimal values; an empty token (or one
// that fails to parse) yields 0, matching §4.5's parameter grammar.
func parseParams(buf []byte) []int {
	if len(buf) == 0 {
		return []int{0}
	}
	var out []int
	v := 0
	has := false
	flush := func() {
		out = append(out, v)
		v = 0
		has = false
	}
	for _, b := range buf {
		if b == ';' {
			flush()
			continue
		}
		if b >= '0' && b <= '9' {
			v = v*10 + int(b-'0')
			has = true
		}
		// any other intermediate byte is ignored for parameter purposes
	}
	_ = has
	flush()
	return out
}

func paramOr(params []int, idx, def int) int {
	if idx < len(params) && params[idx] != 0 {
		return params[idx]
	}
	return def
}

func (p *Parser) dispatchCSI(final byte) {
	buf := p.paramBuf
	if p.privateMode && len(buf) > 0 && buf[0] == '?' {
		buf = buf[1:]
	}
	params := parseParams(buf)
	h := p.h

	switch final {
	case 'A':
		h.MoveCursorRel(-paramOr(params, 0, 1), 0)
	case 'B':
		h.MoveCursorRel(paramOr(params, 0, 1), 0)
	case 'C':
		h.MoveCursorRel(0, paramOr(params, 0, 1))
	case 'D':
		h.MoveCursorRel(0, -paramOr(params, 0, 1))
	case 'E':
		n := paramOr(params, 0, 1)
		for i := 0; i < n; i++ {
			h.LineFeed()
			h.CarriageReturn()
		}
	case 'F':
		n := paramOr(params, 0, 1)
		for i := 0; i < n; i++ {
			h.MoveCursorRel(-1, 0)
			h.CarriageReturn()
		}
	case 'G':
		row, _ := h.CursorPos()
		h.MoveCursorAbs(row, paramOr(params, 0, 1)-1)
	case 'H', 'f':
		row := paramOr(params, 0, 1) - 1
		col := paramOr(params, 1, 1) - 1
		h.MoveCursorAbs(row, col)
	case 'J':
		h.ClearScreen(clearModeFromParam(paramOr(params, 0, 0)))
	case 'K':
		h.ClearLine(clearModeFromParam(paramOr(params, 0, 0)))
	case 'L':
		h.InsertLines(paramOr(params, 0, 1))
	case 'M':
		h.DeleteLines(paramOr(params, 0, 1))
	case 'P':
		h.DeleteChars(paramOr(params, 0, 1))
	case 'X':
		h.EraseChars(paramOr(params, 0, 1))
	case 'd':
		_, col := h.CursorPos()
		h.MoveCursorAbs(paramOr(params, 0, 1)-1, col)
	case 'm':
		applySGR(h, params)
	case 's':
		h.SaveCursor()
	case 'u':
		h.RestoreCursor()
	case 'h', 'l':
		if p.privateMode {
			dispatchPrivateMode(h, params, final == 'h')
		}
	default:
		// unimplemented final: no effect
	}
}

func clearModeFromParam(mode int) ClearMode {
	switch mode {
	case 1:
		return ClearAbove
	case 2:
		return ClearAll
	default:
		return ClearBelow
	}
}

// dispatchPrivateMode handles CSI ? <param> h/l for the finals this core
// implements: 47/1047/1049 switch to/from the alternate screen; 1049 also
// saves/restores the cursor around the switch.
func dispatchPrivateMode(h Handler, params []int, enable bool) {
	for _, mode := range params {
		switch mode {
		case 47, 1047, 1049:
			if enable {
				if mode == 1049 {
					h.SaveCursor()
				}
				h.SwitchToAlternate()
			} else {
				h.SwitchToPrimary()
				if mode == 1049 {
					h.RestoreCursor()
				}
			}
		}
	}
}

func applySGR(h Handler, params []int) {
	attrs := h.Attrs()
	i := 0
	for i < len(params) {
		v := params[i]
		switch {
		case v == 0:
			attrs = defaultAttrs()
		case v == 4:
			attrs.UlOn = true
			attrs.Ul = attrs.Fg
		case v == 24:
			attrs.UlOn = false
		case v >= 30 && v <= 37:
			attrs.Fg = BasicColor(v - 30)
		case v >= 90 && v <= 97:
			attrs.Fg = BrightColor(v - 90)
		case v == 39:
			attrs.Fg = DefaultForeground
		case v >= 40 && v <= 47:
			attrs.Bg = BasicColor(v - 40)
		case v >= 100 && v <= 107:
			attrs.Bg = BrightColor(v - 100)
		case v == 49:
			attrs.Bg = NoColor
		case v == 38 || v == 48:
			isFg := v == 38
			if i+1 < len(params) && params[i+1] == 5 && i+2 < len(params) {
				c := IndexedColor(params[i+2])
				if isFg {
					attrs.Fg = c
				} else {
					attrs.Bg = c
				}
				i += 2
			} else if i+1 < len(params) && params[i+1] == 2 && i+4 < len(params) {
				c := RGB(clamp8(params[i+2]), clamp8(params[i+3]), clamp8(params[i+4]))
				if isFg {
					attrs.Fg = c
				} else {
					attrs.Bg = c
				}
				i += 4
			} else {
				i = len(params) - 1 // malformed extended color: abort remaining params
			}
		default:
			// unknown SGR code ignored
		}
		i++
	}
	h.SetAttrs(attrs)
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
