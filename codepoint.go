package mterm

import "fmt"

// DecodeUTF8 decodes the codepoint at the start of b, returning the decoded
// rune and the number of bytes it consumed. On a malformed lead byte or a
// truncated trailing byte it returns ErrBadEncoding wrapped with context; the
// caller should discard one byte and resynchronize at the next lead byte.
//
// Surrogates are rejected: the window-event side is expected to have already
// combined surrogate pairs before bytes reach this layer.
func DecodeUTF8(b []byte) (rune, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("%w: empty input", ErrBadEncoding)
	}

	lead := b[0]
	switch {
	case lead < 0x80:
		return rune(lead), 1, nil

	case lead&0xE0 == 0xC0:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("%w: truncated 2-byte sequence", ErrBadEncoding)
		}
		if !isContinuation(b[1]) {
			return 0, 0, fmt.Errorf("%w: bad continuation byte", ErrBadEncoding)
		}
		cp := rune(lead&0x1F)<<6 | rune(b[1]&0x3F)
		if cp < 0x80 {
			return 0, 0, fmt.Errorf("%w: overlong 2-byte sequence", ErrBadEncoding)
		}
		return cp, 2, nil

	case lead&0xF0 == 0xE0:
		if len(b) < 3 {
			return 0, 0, fmt.Errorf("%w: truncated 3-byte sequence", ErrBadEncoding)
		}
		if !isContinuation(b[1]) || !isContinuation(b[2]) {
			return 0, 0, fmt.Errorf("%w: bad continuation byte", ErrBadEncoding)
		}
		cp := rune(lead&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
		if cp < 0x800 {
			return 0, 0, fmt.Errorf("%w: overlong 3-byte sequence", ErrBadEncoding)
		}
		if cp >= 0xD800 && cp <= 0xDFFF {
			return 0, 0, fmt.Errorf("%w: surrogate codepoint", ErrBadEncoding)
		}
		return cp, 3, nil

	case lead&0xF8 == 0xF0:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("%w: truncated 4-byte sequence", ErrBadEncoding)
		}
		if !isContinuation(b[1]) || !isContinuation(b[2]) || !isContinuation(b[3]) {
			return 0, 0, fmt.Errorf("%w: bad continuation byte", ErrBadEncoding)
		}
		cp := rune(lead&0x07)<<18 | rune(b[1]&0x3F)<<12 | rune(b[2]&0x3F)<<6 | rune(b[3]&0x3F)
		if cp < 0x10000 || cp > 0x10FFFF {
			return 0, 0, fmt.Errorf("%w: overlong or out-of-range 4-byte sequence", ErrBadEncoding)
		}
		return cp, 4, nil

	default:
		return 0, 0, fmt.Errorf("%w: invalid lead byte 0x%02x", ErrBadEncoding, lead)
	}
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}

// utf8SeqLen returns the total byte length of the UTF-8 sequence introduced
// by lead, or ok=false if lead cannot start a valid sequence.
func utf8SeqLen(lead byte) (n int, ok bool) {
	switch {
	case lead < 0x80:
		return 1, true
	case lead&0xE0 == 0xC0:
		return 2, true
	case lead&0xF0 == 0xE0:
		return 3, true
	case lead&0xF8 == 0xF0:
		return 4, true
	default:
		return 0, false
	}
}

// EncodeCodepoint encodes a single Unicode scalar as up to 4 UTF-8 bytes, for
// sending typed characters to the PTY bridge. Surrogates and out-of-range
// values are rejected rather than silently encoded.
func EncodeCodepoint(cp rune) ([]byte, error) {
	switch {
	case cp < 0:
		return nil, fmt.Errorf("%w: negative codepoint", ErrBadEncoding)
	case cp < 0x80:
		return []byte{byte(cp)}, nil
	case cp < 0x800:
		return []byte{
			0xC0 | byte(cp>>6),
			0x80 | byte(cp&0x3F),
		}, nil
	case cp >= 0xD800 && cp <= 0xDFFF:
		return nil, fmt.Errorf("%w: surrogate codepoint", ErrBadEncoding)
	case cp < 0x10000:
		return []byte{
			0xE0 | byte(cp>>12),
			0x80 | byte((cp>>6)&0x3F),
			0x80 | byte(cp&0x3F),
		}, nil
	case cp <= 0x10FFFF:
		return []byte{
			0xF0 | byte(cp>>18),
			0x80 | byte((cp>>12)&0x3F),
			0x80 | byte((cp>>6)&0x3F),
			0x80 | byte(cp&0x3F),
		}, nil
	default:
		return nil, fmt.Errorf("%w: codepoint out of range", ErrBadEncoding)
	}
}
