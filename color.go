package mterm

import "image/color"

// Color is either an RGB triple or the sentinel NoColor, meaning "do not draw
// this channel" — used for a transparent underline or background. It
// implements image/color.Color so a renderer can use it directly.
type Color struct {
	R, G, B uint8
	none    bool
}

// NoColor is the sentinel "unset" color.
var NoColor = Color{none: true}

// RGB builds an opaque truecolor value.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// IsNone reports whether c is the NoColor sentinel.
func (c Color) IsNone() bool { return c.none }

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	if c.none {
		return 0, 0, 0, 0
	}
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = 0xffff
	return
}

// basicPalette is the 8-color ANSI palette (indices 0-7).
var basicPalette = [8]Color{
	RGB(0x1E, 0x1E, 0x1E),
	RGB(0xD7, 0x26, 0x38),
	RGB(0x3E, 0xB0, 0x49),
	RGB(0xF1, 0x9D, 0x1A),
	RGB(0x1A, 0x6F, 0xF1),
	RGB(0xA3, 0x47, 0xBA),
	RGB(0x20, 0xB2, 0xAA),
	RGB(0xC0, 0xC0, 0xC0),
}

// brightPalette is the bright variant (indices 8-15, SGR 90-97/100-107).
var brightPalette = [8]Color{
	RGB(0x4B, 0x4B, 0x4B),
	RGB(0xFF, 0x5C, 0x57),
	RGB(0x5A, 0xF7, 0x8E),
	RGB(0xF3, 0xF9, 0x9D),
	RGB(0x57, 0xC7, 0xFF),
	RGB(0xFF, 0x6A, 0xC1),
	RGB(0x9A, 0xED, 0xFE),
	RGB(0xFF, 0xFF, 0xFF),
}

// DefaultForeground is the text color assumed absent any SGR fg selection.
var DefaultForeground = RGB(0xFF, 0xFF, 0xFF)

// DefaultBackground is NoColor: the background is left to the renderer.
var DefaultBackground = NoColor

// BasicColor returns palette entry n (0-7), the SGR 30-37/40-47 palette.
func BasicColor(n int) Color {
	if n < 0 || n > 7 {
		return DefaultForeground
	}
	return basicPalette[n]
}

// BrightColor returns bright palette entry n (0-7), the SGR 90-97/100-107 palette.
func BrightColor(n int) Color {
	if n < 0 || n > 7 {
		return DefaultForeground
	}
	return brightPalette[n]
}

// IndexedColor resolves an xterm 256-color palette index: 0-7 basic, 8-15
// bright, 16-231 the 6x6x6 color cube, 232-255 a 24-step gray ramp.
func IndexedColor(idx int) Color {
	switch {
	case idx < 0 || idx > 255:
		return DefaultForeground
	case idx < 8:
		return basicPalette[idx]
	case idx < 16:
		return brightPalette[idx-8]
	case idx >= 232:
		level := uint8((idx - 232) * 255 / 23)
		return RGB(level, level, level)
	default:
		idx -= 16
		r := idx / 36 % 6
		g := idx / 6 % 6
		b := idx % 6
		return RGB(cubeChannel(r), cubeChannel(g), cubeChannel(b))
	}
}

func cubeChannel(c int) uint8 {
	if c == 0 {
		return 0
	}
	return uint8(c*40 + 55)
}

var _ color.Color = Color{}
