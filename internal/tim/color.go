package tim

import (
	"image/color"
	"math"
)

// Color is a 32-bit ARGB value (0xAARRGGBB).
type Color uint32

// NRGBA converts c to a non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(c >> 16),
		G: uint8(c >> 8),
		B: uint8(c),
		A: uint8(c >> 24),
	}
}

// ColorFromPSX16 converts an A1B5G5R5 word.
//
// Red is bits 0..4, green 5..9, blue 10..14 and bit 15 is the stp flag.
// Alpha is 255 unless stp is set. Pure black inverts alpha, so the default
// black is transparent and black with stp set is opaque.
func ColorFromPSX16(c uint16) Color {
	const mask = 0x1F
	r := expand5(c & mask)
	g := expand5((c >> 5) & mask)
	b := expand5((c >> 10) & mask)

	alpha := uint32(255)
	if c>>15 != 0 {
		alpha = 0
	}
	if r == 0 && g == 0 && b == 0 {
		alpha = 255 - alpha
	}
	return Color(alpha<<24 | r<<16 | g<<8 | b)
}

func expand5(v uint16) uint32 {
	return uint32(math.Round(float64(v) * 255 / 31))
}

// colorFromPSX24 converts a packed 24-bit value with red in the low byte.
func colorFromPSX24(c uint32) Color {
	r := c & 0xFF
	g := (c >> 8) & 0xFF
	b := (c >> 16) & 0xFF
	return Color(0xFF<<24 | r<<16 | g<<8 | b)
}
