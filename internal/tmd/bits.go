package tmd

// Flags is the packet flag byte.
type Flags uint8

// LightDisabled reports bit 0 (LGT): no light source calculation.
func (f Flags) LightDisabled() bool { return f&0x1 != 0 }

// DoubleFaced reports bit 1 (FCE).
func (f Flags) DoubleFaced() bool { return f&0x2 != 0 }

// Gradated reports bit 2 (GRD): one color per vertex.
func (f Flags) Gradated() bool { return f&0x4 != 0 }

// Code selects the primitive family.
type Code uint8

const (
	CodeInvalid Code = 0
	CodePolygon Code = 1
	CodeLine    Code = 2
	CodeSprite  Code = 3
)

func (c Code) String() string {
	switch c {
	case CodePolygon:
		return "polygon"
	case CodeLine:
		return "line"
	case CodeSprite:
		return "sprite"
	}
	return "invalid"
}

// Mode is the packet mode byte: code in bits 5..7, options in bits 0..4.
type Mode uint8

// Code returns bits 5..7.
func (m Mode) Code() Code { return Code(m >> 5) }

// Brightness reports bit 0 (TGE).
func (m Mode) Brightness() bool { return m&0x01 != 0 }

// Translucent reports bit 1 (ABE).
func (m Mode) Translucent() bool { return m&0x02 != 0 }

// Textured reports bit 2 (TME).
func (m Mode) Textured() bool { return m&0x04 != 0 }

// Quad reports bit 3.
func (m Mode) Quad() bool { return m&0x08 != 0 }

// Gouraud reports bit 4 (IIP). Lines read it as gradation.
func (m Mode) Gouraud() bool { return m&0x10 != 0 }

// SpriteSize returns bits 3..4 of a sprite mode.
func (m Mode) SpriteSize() uint8 { return uint8(m>>3) & 0x3 }

// CLUT is the packed palette location word.
type CLUT uint16

// X returns bits 0..5, the palette column in 16-pixel units.
func (c CLUT) X() int { return int(c & 0x3F) }

// Y returns bits 6..14, the palette row in VRAM.
func (c CLUT) Y() int { return int(c>>6) & 0x1FF }

// TextureInfo is the packed texture page word.
type TextureInfo uint16

// Page returns bits 0..4.
func (t TextureInfo) Page() int { return int(t & 0x1F) }

// Mixture returns bits 5..6, the semi-transparency rate.
func (t TextureInfo) Mixture() int { return int(t>>5) & 0x3 }

// ColorMode returns bits 7..8.
func (t TextureInfo) ColorMode() int { return int(t>>7) & 0x3 }

// BPP maps the color mode to bits per pixel, 0 for the reserved mode.
func (t TextureInfo) BPP() int {
	switch t.ColorMode() {
	case 0:
		return 4
	case 1:
		return 8
	case 2:
		return 16
	}
	return 0
}
