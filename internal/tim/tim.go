package tim

import (
	"errors"
	"fmt"

	"mmd-renderer/internal/cursor"
)

// Magic is the first word of every TIM image.
const Magic = 0x10

// ErrFormat reports a structurally invalid TIM image.
var ErrFormat = errors.New("tim: invalid format")

// Type is the TIM flag word.
type Type uint32

// BPP returns the bits per pixel selected by bits 0..2, or 0 when invalid.
func (t Type) BPP() int {
	switch t & 0x7 {
	case 0:
		return 4
	case 1:
		return 8
	case 2:
		return 16
	case 3:
		return 24
	}
	return 0
}

// HasCLUT reports bit 3, the palette flag.
func (t Type) HasCLUT() bool {
	return t&0x8 != 0
}

// Block is the VRAM placement header shared by palette and pixel blocks.
type Block struct {
	Length uint32
	X, Y   uint16
	W, H   uint16
}

// Image is a decoded TIM texture. Pixel words are kept raw; for paletted
// images they hold packed palette indices.
type Image struct {
	Type     Type
	Palettes Palettes
	Data     Block
	Words    []uint16
}

// Decode reads one TIM image at the cursor position.
func Decode(c *cursor.Cursor) (*Image, error) {
	magic, ok := c.U32()
	if !ok {
		return nil, fmt.Errorf("tim: read magic: %w", cursor.ErrShortRead)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %#x", ErrFormat, magic)
	}

	word, ok := c.U32()
	if !ok {
		return nil, fmt.Errorf("tim: read type: %w", cursor.ErrShortRead)
	}
	img := &Image{Type: Type(word)}

	bpp := img.Type.BPP()
	if img.Type.HasCLUT() {
		if bpp != 4 && bpp != 8 {
			return nil, fmt.Errorf("%w: paletted image with %d bpp", ErrFormat, bpp)
		}
	} else if bpp != 16 && bpp != 24 {
		return nil, fmt.Errorf("%w: true color image with %d bpp", ErrFormat, bpp)
	}

	if img.Type.HasCLUT() {
		blk, err := readBlock(c, "palette")
		if err != nil {
			return nil, err
		}
		raw, err := readWords(c, int(blk.W)*int(blk.H), "palette")
		if err != nil {
			return nil, err
		}
		colors := make([]Color, len(raw))
		for i, w := range raw {
			colors[i] = ColorFromPSX16(w)
		}
		img.Palettes = newPalettes(colors, int(blk.H), blk.X, blk.Y)
	}

	blk, err := readBlock(c, "image")
	if err != nil {
		return nil, err
	}
	img.Data = blk
	img.Words, err = readWords(c, int(blk.W)*int(blk.H), "image")
	if err != nil {
		return nil, err
	}
	return img, nil
}

func readBlock(c *cursor.Cursor, what string) (Block, error) {
	if c.BytesAvailable() < 12 {
		return Block{}, fmt.Errorf("tim: read %s header: %w", what, cursor.ErrShortRead)
	}
	var b Block
	b.Length, _ = c.U32()
	b.X, _ = c.U16()
	b.Y, _ = c.U16()
	b.W, _ = c.U16()
	b.H, _ = c.U16()
	return b, nil
}

func readWords(c *cursor.Cursor, n int, what string) ([]uint16, error) {
	if c.BytesAvailable() < n*2 {
		return nil, fmt.Errorf("tim: read %s data (%d words): %w", what, n, cursor.ErrShortRead)
	}
	words := make([]uint16, n)
	for i := range words {
		words[i], _ = c.U16()
	}
	return words, nil
}

// BPP returns the bits per pixel of the pixel data.
func (img *Image) BPP() int { return img.Type.BPP() }

// UsesPalette reports whether pixels are palette indices.
func (img *Image) UsesPalette() bool { return img.Type.HasCLUT() }

// Width returns the width in pixels.
func (img *Image) Width() int {
	bpp := img.BPP()
	if bpp == 0 {
		return 0
	}
	return int(img.Data.W) * 16 / bpp
}

// Height returns the height in pixels.
func (img *Image) Height() int { return int(img.Data.H) }

// IsNull reports an image without pixels.
func (img *Image) IsNull() bool {
	return img.Width() == 0 && img.Height() == 0
}

// Page returns the VRAM texture page holding the pixel data.
func (img *Image) Page() int {
	return int(img.Data.X)/64 + (int(img.Data.Y)/256)*16
}
