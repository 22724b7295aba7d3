package tim

import "image"

// Pixels is a generated ARGB raster in row-major order.
type Pixels struct {
	Width  int
	Height int
	Pix    []Color
}

// Empty reports a raster with no pixels.
func (p Pixels) Empty() bool { return len(p.Pix) == 0 }

// NRGBA converts the raster to an image.
func (p Pixels) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	for i, c := range p.Pix {
		if i >= p.Width*p.Height {
			break
		}
		o := i * 4
		img.Pix[o] = uint8(c >> 16)
		img.Pix[o+1] = uint8(c >> 8)
		img.Pix[o+2] = uint8(c)
		img.Pix[o+3] = uint8(c >> 24)
	}
	return img
}

// Generate renders the image. Paletted images use palette 0.
// An unsupported mode yields an empty raster.
func (img *Image) Generate() Pixels {
	if img.UsesPalette() {
		return img.GenerateWith(0, 0)
	}

	w, h := img.Width(), img.Height()
	switch img.BPP() {
	case 16:
		out := Pixels{Width: w, Height: h, Pix: make([]Color, 0, w*h)}
		for _, word := range img.Words {
			out.Pix = append(out.Pix, ColorFromPSX16(word))
		}
		return out
	case 24:
		return img.generate24(w, h)
	}
	return Pixels{}
}

// generate24 unpacks three bytes per pixel spread over 16-bit words.
// Even pixels start on a word boundary, odd pixels on its high byte.
func (img *Image) generate24(w, h int) Pixels {
	n := w * h
	out := Pixels{Width: w, Height: h, Pix: make([]Color, 0, n)}
	word := func(i int) uint32 {
		if i < len(img.Words) {
			return uint32(img.Words[i])
		}
		return 0
	}

	i := 0
	for len(out.Pix) < n {
		var c uint32
		if i%2 == 0 {
			c = word(i) | (word(i+1)&0xFF)<<16
			i++
		} else {
			c = word(i)>>8 | word(i+1)<<8
			i += 2
		}
		out.Pix = append(out.Pix, colorFromPSX24(c))
	}
	return out
}

// GenerateWith renders a paletted image through palette paletteIndex,
// adding offset to every index. Out-of-range lookups are transparent black.
func (img *Image) GenerateWith(paletteIndex, offset int) Pixels {
	pal := img.Palettes.Palette(paletteIndex)
	if pal == nil {
		return Pixels{}
	}

	lookup := func(idx uint16) Color {
		i := offset + int(idx)
		if i < 0 || i >= len(pal) {
			return 0
		}
		return pal[i]
	}

	w, h := img.Width(), img.Height()
	n := w * h
	out := Pixels{Width: w, Height: h, Pix: make([]Color, 0, n)}

	switch img.BPP() {
	case 4:
		for _, word := range img.Words {
			if len(out.Pix) >= n {
				break
			}
			out.Pix = append(out.Pix,
				lookup(word&0xF),
				lookup((word>>4)&0xF),
				lookup((word>>8)&0xF),
				lookup((word>>12)&0xF),
			)
		}
	case 8:
		for _, word := range img.Words {
			if len(out.Pix) >= n {
				break
			}
			out.Pix = append(out.Pix, lookup(word&0xFF), lookup(word>>8))
		}
	default:
		return Pixels{}
	}
	return out
}

// GenerateCLUT renders the image as seen through the CLUT placed at VRAM
// (clutX, clutY). A coordinate of -1 selects the palette table origin.
func (img *Image) GenerateCLUT(clutX, clutY int) Pixels {
	if !img.UsesPalette() {
		return img.Generate()
	}
	if clutX == -1 {
		clutX = int(img.Palettes.X)
	}
	if clutY == -1 {
		clutY = int(img.Palettes.Y)
	}
	return img.GenerateWith(clutY-int(img.Palettes.Y), clutX-int(img.Palettes.X))
}

// GenerateAll renders one raster per palette, or a single raster for
// true color images.
func (img *Image) GenerateAll() []Pixels {
	if !img.UsesPalette() {
		return []Pixels{img.Generate()}
	}
	out := make([]Pixels, 0, img.Palettes.NumberOfPalettes())
	for i := 0; i < img.Palettes.NumberOfPalettes(); i++ {
		out = append(out, img.GenerateWith(i, 0))
	}
	return out
}
