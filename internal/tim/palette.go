package tim

// Palettes is the CLUT block of a paletted image: several palettes of the
// same size stored as rows of one table.
type Palettes struct {
	X, Y       uint16
	colors     []Color
	count      int
	perPalette int
}

func newPalettes(colors []Color, count int, x, y uint16) Palettes {
	p := Palettes{X: x, Y: y, colors: colors, count: count}
	if count > 0 {
		p.perPalette = len(colors) / count
	}
	return p
}

// NumberOfPalettes returns the number of palette rows.
func (p Palettes) NumberOfPalettes() int { return p.count }

// NumberOfColorsPerPalette returns the size of one palette.
func (p Palettes) NumberOfColorsPerPalette() int { return p.perPalette }

// Palette returns palette i, or nil if out of range.
func (p Palettes) Palette(i int) []Color {
	if i < 0 || i >= p.count {
		return nil
	}
	return p.colors[i*p.perPalette : (i+1)*p.perPalette]
}

// Colors returns all palette entries in table order.
func (p Palettes) Colors() []Color { return p.colors }
