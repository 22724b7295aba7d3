package raster

import (
	"image"
	"math"
)

// SampleNearest returns the texel under (x, y) in texel units, wrapping
// outside the image.
func SampleNearest(tex *image.NRGBA, x, y float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}
	tx := int(math.Floor(x)) % w
	if tx < 0 {
		tx += w
	}
	ty := int(math.Floor(y)) % h
	if ty < 0 {
		ty += h
	}
	i := ty*tex.Stride + tx*4
	p := tex.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}
