package tim

import "image"

// Atlas is a mutable texture image shared by every material that samples it.
// The revision advances whenever a patch changes pixel contents and is the
// only signal consumers get; writers and readers are expected to run on the
// same goroutine.
type Atlas struct {
	img      *image.NRGBA
	revision uint64
}

// NewAtlas wraps img. The atlas takes ownership of its pixels.
func NewAtlas(img *image.NRGBA) *Atlas {
	return &Atlas{img: img}
}

// Image returns the live pixels. Callers must not keep writes outside CopyRect.
func (a *Atlas) Image() *image.NRGBA { return a.img }

// Revision returns the staleness token.
func (a *Atlas) Revision() uint64 { return a.revision }

// Size returns the atlas dimensions.
func (a *Atlas) Size() (int, int) {
	b := a.img.Bounds()
	return b.Dx(), b.Dy()
}

// CopyRect copies the w×h rectangle at src to dst in place, pixel by pixel in
// row-major order. Reads outside the atlas yield zero and writes outside it
// are dropped. It reports whether any pixel changed.
func (a *Atlas) CopyRect(src image.Point, dst image.Point, w, h int) bool {
	b := a.img.Bounds()
	changed := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var px [4]uint8
			sp := image.Pt(src.X+x, src.Y+y).Add(b.Min)
			if sp.In(b) {
				o := a.img.PixOffset(sp.X, sp.Y)
				copy(px[:], a.img.Pix[o:o+4])
			}

			dp := image.Pt(dst.X+x, dst.Y+y).Add(b.Min)
			if !dp.In(b) {
				continue
			}
			o := a.img.PixOffset(dp.X, dp.Y)
			if [4]uint8(a.img.Pix[o:o+4]) != px {
				copy(a.img.Pix[o:o+4], px[:])
				changed = true
			}
		}
	}
	if changed {
		a.revision++
	}
	return changed
}
