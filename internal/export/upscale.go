package export

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/transform"
)

// Upscale enlarges img by an integer factor keeping hard texel edges.
func Upscale(img image.Image, factor int) *image.NRGBA {
	b := img.Bounds()
	if factor <= 1 {
		return toNRGBA(img)
	}
	return toNRGBA(transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor))
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
