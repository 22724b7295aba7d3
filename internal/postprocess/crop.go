package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// AlphaBounds returns the smallest rectangle holding every pixel with
// nonzero alpha, or an empty rectangle.
func AlphaBounds(img *image.NRGBA) image.Rectangle {
	b := img.Bounds()
	out := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			p := image.Rect(b.Min.X+x, y, b.Min.X+x+1, y+1)
			out = out.Union(p)
		}
	}
	return out
}

// CropFrames crops every frame to the union of their alpha bounds grown by
// margin, so an animation keeps a fixed frame. Frames with no visible
// pixels are returned unchanged.
func CropFrames(frames []*image.NRGBA, margin int) []*image.NRGBA {
	if len(frames) == 0 {
		return frames
	}
	var r image.Rectangle
	for _, f := range frames {
		r = r.Union(AlphaBounds(f))
	}
	if r.Empty() {
		return frames
	}
	r = r.Inset(-margin).Intersect(frames[0].Bounds())

	out := make([]*image.NRGBA, len(frames))
	for i, f := range frames {
		dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(dst, dst.Bounds(), f, r.Min, draw.Src)
		out[i] = dst
	}
	return out
}
