package raster

import (
	"image"
	"math"
)

// ScreenVertex is a projected vertex. X and Y are pixels, Z grows toward
// the viewer, U and V are texel coordinates, R G B are 0..255.
type ScreenVertex struct {
	X, Y, Z float64
	U, V    float64
	R, G, B float64
}

// Shading selects how a triangle gets its color.
type Shading struct {
	Texture *image.NRGBA
	// VertexColors modulates by the interpolated vertex color, 128 = 1.0
	// when textured and 255 = 1.0 otherwise.
	VertexColors bool
	Flat         [3]uint8
	Shade        float64
}

// RasterizeTriangle draws one z-buffered triangle.
// Texels with zero alpha are discarded.
func RasterizeTriangle(fb *FrameBuffer, v [3]ScreenVertex, s *Shading) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	tex := s.Texture
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := sy*fb.Width + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			var r, g, b float64
			if tex != nil {
				u := w0*v[0].U + w1*v[1].U + w2*v[2].U
				tv := w0*v[0].V + w1*v[1].V + w2*v[2].V
				cr, cg, cb, ca := SampleNearest(tex, u, tv)
				if ca == 0 {
					continue
				}
				r, g, b = float64(cr), float64(cg), float64(cb)
				if s.VertexColors {
					r *= (w0*v[0].R + w1*v[1].R + w2*v[2].R) / 128
					g *= (w0*v[0].G + w1*v[1].G + w2*v[2].G) / 128
					b *= (w0*v[0].B + w1*v[1].B + w2*v[2].B) / 128
				}
			} else if s.VertexColors {
				r = w0*v[0].R + w1*v[1].R + w2*v[2].R
				g = w0*v[0].G + w1*v[1].G + w2*v[2].G
				b = w0*v[0].B + w1*v[1].B + w2*v[2].B
			} else {
				r, g, b = float64(s.Flat[0]), float64(s.Flat[1]), float64(s.Flat[2])
			}

			fb.ZBuf[zIdx] = z
			p := zIdx * 4
			fb.Color[p] = clamp255(r * s.Shade)
			fb.Color[p+1] = clamp255(g * s.Shade)
			fb.Color[p+2] = clamp255(b * s.Shade)
			fb.Color[p+3] = 255
		}
	}
}

// RasterizeLine draws a one pixel wide z-buffered segment with
// interpolated vertex colors.
func RasterizeLine(fb *FrameBuffer, a, b ScreenVertex) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		fb.plot(
			int(math.Floor(a.X+dx*t)),
			int(math.Floor(a.Y+dy*t)),
			a.Z+(b.Z-a.Z)*t,
			clamp255(a.R+(b.R-a.R)*t),
			clamp255(a.G+(b.G-a.G)*t),
			clamp255(a.B+(b.B-a.B)*t),
		)
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
