package raster

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/scene"
	"mmd-renderer/internal/texture"
)

// Render draws every mesh under root, as currently posed, through cam.
// Textures are read through cache so atlas patches show up once their
// revision moves.
func Render(root *scene.Node, cam Camera, cache *texture.Cache, lc *LightConfig) *image.NRGBA {
	fb := NewFrameBuffer(cam.Size, cam.Size)

	root.Walk(func(n *scene.Node, world mgl32.Mat4) {
		if n.Mesh == nil {
			return
		}
		m := cam.View.Mul4(world)
		normalMat := m.Mat3()

		for _, g := range n.Mesh.Groups {
			mat := n.Mesh.Materials[g.Material]
			s := Shading{VertexColors: mat.VertexColors, Flat: mat.Color, Shade: 1}

			var tw, th float64
			if mat.Texture != nil && cache != nil {
				s.Texture = cache.Snapshot(mat.Texture)
				b := s.Texture.Bounds()
				tw, th = float64(b.Dx()), float64(b.Dy())
			}

			switch g.Kind {
			case scene.Triangles:
				for i := 0; i+2 < len(g.Vertices); i += 3 {
					var sv [3]ScreenVertex
					var normal mgl32.Vec3
					for k := 0; k < 3; k++ {
						v := g.Vertices[i+k]
						sv[k] = project(&cam, m, v, tw, th)
						normal = normal.Add(normalMat.Mul3x1(v.Normal))
					}
					if mat.Lighting {
						if l := normal.Len(); l > 1e-6 {
							s.Shade = lc.ComputeShade(normal.Mul(1 / l))
						} else {
							s.Shade = lc.Ambient
						}
					}
					RasterizeTriangle(fb, sv, &s)
				}
			case scene.Lines:
				for i := 0; i+1 < len(g.Vertices); i += 2 {
					a := project(&cam, m, g.Vertices[i], 0, 0)
					b := project(&cam, m, g.Vertices[i+1], 0, 0)
					if !mat.VertexColors {
						a.R, a.G, a.B = float64(mat.Color[0]), float64(mat.Color[1]), float64(mat.Color[2])
						b.R, b.G, b.B = a.R, a.G, a.B
					}
					RasterizeLine(fb, a, b)
				}
			}
		}
	})

	return fb.Image()
}

// project transforms v to the screen. UVs are converted back to texel
// coordinates of a tw×th texture.
func project(cam *Camera, m mgl32.Mat4, v scene.Vertex, tw, th float64) ScreenVertex {
	p := mgl32.TransformCoordinate(v.Position, m)
	x, y, z := cam.Project(p)
	return ScreenVertex{
		X: x, Y: y, Z: z,
		U: (float64(v.UV[0]) - scene.UVBias) * tw,
		V: (1 - (float64(v.UV[1]) - scene.UVBias)) * th,
		R: float64(v.Color[0]),
		G: float64(v.Color[1]),
		B: float64(v.Color[2]),
	}
}
