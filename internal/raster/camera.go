package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/spatial/r3"

	"mmd-renderer/internal/mathutil"
	"mmd-renderer/internal/scene"
)

// Camera is an orthographic view framing a model.
type Camera struct {
	View   mgl32.Mat4
	Center r3.Vec // view space
	Scale  float64
	Size   int
}

// FitCamera frames every mesh vertex under root, as currently posed, in a
// size×size image with margin pixels on each side. Angles in degrees.
func FitCamera(root *scene.Node, yaw, pitch float32, size, margin int) Camera {
	view := mathutil.Orbit(yaw, pitch)
	box, ok := ViewBounds(root, view)

	cam := Camera{View: view, Size: size, Scale: 1}
	if !ok {
		return cam
	}
	cam.Center = r3.Scale(0.5, r3.Add(box.Min, box.Max))

	span := math.Max(box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)
	if span < 0.001 {
		span = 0.001
	}
	avail := float64(size - 2*margin)
	if avail < 1 {
		avail = 1
	}
	cam.Scale = avail / span
	return cam
}

// ViewBounds returns the box of every mesh vertex under root after the
// world and view transforms. ok is false when there are no vertices.
func ViewBounds(root *scene.Node, view mgl32.Mat4) (box r3.Box, ok bool) {
	box = r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	root.Walk(func(n *scene.Node, world mgl32.Mat4) {
		if n.Mesh == nil {
			return
		}
		m := view.Mul4(world)
		for _, g := range n.Mesh.Groups {
			for _, v := range g.Vertices {
				p := mgl32.TransformCoordinate(v.Position, m)
				box.Min.X = math.Min(box.Min.X, float64(p[0]))
				box.Min.Y = math.Min(box.Min.Y, float64(p[1]))
				box.Min.Z = math.Min(box.Min.Z, float64(p[2]))
				box.Max.X = math.Max(box.Max.X, float64(p[0]))
				box.Max.Y = math.Max(box.Max.Y, float64(p[1]))
				box.Max.Z = math.Max(box.Max.Z, float64(p[2]))
				ok = true
			}
		}
	})
	return box, ok
}

// Project maps a view space point to pixel coordinates and depth.
// Model space is y-down, like the image, so y is not flipped.
func (c *Camera) Project(p mgl32.Vec3) (x, y, z float64) {
	half := float64(c.Size) / 2
	x = (float64(p[0])-c.Center.X)*c.Scale + half
	y = (float64(p[1])-c.Center.Y)*c.Scale + half
	z = -(float64(p[2]) - c.Center.Z)
	return x, y, z
}

// Scaled returns the camera for an image factor times larger.
func (c Camera) Scaled(factor int) Camera {
	c.Scale *= float64(factor)
	c.Size *= factor
	return c
}
