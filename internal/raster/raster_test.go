package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/scene"
	"mmd-renderer/internal/texture"
	"mmd-renderer/internal/tim"
)

func triangle(z float32, c [3]uint8) []scene.Vertex {
	return []scene.Vertex{
		{Position: mgl32.Vec3{0, 0, z}, Color: c},
		{Position: mgl32.Vec3{10, 0, z}, Color: c},
		{Position: mgl32.Vec3{0, 10, z}, Color: c},
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func meshNode(groups ...*scene.Group) *scene.Node {
	n := scene.NewNode("mesh")
	n.Mesh = &scene.Mesh{Groups: groups}
	for range groups {
		n.Mesh.Materials = append(n.Mesh.Materials, &scene.Material{})
	}
	for i, g := range groups {
		g.Material = i
	}
	return n
}

func TestFitCamera(t *testing.T) {
	n := meshNode(&scene.Group{Vertices: triangle(0, [3]uint8{})})
	cam := FitCamera(n, 0, 0, 32, 2)
	if !near(cam.Scale, 2.8) || cam.Center.X != 5 || cam.Center.Y != 5 {
		t.Fatalf("camera = %+v", cam)
	}
	x, y, _ := cam.Project(mgl32.Vec3{0, 10, 0})
	if !near(x, 2) || !near(y, 30) {
		t.Errorf("project = %v, %v", x, y)
	}

	empty := FitCamera(scene.NewNode("empty"), 0, 0, 32, 2)
	if empty.Scale != 1 || empty.Size != 32 {
		t.Errorf("empty camera = %+v", empty)
	}

	big := cam.Scaled(2)
	if big.Size != 64 || !near(big.Scale, 5.6) {
		t.Errorf("scaled = %+v", big)
	}
}

func TestRenderFlatAndDepth(t *testing.T) {
	root := meshNode(
		&scene.Group{Vertices: triangle(0, [3]uint8{})},
		&scene.Group{Vertices: triangle(-5, [3]uint8{})},
	)
	root.Mesh.Materials[0].Color = [3]uint8{255, 0, 0}
	root.Mesh.Materials[1].Color = [3]uint8{0, 255, 0}

	lc := DefaultLightConfig()
	img := Render(root, FitCamera(root, 0, 0, 32, 2), nil, &lc)

	if got := img.NRGBAAt(8, 8); got != (color.NRGBA{0, 255, 0, 255}) {
		t.Errorf("inside = %v, want the nearer green face", got)
	}
	if got := img.NRGBAAt(28, 28); got.A != 0 {
		t.Errorf("outside = %v, want transparent", got)
	}
}

func TestRenderVertexColors(t *testing.T) {
	root := meshNode(&scene.Group{Vertices: triangle(0, [3]uint8{10, 20, 30})})
	root.Mesh.Materials[0].VertexColors = true
	lc := DefaultLightConfig()
	img := Render(root, FitCamera(root, 0, 0, 32, 2), nil, &lc)
	if got := img.NRGBAAt(8, 8); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("vertex color = %v", got)
	}
}

func TestRenderTextureRevision(t *testing.T) {
	atlasImg := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			c := color.NRGBA{0, 0, 255, 255}
			if x >= 4 {
				c = color.NRGBA{255, 0, 0, 255}
			}
			atlasImg.SetNRGBA(x, y, c)
		}
	}
	atlas := tim.NewAtlas(atlasImg)

	uv := func(u, v float32) mgl32.Vec2 {
		return mgl32.Vec2{u/8 + scene.UVBias, (4-v)/4 + scene.UVBias}
	}
	verts := triangle(0, [3]uint8{})
	verts[0].UV = uv(0.5, 0.5)
	verts[1].UV = uv(3.5, 0.5)
	verts[2].UV = uv(0.5, 3.5)
	root := meshNode(&scene.Group{Vertices: verts})
	root.Mesh.Materials[0].Texture = atlas

	cache := texture.NewCache()
	lc := DefaultLightConfig()
	cam := FitCamera(root, 0, 0, 32, 2)

	if got := Render(root, cam, cache, &lc).NRGBAAt(8, 8); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("before patch = %v", got)
	}
	atlas.CopyRect(image.Pt(4, 0), image.Pt(0, 0), 4, 4)
	if got := Render(root, cam, cache, &lc).NRGBAAt(8, 8); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("after patch = %v", got)
	}
	if cache.Uploads() != 2 {
		t.Errorf("uploads = %d", cache.Uploads())
	}
}

func TestRasterizeLine(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	RasterizeLine(fb, ScreenVertex{X: 0, Y: 0, R: 255}, ScreenVertex{X: 7, Y: 7, R: 255})
	img := fb.Image()
	for i := 0; i < 8; i++ {
		if img.NRGBAAt(i, i).A != 255 {
			t.Errorf("pixel %d,%d not drawn", i, i)
		}
	}
	if img.NRGBAAt(7, 0).A != 0 {
		t.Error("off-line pixel drawn")
	}
}

func TestComputeShade(t *testing.T) {
	lc := DefaultLightConfig()
	facing := lc.ComputeShade(lc.LightDir)
	away := lc.ComputeShade(lc.LightDir.Mul(-1))
	side := lc.ComputeShade(mgl32.Vec3{0, 0, 0})
	if side >= facing || side >= away || side < lc.Ambient {
		t.Errorf("shade: side=%v facing=%v away=%v", side, facing, away)
	}
}
