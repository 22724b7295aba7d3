package scene

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/mathutil"
	"mmd-renderer/internal/texture"
	"mmd-renderer/internal/tim"
	"mmd-renderer/internal/tmd"
)

const defaultTextureSize = 256

// UVBias is added to both converted texture coordinates.
const UVBias = 0.0001

var (
	defaultNormal = mgl32.Vec3{-1, -1, -1}.Normalize()
	defaultColor  = [3]uint8{127, 127, 127}
	missingColor  = [3]uint8{127, 0, 127}
)

// Converter turns model objects into meshes. Textures are shared through
// the index so every mesh sampling the same page and CLUT row sees the
// same atlas.
type Converter struct {
	Textures *texture.Index
}

type materialKey struct {
	page, bpp, clutY  int
	light, vertColors bool
	color             [3]uint8
}

// Convert builds the mesh for obj. Sprites are not drawn.
func (cv *Converter) Convert(obj *tmd.Object) *Mesh {
	b := builder{cv: cv, obj: obj, mesh: &Mesh{}, index: make(map[materialKey]int)}
	for _, p := range obj.Primitives {
		switch p := p.(type) {
		case *tmd.Polygon:
			b.polygon(p)
		case *tmd.Line:
			b.line(p)
		}
	}
	return b.mesh
}

// Node converts obj into a node carrying its mesh.
func (cv *Converter) Node(name string, obj *tmd.Object) *Node {
	n := NewNode(name)
	if m := cv.Convert(obj); !m.Empty() {
		n.Mesh = m
	}
	return n
}

type builder struct {
	cv    *Converter
	obj   *tmd.Object
	mesh  *Mesh
	index map[materialKey]int
}

func (b *builder) material(k materialKey, mk func() *Material) int {
	if i, ok := b.index[k]; ok {
		return i
	}
	i := len(b.mesh.Materials)
	b.mesh.Materials = append(b.mesh.Materials, mk())
	b.index[k] = i
	return i
}

func (b *builder) plainMaterial(light, vertColors bool, colors []tmd.RGB) int {
	c := missingColor
	if len(colors) == 1 {
		c = [3]uint8{colors[0].R, colors[0].G, colors[0].B}
	}
	k := materialKey{page: -1, bpp: -1, clutY: -1, light: light, vertColors: vertColors, color: c}
	return b.material(k, func() *Material {
		return &Material{Lighting: light, VertexColors: vertColors, Color: c}
	})
}

func (b *builder) polygon(p *tmd.Polygon) {
	for _, v := range p.Vertices {
		if int(v) >= len(b.obj.Vertices) {
			slog.Debug("scene: vertex index out of range", "index", v, "count", len(b.obj.Vertices))
			return
		}
	}
	for _, n := range p.Normals {
		if int(n) >= len(b.obj.Normals) {
			slog.Debug("scene: normal index out of range", "index", n, "count", len(b.obj.Normals))
			return
		}
	}

	light := p.NormalCount() > 0
	vertColors := p.ColorCount() == p.VertexCount()

	mat := -1
	w, h := float32(defaultTextureSize), float32(defaultTextureSize)
	if p.Textured() {
		key := texture.Key{Page: p.Texture.Page(), BPP: p.Texture.BPP(), ClutX: p.CLUT.X(), ClutY: p.CLUT.Y()}
		if atlas := b.cv.textureFor(key); atlas != nil {
			aw, ah := atlas.Size()
			w, h = float32(aw), float32(ah)
			k := materialKey{page: key.Page, bpp: key.BPP, clutY: key.ClutY, light: light, vertColors: vertColors}
			mat = b.material(k, func() *Material {
				return &Material{Lighting: light, VertexColors: vertColors, Color: defaultColor, Texture: atlas}
			})
		}
	}
	if mat < 0 {
		mat = b.plainMaterial(light, vertColors, p.Colors)
	}

	g := b.mesh.group(Triangles, mat)
	order := []int{2, 1, 0}
	if p.Mode.Quad() {
		order = append(order, 1, 2, 3)
	}
	for _, k := range order {
		g.Vertices = append(g.Vertices, b.corner(p, k, w, h))
	}
}

func (cv *Converter) textureFor(k texture.Key) *tim.Atlas {
	if cv.Textures == nil {
		return nil
	}
	return cv.Textures.Lookup(k)
}

func (b *builder) corner(p *tmd.Polygon, k int, w, h float32) Vertex {
	v := b.obj.Vertices[p.Vertices[k]]
	out := Vertex{
		Position: mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)},
		Normal:   defaultNormal,
		Color:    defaultColor,
	}
	if n := len(p.Normals); n > 0 {
		nv := b.obj.Normals[p.Normals[min(k, n-1)]]
		out.Normal = mathutil.FixedVec3(nv.X, nv.Y, nv.Z).Mul(-1)
	}
	if n := len(p.Colors); n > 0 {
		c := p.Colors[min(k, n-1)]
		out.Color = [3]uint8{c.R, c.G, c.B}
	}
	if p.Textured() && k < len(p.UVs) {
		out.UV = convertUV(p.UVs[k], w, h)
	}
	return out
}

func convertUV(uv tmd.UV, w, h float32) mgl32.Vec2 {
	return mgl32.Vec2{
		float32(uv.U)/w + UVBias,
		(h-float32(uv.V))/h + UVBias,
	}
}

func (b *builder) line(l *tmd.Line) {
	for _, v := range l.Vertices {
		if int(v) >= len(b.obj.Vertices) {
			slog.Debug("scene: line vertex out of range", "index", v, "count", len(b.obj.Vertices))
			return
		}
	}
	mat := b.plainMaterial(false, len(l.Colors) == 2, l.Colors)
	g := b.mesh.group(Lines, mat)
	for k, vi := range l.Vertices {
		v := b.obj.Vertices[vi]
		vert := Vertex{
			Position: mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)},
			Normal:   defaultNormal,
			Color:    defaultColor,
		}
		if n := len(l.Colors); n > 0 {
			c := l.Colors[min(k, n-1)]
			vert.Color = [3]uint8{c.R, c.G, c.B}
		}
		g.Vertices = append(g.Vertices, vert)
	}
}
