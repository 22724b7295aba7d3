package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/tim"
)

// Kind is the topology of a primitive group.
type Kind uint8

const (
	Triangles Kind = iota
	Lines
)

// Vertex is one fully expanded corner.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    [3]uint8
	UV       mgl32.Vec2
}

// Material describes how a primitive group is shaded.
type Material struct {
	Lighting     bool
	VertexColors bool
	Color        [3]uint8
	Texture      *tim.Atlas
}

// Group is a run of vertices sharing a material. Triangles use three
// vertices per primitive, lines two.
type Group struct {
	Kind     Kind
	Material int
	Vertices []Vertex
}

// Mesh is the drawable form of one model object.
type Mesh struct {
	Materials []*Material
	Groups    []*Group
}

// Empty reports whether the mesh draws nothing.
func (m *Mesh) Empty() bool {
	for _, g := range m.Groups {
		if len(g.Vertices) > 0 {
			return false
		}
	}
	return true
}

// TriangleCount returns the number of triangles across all groups.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, g := range m.Groups {
		if g.Kind == Triangles {
			n += len(g.Vertices) / 3
		}
	}
	return n
}

// Textures returns the distinct atlases the mesh samples.
func (m *Mesh) Textures() []*tim.Atlas {
	var out []*tim.Atlas
	seen := make(map[*tim.Atlas]bool)
	for _, mat := range m.Materials {
		if mat.Texture != nil && !seen[mat.Texture] {
			seen[mat.Texture] = true
			out = append(out, mat.Texture)
		}
	}
	return out
}

func (m *Mesh) group(kind Kind, material int) *Group {
	for _, g := range m.Groups {
		if g.Kind == kind && g.Material == material {
			return g
		}
	}
	g := &Group{Kind: kind, Material: material}
	m.Groups = append(m.Groups, g)
	return g
}
