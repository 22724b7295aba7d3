package tmd

import (
	"errors"
	"fmt"

	"mmd-renderer/internal/cursor"
)

var errPacket = errors.New("tmd: malformed packet")

// Header is the 4-byte primitive packet header.
type Header struct {
	OLen  uint8
	ILen  uint8
	Flags Flags
	Mode  Mode
}

// Size returns the packet size in bytes, header included.
func (h Header) Size() int { return 4 + int(h.ILen)*4 }

// Code returns the primitive family.
func (h Header) Code() Code { return h.Mode.Code() }

// Packet returns the header itself.
func (h Header) Packet() Header { return h }

// Primitive is one of *Polygon, *Line or *Sprite.
type Primitive interface {
	Code() Code
	Packet() Header
}

// RGB is an inline primitive color.
type RGB struct{ R, G, B uint8 }

// UV is a texel coordinate inside a texture page.
type UV struct{ U, V uint8 }

// Polygon is a triangle or quad.
type Polygon struct {
	Header
	Texture  TextureInfo
	CLUT     CLUT
	UVs      []UV
	Colors   []RGB
	Normals  []uint16
	Vertices []uint16
}

// VertexCount is 4 for quads, 3 otherwise.
func (p *Polygon) VertexCount() int { return vertexCount(p.Mode) }

// NormalCount is derived from the flag and mode bits.
func (p *Polygon) NormalCount() int { return normalCount(p.Flags, p.Mode) }

// ColorCount is derived from the flag and mode bits.
func (p *Polygon) ColorCount() int { return colorCount(p.Flags, p.Mode) }

// Textured reports whether the polygon samples a texture.
func (p *Polygon) Textured() bool { return p.Mode.Textured() }

func vertexCount(m Mode) int {
	if m.Quad() {
		return 4
	}
	return 3
}

func normalCount(f Flags, m Mode) int {
	switch {
	case f.LightDisabled() || m.Brightness():
		return 0
	case m.Gouraud():
		return vertexCount(m)
	}
	return 1
}

func colorCount(f Flags, m Mode) int {
	switch {
	case f.Gradated():
		return vertexCount(m)
	case f.LightDisabled() && m.Gouraud():
		return vertexCount(m)
	case f.LightDisabled():
		return 1
	case m.Textured():
		return 0
	}
	return 1
}

// Line is a two-point line segment, always unlit.
type Line struct {
	Header
	Colors   []RGB
	Vertices [2]uint16
}

// Gradated reports whether each end has its own color.
func (l *Line) Gradated() bool { return l.Mode.Gouraud() }

// Sprite is a screen-aligned textured rectangle anchored at one vertex.
type Sprite struct {
	Header
	Vertex  uint16
	Texture TextureInfo
	UV      UV
	CLUT    CLUT
	Width   uint16
	Height  uint16
}

// decodePacket interprets one packet. The returned error means the packet
// body did not match its header; the caller skips it.
func decodePacket(h Header, body *cursor.Cursor) (Primitive, error) {
	switch h.Code() {
	case CodePolygon:
		return decodePolygon(h, body)
	case CodeLine:
		return decodeLine(h, body)
	case CodeSprite:
		return decodeSprite(h, body)
	}
	return nil, fmt.Errorf("%w: code %d", errPacket, h.Code())
}

func decodePolygon(h Header, c *cursor.Cursor) (*Polygon, error) {
	p := &Polygon{Header: h}
	nv := p.VertexCount()

	ok := true
	u16 := func() uint16 {
		v, good := c.U16()
		ok = ok && good
		return v
	}
	uv := func() UV {
		u, g1 := c.U8()
		v, g2 := c.U8()
		ok = ok && g1 && g2
		return UV{u, v}
	}

	if h.Mode.Textured() {
		p.UVs = make([]UV, nv)
		p.UVs[0] = uv()
		p.CLUT = CLUT(u16())
		p.UVs[1] = uv()
		p.Texture = TextureInfo(u16())
		p.UVs[2] = uv()
		c.Skip(2)
		if nv == 4 {
			p.UVs[3] = uv()
			c.Skip(2)
		}
	}

	p.Colors = make([]RGB, p.ColorCount())
	for i := range p.Colors {
		p.Colors[i], ok = readRGB(c, ok)
	}

	nn := p.NormalCount()
	p.Normals = make([]uint16, nn)
	p.Vertices = make([]uint16, nv)
	for i := 0; i < nv; i++ {
		if i < nn {
			p.Normals[i] = u16()
		}
		p.Vertices[i] = u16()
	}

	if !ok {
		return nil, fmt.Errorf("%w: polygon body shorter than layout", errPacket)
	}
	return p, nil
}

func decodeLine(h Header, c *cursor.Cursor) (*Line, error) {
	if h.Flags != 0x01 {
		return nil, fmt.Errorf("%w: line flags %#x", errPacket, uint8(h.Flags))
	}
	l := &Line{Header: h}

	ok := true
	var col RGB
	col, ok = readRGB(c, ok)
	l.Colors = append(l.Colors, col)
	if l.Gradated() {
		col, ok = readRGB(c, ok)
		l.Colors = append(l.Colors, col)
	}
	v0, g0 := c.U16()
	v1, g1 := c.U16()
	if !ok || !g0 || !g1 {
		return nil, fmt.Errorf("%w: line body shorter than layout", errPacket)
	}
	l.Vertices = [2]uint16{v0, v1}
	return l, nil
}

func decodeSprite(h Header, c *cursor.Cursor) (*Sprite, error) {
	s := &Sprite{Header: h}
	vert, g0 := c.U16()
	tex, g1 := c.U16()
	u, g2 := c.U8()
	v, g3 := c.U8()
	clut, g4 := c.U16()
	if !(g0 && g1 && g2 && g3 && g4) {
		return nil, fmt.Errorf("%w: sprite body shorter than layout", errPacket)
	}
	s.Vertex = vert
	s.Texture = TextureInfo(tex)
	s.UV = UV{u, v}
	s.CLUT = CLUT(clut)

	switch h.Mode.SpriteSize() {
	case 1:
		s.Width, s.Height = 1, 1
	case 2:
		s.Width, s.Height = 8, 8
	case 3:
		s.Width, s.Height = 16, 16
	default:
		w, gw := c.U16()
		hh, gh := c.U16()
		if !gw || !gh {
			return nil, fmt.Errorf("%w: sprite size missing", errPacket)
		}
		s.Width, s.Height = w, hh
	}
	return s, nil
}

func readRGB(c *cursor.Cursor, ok bool) (RGB, bool) {
	var b [4]byte
	if c.Read(b[:]) != 4 {
		return RGB{}, false
	}
	return RGB{b[0], b[1], b[2]}, ok
}
