package tmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"mmd-renderer/internal/cursor"
)

func packet(flags, mode byte, body ...byte) []byte {
	for len(body)%4 != 0 {
		body = append(body, 0)
	}
	return append([]byte{0, byte(len(body) / 4), flags, mode}, body...)
}

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func buildModel(verts []Vertex, normals []Normal, packets ...[]byte) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	binary.Write(&buf, le, []uint32{Magic, 0, 1})

	vertOff := uint32(objectHeaderSize)
	normOff := vertOff + uint32(len(verts))*vectorSize
	primOff := normOff + uint32(len(normals))*vectorSize
	binary.Write(&buf, le, []uint32{vertOff, uint32(len(verts)), normOff, uint32(len(normals)), primOff, uint32(len(packets))})
	binary.Write(&buf, le, int32(0))
	for _, v := range verts {
		binary.Write(&buf, le, []int16{v.X, v.Y, v.Z, 0})
	}
	for _, n := range normals {
		binary.Write(&buf, le, []int16{n.X, n.Y, n.Z, 0})
	}
	for _, p := range packets {
		buf.Write(p)
	}
	return buf.Bytes()
}

func TestPolygonCounts(t *testing.T) {
	const (
		lgt  = Flags(1)
		grd  = Flags(4)
		tge  = Mode(0x01)
		tme  = Mode(0x04)
		quad = Mode(0x08)
		iip  = Mode(0x10)
	)
	tests := []struct {
		name                      string
		flags                     Flags
		mode                      Mode
		vertices, normals, colors int
	}{
		{"flat lit triangle", 0, 0, 3, 1, 1},
		{"gouraud lit quad", 0, quad | iip, 4, 4, 1},
		{"textured gouraud quad", 0, tme | quad | iip, 4, 4, 0},
		{"textured flat triangle", 0, tme, 3, 1, 0},
		{"gradated lit triangle", grd, 0, 3, 1, 3},
		{"unlit flat quad", lgt, quad, 4, 0, 1},
		{"unlit gouraud quad", lgt, quad | iip, 4, 0, 4},
		{"unlit textured triangle", lgt, tme, 3, 0, 1},
		{"brightness textured", 0, tme | tge, 3, 0, 0},
		{"gradated unlit triangle", lgt | grd, 0, 3, 0, 3},
	}
	for _, tt := range tests {
		p := &Polygon{Header: Header{Flags: tt.flags, Mode: 0x20 | tt.mode}}
		if p.VertexCount() != tt.vertices || p.NormalCount() != tt.normals || p.ColorCount() != tt.colors {
			t.Errorf("%s: counts = %d/%d/%d, want %d/%d/%d", tt.name,
				p.VertexCount(), p.NormalCount(), p.ColorCount(),
				tt.vertices, tt.normals, tt.colors)
		}
	}
}

func TestBitFields(t *testing.T) {
	clut := CLUT(3 | 480<<6)
	if clut.X() != 3 || clut.Y() != 480 {
		t.Errorf("CLUT = (%d,%d)", clut.X(), clut.Y())
	}
	tex := TextureInfo(5 | 2<<5 | 1<<7)
	if tex.Page() != 5 || tex.Mixture() != 2 || tex.ColorMode() != 1 || tex.BPP() != 8 {
		t.Errorf("texture info = page %d mix %d mode %d bpp %d", tex.Page(), tex.Mixture(), tex.ColorMode(), tex.BPP())
	}
	if TextureInfo(3 << 7).BPP() != 0 {
		t.Error("reserved color mode should map to 0 bpp")
	}
	if Mode(0x7C).Code() != CodeSprite || Mode(0x3C).Code() != CodePolygon {
		t.Error("mode code extraction")
	}
	if Mode(0x70).SpriteSize() != 2 {
		t.Errorf("sprite size = %d", Mode(0x70).SpriteSize())
	}
}

func TestDecodeTexturedGouraudQuad(t *testing.T) {
	body := cat(
		[]byte{10, 11}, le16(3|480<<6),
		[]byte{20, 21}, le16(5|1<<7),
		[]byte{30, 31}, []byte{0, 0},
		[]byte{40, 41}, []byte{0, 0},
		le16(0), le16(0), le16(1), le16(1), le16(2), le16(2), le16(3), le16(3),
	)
	verts := []Vertex{{0, 0, 0}, {100, 0, 0}, {0, 100, 0}, {100, 100, -5}}
	norms := []Normal{{0, 0, 4096}, {0, 0, 4096}, {0, 0, 4096}, {0, 0, 4096}}
	data := buildModel(verts, norms, packet(0, 0x3C, body...))

	m, err := Decode(cursor.New(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Objects) != 1 || len(m.Objects[0].Primitives) != 1 {
		t.Fatalf("objects = %+v", m.Objects)
	}
	obj := m.Objects[0]
	if len(obj.Vertices) != 4 || obj.Vertices[3] != (Vertex{100, 100, -5}) {
		t.Errorf("vertices = %v", obj.Vertices)
	}
	p, ok := obj.Primitives[0].(*Polygon)
	if !ok {
		t.Fatalf("primitive is %T", obj.Primitives[0])
	}
	if p.VertexCount() != 4 || p.NormalCount() != 4 || p.ColorCount() != 0 {
		t.Errorf("counts = %d/%d/%d", p.VertexCount(), p.NormalCount(), p.ColorCount())
	}
	wantUV := []UV{{10, 11}, {20, 21}, {30, 31}, {40, 41}}
	for i, uv := range wantUV {
		if p.UVs[i] != uv {
			t.Errorf("uv%d = %v, want %v", i, p.UVs[i], uv)
		}
	}
	if p.CLUT.X() != 3 || p.CLUT.Y() != 480 || p.Texture.Page() != 5 || p.Texture.BPP() != 8 {
		t.Errorf("clut=%d,%d page=%d bpp=%d", p.CLUT.X(), p.CLUT.Y(), p.Texture.Page(), p.Texture.BPP())
	}
	for i := 0; i < 4; i++ {
		if p.Vertices[i] != uint16(i) || p.Normals[i] != uint16(i) {
			t.Errorf("slot %d: vertex %d normal %d", i, p.Vertices[i], p.Normals[i])
		}
	}
	box := obj.Bounds()
	if box.Max.X != 100 || box.Min.Z != -5 {
		t.Errorf("bounds = %+v", box)
	}
}

func TestDecodeFlatTriangleInterleave(t *testing.T) {
	body := cat([]byte{1, 2, 3, 0}, le16(0), le16(2), le16(1), le16(0))
	data := buildModel([]Vertex{{}, {1, 0, 0}, {0, 1, 0}}, []Normal{{0, -4096, 0}}, packet(0, 0x20, body...))
	m, err := Decode(cursor.New(data))
	if err != nil {
		t.Fatal(err)
	}
	p := m.Objects[0].Primitives[0].(*Polygon)
	if len(p.Colors) != 1 || p.Colors[0] != (RGB{1, 2, 3}) {
		t.Errorf("colors = %v", p.Colors)
	}
	if len(p.Normals) != 1 || p.Normals[0] != 0 {
		t.Errorf("normals = %v", p.Normals)
	}
	if p.Vertices[0] != 2 || p.Vertices[1] != 1 || p.Vertices[2] != 0 {
		t.Errorf("vertices = %v", p.Vertices)
	}
}

func TestDecodeLinesSpritesAndSkips(t *testing.T) {
	gradLine := packet(0x01, 0x50, cat([]byte{255, 0, 0, 0}, []byte{0, 255, 0, 0}, le16(0), le16(1))...)
	litLine := packet(0x00, 0x40, cat([]byte{1, 1, 1, 0}, le16(0), le16(1))...)
	invalid := packet(0x00, 0x00, 0xDE, 0xAD, 0xBE, 0xEF, 0xDE, 0xAD, 0xBE, 0xEF)
	sprite8 := packet(0x00, 0x70, cat(le16(1), le16(7), []byte{4, 5}, le16(2|10<<6))...)
	spriteFree := packet(0x00, 0x60, cat(le16(0), le16(0), []byte{0, 0}, le16(0), le16(24), le16(40))...)
	shortPoly := packet(0x00, 0x28, 1, 2, 3, 0)

	data := buildModel([]Vertex{{}, {1, 1, 1}}, nil, gradLine, litLine, invalid, sprite8, spriteFree, shortPoly)
	m, err := Decode(cursor.New(data))
	if err != nil {
		t.Fatal(err)
	}
	obj := m.Objects[0]
	if obj.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", obj.Skipped)
	}
	if len(obj.Primitives) != 3 {
		t.Fatalf("decoded %d primitives, want 3", len(obj.Primitives))
	}

	l, ok := obj.Primitives[0].(*Line)
	if !ok || !l.Gradated() || len(l.Colors) != 2 || l.Colors[1] != (RGB{0, 255, 0}) || l.Vertices != [2]uint16{0, 1} {
		t.Errorf("line = %+v", obj.Primitives[0])
	}

	s, ok := obj.Primitives[1].(*Sprite)
	if !ok || s.Width != 8 || s.Height != 8 || s.Vertex != 1 || s.Texture.Page() != 7 || s.UV != (UV{4, 5}) || s.CLUT.Y() != 10 {
		t.Errorf("sprite = %+v", obj.Primitives[1])
	}
	s, ok = obj.Primitives[2].(*Sprite)
	if !ok || s.Width != 24 || s.Height != 40 {
		t.Errorf("free sprite = %+v", obj.Primitives[2])
	}
}

func TestDecodeErrors(t *testing.T) {
	good := buildModel([]Vertex{{}, {}, {}}, nil)

	bad := append([]byte(nil), good...)
	bad[0] = 0x42
	if _, err := Decode(cursor.New(bad)); !errors.Is(err, ErrFormat) {
		t.Errorf("bad magic: %v", err)
	}

	if _, err := Decode(cursor.New(good[:len(good)-4])); !errors.Is(err, cursor.ErrShortRead) {
		t.Errorf("truncated vertices: %v", err)
	}

	if _, err := Decode(cursor.New(good[:20])); !errors.Is(err, cursor.ErrShortRead) {
		t.Errorf("truncated object table: %v", err)
	}

	withPacket := buildModel([]Vertex{{}}, nil, packet(0x01, 0x40, make([]byte, 12)...))
	if _, err := Decode(cursor.New(withPacket[:len(withPacket)-2])); !errors.Is(err, cursor.ErrShortRead) {
		t.Errorf("truncated packet: %v", err)
	}
}
