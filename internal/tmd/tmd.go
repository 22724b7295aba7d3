package tmd

import (
	"errors"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"mmd-renderer/internal/cursor"
)

// Magic is the first word of a TMD model.
const Magic = 0x41

const (
	headerSize       = 12
	objectHeaderSize = 28
	vectorSize       = 8
)

// ErrFormat reports a structurally invalid model.
var ErrFormat = errors.New("tmd: invalid format")

// Vertex is a model-space position. The fourth field of the record is ignored.
type Vertex struct{ X, Y, Z int16 }

// Normal is a 4.12 fixed point direction.
type Normal struct{ X, Y, Z int16 }

// ObjectHeader is one entry of the object table. Offsets are relative to
// the end of the model header.
type ObjectHeader struct {
	VertexOffset    uint32
	VertexCount     uint32
	NormalOffset    uint32
	NormalCount     uint32
	PrimitiveOffset uint32
	PrimitiveCount  uint32
	Scale           int32
}

// Object owns its vertex and normal pools and the primitives indexing them.
type Object struct {
	Scale      int32
	Vertices   []Vertex
	Normals    []Normal
	Primitives []Primitive
	// Skipped counts packets that were stepped over without being decoded.
	Skipped int
}

// Bounds returns the box enclosing all vertices.
func (o *Object) Bounds() r3.Box {
	if len(o.Vertices) == 0 {
		return r3.Box{}
	}
	v := o.Vertices[0]
	box := r3.Box{Min: vec(v), Max: vec(v)}
	for _, v := range o.Vertices[1:] {
		p := vec(v)
		box = box.Union(r3.Box{Min: p, Max: p})
	}
	return box
}

func vec(v Vertex) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Model is a decoded TMD scene.
type Model struct {
	Flags   uint32
	Objects []Object
}

// Bounds returns the box enclosing every object.
func (m *Model) Bounds() r3.Box {
	var box r3.Box
	first := true
	for i := range m.Objects {
		if len(m.Objects[i].Vertices) == 0 {
			continue
		}
		b := m.Objects[i].Bounds()
		if first {
			box, first = b, false
			continue
		}
		box = box.Union(b)
	}
	return box
}

// Decode reads a TMD model. The cursor region must start at the model header;
// object offsets are resolved against that region.
func Decode(c *cursor.Cursor) (*Model, error) {
	base := c.Pos()
	if c.BytesAvailable() < headerSize {
		return nil, fmt.Errorf("tmd: read header: %w", cursor.ErrShortRead)
	}
	magic, _ := c.U32()
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %#x", ErrFormat, magic)
	}
	flags, _ := c.U32()
	count, _ := c.U32()

	if uint64(c.BytesAvailable()) < uint64(count)*objectHeaderSize {
		return nil, fmt.Errorf("tmd: read %d object headers: %w", count, cursor.ErrShortRead)
	}
	headers := make([]ObjectHeader, count)
	for i := range headers {
		h := &headers[i]
		h.VertexOffset, _ = c.U32()
		h.VertexCount, _ = c.U32()
		h.NormalOffset, _ = c.U32()
		h.NormalCount, _ = c.U32()
		h.PrimitiveOffset, _ = c.U32()
		h.PrimitiveCount, _ = c.U32()
		h.Scale, _ = c.I32()
	}

	m := &Model{Flags: flags, Objects: make([]Object, count)}
	tables := base + headerSize
	for i, h := range headers {
		if err := decodeObject(c, tables, h, &m.Objects[i]); err != nil {
			return nil, fmt.Errorf("tmd: object %d: %w", i, err)
		}
	}
	return m, nil
}

func decodeObject(c *cursor.Cursor, tables int, h ObjectHeader, obj *Object) error {
	obj.Scale = h.Scale

	var err error
	obj.Vertices, err = readVectors(c, tables, h.VertexOffset, h.VertexCount, func(x, y, z int16) Vertex {
		return Vertex{x, y, z}
	})
	if err != nil {
		return fmt.Errorf("read vertices: %w", err)
	}
	obj.Normals, err = readVectors(c, tables, h.NormalOffset, h.NormalCount, func(x, y, z int16) Normal {
		return Normal{x, y, z}
	})
	if err != nil {
		return fmt.Errorf("read normals: %w", err)
	}

	c.Seek(tables + int(h.PrimitiveOffset))
	if h.PrimitiveCount > 0 && uint64(tables)+uint64(h.PrimitiveOffset) > uint64(c.Len()) {
		return fmt.Errorf("primitive offset %#x: %w", h.PrimitiveOffset, cursor.ErrShortRead)
	}
	for i := uint32(0); i < h.PrimitiveCount; i++ {
		var raw [4]byte
		if c.Peek(raw[:]) != 4 {
			return fmt.Errorf("primitive %d header: %w", i, cursor.ErrShortRead)
		}
		hdr := Header{OLen: raw[0], ILen: raw[1], Flags: Flags(raw[2]), Mode: Mode(raw[3])}
		packet, ok := c.Slice(hdr.Size())
		if !ok {
			return fmt.Errorf("primitive %d packet (%d bytes): %w", i, hdr.Size(), cursor.ErrShortRead)
		}

		body := cursor.New(packet)
		body.Skip(4)
		prim, err := decodePacket(hdr, body)
		if err != nil {
			slog.Debug("tmd: skipping primitive", "primitive", i, "code", hdr.Code(), "err", err)
			obj.Skipped++
			continue
		}
		obj.Primitives = append(obj.Primitives, prim)
	}
	return nil
}

func readVectors[T any](c *cursor.Cursor, tables int, offset, count uint32, mk func(x, y, z int16) T) ([]T, error) {
	start := uint64(tables) + uint64(offset)
	if start+uint64(count)*vectorSize > uint64(c.Len()) {
		return nil, fmt.Errorf("%d records at %#x: %w", count, offset, cursor.ErrShortRead)
	}
	out := make([]T, count)
	r := c.Sub(int(start), int(count)*vectorSize)
	for i := range out {
		x, _ := r.I16()
		y, _ := r.I16()
		z, _ := r.I16()
		r.Skip(2)
		out[i] = mk(x, y, z)
	}
	return out, nil
}
