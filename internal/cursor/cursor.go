package cursor

import (
	"encoding/binary"
	"errors"
)

// ErrShortRead reports that a region held fewer bytes than a decoder needed.
var ErrShortRead = errors.New("cursor: short read")

// Cursor is a bounds-checked reader over a fixed byte region.
// The position always stays within [0, len(data)] and reads are
// clamped to the bytes that remain, so a Cursor never faults.
type Cursor struct {
	data []byte
	off  int
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Bytes returns the whole underlying region.
func (c *Cursor) Bytes() []byte { return c.data }

// Len returns the size of the region.
func (c *Cursor) Len() int { return len(c.data) }

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.off }

// Seek moves to pos, clamped to the region.
func (c *Cursor) Seek(pos int) {
	switch {
	case pos < 0:
		c.off = 0
	case pos > len(c.data):
		c.off = len(c.data)
	default:
		c.off = pos
	}
}

// Skip advances the position by n bytes, clamped to the region.
func (c *Cursor) Skip(n int) {
	c.Seek(c.off + n)
}

// BytesAvailable returns the number of unread bytes.
func (c *Cursor) BytesAvailable() int {
	return len(c.data) - c.off
}

// AtEnd reports whether no bytes remain.
func (c *Cursor) AtEnd() bool {
	return c.off >= len(c.data)
}

// Peek copies up to len(buf) bytes without moving and returns the count copied.
func (c *Cursor) Peek(buf []byte) int {
	return copy(buf, c.data[c.off:])
}

// Read copies up to len(buf) bytes, advances past them and returns the count.
func (c *Cursor) Read(buf []byte) int {
	n := c.Peek(buf)
	c.off += n
	return n
}

// Sub returns a new cursor over n bytes starting at absolute offset off.
// The window is clamped to the region.
func (c *Cursor) Sub(off, n int) *Cursor {
	if off < 0 {
		off = 0
	}
	if off > len(c.data) {
		off = len(c.data)
	}
	end := off + n
	if n < 0 || end > len(c.data) {
		end = len(c.data)
	}
	return &Cursor{data: c.data[off:end]}
}

// Slice returns the next n bytes without copying and advances past them.
// ok is false when fewer than n bytes remain; nothing is consumed then.
func (c *Cursor) Slice(n int) ([]byte, bool) {
	if n < 0 || n > c.BytesAvailable() {
		return nil, false
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, true
}

// U8 reads one byte. On a short read the position moves to the end.
func (c *Cursor) U8() (uint8, bool) {
	if c.off+1 > len(c.data) {
		c.off = len(c.data)
		return 0, false
	}
	v := c.data[c.off]
	c.off++
	return v, true
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, bool) {
	v, ok := c.PeekU16()
	if !ok {
		c.off = len(c.data)
		return 0, false
	}
	c.off += 2
	return v, true
}

// PeekU16 reads a little-endian uint16 without advancing.
func (c *Cursor) PeekU16() (uint16, bool) {
	if c.off+2 > len(c.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(c.data[c.off:]), true
}

// I16 reads a little-endian int16.
func (c *Cursor) I16() (int16, bool) {
	v, ok := c.U16()
	return int16(v), ok
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, bool) {
	v, ok := c.PeekU32()
	if !ok {
		c.off = len(c.data)
		return 0, false
	}
	c.off += 4
	return v, true
}

// PeekU32 reads a little-endian uint32 without advancing.
func (c *Cursor) PeekU32() (uint32, bool) {
	if c.off+4 > len(c.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(c.data[c.off:]), true
}

// I32 reads a little-endian int32.
func (c *Cursor) I32() (int32, bool) {
	v, ok := c.U32()
	return int32(v), ok
}
