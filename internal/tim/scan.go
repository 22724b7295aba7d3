package tim

import (
	"encoding/binary"

	"mmd-renderer/internal/cursor"
)

// SeekNext moves c to the next offset holding the TIM magic word.
// It returns false and leaves c at the end when none remains.
func SeekNext(c *cursor.Cursor) bool {
	data := c.Bytes()
	for off := c.Pos(); off+4 <= len(data); off++ {
		if binary.LittleEndian.Uint32(data[off:]) == Magic {
			c.Seek(off)
			return true
		}
	}
	c.Seek(len(data))
	return false
}

// Found is an image located by Scan.
type Found struct {
	Offset int
	Image  *Image
}

// Scan decodes every TIM image it can find in data. Offsets where the magic
// appears but decoding fails are skipped.
func Scan(data []byte) []Found {
	var out []Found
	c := cursor.New(data)
	for SeekNext(c) {
		start := c.Pos()
		img, err := Decode(c)
		if err != nil {
			c.Seek(start + 1)
			continue
		}
		out = append(out, Found{Offset: start, Image: img})
	}
	return out
}
