package texture

import (
	"bytes"
	"encoding/binary"
	"image"
	"os"
	"path/filepath"
	"testing"

	"mmd-renderer/internal/cursor"
	"mmd-renderer/internal/tim"
)

// tim16 encodes a 16bpp TIM at VRAM (x, y) filled with one color.
func tim16(x, y, w, h uint16, c uint16) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	words := make([]uint16, int(w)*int(h))
	for i := range words {
		words[i] = c
	}
	binary.Write(&buf, le, uint32(tim.Magic))
	binary.Write(&buf, le, uint32(2))
	binary.Write(&buf, le, uint32(12+len(words)*2))
	binary.Write(&buf, le, []uint16{x, y, w, h})
	binary.Write(&buf, le, words)
	return buf.Bytes()
}

func decode(t *testing.T, b []byte) *tim.Image {
	t.Helper()
	img, err := tim.Decode(cursor.New(b))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func TestIndexLookup(t *testing.T) {
	red := decode(t, tim16(64, 0, 2, 2, 0x001F))
	green := decode(t, tim16(64, 0, 2, 2, 0x03E0))
	blue := decode(t, tim16(128, 0, 2, 2, 0x7C00))
	idx := NewIndex(red, green, blue)

	a := idx.Lookup(Key{Page: 1, BPP: 16})
	if a == nil {
		t.Fatal("page 1 not found")
	}
	if got := a.Image().NRGBAAt(0, 0); got.G != 255 || got.R != 0 {
		t.Errorf("page 1 = %v, want the later (green) image", got)
	}
	if again := idx.Lookup(Key{Page: 1, BPP: 16, ClutX: 3}); again != a {
		t.Error("same page, depth and CLUT row should reuse the atlas")
	}
	if idx.Lookup(Key{Page: 2, BPP: 16}) == nil {
		t.Error("page 2 not found")
	}
	if idx.Lookup(Key{Page: 7, BPP: 16}) != nil {
		t.Error("missing page should yield nil")
	}
	if n := len(idx.Atlases()); n != 2 {
		t.Errorf("Atlases = %d, want 2", n)
	}
}

func TestCacheSnapshot(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Pix[0], img.Pix[3] = 10, 255
	a := tim.NewAtlas(img)
	c := NewCache()

	s1 := c.Snapshot(a)
	if s2 := c.Snapshot(a); s2 != s1 || c.Uploads() != 1 {
		t.Fatalf("unchanged atlas re-copied, uploads=%d", c.Uploads())
	}
	if !a.CopyRect(image.Pt(0, 0), image.Pt(1, 0), 1, 1) {
		t.Fatal("CopyRect reported no change")
	}
	s3 := c.Snapshot(a)
	if s3 == s1 || c.Uploads() != 2 {
		t.Fatalf("revision change not picked up, uploads=%d", c.Uploads())
	}
	if s1.Pix[4] != 0 || s3.Pix[4] != 10 {
		t.Errorf("snapshots not independent: old=%d new=%d", s1.Pix[4], s3.Pix[4])
	}
	if c.Snapshot(nil) != nil {
		t.Error("nil atlas")
	}
}

func TestLoadStrided(t *testing.T) {
	const stride = 64
	data := make([]byte, stride*3)
	copy(data, tim16(0, 0, 2, 2, 0x001F))
	copy(data[stride*2:], tim16(64, 0, 2, 2, 0x03E0))
	path := filepath.Join(t.TempDir(), "ALL.TIM")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	imgs, err := LoadStrided(path, stride, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(imgs) != 4 || imgs[0] == nil || imgs[1] != nil || imgs[2] == nil || imgs[3] != nil {
		t.Fatalf("slots = %v", imgs)
	}
	if imgs[2].Page() != 1 {
		t.Errorf("slot 2 page = %d", imgs[2].Page())
	}

	if _, err := LoadTIM(filepath.Join(t.TempDir(), "missing.TIM")); err == nil {
		t.Error("missing file should fail")
	}
	found, err := ScanFile(path)
	if err != nil || len(found) != 2 {
		t.Errorf("ScanFile = %d, %v", len(found), err)
	}
}
