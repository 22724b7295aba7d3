package readfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Read returns the contents of path. Zstandard-compressed files, detected by
// the .zst extension or the frame magic, are decompressed transparently.
func Read(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("readfile: read %s: %w", path, err)
	}
	if !IsCompressed(path, raw) {
		return raw, nil
	}
	data, err := Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("readfile: decompress %s: %w", path, err)
	}
	return data, nil
}

// IsCompressed reports whether raw should be treated as a zstd stream.
func IsCompressed(path string, raw []byte) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst") || bytes.HasPrefix(raw, zstdMagic)
}

// Decompress decodes a whole zstd stream.
func Decompress(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(raw, nil)
}

// Resolve returns path, or path+".zst" when only the compressed copy exists.
func Resolve(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(path + ".zst"); err == nil {
		return path + ".zst"
	}
	return path
}
