package mmd

import (
	"fmt"
	"path/filepath"

	"mmd-renderer/internal/cursor"
	"mmd-renderer/internal/readfile"
	"mmd-renderer/internal/tmd"
)

// Header is the 8-byte file header.
type Header struct {
	TMDOffset        uint32
	AnimationsOffset uint32
}

// File is a character model with its animation table.
type File struct {
	Header     Header
	Model      *tmd.Model
	Animations Animations
}

// Decode parses an MMD file held in data.
func Decode(data []byte) (*File, error) {
	c := cursor.New(data)
	if c.BytesAvailable() < 8 {
		return nil, fmt.Errorf("mmd: read header: %w", cursor.ErrShortRead)
	}
	var f File
	f.Header.TMDOffset, _ = c.U32()
	f.Header.AnimationsOffset, _ = c.U32()

	size := uint64(len(data))
	if uint64(f.Header.TMDOffset) >= size {
		return nil, fmt.Errorf("%w: model offset %#x beyond %d bytes", ErrFormat, f.Header.TMDOffset, size)
	}
	if uint64(f.Header.AnimationsOffset) >= size {
		return nil, fmt.Errorf("%w: animation offset %#x beyond %d bytes", ErrFormat, f.Header.AnimationsOffset, size)
	}

	model, err := tmd.Decode(cursor.New(data[f.Header.TMDOffset:]))
	if err != nil {
		return nil, fmt.Errorf("mmd: model: %w", err)
	}
	f.Model = model
	f.Animations = NewAnimations(data[f.Header.AnimationsOffset:])
	return &f, nil
}

// Load reads and decodes the MMD file at path.
func Load(path string) (*File, error) {
	data, err := readfile.Read(readfile.Resolve(path))
	if err != nil {
		return nil, err
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Path returns the location of a character's MMD file inside the game
// directory. Files are grouped thirty characters per folder.
func Path(gameDir string, index int, name string) string {
	return filepath.Join(gameDir, "CHDAT", fmt.Sprintf("MMD%d", index/30), name+".MMD")
}
