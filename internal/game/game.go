// Package game reads the character tables of the game executable and the
// shared character texture archive.
package game

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/japanese"

	"mmd-renderer/internal/cursor"
	"mmd-renderer/internal/mmd"
	"mmd-renderer/internal/texture"
	"mmd-renderer/internal/tim"
)

var (
	// ErrNotFound reports a missing game file.
	ErrNotFound = errors.New("game: not found")
	// ErrFormat reports tables that do not fit the executable.
	ErrFormat = errors.New("game: invalid format")
)

const (
	// AllTIMPath holds one texture per character.
	AllTIMPath = "CHDAT/ALLTIM.TIM"
	// AllTIMStride is the slot size of each texture in AllTIMPath.
	AllTIMStride = 0x4800

	fileNameSize = 8
	charInfoSize = 52
	displayName  = 20
	relationSize = 2
	maxBoneCount = 64
	pointerSize  = 4
)

// Info locates the character tables inside one release of the executable.
// LoadAddress is subtracted from skeleton pointers to get file offsets.
type Info struct {
	ExeName         string
	NameOffset      uint32
	CharacterOffset uint32
	SkeletonOffset  uint32
	LoadAddress     uint32
	Count           int
	PAL             bool
}

// SLUS01032 is the NTSC-U release.
var SLUS01032 = Info{
	ExeName:         "SLUS_010.32",
	NameOffset:      0xa3b44,
	CharacterOffset: 0x9ceb4,
	SkeletonOffset:  0x8ce60,
	LoadAddress:     0x80090000,
	Count:           180,
}

// CharacterInfo is one record of the character stats table.
type CharacterInfo struct {
	Name       string
	BoneCount  int32
	Radius     int16
	Height     int16
	Type       uint8
	Level      uint8
	Special    [3]uint8
	DropItem   uint8
	DropChance uint8
	Moves      [16]int8
}

// Relation places one bone: the model object it draws (NoObject for none)
// and the index of its parent bone.
type Relation struct {
	Object uint8
	Parent uint8
}

// NoObject marks a bone without geometry, and the root's parent.
const NoObject = 255

// Character is one entry of the character table.
type Character struct {
	Index    int
	FileName string
	Info     CharacterInfo
	Skeleton []Relation
	// Texture is nil when the archive slot could not be decoded.
	Texture *tim.Image
}

// MMDPath returns the location of the character's model file under dir.
func (c *Character) MMDPath(dir string) string {
	return mmd.Path(dir, c.Index, c.FileName)
}

// Data is everything read from a game directory.
type Data struct {
	Dir        string
	Info       Info
	Characters []Character
}

// Read loads the executable named by info from dir, parses its tables and
// attaches each character's texture from the archive. A missing archive
// leaves every texture nil.
func Read(dir string, info Info) (*Data, error) {
	exePath := filepath.Join(dir, info.ExeName)
	exe, err := os.ReadFile(exePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, exePath)
		}
		return nil, fmt.Errorf("game: read %s: %w", exePath, err)
	}

	chars, err := Parse(exe, info)
	if err != nil {
		return nil, fmt.Errorf("game: parse %s: %w", exePath, err)
	}

	tims, err := texture.LoadStrided(filepath.Join(dir, AllTIMPath), AllTIMStride, len(chars))
	if err != nil {
		slog.Debug("game: no texture archive", "err", err)
	}
	for i := range chars {
		if i < len(tims) {
			chars[i].Texture = tims[i]
		}
	}

	return &Data{Dir: dir, Info: info, Characters: chars}, nil
}

// Parse decodes the name, stats and skeleton tables from exe.
func Parse(exe []byte, info Info) ([]Character, error) {
	c := cursor.New(exe)
	out := make([]Character, 0, info.Count)
	for i := 0; i < info.Count; i++ {
		ch := Character{Index: i}

		name, ok := c.Sub(int(info.NameOffset)+i*fileNameSize, fileNameSize).Slice(fileNameSize)
		if !ok {
			return nil, fmt.Errorf("%w: name %d beyond %d bytes", ErrFormat, i, len(exe))
		}
		ch.FileName = cString(name)

		rec := c.Sub(int(info.CharacterOffset)+i*charInfoSize, charInfoSize)
		if rec.Len() < charInfoSize {
			return nil, fmt.Errorf("%w: character %d beyond %d bytes", ErrFormat, i, len(exe))
		}
		ch.Info = readCharacterInfo(rec)
		if ch.Info.BoneCount < 0 || ch.Info.BoneCount > maxBoneCount {
			return nil, fmt.Errorf("%w: character %d has %d bones", ErrFormat, i, ch.Info.BoneCount)
		}

		ptr := c.Sub(int(info.SkeletonOffset)+i*pointerSize, pointerSize)
		addr, ok := ptr.U32()
		if !ok || addr < info.LoadAddress {
			return nil, fmt.Errorf("%w: skeleton pointer %d", ErrFormat, i)
		}
		n := int(ch.Info.BoneCount)
		skel, ok := c.Sub(int(addr-info.LoadAddress), n*relationSize).Slice(n * relationSize)
		if !ok {
			return nil, fmt.Errorf("%w: skeleton %d at %#x beyond %d bytes", ErrFormat, i, addr, len(exe))
		}
		ch.Skeleton = make([]Relation, n)
		for j := range ch.Skeleton {
			ch.Skeleton[j] = Relation{Object: skel[j*2], Parent: skel[j*2+1]}
		}

		out = append(out, ch)
	}
	return out, nil
}

func readCharacterInfo(c *cursor.Cursor) CharacterInfo {
	var ci CharacterInfo
	name, _ := c.Slice(displayName)
	ci.Name = decodeName(name)
	ci.BoneCount, _ = c.I32()
	ci.Radius, _ = c.I16()
	ci.Height, _ = c.I16()
	ci.Type, _ = c.U8()
	ci.Level, _ = c.U8()
	c.Read(ci.Special[:])
	ci.DropItem, _ = c.U8()
	ci.DropChance, _ = c.U8()
	for i := range ci.Moves {
		v, _ := c.U8()
		ci.Moves[i] = int8(v)
	}
	return ci
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// decodeName converts a Shift-JIS display name. Undecodable names are
// returned as raw bytes.
func decodeName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
