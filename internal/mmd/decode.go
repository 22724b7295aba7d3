package mmd

import (
	"errors"
	"fmt"
	"log/slog"

	"mmd-renderer/internal/cursor"
)

// ErrFormat reports a structurally invalid MMD file.
var ErrFormat = errors.New("mmd: invalid format")

// Animations is the undecoded animation table of a file. Decoding needs the
// bone count, which lives outside the file.
type Animations struct {
	data []byte
}

// NewAnimations wraps an animation table region.
func NewAnimations(data []byte) Animations {
	return Animations{data: data}
}

// Count returns the number of animation slots. The first offset points just
// past the offset table, so it also gives the table length.
func (a Animations) Count() int {
	first, ok := cursor.New(a.data).PeekU32()
	if !ok {
		return 0
	}
	return int(first / 4)
}

// Decode decodes every slot. Empty slots (offset 0) give an animation with
// no instructions. A truncated body fails the whole table.
func (a Animations) Decode(boneCount int) ([]Animation, error) {
	n := a.Count()
	if n == 0 {
		return nil, nil
	}

	c := cursor.New(a.data)
	if c.BytesAvailable()/4 < n {
		return nil, fmt.Errorf("mmd: read offset table (%d slots): %w", n, cursor.ErrShortRead)
	}
	offsets := make([]uint32, n)
	for i := range offsets {
		offsets[i], _ = c.U32()
	}

	out := make([]Animation, 0, n)
	for i, off := range offsets {
		anim := Animation{ID: i}
		if off != 0 {
			c.Seek(int(off))
			if err := decodeAnimation(c, boneCount, &anim); err != nil {
				return nil, fmt.Errorf("mmd: animation %d at %#x: %w", i, off, err)
			}
		}
		out = append(out, anim)
	}
	return out, nil
}

func decodeAnimation(c *cursor.Cursor, boneCount int, anim *Animation) error {
	header, ok := c.U16()
	if !ok {
		return fmt.Errorf("header: %w", cursor.ErrShortRead)
	}
	anim.HasScale = header&0x8000 != 0
	anim.FrameCount = int(header & 0x7FFF)

	fields := 6
	if anim.HasScale {
		fields = 9
	}
	anim.Poses = make([]Pose, 0, max(boneCount, 1))
	anim.Poses = append(anim.Poses, DefaultPose())
	for i := 1; i < boneCount; i++ {
		if c.BytesAvailable() < fields*2 {
			return fmt.Errorf("pose %d: %w", i, cursor.ErrShortRead)
		}
		p := DefaultPose()
		if anim.HasScale {
			for k := range p.Scale {
				p.Scale[k], _ = c.I16()
			}
		}
		for k := range p.Rotation {
			p.Rotation[k], _ = c.I16()
		}
		for k := range p.Position {
			p.Position[k], _ = c.I16()
		}
		anim.Poses = append(anim.Poses, p)
	}

	for {
		header, ok := c.U16()
		if !ok {
			return fmt.Errorf("instruction %d: %w", len(anim.Instructions), cursor.ErrShortRead)
		}
		if header == 0 {
			return nil
		}

		timecode := header & 0x0FFF
		var (
			ins Instruction
			err error
		)
		switch header >> 12 {
		case kindKeyframe:
			ins, err = decodeKeyframe(c, timecode)
		case kindLoopStart:
			ins = LoopStart{Count: uint8(header)}
		case kindLoopEnd:
			ins, err = decodeLoopEnd(c, timecode)
		case kindTexture:
			ins, err = decodeTextureBlit(c, timecode)
		case kindSound:
			ins, err = decodePlaySound(c, timecode)
		default:
			slog.Debug("mmd: ignoring unknown instruction", "header", header, "index", len(anim.Instructions))
			continue
		}
		if err != nil {
			return fmt.Errorf("instruction %d: %w", len(anim.Instructions), err)
		}
		anim.Instructions = append(anim.Instructions, ins)
	}
}

func decodeKeyframe(c *cursor.Cursor, timecode uint16) (Keyframe, error) {
	k := Keyframe{Time: timecode}
	for {
		next, ok := c.PeekU16()
		if !ok {
			return k, fmt.Errorf("keyframe entry: %w", cursor.ErrShortRead)
		}
		if next&0x8000 == 0 {
			if len(k.Entries) == 0 {
				slog.Debug("mmd: keyframe without entries", "timecode", timecode)
			}
			return k, nil
		}
		e, err := decodeEntry(c)
		if err != nil {
			return k, err
		}
		k.Entries = append(k.Entries, e)
	}
}

// decodeEntry reads one keyframe entry. The entry word holds the node in
// bits 0..5 and the axis mask in bits 6..14; mask bit 8-i keys Axis(i).
// An entry with a zero scale keys its axes to 0.
func decodeEntry(c *cursor.Cursor) (KeyframeEntry, error) {
	if c.BytesAvailable() < 4 {
		return KeyframeEntry{}, fmt.Errorf("keyframe entry header: %w", cursor.ErrShortRead)
	}
	word, _ := c.U16()
	scale, _ := c.U16()
	mask := (word & 0x7FC0) >> 6

	e := KeyframeEntry{Node: uint8(word & 0x3F), Scale: scale}
	if scale == 0 {
		slog.Debug("mmd: keyframe entry with zero scale", "node", e.Node)
	}
	for bit := 8; bit >= 0; bit-- {
		if mask&(1<<bit) == 0 {
			continue
		}
		raw, ok := c.I16()
		if !ok {
			return e, fmt.Errorf("keyframe value: %w", cursor.ErrShortRead)
		}
		v := AxisValue{Axis: Axis(8 - bit)}
		if scale != 0 {
			v.Value = float32(raw) / float32(scale)
		}
		e.Values = append(e.Values, v)
	}
	return e, nil
}

func decodeLoopEnd(c *cursor.Cursor, timecode uint16) (LoopEnd, error) {
	newTime, ok := c.U16()
	if !ok {
		return LoopEnd{}, fmt.Errorf("loop end: %w", cursor.ErrShortRead)
	}
	return LoopEnd{Time: timecode, NewTime: newTime}, nil
}

func decodeTextureBlit(c *cursor.Cursor, timecode uint16) (TextureBlit, error) {
	b, ok := c.Slice(6)
	if !ok {
		return TextureBlit{}, fmt.Errorf("texture blit: %w", cursor.ErrShortRead)
	}
	return TextureBlit{
		Time:   timecode,
		SrcY:   b[0],
		SrcX:   b[1],
		Height: b[2],
		Width:  b[3],
		DestY:  b[4],
		DestX:  b[5],
	}, nil
}

func decodePlaySound(c *cursor.Cursor, timecode uint16) (PlaySound, error) {
	b, ok := c.Slice(2)
	if !ok {
		return PlaySound{}, fmt.Errorf("play sound: %w", cursor.ErrShortRead)
	}
	return PlaySound{Time: timecode, SoundID: b[0], VabID: b[1]}, nil
}
