package mmd

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"mmd-renderer/internal/cursor"
)

func words(vs ...uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, vs)
	return buf.Bytes()
}

func table(bodies ...[]byte) []byte {
	var buf bytes.Buffer
	off := uint32(4 * len(bodies))
	for _, b := range bodies {
		if b == nil {
			binary.Write(&buf, binary.LittleEndian, uint32(0))
			continue
		}
		binary.Write(&buf, binary.LittleEndian, off)
		off += uint32(len(b))
	}
	for _, b := range bodies {
		buf.Write(b)
	}
	return buf.Bytes()
}

// scaledBody has three bones, scale poses and one keyframe.
func scaledBody() []byte {
	var b []byte
	b = append(b, words(0x8000|10)...)
	b = append(b, words(0x1000, 0x2000, 0x0800, 1024, 0, 0xFC00, 10, 20, 30)...)
	b = append(b, words(0x1000, 0x1000, 0x1000, 0, 0, 0, 0, 0, 0)...)
	b = append(b, words(0x0001, 0x8000|0x101<<6|2, 2, 8192, 0xFFF6)...)
	b = append(b, words(0)...)
	return b
}

// loopBody has no scale poses and exercises every other instruction kind.
func loopBody() []byte {
	var b []byte
	b = append(b, words(5)...)
	b = append(b, words(1, 2, 3, 4, 5, 6)...)
	b = append(b, words(0, 0, 0, 0, 0, 0)...)
	b = append(b, words(0x1003)...)
	b = append(b, words(0x2004, 2)...)
	b = append(b, words(0x3005)...)
	b = append(b, 1, 2, 3, 4, 5, 6)
	b = append(b, words(0x4006)...)
	b = append(b, 9, 1)
	b = append(b, words(0x5000)...)
	b = append(b, words(0x10FF)...)
	b = append(b, words(0)...)
	return b
}

func TestCount(t *testing.T) {
	a := NewAnimations(table(scaledBody(), nil, loopBody()))
	if got := a.Count(); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
	if NewAnimations([]byte{12, 0}).Count() != 0 {
		t.Error("short region should count 0")
	}
	if NewAnimations(nil).Count() != 0 {
		t.Error("empty region should count 0")
	}
}

func TestDecode(t *testing.T) {
	anims, err := NewAnimations(table(scaledBody(), nil, loopBody())).Decode(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(anims) != 3 {
		t.Fatalf("decoded %d animations", len(anims))
	}

	a := anims[0]
	if !a.HasScale || a.FrameCount != 10 || len(a.Poses) != 3 {
		t.Fatalf("anim 0 = %+v", a)
	}
	if a.Poses[0] != DefaultPose() {
		t.Errorf("bone 0 pose = %+v", a.Poses[0])
	}
	p := a.Poses[1]
	if p.Scale != [3]int16{0x1000, 0x2000, 0x0800} || p.Rotation != [3]int16{1024, 0, -1024} || p.Position != [3]int16{10, 20, 30} {
		t.Errorf("bone 1 pose = %+v", p)
	}
	if s := p.ScaleVec(); s[1] != 2 || s[2] != 0.5 {
		t.Errorf("ScaleVec = %v", s)
	}
	if r := p.RotationDegrees(); r[0] != 90 || r[2] != -90 {
		t.Errorf("RotationDegrees = %v", r)
	}

	if len(a.Instructions) != 1 {
		t.Fatalf("anim 0 instructions = %v", a.Instructions)
	}
	k, ok := a.Instructions[0].(Keyframe)
	if !ok || k.Time != 1 || len(k.Entries) != 1 {
		t.Fatalf("keyframe = %+v", a.Instructions[0])
	}
	e := k.Entries[0]
	if e.Node != 2 || e.Scale != 2 || len(e.Values) != 2 {
		t.Fatalf("entry = %+v", e)
	}
	if e.Values[0] != (AxisValue{ScaleX, 4096}) || e.Values[1] != (AxisValue{PosZ, -5}) {
		t.Errorf("values = %+v", e.Values)
	}

	if anims[1].ID != 1 || len(anims[1].Instructions) != 0 || len(anims[1].Poses) != 0 {
		t.Errorf("empty slot = %+v", anims[1])
	}

	b := anims[2]
	if b.HasScale || b.FrameCount != 5 || b.Poses[1].Scale != DefaultPose().Scale {
		t.Errorf("anim 2 header/pose = %+v", b)
	}
	if b.Poses[1].Rotation != [3]int16{1, 2, 3} || b.Poses[1].Position != [3]int16{4, 5, 6} {
		t.Errorf("anim 2 bone 1 = %+v", b.Poses[1])
	}
	want := []Instruction{
		LoopStart{Count: 3},
		LoopEnd{Time: 4, NewTime: 2},
		TextureBlit{Time: 5, SrcY: 1, SrcX: 2, Height: 3, Width: 4, DestY: 5, DestX: 6},
		PlaySound{Time: 6, SoundID: 9, VabID: 1},
		LoopStart{Count: InfiniteLoop},
	}
	if len(b.Instructions) != len(want) {
		t.Fatalf("anim 2 instructions = %+v", b.Instructions)
	}
	for i := range want {
		if b.Instructions[i] != want[i] {
			t.Errorf("instruction %d = %+v, want %+v", i, b.Instructions[i], want[i])
		}
	}
	if _, ok := b.Instructions[0].Timecode(); ok {
		t.Error("loop start must not carry a timecode")
	}
}

func TestDecodeTruncatedClearsTable(t *testing.T) {
	data := table(scaledBody(), loopBody())
	for _, cut := range []int{1, 2, 7} {
		anims, err := NewAnimations(data[:len(data)-cut]).Decode(3)
		if !errors.Is(err, cursor.ErrShortRead) {
			t.Errorf("cut %d: err = %v", cut, err)
		}
		if anims != nil {
			t.Errorf("cut %d: got %d animations, want none", cut, len(anims))
		}
	}

	short := table(words(0x8000 | 1))
	if _, err := NewAnimations(short).Decode(2); !errors.Is(err, cursor.ErrShortRead) {
		t.Errorf("missing pose: %v", err)
	}
}

func TestDecodeOversizedOffsetTable(t *testing.T) {
	data := []byte{0xFC, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}
	anims, err := NewAnimations(data).Decode(2)
	if !errors.Is(err, cursor.ErrShortRead) || anims != nil {
		t.Fatalf("Decode = %d animations, %v", len(anims), err)
	}
}

func TestDecodeZeroScaleEntry(t *testing.T) {
	// Keyframe at 1 for node 1 keying Y and Z with scale 0, then an empty
	// keyframe at 2.
	body := words(1, 0, 0, 0, 0, 0, 0, 0x0001, 0x8000|0x0003<<6|1, 0, 50, 0xFFCE, 0x0002, 0)
	anims, err := NewAnimations(table(body)).Decode(2)
	if err != nil {
		t.Fatal(err)
	}
	ins := anims[0].Instructions
	if len(ins) != 2 {
		t.Fatalf("instructions = %+v", ins)
	}
	e := ins[0].(Keyframe).Entries[0]
	if e.Scale != 0 || len(e.Values) != 2 {
		t.Fatalf("entry = %+v", e)
	}
	for _, v := range e.Values {
		if v.Value != 0 {
			t.Errorf("%s = %v, want 0", v.Axis, v.Value)
		}
	}
	if k := ins[1].(Keyframe); k.Time != 2 || len(k.Entries) != 0 {
		t.Errorf("empty keyframe = %+v", k)
	}
}

func TestFormat(t *testing.T) {
	anims, err := NewAnimations(table(scaledBody(), loopBody())).Decode(3)
	if err != nil {
		t.Fatal(err)
	}
	got := Format(&anims[0])
	want := "BEGIN INSTRUCTIONS\n0: KEYFRAME (TC=1)\n  NODE 2\n    SX 4096\n    Z -5\nEND INSTRUCTIONS\n"
	if got != want {
		t.Errorf("Format =\n%s\nwant\n%s", got, want)
	}

	listing := Format(&anims[1])
	for _, line := range []string{
		"0: START LOOP (3)",
		"1: END LOOP (TC=4, NEWTIME=2)",
		"2: TEXTURE (TC=5)",
		"  SOURCE (2,1) 4x3",
		"  DEST (6,5)",
		"3: PLAY SOUND (TC=6, VAB=1, SOUND=9)",
	} {
		if !strings.Contains(listing, line+"\n") {
			t.Errorf("listing missing %q:\n%s", line, listing)
		}
	}
}

func TestDecodeFile(t *testing.T) {
	model := words(0x41, 0, 0, 0, 0, 0)
	anims := table(loopBody())

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, []uint32{8, uint32(8 + len(model))})
	buf.Write(model)
	buf.Write(anims)

	f, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Model.Objects) != 0 || f.Animations.Count() != 1 {
		t.Errorf("file = %+v", f)
	}

	bad := append([]byte(nil), buf.Bytes()...)
	bad[4] = 0xFF
	bad[5] = 0xFF
	if _, err := Decode(bad); !errors.Is(err, ErrFormat) {
		t.Errorf("bad offset: %v", err)
	}
}

func TestPath(t *testing.T) {
	got := Path("game", 61, "GABUMON")
	want := filepath.Join("game", "CHDAT", "MMD2", "GABUMON.MMD")
	if got != want {
		t.Errorf("Path = %s, want %s", got, want)
	}
}

func TestAxisUnits(t *testing.T) {
	if ScaleY.UnitFactor() != 1.0/4096 || RotZ.UnitFactor() != 360.0/4096 || PosX.UnitFactor() != 1 {
		t.Error("unit factors")
	}
	if PosZ.String() != "Z" || ScaleX.String() != "SX" {
		t.Error("axis names")
	}
}
