package mmd

// Instruction is one of Keyframe, LoopStart, LoopEnd, TextureBlit or PlaySound.
type Instruction interface {
	// Timecode returns the frame the instruction waits for. Instructions
	// without a timecode run as soon as the program counter reaches them.
	Timecode() (uint16, bool)
}

// Instruction kinds, from the top nibble of the header word.
const (
	kindKeyframe  = 0x0
	kindLoopStart = 0x1
	kindLoopEnd   = 0x2
	kindTexture   = 0x3
	kindSound     = 0x4
)

// AxisValue is a keyed delta, already divided by the entry scale.
type AxisValue struct {
	Axis  Axis
	Value float32
}

// KeyframeEntry keys a set of axes on one node.
type KeyframeEntry struct {
	Node   uint8
	Scale  uint16
	Values []AxisValue
}

// Keyframe sets node velocities.
type Keyframe struct {
	Time    uint16
	Entries []KeyframeEntry
}

func (k Keyframe) Timecode() (uint16, bool) { return k.Time, true }

// InfiniteLoop is the LoopStart count that never runs out.
const InfiniteLoop = 255

// LoopStart marks the loop body start.
type LoopStart struct {
	Count uint8
}

func (LoopStart) Timecode() (uint16, bool) { return 0, false }

// LoopEnd jumps back to the loop start and rewinds the clock to NewTime.
type LoopEnd struct {
	Time    uint16
	NewTime uint16
}

func (l LoopEnd) Timecode() (uint16, bool) { return l.Time, true }

// TextureBlit copies a VRAM rectangle inside the character texture.
// X coordinates and width are in 16-bit VRAM words.
type TextureBlit struct {
	Time          uint16
	SrcX, SrcY    uint8
	Width, Height uint8
	DestX, DestY  uint8
}

func (t TextureBlit) Timecode() (uint16, bool) { return t.Time, true }

// PlaySound triggers a sound from a VAB bank.
type PlaySound struct {
	Time    uint16
	VabID   uint8
	SoundID uint8
}

func (p PlaySound) Timecode() (uint16, bool) { return p.Time, true }
