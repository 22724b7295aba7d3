// Package player executes decoded animation programs against a node
// hierarchy, one tick at a time.
package player

import (
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/mmd"
	"mmd-renderer/internal/tim"
)

// Node is the transform the player animates. Rotation is Euler degrees.
type Node interface {
	Position() mgl32.Vec3
	SetPosition(mgl32.Vec3)
	Rotation() mgl32.Vec3
	SetRotation(mgl32.Vec3)
	Scale() mgl32.Vec3
	SetScale(mgl32.Vec3)
}

// Target is what an animation plays on. Node i is bone i of the program.
type Target interface {
	Nodes() []Node
	Textures() []*tim.Atlas
}

// Audio receives sound triggers.
type Audio interface {
	PlaySound(vabID, soundID uint8)
}

// Hooks are optional callbacks fired from Tick.
type Hooks struct {
	// Stepped fires once per tick after dispatch, with the new frame number.
	Stepped func(frame int)
	// Finished fires once when the program counter reaches the end.
	Finished func()
	// Instruction fires before each dispatched instruction.
	Instruction func(index int, ins mmd.Instruction)
}

// Momentum is a per-axis velocity in scene units per tick.
type Momentum [mmd.NumAxes]float32

// State is a copy of the player registers.
type State struct {
	Playing      bool
	Frame        int
	Timecode     int
	PC           int
	LoopJumpback int
	LoopCounter  uint8
}

// Player is the animation interpreter. It is not safe for concurrent use;
// Tick and the renderer reading the target are expected to share a goroutine.
type Player struct {
	Hooks Hooks
	Audio Audio

	target Target
	anim   *mmd.Animation
	state  State

	nodes    []Node
	momentum []Momentum
}

// New returns an idle player bound to target.
func New(target Target) *Player {
	return &Player{target: target}
}

// Start resets all state and begins playing anim, replacing any animation
// in progress. Each bone's initial pose is written to its node.
func (p *Player) Start(anim *mmd.Animation) {
	p.anim = anim
	p.nodes = p.target.Nodes()
	p.momentum = make([]Momentum, len(p.nodes))
	p.state = State{Playing: true, LoopJumpback: -1}

	for i, pose := range anim.Poses {
		if i >= len(p.nodes) {
			break
		}
		n := p.nodes[i]
		n.SetScale(pose.ScaleVec())
		n.SetRotation(pose.RotationDegrees())
		n.SetPosition(pose.PositionVec())
	}
}

// Stop returns to idle without firing Finished.
func (p *Player) Stop() {
	p.state.Playing = false
}

// Playing reports whether ticks still have an effect.
func (p *Player) Playing() bool { return p.state.Playing }

// Snapshot returns the current registers.
func (p *Player) Snapshot() State { return p.state }

// Momentum returns the velocity of node i, zero when out of range.
func (p *Player) Momentum(i int) Momentum {
	if i < 0 || i >= len(p.momentum) {
		return Momentum{}
	}
	return p.momentum[i]
}

// Tick advances one frame and reports whether the player is still playing.
// Ticking an idle player does nothing.
func (p *Player) Tick() bool {
	if !p.state.Playing {
		return false
	}
	p.applyMomentum()

	p.state.Frame++
	p.state.Timecode++

	// At most one loop jump per tick; a second one ends dispatch.
	prog := p.anim.Instructions
	jumps := 0
	for p.state.PC < len(prog) {
		ins := prog[p.state.PC]
		if tc, ok := ins.Timecode(); ok && int(tc) != p.state.Timecode {
			break
		}
		if p.Hooks.Instruction != nil {
			p.Hooks.Instruction(p.state.PC, ins)
		}
		if p.execute(ins) {
			jumps++
		}
		p.state.PC++
		if jumps > 1 {
			break
		}
	}

	if p.Hooks.Stepped != nil {
		p.Hooks.Stepped(p.state.Frame)
	}
	if p.state.PC >= len(prog) {
		p.state.Playing = false
		if p.Hooks.Finished != nil {
			p.Hooks.Finished()
		}
	}
	return p.state.Playing
}

func (p *Player) applyMomentum() {
	for i, n := range p.nodes {
		m := p.momentum[i]
		n.SetPosition(n.Position().Add(mgl32.Vec3{m[mmd.PosX], m[mmd.PosY], m[mmd.PosZ]}))
		n.SetScale(n.Scale().Add(mgl32.Vec3{m[mmd.ScaleX], m[mmd.ScaleY], m[mmd.ScaleZ]}))
		n.SetRotation(n.Rotation().Add(mgl32.Vec3{m[mmd.RotX], m[mmd.RotY], m[mmd.RotZ]}))
	}
}

// execute runs one instruction and reports whether it took a loop jump.
func (p *Player) execute(ins mmd.Instruction) bool {
	switch ins := ins.(type) {
	case mmd.Keyframe:
		p.keyframe(ins)
	case mmd.LoopStart:
		p.state.LoopJumpback = p.state.PC
		p.state.LoopCounter = ins.Count
	case mmd.LoopEnd:
		return p.loopEnd(ins)
	case mmd.TextureBlit:
		p.blit(ins)
	case mmd.PlaySound:
		if p.Audio != nil {
			p.Audio.PlaySound(ins.VabID, ins.SoundID)
		}
	}
	return false
}

func (p *Player) keyframe(k mmd.Keyframe) {
	for _, e := range k.Entries {
		if int(e.Node) >= len(p.momentum) {
			slog.Debug("player: keyframe node out of range", "node", e.Node, "nodes", len(p.momentum))
			continue
		}
		m := &p.momentum[e.Node]
		for _, v := range e.Values {
			m[v.Axis] = v.Value * v.Axis.UnitFactor()
		}
	}
}

func (p *Player) loopEnd(l mmd.LoopEnd) bool {
	c := p.state.LoopCounter
	if c != mmd.InfiniteLoop && c != 0 {
		c--
		p.state.LoopCounter = c
		if c == 0 {
			return false
		}
	}
	p.state.Timecode = int(l.NewTime)
	p.state.PC = p.state.LoopJumpback
	return true
}

// blit applies a VRAM copy once per distinct atlas. X coordinates and
// width are in 16-bit words, four 4bpp pixels each.
func (p *Player) blit(b mmd.TextureBlit) {
	src := image.Pt(int(b.SrcX)*4, int(b.SrcY))
	dst := image.Pt(int(b.DestX)*4, int(b.DestY))
	seen := make(map[*tim.Atlas]bool)
	for _, a := range p.target.Textures() {
		if a == nil || seen[a] {
			continue
		}
		seen[a] = true
		a.CopyRect(src, dst, int(b.Width)*4, int(b.Height))
	}
}
