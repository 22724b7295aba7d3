package mmd

import "github.com/go-gl/mathgl/mgl32"

// FixedOne is 1.0 in the 4.12 fixed point used for scales and angles.
const FixedOne = 0x1000

// Axis is one of the nine independently keyed transform components.
type Axis uint8

const (
	ScaleX Axis = iota
	ScaleY
	ScaleZ
	RotX
	RotY
	RotZ
	PosX
	PosY
	PosZ
	NumAxes
)

var axisNames = [NumAxes]string{"SX", "SY", "SZ", "RX", "RY", "RZ", "X", "Y", "Z"}

func (a Axis) String() string {
	if a < NumAxes {
		return axisNames[a]
	}
	return "?"
}

// UnitFactor converts a decoded delta to scene units: 1/4096 for scale,
// degrees for rotation, unchanged for position.
func (a Axis) UnitFactor() float32 {
	switch {
	case a <= ScaleZ:
		return 1.0 / FixedOne
	case a <= RotZ:
		return 360.0 / FixedOne
	}
	return 1
}

// Pose is the raw initial transform of one bone.
type Pose struct {
	Scale    [3]int16
	Rotation [3]int16
	Position [3]int16
}

// DefaultPose is unit scale at the origin.
func DefaultPose() Pose {
	return Pose{Scale: [3]int16{FixedOne, FixedOne, FixedOne}}
}

// ScaleVec returns the scale as factors.
func (p Pose) ScaleVec() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.Scale[0]), float32(p.Scale[1]), float32(p.Scale[2])}.Mul(1.0 / FixedOne)
}

// RotationDegrees returns the rotation as Euler angles in degrees.
func (p Pose) RotationDegrees() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.Rotation[0]), float32(p.Rotation[1]), float32(p.Rotation[2])}.Mul(360.0 / FixedOne)
}

// PositionVec returns the translation unscaled.
func (p Pose) PositionVec() mgl32.Vec3 {
	return mgl32.Vec3{float32(p.Position[0]), float32(p.Position[1]), float32(p.Position[2])}
}

// Animation is one decoded animation program.
type Animation struct {
	ID         int
	FrameCount int
	HasScale   bool
	// Poses holds one pose per bone; bone 0 always has DefaultPose.
	Poses        []Pose
	Instructions []Instruction
}
