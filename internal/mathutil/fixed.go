package mathutil

import "github.com/go-gl/mathgl/mgl32"

// One is 1.0 in PSX 4.12 fixed point.
const One = 4096

// Fixed12 converts a 4.12 fixed point value.
func Fixed12(v int16) float32 {
	return float32(v) / One
}

// FixedVec3 converts three 4.12 fixed point values.
func FixedVec3(x, y, z int16) mgl32.Vec3 {
	return mgl32.Vec3{Fixed12(x), Fixed12(y), Fixed12(z)}
}
