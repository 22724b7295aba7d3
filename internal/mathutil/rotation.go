package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Orbit returns the view rotation for a camera turned by yaw around Y and
// then tilted by pitch around X. Angles in degrees.
func Orbit(yaw, pitch float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(pitch)).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(yaw)))
}
