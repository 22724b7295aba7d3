package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EulerToQuat converts Euler angles in degrees to a quaternion using
// half-angle products over (x, y, z).
func EulerToQuat(deg mgl32.Vec3) mgl32.Quat {
	hx := float64(mgl32.DegToRad(deg[0])) / 2
	hy := float64(mgl32.DegToRad(deg[1])) / 2
	hz := float64(mgl32.DegToRad(deg[2])) / 2

	c1, s1 := math.Cos(hx), math.Sin(hx)
	c2, s2 := math.Cos(hy), math.Sin(hy)
	c3, s3 := math.Cos(hz), math.Sin(hz)

	return mgl32.Quat{
		W: float32(c1*c2*c3 - s1*s2*s3),
		V: mgl32.Vec3{
			float32(s1*c2*c3 + c1*s2*s3),
			float32(c1*s2*c3 - s1*c2*s3),
			float32(c1*c2*s3 + s1*s2*c3),
		},
	}
}

// TRS composes translate * rotate * scale.
func TRS(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}
