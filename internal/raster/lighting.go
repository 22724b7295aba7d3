package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightConfig holds the directional light used for lit materials.
type LightConfig struct {
	LightDir mgl32.Vec3
	Ambient  float64
	Hemi     float64
	Direct   float64
}

// DefaultLightConfig returns a key light from the upper front left.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: mgl32.Vec3{-0.4, -0.7, -0.6}.Normalize(),
		Ambient:  0.45,
		Hemi:     0.20,
		Direct:   0.60,
	}
}

// ComputeShade returns the lighting scalar for a view space normal.
// Faces are lit from both sides.
func (lc *LightConfig) ComputeShade(normal mgl32.Vec3) float64 {
	ndl := math.Abs(float64(normal.Dot(lc.LightDir)))

	// Hemisphere fill, Y points down
	hemi := (1.0 - float64(normal[1])) * 0.5 * lc.Hemi

	return lc.Ambient + hemi + ndl*lc.Direct
}
