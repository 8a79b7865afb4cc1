package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Shadow camera defaults for a directional light.
const (
	DefaultShadowMapSize = 2048
	MinShadowMapSize     = 256
	MaxShadowMapSize     = 8192
	DefaultShadowExtent  = 5.0
	DefaultShadowNear    = 0.5
	DefaultShadowFar     = 500.0
)

// Light is a directional light shining from Position towards Target.
type Light struct {
	Position  mgl32.Vec3
	Target    mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32

	CastShadow    bool
	ShadowMapSize int32
	ShadowExtent  float32 // Half-size of the orthographic shadow camera
	ShadowNear    float32
	ShadowFar     float32
	ShadowBias    float32
}

// CreateDirectionalLight creates a light at position aimed at the origin.
func CreateDirectionalLight(position, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Position:      position,
		Color:         color,
		Intensity:     intensity,
		ShadowMapSize: DefaultShadowMapSize,
		ShadowExtent:  DefaultShadowExtent,
		ShadowNear:    DefaultShadowNear,
		ShadowFar:     DefaultShadowFar,
		ShadowBias:    0.0005,
	}
}

// Direction is the unit vector the light travels along.
func (l *Light) Direction() mgl32.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}

// ToLight is the unit vector from a lit surface towards the light.
func (l *Light) ToLight() mgl32.Vec3 {
	return l.Direction().Mul(-1)
}

// LightSpaceMatrix projects world positions into the shadow map.
func (l *Light) LightSpaceMatrix() mgl32.Mat4 {
	up := mgl32.Vec3{0, 1, 0}
	if d := l.Direction(); mgl32.Abs(d.Dot(up)) > 0.999 {
		up = mgl32.Vec3{0, 0, 1}
	}
	view := mgl32.LookAtV(l.Position, l.Target, up)
	e := l.ShadowExtent
	projection := mgl32.Ortho(-e, e, -e, e, l.ShadowNear, l.ShadowFar)
	return projection.Mul4(view)
}
