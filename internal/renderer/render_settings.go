package renderer

import "github.com/go-gl/mathgl/mgl32"

// RenderSettings are the renderer-level switches of the scene.
type RenderSettings struct {
	// Shadows
	EnableShadows bool    `yaml:"shadows"`
	ShadowBias    float32 `yaml:"shadowBias"`

	// Image based lighting
	EnableImageBasedLighting bool    `yaml:"ibl"`
	EnvironmentIntensity     float32 `yaml:"environmentIntensity"`

	// Tone
	Exposure   float32    `yaml:"exposure"`
	ClearColor mgl32.Vec3 `yaml:"-"` // Used until the environment is ready

	// Anti-Aliasing (AA) - hardware MSAA is requested on window creation
	MSAASamples int `yaml:"msaa"` // 0, 2, 4, 8, 16
}

// DefaultRenderSettings returns the settings the door scene is tuned for.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		EnableShadows:            true,
		ShadowBias:               0.0005,
		EnableImageBasedLighting: true,
		EnvironmentIntensity:     1.0,
		Exposure:                 1.0,
		ClearColor:               mgl32.Vec3{0.6, 0.6, 0.65},
		MSAASamples:              4,
	}
}

// Sanitize snaps MSAA to a supported sample count and keeps the tone
// parameters non-negative.
func (s *RenderSettings) Sanitize() {
	switch {
	case s.MSAASamples <= 0:
		s.MSAASamples = 0
	case s.MSAASamples <= 2:
		s.MSAASamples = 2
	case s.MSAASamples <= 4:
		s.MSAASamples = 4
	case s.MSAASamples <= 8:
		s.MSAASamples = 8
	default:
		s.MSAASamples = 16
	}
	if s.Exposure < 0 {
		s.Exposure = 0
	}
	if s.EnvironmentIntensity < 0 {
		s.EnvironmentIntensity = 0
	}
	if s.ShadowBias < 0 {
		s.ShadowBias = 0
	}
}
