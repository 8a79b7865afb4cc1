package loader

import (
	"DoorScene/internal/renderer"
	"image"
	"image/color"
	"math"

	"github.com/aquilax/go-perlin"
)

// Fallback textures for when an image asset cannot be read. They keep the
// surface visible and lit plausibly instead of dropping the mesh.

// SolidTexture is a 1x1 texture of c.
func SolidTexture(name string, c color.RGBA, linear bool) *renderer.Texture {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return renderer.NewTexture(name, img, linear)
}

// WhiteTexture stands in for a missing colour map.
func WhiteTexture() *renderer.Texture {
	return SolidTexture("fallback:white", color.RGBA{255, 255, 255, 255}, false)
}

// FlatNormalTexture is a tangent-space normal map pointing straight out.
func FlatNormalTexture() *renderer.Texture {
	return SolidTexture("fallback:normal", color.RGBA{128, 128, 255, 255}, true)
}

// NoiseRoughnessTexture builds a tileable-looking roughness map from Perlin
// noise, centred on base with the given spread. Roughness is stored in the
// green channel like glTF metallic-roughness maps.
func NoiseRoughnessTexture(size int, base, spread float64, seed int64) *renderer.Texture {
	if size < 1 {
		size = 1
	}
	p := perlin.NewPerlin(2, 2, 3, seed)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scale := 8.0 / float64(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			n := p.Noise2D(float64(x)*scale, float64(y)*scale)
			v := math.Max(0, math.Min(1, base+n*spread))
			g := uint8(math.Round(v * 255))
			img.SetRGBA(x, y, color.RGBA{g, g, g, 255})
		}
	}
	return renderer.NewTexture("fallback:roughness", img, true)
}
