package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrBadEnvironment = errors.New("environment pixel count does not match its size")

// Environment is an equirectangular HDR panorama used both as the scene
// background and as image-based lighting for every material.
type Environment struct {
	Name   string
	Width  int
	Height int
	Pixels []float32 // RGB, row 0 at the top of the panorama

	Intensity  float32
	Background bool

	TextureID uint32
	MaxLod    float32
	vao       uint32
}

// NewEnvironment wraps decoded linear RGB pixels.
func NewEnvironment(name string, width, height int, pixels []float32) (*Environment, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*3 {
		return nil, fmt.Errorf("%w: %dx%d with %d floats", ErrBadEnvironment, width, height, len(pixels))
	}
	return &Environment{
		Name:       name,
		Width:      width,
		Height:     height,
		Pixels:     pixels,
		Intensity:  1.0,
		Background: true,
	}, nil
}

// NewGradientEnvironment builds a small sky-to-ground panorama used when the
// HDR file cannot be read.
func NewGradientEnvironment(sky, horizon, ground mgl32.Vec3) *Environment {
	const w, h = 64, 32
	pixels := make([]float32, 0, w*h*3)
	for y := 0; y < h; y++ {
		// +1 at the top row, -1 at the bottom
		elevation := 1 - 2*(float32(y)+0.5)/h
		var c mgl32.Vec3
		if elevation >= 0 {
			c = horizon.Add(sky.Sub(horizon).Mul(elevation))
		} else {
			c = horizon.Add(ground.Sub(horizon).Mul(-elevation))
		}
		for x := 0; x < w; x++ {
			pixels = append(pixels, c[0], c[1], c[2])
		}
	}
	env, _ := NewEnvironment("gradient", w, h, pixels)
	return env
}

// MipLevels is the number of mip levels of a width x height texture.
func MipLevels(width, height int) int {
	largest := width
	if height > largest {
		largest = height
	}
	if largest <= 0 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(largest)))) + 1
}

// flipRows returns the pixel rows bottom-up, matching GL's texture origin.
func flipRows(pixels []float32, width, height int) []float32 {
	row := width * 3
	out := make([]float32, len(pixels))
	for y := 0; y < height; y++ {
		copy(out[(height-1-y)*row:(height-y)*row], pixels[y*row:(y+1)*row])
	}
	return out
}

// Uploaded reports whether the panorama is on the GPU.
func (e *Environment) Uploaded() bool {
	return e != nil && e.TextureID != 0
}

// Upload creates the mipmapped RGB16F texture. Must run on the GL thread.
func (e *Environment) Upload() error {
	if e.Uploaded() {
		return nil
	}
	if len(e.Pixels) != e.Width*e.Height*3 {
		return ErrBadEnvironment
	}
	flipped := flipRows(e.Pixels, e.Width, e.Height)

	gl.GenTextures(1, &e.TextureID)
	gl.BindTexture(gl.TEXTURE_2D, e.TextureID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB16F, int32(e.Width), int32(e.Height), 0, gl.RGB, gl.FLOAT, gl.Ptr(flipped))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	e.MaxLod = float32(MipLevels(e.Width, e.Height) - 1)
	gl.GenVertexArrays(1, &e.vao)
	e.Pixels = nil
	return nil
}

// RenderBackground draws the panorama behind everything else.
func (e *Environment) RenderBackground(shader *Shader, camera *Camera, exposure float32) {
	if !e.Uploaded() || !e.Background {
		return
	}
	inverse := camera.GetViewProjection().Inv()

	gl.DepthMask(false)
	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)

	shader.Use()
	shader.Uniforms.SetMat4("inverseViewProjection", inverse)
	shader.Uniforms.SetFloat("exposure", exposure*e.Intensity)
	shader.Uniforms.SetInt("environmentMap", unitEnvironment)
	gl.ActiveTexture(gl.TEXTURE0 + unitEnvironment)
	gl.BindTexture(gl.TEXTURE_2D, e.TextureID)

	gl.BindVertexArray(e.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
}

// Delete frees the GPU resources.
func (e *Environment) Delete() {
	if e.TextureID != 0 {
		gl.DeleteTextures(1, &e.TextureID)
		e.TextureID = 0
	}
	if e.vao != 0 {
		gl.DeleteVertexArrays(1, &e.vao)
		e.vao = 0
	}
}
