package gui

import (
	"DoorScene/internal/renderer"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/inkyblackness/imgui-go/v4"
)

const guiVertexShader = `#version 410 core
uniform mat4 ProjMtx;
in vec2 Position;
in vec2 UV;
in vec4 Color;
out vec2 Frag_UV;
out vec4 Frag_Color;
void main()
{
	Frag_UV = UV;
	Frag_Color = Color;
	gl_Position = ProjMtx * vec4(Position.xy, 0, 1);
}
`

const guiFragmentShader = `#version 410 core
uniform sampler2D Texture;
in vec2 Frag_UV;
in vec4 Frag_Color;
out vec4 Out_Color;
void main()
{
	Out_Color = vec4(Frag_Color.rgb, Frag_Color.a * texture(Texture, Frag_UV.st).r);
}
`

// OpenGL3 draws imgui draw lists with a core-profile GL context.
type OpenGL3 struct {
	io imgui.IO

	fontTexture    uint32
	program        uint32
	attribTexture  int32
	attribProjMtx  int32
	attribPosition int32
	attribUV       int32
	attribColor    int32
	vao            uint32
	vbo            uint32
	ebo            uint32
}

func NewOpenGL3(io imgui.IO) (*OpenGL3, error) {
	r := &OpenGL3{io: io}
	if err := r.createDeviceObjects(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *OpenGL3) createDeviceObjects() error {
	vertex, err := renderer.GenShader(guiVertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("gui vertex shader: %w", err)
	}
	fragment, err := renderer.GenShader(guiFragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertex)
		return fmt.Errorf("gui fragment shader: %w", err)
	}
	program, err := renderer.GenShaderProgram(vertex, fragment)
	if err != nil {
		return fmt.Errorf("gui program: %w", err)
	}
	r.program = program

	r.attribTexture = gl.GetUniformLocation(program, gl.Str("Texture\x00"))
	r.attribProjMtx = gl.GetUniformLocation(program, gl.Str("ProjMtx\x00"))
	r.attribPosition = gl.GetAttribLocation(program, gl.Str("Position\x00"))
	r.attribUV = gl.GetAttribLocation(program, gl.Str("UV\x00"))
	r.attribColor = gl.GetAttribLocation(program, gl.Str("Color\x00"))

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	r.createFontsTexture()
	return nil
}

// createFontsTexture uploads the font atlas as a single-channel texture.
func (r *OpenGL3) createFontsTexture() {
	image := r.io.Fonts().TextureDataAlpha8()

	gl.GenTextures(1, &r.fontTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(image.Width), int32(image.Height),
		0, gl.RED, gl.UNSIGNED_BYTE, image.Pixels)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)

	r.io.Fonts().SetTextureID(imgui.TextureID(r.fontTexture))
}

// Render draws drawData over the current framebuffer and restores the GL
// state the scene renderer relies on.
func (r *OpenGL3) Render(displaySize, framebufferSize [2]float32, drawData imgui.DrawData) {
	displayWidth, displayHeight := displaySize[0], displaySize[1]
	fbWidth, fbHeight := framebufferSize[0], framebufferSize[1]
	if fbWidth <= 0 || fbHeight <= 0 {
		return
	}
	drawData.ScaleClipRects(imgui.Vec2{
		X: fbWidth / displayWidth,
		Y: fbHeight / displayHeight,
	})

	var lastBlend, lastCull, lastDepth, lastScissor bool
	lastBlend = gl.IsEnabled(gl.BLEND)
	lastCull = gl.IsEnabled(gl.CULL_FACE)
	lastDepth = gl.IsEnabled(gl.DEPTH_TEST)
	lastScissor = gl.IsEnabled(gl.SCISSOR_TEST)

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)

	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	projection := orthoProjection(displayWidth, displayHeight)
	gl.UseProgram(r.program)
	gl.Uniform1i(r.attribTexture, 0)
	gl.UniformMatrix4fv(r.attribProjMtx, 1, false, &projection[0])
	gl.ActiveTexture(gl.TEXTURE0)

	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	vertexSize, vertexOffsetPos, vertexOffsetUV, vertexOffsetCol := imgui.VertexBufferLayout()
	gl.EnableVertexAttribArray(uint32(r.attribPosition))
	gl.EnableVertexAttribArray(uint32(r.attribUV))
	gl.EnableVertexAttribArray(uint32(r.attribColor))
	gl.VertexAttribPointer(uint32(r.attribPosition), 2, gl.FLOAT, false, int32(vertexSize), gl.PtrOffset(vertexOffsetPos))
	gl.VertexAttribPointer(uint32(r.attribUV), 2, gl.FLOAT, false, int32(vertexSize), gl.PtrOffset(vertexOffsetUV))
	gl.VertexAttribPointer(uint32(r.attribColor), 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), gl.PtrOffset(vertexOffsetCol))

	indexSize := imgui.IndexBufferLayout()
	drawType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		drawType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		gl.BufferData(gl.ARRAY_BUFFER, vertexBufferSize, vertexBuffer, gl.STREAM_DRAW)
		indexBuffer, indexBufferSize := list.IndexBuffer()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufferSize, indexBuffer, gl.STREAM_DRAW)

		indexOffset := 0
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else {
				gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
				clip := cmd.ClipRect()
				gl.Scissor(int32(clip.X), int32(fbHeight)-int32(clip.W), int32(clip.Z-clip.X), int32(clip.W-clip.Y))
				gl.DrawElements(gl.TRIANGLES, int32(cmd.ElementCount()), drawType, gl.PtrOffset(indexOffset))
			}
			indexOffset += cmd.ElementCount() * indexSize
		}
	}

	gl.BindVertexArray(0)
	setEnabled(gl.BLEND, lastBlend)
	setEnabled(gl.CULL_FACE, lastCull)
	setEnabled(gl.DEPTH_TEST, lastDepth)
	setEnabled(gl.SCISSOR_TEST, lastScissor)
	if renderer.Debug {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
}

func setEnabled(capability uint32, enabled bool) {
	if enabled {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

// orthoProjection maps display coordinates, y down, onto clip space.
func orthoProjection(width, height float32) [16]float32 {
	return [16]float32{
		2.0 / width, 0, 0, 0,
		0, 2.0 / -height, 0, 0,
		0, 0, -1, 0,
		-1, 1, 0, 1,
	}
}

func (r *OpenGL3) Dispose() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
		r.ebo = 0
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
	if r.fontTexture != 0 {
		gl.DeleteTextures(1, &r.fontTexture)
		r.io.Fonts().SetTextureID(0)
		r.fontTexture = 0
	}
}
