package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// ShadowMap is the depth-only framebuffer the directional light renders into.
type ShadowMap struct {
	FBO     uint32
	Texture uint32
	Size    int32
}

func NewShadowMap(size int32) (*ShadowMap, error) {
	sm := &ShadowMap{Size: size}

	gl.GenTextures(1, &sm.Texture)
	gl.BindTexture(gl.TEXTURE_2D, sm.Texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, size, size, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := []float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])

	gl.GenFramebuffers(1, &sm.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, sm.Texture, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		sm.Delete()
		return nil, fmt.Errorf("shadow framebuffer incomplete: 0x%x", status)
	}
	return sm, nil
}

// Begin binds the framebuffer and clears depth.
func (sm *ShadowMap) Begin() {
	gl.Viewport(0, 0, sm.Size, sm.Size)
	gl.BindFramebuffer(gl.FRAMEBUFFER, sm.FBO)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	// Front-face culling keeps acne off lit surfaces.
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.FRONT)
}

func (sm *ShadowMap) End() {
	gl.CullFace(gl.BACK)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (sm *ShadowMap) Delete() {
	if sm.FBO != 0 {
		gl.DeleteFramebuffers(1, &sm.FBO)
		sm.FBO = 0
	}
	if sm.Texture != 0 {
		gl.DeleteTextures(1, &sm.Texture)
		sm.Texture = 0
	}
}
