package renderer

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

var FrustumCullingEnabled bool = true
var FaceCullingEnabled bool = true
var Debug bool = false
var DepthTestEnabled bool = true

// frustumDirty is set by anything that moves the camera or a model; the
// renderer rebuilds its culling frustum only when it is set.
var frustumDirty = true

// Render is the scene renderer the engine drives once per frame.
type Render interface {
	Init(width, height int32, window *glfw.Window) error
	Render(camera *Camera, light *Light)
	AddModel(model *Model)
	RemoveModel(model *Model)
	AddGroup(group *Group)
	SetEnvironment(env *Environment)
	SetPixelRatio(ratio float32)
	SetSize(width, height int32)
	Size() (width, height int32)
	Cleanup()
}
