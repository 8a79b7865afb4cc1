package sketch

import (
	"DoorScene/internal/renderer"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// controlsInput routes window input to the orbit controls. It sits after
// the GUI in the listener chain and never consumes events.
type controlsInput struct {
	controls *renderer.OrbitControls
}

func (c controlsInput) OnMouseButton(button int, pressed bool, x, y float64) bool {
	c.controls.MouseButton(button, pressed, x, y)
	return false
}

func (c controlsInput) OnCursorPos(x, y float64) bool {
	c.controls.MouseMove(x, y)
	return false
}

func (c controlsInput) OnScroll(dx, dy float64) bool {
	c.controls.Scroll(dx, dy)
	return false
}

func (c controlsInput) OnKey(glfw.Key, glfw.Action, glfw.ModifierKey) bool {
	return false
}

func (c controlsInput) OnChar(rune) bool {
	return false
}
