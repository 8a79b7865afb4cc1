package gui

import (
	"math"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
)

// Platform feeds GLFW window state into imgui. Input arrives through the
// engine's listener chain; Platform sits first in it and swallows presses
// that land on a GUI window.
type Platform struct {
	window *glfw.Window
	io     imgui.IO

	time             float64
	mouseJustPressed [3]bool
}

func NewPlatform(window *glfw.Window, io imgui.IO) *Platform {
	p := &Platform{window: window, io: io}
	p.setKeyMapping()
	return p
}

func (p *Platform) setKeyMapping() {
	keys := map[int]glfw.Key{
		imgui.KeyTab:        glfw.KeyTab,
		imgui.KeyLeftArrow:  glfw.KeyLeft,
		imgui.KeyRightArrow: glfw.KeyRight,
		imgui.KeyUpArrow:    glfw.KeyUp,
		imgui.KeyDownArrow:  glfw.KeyDown,
		imgui.KeyPageUp:     glfw.KeyPageUp,
		imgui.KeyPageDown:   glfw.KeyPageDown,
		imgui.KeyHome:       glfw.KeyHome,
		imgui.KeyEnd:        glfw.KeyEnd,
		imgui.KeyInsert:     glfw.KeyInsert,
		imgui.KeyDelete:     glfw.KeyDelete,
		imgui.KeyBackspace:  glfw.KeyBackspace,
		imgui.KeySpace:      glfw.KeySpace,
		imgui.KeyEnter:      glfw.KeyEnter,
		imgui.KeyEscape:     glfw.KeyEscape,
		imgui.KeyA:          glfw.KeyA,
		imgui.KeyC:          glfw.KeyC,
		imgui.KeyV:          glfw.KeyV,
		imgui.KeyX:          glfw.KeyX,
		imgui.KeyY:          glfw.KeyY,
		imgui.KeyZ:          glfw.KeyZ,
	}
	for imguiKey, glfwKey := range keys {
		p.io.KeyMap(imguiKey, int(glfwKey))
	}
}

// DisplaySize is the window size in screen coordinates.
func (p *Platform) DisplaySize() [2]float32 {
	w, h := p.window.GetSize()
	return [2]float32{float32(w), float32(h)}
}

// FramebufferSize is the drawable size in pixels.
func (p *Platform) FramebufferSize() [2]float32 {
	w, h := p.window.GetFramebufferSize()
	return [2]float32{float32(w), float32(h)}
}

// NewFrame updates display size, timing and mouse state ahead of imgui.NewFrame.
func (p *Platform) NewFrame() {
	size := p.DisplaySize()
	p.io.SetDisplaySize(imgui.Vec2{X: size[0], Y: size[1]})

	now := glfw.GetTime()
	if p.time > 0 {
		p.io.SetDeltaTime(float32(now - p.time))
	}
	p.time = now

	if p.window.GetAttrib(glfw.Focused) != 0 {
		x, y := p.window.GetCursorPos()
		p.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		p.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	buttons := []glfw.MouseButton{glfw.MouseButton1, glfw.MouseButton2, glfw.MouseButton3}
	for i, button := range buttons {
		down := p.mouseJustPressed[i] || p.window.GetMouseButton(button) == glfw.Press
		p.io.SetMouseButtonDown(i, down)
		p.mouseJustPressed[i] = false
	}
}

// OnMouseButton consumes presses over GUI windows. Releases always pass on
// so a camera drag that ends above the panel still finishes.
func (p *Platform) OnMouseButton(button int, pressed bool, _, _ float64) bool {
	if !pressed {
		return false
	}
	if button >= 0 && button < len(p.mouseJustPressed) {
		p.mouseJustPressed[button] = true
	}
	return p.io.WantCaptureMouse()
}

func (p *Platform) OnCursorPos(_, _ float64) bool {
	return false
}

func (p *Platform) OnScroll(dx, dy float64) bool {
	if !p.io.WantCaptureMouse() {
		return false
	}
	p.io.AddMouseWheelDelta(float32(dx), float32(dy))
	return true
}

func (p *Platform) OnKey(key glfw.Key, action glfw.Action, _ glfw.ModifierKey) bool {
	switch action {
	case glfw.Press:
		p.io.KeyPress(int(key))
	case glfw.Release:
		p.io.KeyRelease(int(key))
	}
	p.io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
	p.io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
	p.io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
	p.io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	return p.io.WantCaptureKeyboard()
}

func (p *Platform) OnChar(char rune) bool {
	if !p.io.WantCaptureKeyboard() {
		return false
	}
	p.io.AddInputCharacters(string(char))
	return true
}
