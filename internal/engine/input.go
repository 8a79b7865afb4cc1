package engine

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// InputListener receives window input. Each method reports whether it
// consumed the event; consumed events stop at that listener.
type InputListener interface {
	OnMouseButton(button int, pressed bool, x, y float64) bool
	OnCursorPos(x, y float64) bool
	OnScroll(dx, dy float64) bool
	OnKey(key glfw.Key, action glfw.Action, mods glfw.ModifierKey) bool
	OnChar(char rune) bool
}

// dispatch offers an event to listeners in order until one consumes it.
func dispatch(listeners []InputListener, event func(InputListener) bool) {
	for _, l := range listeners {
		if event(l) {
			return
		}
	}
}

func (gopher *Gopher) installInputCallbacks() {
	w := gopher.window
	w.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		x, y := w.GetCursorPos()
		pressed := action == glfw.Press
		dispatch(gopher.inputListeners, func(l InputListener) bool {
			return l.OnMouseButton(int(button), pressed, x, y)
		})
	})
	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		dispatch(gopher.inputListeners, func(l InputListener) bool { return l.OnCursorPos(x, y) })
	})
	w.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		dispatch(gopher.inputListeners, func(l InputListener) bool { return l.OnScroll(dx, dy) })
	})
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		dispatch(gopher.inputListeners, func(l InputListener) bool { return l.OnKey(key, action, mods) })
	})
	w.SetCharCallback(func(_ *glfw.Window, char rune) {
		dispatch(gopher.inputListeners, func(l InputListener) bool { return l.OnChar(char) })
	})
}
