package gui

import (
	"github.com/inkyblackness/imgui-go/v4"
)

func applyDarkTheme() {
	style := imgui.CurrentStyle()

	// Go Cyan color (#00ADD8)
	goCyan := imgui.Vec4{X: 0.0, Y: 0.678, Z: 0.847, W: 1.0}
	goCyanHover := imgui.Vec4{X: 0.0, Y: 0.678, Z: 0.847, W: 0.6}
	goCyanActive := imgui.Vec4{X: 0.0, Y: 0.678, Z: 0.847, W: 0.8}
	goCyanDim := imgui.Vec4{X: 0.0, Y: 0.678, Z: 0.847, W: 0.4}

	style.SetColor(imgui.StyleColorWindowBg, imgui.Vec4{X: 0.1, Y: 0.1, Z: 0.1, W: 0.9})
	style.SetColor(imgui.StyleColorTitleBg, imgui.Vec4{X: 0.08, Y: 0.08, Z: 0.08, W: 1.0})
	style.SetColor(imgui.StyleColorTitleBgActive, imgui.Vec4{X: 0.08, Y: 0.08, Z: 0.08, W: 1.0})
	style.SetColor(imgui.StyleColorBorder, goCyanDim)

	style.SetColor(imgui.StyleColorHeader, goCyanDim)
	style.SetColor(imgui.StyleColorHeaderHovered, goCyanHover)
	style.SetColor(imgui.StyleColorHeaderActive, goCyan)

	style.SetColor(imgui.StyleColorFrameBg, imgui.Vec4{X: 0.2, Y: 0.2, Z: 0.2, W: 0.54})
	style.SetColor(imgui.StyleColorFrameBgHovered, imgui.Vec4{X: 0.25, Y: 0.25, Z: 0.25, W: 0.78})
	style.SetColor(imgui.StyleColorFrameBgActive, imgui.Vec4{X: 0.3, Y: 0.3, Z: 0.3, W: 0.67})

	// Sliders
	style.SetColor(imgui.StyleColorSliderGrab, goCyan)
	style.SetColor(imgui.StyleColorSliderGrabActive, goCyanActive)
}
