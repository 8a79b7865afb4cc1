package gui

import (
	"DoorScene/internal/logger"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/inkyblackness/imgui-go/v4"
	"go.uber.org/zap"
)

const (
	fontSize    = 16
	panelWidth  = 245
	panelMargin = 0
)

// Panel is a block of widgets drawn inside the controls window.
type Panel interface {
	Draw()
}

// GUI owns the imgui context and draws the controls window over the scene.
// It must be created and used on the thread that owns the GL context.
type GUI struct {
	Title string

	context  *imgui.Context
	io       imgui.IO
	platform *Platform
	renderer *OpenGL3
	panels   []Panel
}

// New creates the imgui context for window. fontPath may be empty; a font
// that cannot be read falls back to the built-in one, which has no Cyrillic.
func New(window *glfw.Window, fontPath string) (*GUI, error) {
	if window == nil {
		return nil, errors.New("gui needs a window")
	}
	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	io.SetIniFilename("")

	loadFont(io, fontPath)

	glRenderer, err := NewOpenGL3(io)
	if err != nil {
		context.Destroy()
		return nil, fmt.Errorf("gui renderer: %w", err)
	}
	applyDarkTheme()

	return &GUI{
		Title:    "Controls",
		context:  context,
		io:       io,
		platform: NewPlatform(window, io),
		renderer: glRenderer,
	}, nil
}

func loadFont(io imgui.IO, path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		logger.Log.Warn("GUI font unavailable, using built-in font", zap.String("path", path), zap.Error(err))
		return
	}
	fonts := io.Fonts()
	fonts.AddFontFromFileTTFV(path, fontSize, imgui.DefaultFontConfig, fonts.GlyphRangesCyrillic())
	logger.Log.Debug("GUI font loaded", zap.String("path", path))
}

func (g *GUI) Add(panel Panel) {
	g.panels = append(g.panels, panel)
}

// Input is the listener to put in front of the engine's input chain.
func (g *GUI) Input() *Platform {
	return g.platform
}

// WantsMouse reports whether the last frame had the mouse over a widget.
func (g *GUI) WantsMouse() bool {
	return g.io.WantCaptureMouse()
}

// Frame builds and draws one GUI frame.
func (g *GUI) Frame() {
	g.platform.NewFrame()
	imgui.NewFrame()

	display := g.platform.DisplaySize()
	imgui.SetNextWindowPosV(imgui.Vec2{X: display[0] - panelMargin, Y: panelMargin}, imgui.ConditionAlways, imgui.Vec2{X: 1, Y: 0})
	imgui.SetNextWindowSize(imgui.Vec2{X: panelWidth, Y: 0})
	if imgui.BeginV(g.Title, nil, imgui.WindowFlagsNoMove|imgui.WindowFlagsNoResize|imgui.WindowFlagsAlwaysAutoResize|imgui.WindowFlagsNoSavedSettings) {
		for _, panel := range g.panels {
			panel.Draw()
		}
	}
	imgui.End()

	imgui.Render()
	g.renderer.Render(display, g.platform.FramebufferSize(), imgui.RenderedDrawData())
}

func (g *GUI) Destroy() {
	if g.renderer != nil {
		g.renderer.Dispose()
		g.renderer = nil
	}
	if g.context != nil {
		g.context.Destroy()
		g.context = nil
	}
}
