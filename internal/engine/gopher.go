package engine

import (
	behaviour "DoorScene/internal/behaviour"
	"DoorScene/internal/logger"
	"DoorScene/internal/renderer"
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// fixedUpdateEvery is the number of rendered frames per fixed update.
const fixedUpdateEvery = 2

var ErrAlreadyRunning = errors.New("engine is already running")

type Options struct {
	Width, Height int32
	Title         string
	MSAA          int
	Workers       int
	Settings      *renderer.RenderSettings // nil means renderer.DefaultRenderSettings
}

type Gopher struct {
	Width      int32 // Window size in screen coordinates
	Height     int32
	Title      string
	Light      *renderer.Light
	Camera     *renderer.Camera
	Behaviours *behaviour.BehaviourManager

	rendererAPI      renderer.Render
	window           *glfw.Window
	msaa             int
	workers          int
	queue            *MainQueue
	assets           *AssetLoader
	resizeListeners  []func(width, height int32)
	inputListeners   []InputListener
	cleanups         []func()
	onRenderCallback func(deltaTime float64) // Called after the scene, before the swap (GUI)
	frameTrackId     int
	running          bool
}

func NewGopher(opts Options) *Gopher {
	logger.Log.Info("Engine initializing...",
		zap.Int32("width", opts.Width),
		zap.Int32("height", opts.Height),
		zap.Int("msaa", opts.MSAA))
	settings := renderer.DefaultRenderSettings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}
	settings.MSAASamples = opts.MSAA
	return &Gopher{
		Width:       opts.Width,
		Height:      opts.Height,
		Title:       opts.Title,
		Behaviours:  behaviour.NewBehaviourManager(),
		rendererAPI: renderer.NewOpenGLRenderer(settings),
		msaa:        opts.MSAA,
		workers:     opts.Workers,
		queue:       NewMainQueue(256),
	}
}

// Run opens the window and renders until it is closed or ctx is cancelled.
// It must be called from the main goroutine.
func (gopher *Gopher) Run(ctx context.Context) error {
	if gopher.running {
		return ErrAlreadyRunning
	}
	gopher.running = true
	defer func() { gopher.running = false }()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.Samples, gopher.msaa)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(gopher.Width), int(gopher.Height), gopher.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	gopher.window = window
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gopher.rendererAPI.Init(gopher.Width, gopher.Height, window); err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	gopher.rendererAPI.SetPixelRatio(gopher.PixelRatio())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	gopher.assets = NewAssetLoader(runCtx, gopher.workers, gopher.queue.Post)

	window.SetFramebufferSizeCallback(func(w *glfw.Window, _, _ int) {
		width, height := w.GetSize()
		gopher.handleResize(int32(width), int32(height))
	})
	gopher.installInputCallbacks()

	logger.Log.Info("Window ready", zap.Float32("pixelRatio", gopher.PixelRatio()))
	gopher.RenderLoop(runCtx)

	cancel()
	gopher.assets.Stop()
	for i := len(gopher.cleanups) - 1; i >= 0; i-- {
		gopher.cleanups[i]()
	}
	gopher.rendererAPI.Cleanup()
	logger.Log.Info("Engine stopped")
	return nil
}

func (gopher *Gopher) RenderLoop(ctx context.Context) {
	lastTime := glfw.GetTime()

	for !gopher.window.ShouldClose() {
		if ctx.Err() != nil {
			gopher.window.SetShouldClose(true)
			break
		}
		glfw.PollEvents()

		currentTime := glfw.GetTime()
		deltaTime := currentTime - lastTime
		lastTime = currentTime

		// Finished loads land here, on the GL thread.
		gopher.queue.Drain()

		if gopher.frameTrackId >= fixedUpdateEvery {
			gopher.Behaviours.UpdateAllFixed()
			gopher.frameTrackId = 0
		}
		gopher.Behaviours.UpdateAll()

		if gopher.Camera != nil {
			gopher.rendererAPI.Render(gopher.Camera, gopher.Light)
		}

		if gopher.onRenderCallback != nil {
			gopher.onRenderCallback(deltaTime)
		}

		gopher.window.SwapBuffers()
		gopher.frameTrackId++
	}
}

// handleResize forwards a new window size to the renderer and listeners.
// A minimised window reports zero and is ignored.
func (gopher *Gopher) handleResize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	gopher.Width, gopher.Height = width, height
	if gopher.window != nil {
		gopher.rendererAPI.SetPixelRatio(gopher.PixelRatio())
	}
	for _, listener := range gopher.resizeListeners {
		listener(width, height)
	}
}

// PixelRatio is framebuffer pixels per screen coordinate.
func (gopher *Gopher) PixelRatio() float32 {
	if gopher.window == nil {
		return 1
	}
	fbWidth, _ := gopher.window.GetFramebufferSize()
	width, _ := gopher.window.GetSize()
	return pixelRatio(fbWidth, width)
}

func pixelRatio(framebufferWidth, windowWidth int) float32 {
	if windowWidth <= 0 || framebufferWidth <= 0 {
		return 1
	}
	return float32(framebufferWidth) / float32(windowWidth)
}

// AspectRatio is width over height, 1 for a degenerate size.
func (gopher *Gopher) AspectRatio() float32 {
	if gopher.Height <= 0 {
		return 1
	}
	return float32(gopher.Width) / float32(gopher.Height)
}

// Assets is the background loader; nil until Run has created the window.
func (gopher *Gopher) Assets() *AssetLoader {
	return gopher.assets
}

func (gopher *Gopher) AddResizeListener(listener func(width, height int32)) {
	gopher.resizeListeners = append(gopher.resizeListeners, listener)
}

// AddInputListener appends a listener; earlier listeners see events first.
func (gopher *Gopher) AddInputListener(listener InputListener) {
	gopher.inputListeners = append(gopher.inputListeners, listener)
}

// PrependInputListener puts a listener ahead of the others, for overlays.
func (gopher *Gopher) PrependInputListener(listener InputListener) {
	gopher.inputListeners = append([]InputListener{listener}, gopher.inputListeners...)
}

// AddCleanup registers fn to run on the render thread at shutdown, before
// the renderer releases its resources. Cleanups run in reverse order.
func (gopher *Gopher) AddCleanup(fn func()) {
	gopher.cleanups = append(gopher.cleanups, fn)
}

// SetOnRenderCallback sets a callback that will be called each frame after the 3D scene is rendered
func (gopher *Gopher) SetOnRenderCallback(callback func(deltaTime float64)) {
	gopher.onRenderCallback = callback
}

func (gopher *Gopher) SetDebugMode(debug bool) {
	renderer.Debug = debug
}

// GetWindow returns the GLFW window
func (gopher *Gopher) GetWindow() *glfw.Window {
	return gopher.window
}

// GetRenderer returns the renderer API
func (gopher *Gopher) GetRenderer() renderer.Render {
	return gopher.rendererAPI
}

// SetRenderer swaps the renderer before Run, mainly for tests.
func (gopher *Gopher) SetRenderer(r renderer.Render) {
	gopher.rendererAPI = r
}
