package sketch

import (
	"DoorScene/internal/config"
	"DoorScene/internal/engine"
	"DoorScene/internal/gui"
	"DoorScene/internal/loader"
	"DoorScene/internal/logger"
	"DoorScene/internal/renderer"
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	floorSize     = 3
	floorSegments = 3
	noiseSize     = 256
	noiseSeed     = 116
)

// Sketch builds the door scene once the window is up and keeps the door in
// step with the GUI sliders.
type Sketch struct {
	cfg    config.Config
	engine *engine.Gopher

	scene    renderer.Render
	camera   *renderer.Camera
	controls *renderer.OrbitControls
	light    *renderer.Light
	floor    *renderer.Model
	door     *renderer.Group // nil until the model has loaded
	gui      *gui.GUI
	panel    *gui.DoorPanel

	scale        DoorScale
	scaleChanged bool // a slider moved; the door must not keep its base scale
}

func New(cfg config.Config, eng *engine.Gopher) *Sketch {
	s := &Sketch{
		cfg:    cfg,
		engine: eng,
		scale:  NewDoorScale(cfg.Door),
	}
	eng.Behaviours.Add(s)
	return s
}

// Start runs the scene setup in order. It is called by the engine on the
// render thread after the window and GL context exist.
func (s *Sketch) Start() {
	s.createScene()
	s.createCamera()
	s.createMesh()
	s.downloadModel()
	s.initRenderer()
	s.createLight()
	s.initCameraControls()
	s.initEnvironment()
	s.addGUI()
	logger.Log.Info("Scene ready, waiting for assets")
}

func (s *Sketch) Update() {
	if s.gui != nil && s.controls != nil {
		// Dragging a slider must not orbit the camera.
		s.controls.Enabled = !s.gui.WantsMouse()
	}
}

func (s *Sketch) UpdateFixed() {}

func (s *Sketch) createScene() {
	s.scene = s.engine.GetRenderer()
}

func (s *Sketch) createCamera() {
	c := s.cfg.Camera
	s.camera = renderer.NewPerspectiveCamera(c.Fov, s.engine.AspectRatio(), c.Near, c.Far)
	s.camera.SetPosition(c.Position[0], c.Position[1], c.Position[2])
	s.engine.Camera = s.camera
}

// createMesh builds the floor geometry now and adds it to the scene once
// all three of its textures have been read.
func (s *Sketch) createMesh() {
	floor, err := newFloor(s.cfg.Door.FloorOffset)
	if err != nil {
		logger.Log.Error("Floor geometry failed", zap.Error(err))
		return
	}
	s.floor = floor

	textures := &floorTextures{}
	s.engine.Assets().LoadAll("floor textures", textures.loads(s.cfg.Assets), func(err error) {
		s.onFloorTextures(textures, err)
	})
}

func (s *Sketch) onFloorTextures(textures *floorTextures, err error) {
	if err != nil {
		logger.Log.Warn("Floor textures incomplete, using generated maps", zap.Error(err))
	}
	textures.fillMissing()
	m := s.floor.Material
	m.Map = textures.color
	m.NormalMap = textures.normal
	m.RoughnessMap = textures.roughness
	s.scene.AddModel(s.floor)
}

func (s *Sketch) downloadModel() {
	path := s.cfg.Assets.Path(s.cfg.Assets.DoorModel)
	var door *renderer.Group
	s.engine.Assets().Load(path, func(context.Context) error {
		var err error
		door, err = loader.LoadScene(path)
		return err
	}, func(err error) {
		if err != nil {
			return
		}
		s.onDoorLoaded(door)
	})
}

func (s *Sketch) onDoorLoaded(door *renderer.Group) {
	door.Traverse(func(m *renderer.Model) {
		m.CastShadow = true
	})
	if s.scaleChanged {
		s.scale.Apply(door)
	} else {
		base := s.cfg.Door.BaseScale
		door.SetScale(base, base, base)
	}
	s.door = door
	s.scene.AddGroup(door)
	logger.Log.Info("Door added", zap.Int("meshes", len(door.Children)))
}

func (s *Sketch) initRenderer() {
	s.scene.SetPixelRatio(s.engine.PixelRatio())
	s.scene.SetSize(s.engine.Width, s.engine.Height)
	s.engine.AddResizeListener(s.OnResize)
}

func (s *Sketch) createLight() {
	l := s.cfg.Light
	s.light = renderer.CreateDirectionalLight(
		mgl32.Vec3{l.Position[0], l.Position[1], l.Position[2]},
		mgl32.Vec3{l.Color[0], l.Color[1], l.Color[2]},
		l.Intensity)
	s.light.CastShadow = true
	if l.ShadowMapSize > 0 {
		s.light.ShadowMapSize = int32(l.ShadowMapSize)
	}
	s.engine.Light = s.light
}

func (s *Sketch) initCameraControls() {
	t := s.cfg.Camera.Target
	s.controls = renderer.NewOrbitControls(s.camera)
	s.controls.SetTarget(t[0], t[1], t[2])
	s.controls.SetViewportSize(int(s.engine.Width), int(s.engine.Height))
	s.controls.Update()
	s.engine.AddInputListener(controlsInput{controls: s.controls})
}

func (s *Sketch) initEnvironment() {
	path := s.cfg.Assets.Path(s.cfg.Assets.Environment)
	var env *renderer.Environment
	s.engine.Assets().Load(path, func(context.Context) error {
		var err error
		env, err = loader.LoadHDR(path)
		return err
	}, func(err error) {
		s.onEnvironment(env, err)
	})
}

func (s *Sketch) onEnvironment(env *renderer.Environment, err error) {
	if err != nil || env == nil {
		logger.Log.Warn("Using gradient environment")
		env = renderer.NewGradientEnvironment(
			mgl32.Vec3{0.45, 0.6, 0.85},
			mgl32.Vec3{0.95, 0.8, 0.65},
			mgl32.Vec3{0.25, 0.22, 0.2})
	}
	env.Background = true
	s.scene.SetEnvironment(env)
}

func (s *Sketch) addGUI() {
	d := s.cfg.Door
	s.panel = gui.NewDoorPanel(
		gui.Slider{Label: "with", Min: d.Width.Min, Max: d.Width.Max, Value: s.scale.Width},
		gui.Slider{Label: "high", Min: d.Height.Min, Max: d.Height.Max, Value: s.scale.Height},
		s.onSliderChange)

	g, err := gui.New(s.engine.GetWindow(), s.cfg.Assets.Path(s.cfg.Assets.GUIFont))
	if err != nil {
		logger.Log.Error("GUI disabled", zap.Error(err))
		return
	}
	g.Add(s.panel)
	s.gui = g
	s.engine.PrependInputListener(g.Input())
	s.engine.SetOnRenderCallback(func(float64) { g.Frame() })
	s.engine.AddCleanup(g.Destroy)
}

func (s *Sketch) onSliderChange(width, height float32) {
	s.scale.SetWidth(width)
	s.scale.SetHeight(height)
	s.scaleChanged = true
	if s.door != nil {
		s.scale.Apply(s.door)
	}
}

// OnResize follows the window: camera aspect, projection and viewport.
func (s *Sketch) OnResize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.camera.SetAspectRatio(float32(width) / float32(height))
	s.scene.SetSize(width, height)
	if s.controls != nil {
		s.controls.SetViewportSize(int(width), int(height))
	}
}

// Door is the loaded door model, nil while it is still loading.
func (s *Sketch) Door() *renderer.Group {
	return s.door
}

func (s *Sketch) Scale() DoorScale {
	return s.scale
}

// newFloor is the 3x3 tiled plane laid flat at floor height.
func newFloor(y float32) (*renderer.Model, error) {
	floor, err := loader.PlaneGeometry(floorSize, floorSize, floorSegments, floorSegments)
	if err != nil {
		return nil, err
	}
	floor.Name = "floor"
	floor.Material.Name = "floor"
	floor.Material.DoubleSided = true
	floor.SetRotationX(-math.Pi / 2)
	floor.SetPosition(0, y, 0)
	floor.ReceiveShadow = true
	return floor, nil
}

// floorTextures collects the three floor maps as workers finish them.
// Each load writes only its own field.
type floorTextures struct {
	color     *renderer.Texture
	normal    *renderer.Texture
	roughness *renderer.Texture
}

func (f *floorTextures) loads(assets config.AssetConfig) []func(context.Context) error {
	load := func(dst **renderer.Texture, rel string, linear bool) func(context.Context) error {
		return func(context.Context) error {
			tex, err := loader.LoadTexture(assets.Path(rel), loader.TextureOptions{Linear: linear, FlipY: true})
			if err != nil {
				return err
			}
			*dst = tex
			return nil
		}
	}
	return []func(context.Context) error{
		load(&f.color, assets.FloorColor, false),
		load(&f.normal, assets.FloorNormal, true),
		load(&f.roughness, assets.FloorRoughness, true),
	}
}

func (f *floorTextures) fillMissing() {
	if f.color == nil {
		f.color = loader.WhiteTexture()
	}
	if f.normal == nil {
		f.normal = loader.FlatNormalTexture()
	}
	if f.roughness == nil {
		f.roughness = loader.NoiseRoughnessTexture(noiseSize, 0.7, 0.2, noiseSeed)
	}
}
