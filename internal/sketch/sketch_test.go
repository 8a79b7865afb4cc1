package sketch

import (
	"DoorScene/internal/config"
	"DoorScene/internal/engine"
	"DoorScene/internal/renderer"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeRenderer struct {
	models     []*renderer.Model
	env        *renderer.Environment
	width      int32
	height     int32
	pixelRatio float32
}

func (f *fakeRenderer) Init(int32, int32, *glfw.Window) error { return nil }
func (f *fakeRenderer) Render(*renderer.Camera, *renderer.Light) {}
func (f *fakeRenderer) AddModel(m *renderer.Model)               { f.models = append(f.models, m) }
func (f *fakeRenderer) RemoveModel(*renderer.Model)              {}
func (f *fakeRenderer) AddGroup(g *renderer.Group)               { g.Traverse(f.AddModel) }
func (f *fakeRenderer) SetEnvironment(env *renderer.Environment) { f.env = env }
func (f *fakeRenderer) SetPixelRatio(r float32)                  { f.pixelRatio = r }
func (f *fakeRenderer) SetSize(w, h int32)                       { f.width, f.height = w, h }
func (f *fakeRenderer) Size() (int32, int32)                     { return f.width, f.height }
func (f *fakeRenderer) Cleanup()                                 {}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func newTestSketch(t *testing.T) (*Sketch, *fakeRenderer) {
	t.Helper()
	eng := engine.NewGopher(engine.Options{Width: 800, Height: 400})
	fake := &fakeRenderer{}
	eng.SetRenderer(fake)
	s := New(config.Default(), eng)
	s.createScene()
	s.createCamera()
	return s, fake
}

func doorGroup() *renderer.Group {
	g := renderer.NewGroup("door")
	g.Add(renderer.NewModel("panel", []float32{
		0, 0, 0, 0, 0, 0, 0, 1,
		1, 0, 0, 1, 0, 0, 0, 1,
		0, 1, 0, 0, 1, 0, 0, 1,
	}, []int32{0, 1, 2}))
	return g
}

func TestNewRegistersBehaviour(t *testing.T) {
	eng := engine.NewGopher(engine.Options{Width: 10, Height: 10})
	New(config.Default(), eng)
	if eng.Behaviours.Len() != 1 {
		t.Fatalf("behaviours = %d, want 1", eng.Behaviours.Len())
	}
}

func TestCreateCamera(t *testing.T) {
	s, _ := newTestSketch(t)
	c := s.camera
	if c.Fov != 45 || c.Near != 1 || c.Far != 1000 {
		t.Errorf("camera fov/near/far = %v/%v/%v", c.Fov, c.Near, c.Far)
	}
	if c.AspectRatio != 2 {
		t.Errorf("aspect = %v, want 2", c.AspectRatio)
	}
	if c.Position != (mgl32.Vec3{0, 3, 5}) {
		t.Errorf("position = %v", c.Position)
	}
	if s.engine.Camera != c {
		t.Error("engine camera not set")
	}
}

func TestCreateLight(t *testing.T) {
	s, _ := newTestSketch(t)
	s.createLight()
	l := s.light
	if l.Position != (mgl32.Vec3{-3, 10, 14}) || l.Intensity != 2 || !l.CastShadow {
		t.Errorf("light = %+v", l)
	}
	if l.Color != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("colour = %v", l.Color)
	}
	if s.engine.Light != l {
		t.Error("engine light not set")
	}
}

func TestCameraControlsAimAtTarget(t *testing.T) {
	s, _ := newTestSketch(t)
	s.initCameraControls()
	if s.controls.Target != (mgl32.Vec3{0, 0.5, 0}) {
		t.Errorf("target = %v", s.controls.Target)
	}
	want := mgl32.Vec3{0, 0.5, 0}.Sub(s.camera.Position).Normalize()
	if s.camera.Front.Dot(want) < 0.9999 {
		t.Errorf("camera front %v does not face the target", s.camera.Front)
	}
}

func TestOnResize(t *testing.T) {
	s, fake := newTestSketch(t)
	s.initRenderer()
	if fake.width != 800 || fake.height != 400 {
		t.Fatalf("initial size %dx%d", fake.width, fake.height)
	}

	s.OnResize(300, 600)
	if s.camera.AspectRatio != 0.5 {
		t.Errorf("aspect = %v, want 0.5", s.camera.AspectRatio)
	}
	if fake.width != 300 || fake.height != 600 {
		t.Errorf("renderer size %dx%d", fake.width, fake.height)
	}
	want := mgl32.Perspective(mgl32.DegToRad(45), 0.5, 1, 1000)
	if !s.camera.Projection.ApproxEqual(want) {
		t.Error("projection not updated")
	}

	s.OnResize(0, 600)
	if s.camera.AspectRatio != 0.5 {
		t.Error("zero-width resize changed the aspect")
	}
}

func TestNewFloor(t *testing.T) {
	floor, err := newFloor(-0.39)
	if err != nil {
		t.Fatal(err)
	}
	if !floor.ReceiveShadow || !floor.Material.DoubleSided {
		t.Error("floor must receive shadows and be double sided")
	}
	if floor.Position != (mgl32.Vec3{0, -0.39, 0}) {
		t.Errorf("position = %v", floor.Position)
	}
	// The plane's +Z normal must point up once laid flat.
	up := floor.Rotation.Rotate(mgl32.Vec3{0, 0, 1})
	if !approx(up.Y(), 1) {
		t.Errorf("floor normal = %v", up)
	}
	if floor.VertexCount() != 16 || len(floor.Faces) != 54 {
		t.Errorf("vertices=%d indices=%d", floor.VertexCount(), len(floor.Faces))
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{200, 100, 50, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestFloorTexturesFallBack(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "color.png"))
	assets := config.AssetConfig{
		Root:           dir,
		FloorColor:     "color.png",
		FloorNormal:    "missing_normal.png",
		FloorRoughness: "missing_roughness.jpg",
	}

	textures := &floorTextures{}
	var errs []error
	for _, load := range textures.loads(assets) {
		errs = append(errs, load(context.Background()))
	}
	if errs[0] != nil {
		t.Fatalf("colour map: %v", errs[0])
	}
	if errs[1] == nil || errs[2] == nil {
		t.Fatal("missing maps reported no error")
	}
	if textures.color == nil || textures.color.Linear {
		t.Error("colour map should load as sRGB")
	}

	s, fake := newTestSketch(t)
	s.floor, _ = newFloor(-0.39)
	s.onFloorTextures(textures, errors.Join(errs...))
	if len(fake.models) != 1 || fake.models[0] != s.floor {
		t.Fatalf("floor not added: %v", fake.models)
	}
	m := s.floor.Material
	if m.Map == nil || m.NormalMap == nil || m.RoughnessMap == nil {
		t.Fatal("floor material has empty slots")
	}
	if !m.NormalMap.Linear || !m.RoughnessMap.Linear {
		t.Error("data maps must be linear")
	}
}

func TestDoorLoadedGetsBaseScale(t *testing.T) {
	s, fake := newTestSketch(t)
	door := doorGroup()
	s.onDoorLoaded(door)

	if door.Scale != (mgl32.Vec3{0.1, 0.1, 0.1}) || door.Position != (mgl32.Vec3{}) {
		t.Errorf("scale %v position %v", door.Scale, door.Position)
	}
	for _, m := range door.Children {
		if !m.CastShadow {
			t.Errorf("%s does not cast shadows", m.Name)
		}
	}
	if len(fake.models) != 1 || s.Door() != door {
		t.Error("door not added to the scene")
	}
}

func TestSliderBeforeDoorLoads(t *testing.T) {
	s, _ := newTestSketch(t)
	s.onSliderChange(0.5, 0.4)
	if s.Door() != nil {
		t.Fatal("door should still be loading")
	}

	door := doorGroup()
	s.onDoorLoaded(door)
	want := mgl32.Vec3{0.05, 0.04, 0.1}
	if !door.Scale.ApproxEqual(want) {
		t.Errorf("scale = %v, want %v", door.Scale, want)
	}
	if !approx(door.Position.Y(), -0.19) {
		t.Errorf("y = %v, want -0.19", door.Position.Y())
	}
}

func TestSliderRescalesLoadedDoor(t *testing.T) {
	s, _ := newTestSketch(t)
	door := doorGroup()
	s.onDoorLoaded(door)
	door.SetPosition(2, 0, -1)

	s.onSliderChange(1, 0)
	if !door.Scale.ApproxEqual(mgl32.Vec3{0.1, 0, 0.1}) {
		t.Errorf("scale = %v", door.Scale)
	}
	if door.Position.X() != 2 || door.Position.Z() != -1 || !approx(door.Position.Y(), -0.39) {
		t.Errorf("position = %v", door.Position)
	}
}

func TestEnvironmentFallback(t *testing.T) {
	s, fake := newTestSketch(t)
	s.onEnvironment(nil, errors.New("no such file"))
	if fake.env == nil || fake.env.Name != "gradient" || !fake.env.Background {
		t.Fatalf("env = %+v", fake.env)
	}

	env, err := renderer.NewEnvironment("sunset", 2, 1, make([]float32, 6))
	if err != nil {
		t.Fatal(err)
	}
	env.Background = false
	s.onEnvironment(env, nil)
	if fake.env != env || !env.Background {
		t.Error("loaded environment must be used as background")
	}
}
