package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOpenGLRendererSize(t *testing.T) {
	rend := NewOpenGLRenderer(DefaultRenderSettings())

	rend.SetSize(800, 600)
	if w, h := rend.Size(); w != 800 || h != 600 {
		t.Errorf("Size = %dx%d, want 800x600", w, h)
	}
	if w, h := rend.DrawingBufferSize(); w != 800 || h != 600 {
		t.Errorf("DrawingBufferSize at ratio 1 = %dx%d", w, h)
	}

	rend.SetPixelRatio(2)
	if w, h := rend.DrawingBufferSize(); w != 1600 || h != 1200 {
		t.Errorf("DrawingBufferSize at ratio 2 = %dx%d, want 1600x1200", w, h)
	}
	if !rend.viewportDirty {
		t.Error("size changes should mark the viewport dirty")
	}
}

func TestOpenGLRendererSizeGuards(t *testing.T) {
	rend := NewOpenGLRenderer(DefaultRenderSettings())

	rend.SetSize(-10, 0)
	if w, h := rend.Size(); w != 0 || h != 0 {
		t.Errorf("negative sizes should clamp to 0, got %dx%d", w, h)
	}
	rend.SetPixelRatio(0)
	if rend.pixelRatio != 1 {
		t.Errorf("non-positive pixel ratio should reset to 1, got %v", rend.pixelRatio)
	}
}

func TestOpenGLRendererAddGroup(t *testing.T) {
	rend := NewOpenGLRenderer(DefaultRenderSettings())
	g := NewGroup("door")
	a, b := quad(), quad()
	g.Add(a)
	g.Add(b)

	rend.AddGroup(g)
	rend.AddModel(a)

	if len(rend.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(rend.Models))
	}

	rend.RemoveModel(a)
	if len(rend.Models) != 1 || rend.Models[0] != b {
		t.Error("RemoveModel should drop only the given model")
	}
}

func TestNewOpenGLRendererSanitizes(t *testing.T) {
	settings := DefaultRenderSettings()
	settings.MSAASamples = 6
	rend := NewOpenGLRenderer(settings)

	if rend.Settings.MSAASamples != 8 {
		t.Errorf("MSAA = %d, want 8", rend.Settings.MSAASamples)
	}
}

func fakeShadowMaps(rend *OpenGLRenderer) *[]int32 {
	var created []int32
	rend.newShadowMap = func(size int32) (*ShadowMap, error) {
		created = append(created, size)
		return &ShadowMap{Size: size}, nil
	}
	return &created
}

func TestShadowMapFollowsLightSize(t *testing.T) {
	rend := NewOpenGLRenderer(DefaultRenderSettings())
	created := fakeShadowMaps(rend)
	light := CreateDirectionalLight(mgl32.Vec3{-3, 10, 14}, mgl32.Vec3{1, 1, 1}, 2)
	light.CastShadow = true
	light.ShadowMapSize = 1024

	if !rend.ensureShadowMap(light) {
		t.Fatal("shadow pass skipped for a shadow-casting light")
	}
	if rend.shadowMap.Size != 1024 {
		t.Errorf("shadow map size = %d, want 1024", rend.shadowMap.Size)
	}
	rend.ensureShadowMap(light)
	if len(*created) != 1 {
		t.Errorf("shadow map recreated without a size change: %v", *created)
	}

	light.ShadowMapSize = 4096
	rend.ensureShadowMap(light)
	if rend.shadowMap.Size != 4096 || len(*created) != 2 {
		t.Errorf("resize not applied: size %d, created %v", rend.shadowMap.Size, *created)
	}
}

func TestShadowMapSkipped(t *testing.T) {
	rend := NewOpenGLRenderer(DefaultRenderSettings())
	created := fakeShadowMaps(rend)
	light := CreateDirectionalLight(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{1, 1, 1}, 1)

	if rend.ensureShadowMap(light) || rend.ensureShadowMap(nil) {
		t.Error("shadow pass for a light that casts no shadow")
	}
	if len(*created) != 0 {
		t.Errorf("shadow map created: %v", *created)
	}

	rend.newShadowMap = func(int32) (*ShadowMap, error) { return nil, errors.New("incomplete") }
	light.CastShadow = true
	if rend.ensureShadowMap(light) || rend.Settings.EnableShadows {
		t.Error("a failed shadow map should disable shadows")
	}
}

func TestShadowMapSize(t *testing.T) {
	cases := []struct{ in, want int32 }{
		{0, DefaultShadowMapSize},
		{-1, DefaultShadowMapSize},
		{1, MinShadowMapSize},
		{1000, 1024},
		{2048, 2048},
		{1 << 20, MaxShadowMapSize},
	}
	for _, c := range cases {
		if got := shadowMapSize(c.in); got != c.want {
			t.Errorf("shadowMapSize(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFrustumRebuiltOnlyWhenDirty(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 1, 1000)
	cam.SetPosition(0, 0, 5)
	cam.LookAt(mgl32.Vec3{})
	updateFrustum(cam)
	if frustumDirty {
		t.Fatal("updateFrustum should clear the dirty flag")
	}
	if !frustum.IntersectsSphere(mgl32.Vec3{}, 0.5) {
		t.Fatal("origin should be visible from (0,0,5)")
	}

	// Moving the camera behind the origin without marking keeps the old frustum.
	cam.Position = mgl32.Vec3{0, 0, -5}
	updateFrustum(cam)
	if !frustum.IntersectsSphere(mgl32.Vec3{}, 0.5) {
		t.Error("frustum was rebuilt without being marked dirty")
	}

	MarkFrustumDirty()
	updateFrustum(cam)
	if frustum.IntersectsSphere(mgl32.Vec3{}, 0.5) {
		t.Error("origin behind the camera should be culled after a rebuild")
	}
}

func TestCameraMovesMarkFrustumDirty(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 1, 1000)
	steps := map[string]func(){
		"SetPosition":    func() { cam.SetPosition(1, 2, 3) },
		"LookAt":         func() { cam.LookAt(mgl32.Vec3{0, 0.5, 0}) },
		"LookAt self":    func() { cam.LookAt(cam.Position) },
		"SetAspectRatio": func() { cam.SetAspectRatio(2) },
	}
	for name, step := range steps {
		frustumDirty = false
		step()
		if !frustumDirty {
			t.Errorf("%s should mark the frustum dirty", name)
		}
	}
}
