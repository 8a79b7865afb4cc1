package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestNewPerspectiveCamera(t *testing.T) {
	cam := NewPerspectiveCamera(45, 4.0/3.0, 1, 1000)

	if cam == nil {
		t.Fatal("NewPerspectiveCamera returned nil")
	}
	if cam.Position != (mgl32.Vec3{}) {
		t.Errorf("camera should start at the origin, got %v", cam.Position)
	}
	if !cam.Front.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("camera should look down -Z, got %v", cam.Front)
	}
	if cam.Fov != 45 || cam.Near != 1 || cam.Far != 1000 {
		t.Errorf("unexpected lens %v/%v/%v", cam.Fov, cam.Near, cam.Far)
	}
}

func TestCameraGetViewMatrix(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 1, 1000)
	cam.SetPosition(0, 0, 5)

	view := cam.GetViewMatrix()

	if view.At(3, 3) != 1.0 {
		t.Error("View matrix should be valid (w component = 1)")
	}
	origin := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !approx(origin.Z(), -5, 1e-4) {
		t.Errorf("origin should be 5 units in front of the camera, got z=%v", origin.Z())
	}
}

func TestCameraLookAt(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 1, 1000)
	cam.SetPosition(0, 3, 5)
	target := mgl32.Vec3{0, 0.5, 0}

	cam.LookAt(target)

	want := target.Sub(cam.Position).Normalize()
	if !cam.Front.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("Front = %v, want %v", cam.Front, want)
	}
	p := cam.GetViewMatrix().Mul4x1(target.Vec4(1))
	if !approx(p.X(), 0, 1e-4) || !approx(p.Y(), 0, 1e-4) {
		t.Errorf("target should project onto the view axis, got %v", p)
	}
	if cam.Up.Y() <= 0 {
		t.Errorf("camera up should stay upright, got %v", cam.Up)
	}
}

func TestCameraSetAspectRatio(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 1, 1000)
	before := cam.GetProjectionMatrix()

	cam.SetAspectRatio(2)

	after := cam.GetProjectionMatrix()
	if cam.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", cam.AspectRatio)
	}
	if !approx(after.At(0, 0), before.At(0, 0)/2, 1e-5) {
		t.Errorf("horizontal focal term should halve: %v -> %v", before.At(0, 0), after.At(0, 0))
	}
	if after.At(1, 1) != before.At(1, 1) {
		t.Error("vertical focal term should not change with aspect")
	}
}

func TestFrustumIntersectsSphere(t *testing.T) {
	cam := NewPerspectiveCamera(45, 1, 1, 1000)
	cam.SetPosition(0, 0, 5)
	f := cam.CalculateFrustum()

	if !f.IntersectsSphere(mgl32.Vec3{0, 0, 0}, 1) {
		t.Error("sphere in front of the camera should be visible")
	}
	if f.IntersectsSphere(mgl32.Vec3{0, 0, 20}, 1) {
		t.Error("sphere behind the camera should be culled")
	}
	if f.IntersectsSphere(mgl32.Vec3{0, 0, -2000}, 1) {
		t.Error("sphere past the far plane should be culled")
	}
}
