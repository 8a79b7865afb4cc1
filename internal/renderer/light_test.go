package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCreateDirectionalLight(t *testing.T) {
	l := CreateDirectionalLight(mgl32.Vec3{-3, 10, 14}, mgl32.Vec3{1, 1, 1}, 2)

	if l.Intensity != 2 {
		t.Errorf("Intensity = %v, want 2", l.Intensity)
	}
	if l.ShadowMapSize != DefaultShadowMapSize {
		t.Errorf("ShadowMapSize = %d", l.ShadowMapSize)
	}
	want := mgl32.Vec3{3, -10, -14}.Normalize()
	if !l.Direction().ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Direction = %v, want %v", l.Direction(), want)
	}
	if !l.ToLight().ApproxEqualThreshold(want.Mul(-1), 1e-5) {
		t.Error("ToLight should oppose Direction")
	}
}

func TestLightSpaceMatrixCoversTarget(t *testing.T) {
	l := CreateDirectionalLight(mgl32.Vec3{-3, 10, 14}, mgl32.Vec3{1, 1, 1}, 2)
	m := l.LightSpaceMatrix()

	p := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if !approx(p.X(), 0, 1e-4) || !approx(p.Y(), 0, 1e-4) {
		t.Errorf("target should land in the middle of the shadow map, got %v", p)
	}
	if p.Z() <= -1 || p.Z() >= 1 {
		t.Errorf("target depth %v outside the shadow camera range", p.Z())
	}
	edge := m.Mul4x1(mgl32.Vec4{1.5, -0.39, 1.5, 1})
	if edge.X() < -1 || edge.X() > 1 || edge.Y() < -1 || edge.Y() > 1 {
		t.Errorf("floor corner should fit the shadow frustum, got %v", edge)
	}
}

func TestLightSpaceMatrixVertical(t *testing.T) {
	l := CreateDirectionalLight(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{1, 1, 1}, 1)
	m := l.LightSpaceMatrix()

	for i := 0; i < 16; i++ {
		if math.IsNaN(float64(m[i])) {
			t.Fatal("overhead light should not produce NaN")
		}
	}
}

func TestDirectionDegenerate(t *testing.T) {
	l := &Light{}
	if l.Direction() != (mgl32.Vec3{0, -1, 0}) {
		t.Errorf("coincident position and target should shine down, got %v", l.Direction())
	}
}
