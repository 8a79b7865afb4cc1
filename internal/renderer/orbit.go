package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mouse buttons as reported by GLFW.
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

type orbitState int

const (
	orbitIdle orbitState = iota
	orbitRotate
	orbitPan
)

// OrbitControls keeps a camera on a sphere around Target. Left drag rotates,
// right or middle drag pans, the wheel dollies.
type OrbitControls struct {
	Camera *Camera
	Target mgl32.Vec3

	Enabled      bool
	RotateSpeed  float32
	ZoomSpeed    float32
	PanSpeed     float32
	MinDistance  float32
	MaxDistance  float32
	MinPolar     float32 // radians from +Y
	MaxPolar     float32
	ViewportSize [2]float32

	radius float32
	theta  float32 // azimuth around +Y, 0 looks down -Z
	phi    float32 // polar angle from +Y

	state        orbitState
	lastX, lastY float64
}

const polarEpsilon = 1e-4

// NewOrbitControls derives the spherical state from the camera's current
// position relative to the origin. Set Target and call Update to re-aim.
func NewOrbitControls(camera *Camera) *OrbitControls {
	oc := &OrbitControls{
		Camera:       camera,
		Enabled:      true,
		RotateSpeed:  1,
		ZoomSpeed:    1,
		PanSpeed:     1,
		MinDistance:  0,
		MaxDistance:  float32(math.Inf(1)),
		MinPolar:     0,
		MaxPolar:     math.Pi,
		ViewportSize: [2]float32{1, 1},
	}
	oc.syncFromCamera()
	return oc
}

// SetTarget changes the orbit centre and recomputes the spherical state from
// where the camera currently is.
func (oc *OrbitControls) SetTarget(x, y, z float32) {
	oc.Target = mgl32.Vec3{x, y, z}
	oc.syncFromCamera()
}

func (oc *OrbitControls) syncFromCamera() {
	offset := oc.Camera.Position.Sub(oc.Target)
	oc.radius = offset.Len()
	if oc.radius == 0 {
		oc.theta, oc.phi = 0, math.Pi/2
		return
	}
	oc.theta = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	oc.phi = float32(math.Acos(float64(mgl32.Clamp(offset.Y()/oc.radius, -1, 1))))
}

// Distance is the current camera-to-target distance.
func (oc *OrbitControls) Distance() float32 {
	return oc.radius
}

// Update writes the spherical state back to the camera.
func (oc *OrbitControls) Update() {
	minPolar := float32(math.Max(float64(oc.MinPolar), polarEpsilon))
	maxPolar := float32(math.Min(float64(oc.MaxPolar), math.Pi-polarEpsilon))
	oc.phi = mgl32.Clamp(oc.phi, minPolar, maxPolar)
	oc.radius = mgl32.Clamp(oc.radius, oc.MinDistance, oc.MaxDistance)

	sinPhi := float32(math.Sin(float64(oc.phi)))
	offset := mgl32.Vec3{
		oc.radius * sinPhi * float32(math.Sin(float64(oc.theta))),
		oc.radius * float32(math.Cos(float64(oc.phi))),
		oc.radius * sinPhi * float32(math.Cos(float64(oc.theta))),
	}
	oc.Camera.Position = oc.Target.Add(offset)
	oc.Camera.LookAt(oc.Target)
}

// Rotate orbits by a pointer delta in pixels.
func (oc *OrbitControls) Rotate(dx, dy float32) {
	h := oc.ViewportSize[1]
	if h <= 0 {
		return
	}
	oc.theta -= 2 * math.Pi * dx / h * oc.RotateSpeed
	oc.phi -= 2 * math.Pi * dy / h * oc.RotateSpeed
	oc.Update()
}

// Dolly moves towards (positive steps) or away from the target.
func (oc *OrbitControls) Dolly(steps float32) {
	scale := float32(math.Pow(0.95, float64(oc.ZoomSpeed*steps)))
	oc.radius *= scale
	oc.Update()
}

// Pan slides the target and camera in the view plane by a pointer delta.
func (oc *OrbitControls) Pan(dx, dy float32) {
	h := oc.ViewportSize[1]
	if h <= 0 {
		return
	}
	// Height of the view plane at the target distance.
	span := 2 * oc.radius * float32(math.Tan(float64(mgl32.DegToRad(oc.Camera.Fov)/2)))
	right := oc.Camera.Right.Mul(-dx * span / h * oc.PanSpeed)
	up := oc.Camera.Up.Mul(dy * span / h * oc.PanSpeed)
	oc.Target = oc.Target.Add(right).Add(up)
	oc.Update()
}

// MouseButton handles a press or release at the given cursor position.
func (oc *OrbitControls) MouseButton(button int, pressed bool, x, y float64) {
	if !pressed {
		oc.state = orbitIdle
		return
	}
	if !oc.Enabled {
		return
	}
	switch button {
	case MouseLeft:
		oc.state = orbitRotate
	case MouseRight, MouseMiddle:
		oc.state = orbitPan
	default:
		return
	}
	oc.lastX, oc.lastY = x, y
}

// MouseMove feeds cursor motion while a button is held.
func (oc *OrbitControls) MouseMove(x, y float64) {
	if oc.state == orbitIdle {
		return
	}
	dx := float32(x - oc.lastX)
	dy := float32(y - oc.lastY)
	oc.lastX, oc.lastY = x, y

	switch oc.state {
	case orbitRotate:
		oc.Rotate(dx, dy)
	case orbitPan:
		oc.Pan(dx, dy)
	}
}

// Scroll handles a wheel event; positive y moves closer.
func (oc *OrbitControls) Scroll(_, y float64) {
	if !oc.Enabled || y == 0 {
		return
	}
	oc.Dolly(float32(y))
}

// SetViewportSize records the window size used to scale pointer deltas.
func (oc *OrbitControls) SetViewportSize(width, height int) {
	oc.ViewportSize = [2]float32{float32(width), float32(height)}
}
