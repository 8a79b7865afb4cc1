package sketch

import (
	"DoorScene/internal/config"
	"DoorScene/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// DoorScale is the slider state applied to the door. Width and Height are
// fractions of the model's base size and always lie inside their ranges.
type DoorScale struct {
	Width  float32
	Height float32

	WidthRange  config.Range
	HeightRange config.Range
	BaseScale   float32
	FloorOffset float32
}

func NewDoorScale(cfg config.DoorConfig) DoorScale {
	return DoorScale{
		Width:       cfg.Width.Clamp(cfg.Width.Value),
		Height:      cfg.Height.Clamp(cfg.Height.Value),
		WidthRange:  cfg.Width,
		HeightRange: cfg.Height,
		BaseScale:   cfg.BaseScale,
		FloorOffset: cfg.FloorOffset,
	}
}

func (d *DoorScale) SetWidth(v float32) {
	d.Width = d.WidthRange.Clamp(v)
}

func (d *DoorScale) SetHeight(v float32) {
	d.Height = d.HeightRange.Clamp(v)
}

// Scale is the door's scale vector; depth keeps the base scale.
func (d DoorScale) Scale() mgl32.Vec3 {
	return mgl32.Vec3{d.BaseScale * d.Width, d.BaseScale * d.Height, d.BaseScale}
}

// PositionY keeps the door's centre half its height above the floor.
func (d DoorScale) PositionY() float32 {
	return d.FloorOffset + d.Height/2
}

// Apply rescales door and lifts it; x and z are left where they are.
func (d DoorScale) Apply(door *renderer.Group) {
	s := d.Scale()
	door.SetScale(s[0], s[1], s[2])
	door.SetPosition(door.Position.X(), d.PositionY(), door.Position.Z())
}
