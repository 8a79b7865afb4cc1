package gui

import (
	"github.com/inkyblackness/imgui-go/v4"
)

// Slider is a bounded float control.
type Slider struct {
	Label    string
	Min, Max float32
	Value    float32
}

// Set clamps v into the slider bounds and reports whether the value changed.
func (s *Slider) Set(v float32) bool {
	v = s.clamp(v)
	if v == s.Value {
		return false
	}
	s.Value = v
	return true
}

func (s *Slider) clamp(v float32) float32 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// DoorPanel is the "Дверь" folder: one slider for the door width and one
// for its height. OnChange receives both values whenever either moves.
type DoorPanel struct {
	Title    string
	Width    Slider
	Height   Slider
	OnChange func(width, height float32)
}

func NewDoorPanel(width, height Slider, onChange func(width, height float32)) *DoorPanel {
	p := &DoorPanel{
		Title:    "Дверь",
		Width:    width,
		Height:   height,
		OnChange: onChange,
	}
	p.Width.Value = p.Width.clamp(width.Value)
	p.Height.Value = p.Height.clamp(height.Value)
	return p
}

func (p *DoorPanel) SetWidth(v float32) {
	if p.Width.Set(v) {
		p.notify()
	}
}

func (p *DoorPanel) SetHeight(v float32) {
	if p.Height.Set(v) {
		p.notify()
	}
}

func (p *DoorPanel) notify() {
	if p.OnChange != nil {
		p.OnChange(p.Width.Value, p.Height.Value)
	}
}

func (p *DoorPanel) Draw() {
	if !imgui.CollapsingHeaderV(p.Title, imgui.TreeNodeFlagsDefaultOpen) {
		return
	}
	width := p.Width.Value
	if imgui.SliderFloatV(p.Width.Label, &width, p.Width.Min, p.Width.Max, "%.2f", 0) {
		p.SetWidth(width)
	}
	height := p.Height.Value
	if imgui.SliderFloatV(p.Height.Label, &height, p.Height.Min, p.Height.Max, "%.2f", 0) {
		p.SetHeight(height)
	}
}
