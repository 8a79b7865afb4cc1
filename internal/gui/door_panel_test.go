package gui

import "testing"

func TestSliderSetClamps(t *testing.T) {
	s := Slider{Label: "with", Min: 0.1, Max: 1, Value: 1}
	if !s.Set(0) {
		t.Fatal("clamped change not reported")
	}
	if s.Value != 0.1 {
		t.Errorf("value = %v, want 0.1", s.Value)
	}
	if s.Set(-5) {
		t.Error("setting the same clamped value reported a change")
	}
	s.Set(3)
	if s.Value != 1 {
		t.Errorf("value = %v, want 1", s.Value)
	}
}

func TestDoorPanelNotifiesWithBothValues(t *testing.T) {
	var calls int
	var gotW, gotH float32
	p := NewDoorPanel(
		Slider{Label: "with", Min: 0.1, Max: 1, Value: 1},
		Slider{Label: "high", Min: 0, Max: 1, Value: 1},
		func(w, h float32) {
			calls++
			gotW, gotH = w, h
		})

	if p.Title != "Дверь" {
		t.Errorf("title = %q", p.Title)
	}
	if calls != 0 {
		t.Fatal("constructor fired OnChange")
	}

	p.SetHeight(0.5)
	if calls != 1 || gotW != 1 || gotH != 0.5 {
		t.Fatalf("after SetHeight: calls=%d w=%v h=%v", calls, gotW, gotH)
	}

	p.SetWidth(0.05)
	if calls != 2 || gotW != 0.1 || gotH != 0.5 {
		t.Fatalf("after SetWidth: calls=%d w=%v h=%v", calls, gotW, gotH)
	}

	p.SetWidth(0.1)
	if calls != 2 {
		t.Error("unchanged value fired OnChange")
	}
}

func TestNewDoorPanelClampsInitialValues(t *testing.T) {
	p := NewDoorPanel(
		Slider{Label: "with", Min: 0.1, Max: 1, Value: 7},
		Slider{Label: "high", Min: 0, Max: 1, Value: -1},
		nil)
	if p.Width.Value != 1 || p.Height.Value != 0 {
		t.Errorf("initial values %v, %v not clamped", p.Width.Value, p.Height.Value)
	}
	p.SetWidth(0.5) // nil OnChange must not panic
}

func TestOrthoProjectionCorners(t *testing.T) {
	m := orthoProjection(200, 100)
	// Column-major: x' = m0*x + m12, y' = m5*y + m13.
	if x := m[0]*200 + m[12]; x != 1 {
		t.Errorf("right edge maps to %v", x)
	}
	if y := m[5]*100 + m[13]; y != -1 {
		t.Errorf("bottom edge maps to %v", y)
	}
	if m[12] != -1 || m[13] != 1 {
		t.Errorf("origin maps to (%v, %v)", m[12], m[13])
	}
}
