package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesScene(t *testing.T) {
	cfg := Default()

	if cfg.Camera.Fov != 45 || cfg.Camera.Near != 1 || cfg.Camera.Far != 1000 {
		t.Errorf("unexpected camera defaults: %+v", cfg.Camera)
	}
	if cfg.Camera.Position != [3]float32{0, 3, 5} {
		t.Errorf("camera position = %v", cfg.Camera.Position)
	}
	if cfg.Door.Width.Min != 0.1 || cfg.Door.Width.Max != 1 {
		t.Errorf("width range = %+v", cfg.Door.Width)
	}
	if cfg.Door.Height.Min != 0 || cfg.Door.Height.Max != 1 {
		t.Errorf("height range = %+v", cfg.Door.Height)
	}
	if cfg.Light.Intensity != 2 {
		t.Errorf("light intensity = %v", cfg.Light.Intensity)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != Default().Window.Width {
		t.Errorf("expected default window width, got %d", cfg.Window.Width)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	data := []byte(`
window:
  width: 640
  title: test
assets:
  root: /srv/assets
door:
  height: {min: 0, max: 2, value: 5}
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Title != "test" {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Height != 800 {
		t.Errorf("height should keep default, got %d", cfg.Window.Height)
	}
	if cfg.Door.Height.Value != 2 {
		t.Errorf("initial height should be clamped to 2, got %v", cfg.Door.Height.Value)
	}
	if got := cfg.Assets.Path(cfg.Assets.DoorModel); got != filepath.Join("/srv/assets", "models/door/scene.gltf") {
		t.Errorf("Path = %s", got)
	}
}

func TestLoadRejectsInvertedRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("door:\n  width: {min: 1, max: 0.5}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("window: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: 0.1, Max: 1}
	tests := []struct {
		in, want float32
	}{
		{-1, 0.1},
		{0.1, 0.1},
		{0.5, 0.5},
		{1, 1},
		{3, 1},
	}
	for _, tt := range tests {
		if got := r.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "doorscene.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("configs/doorscene.yaml drifted from Default():\n got %+v\nwant %+v", cfg, Default())
	}
}
