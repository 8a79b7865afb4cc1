package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full scene configuration. Zero fields in a loaded file keep
// their defaults.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Assets AssetConfig  `yaml:"assets"`
	Camera CameraConfig `yaml:"camera"`
	Light  LightConfig  `yaml:"light"`
	Door   DoorConfig   `yaml:"door"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	MSAA   int    `yaml:"msaa"` // hardware multisample count, 0 disables
}

type AssetConfig struct {
	Root           string `yaml:"root"`
	Environment    string `yaml:"environment"`
	FloorColor     string `yaml:"floor_color"`
	FloorNormal    string `yaml:"floor_normal"`
	FloorRoughness string `yaml:"floor_roughness"`
	DoorModel      string `yaml:"door_model"`
	GUIFont        string `yaml:"gui_font"` // TTF with Cyrillic glyphs; the built-in font has none
	MaxTextureSize int    `yaml:"max_texture_size"`
	Workers        int    `yaml:"workers"`
}

type CameraConfig struct {
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
}

type LightConfig struct {
	Position      [3]float32 `yaml:"position"`
	Color         [3]float32 `yaml:"color"`
	Intensity     float32    `yaml:"intensity"`
	ShadowMapSize int        `yaml:"shadow_map_size"`
}

// Range is a slider definition: bounds plus the initial value.
type Range struct {
	Min   float32 `yaml:"min"`
	Max   float32 `yaml:"max"`
	Value float32 `yaml:"value"`
}

type DoorConfig struct {
	BaseScale   float32 `yaml:"base_scale"`
	FloorOffset float32 `yaml:"floor_offset"`
	Width       Range   `yaml:"width"`
	Height      Range   `yaml:"height"`
}

var ErrInvalidRange = errors.New("invalid slider range")

// Default returns the configuration the scene was designed around.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
			Title:  "Door",
			MSAA:   4,
		},
		Assets: AssetConfig{
			Root:           ".",
			Environment:    "textures/venice_sunset_1k.hdr",
			FloorColor:     "textures/tiles/tiles_0116_color_1k.jpg",
			FloorNormal:    "textures/tiles/tiles_0116_normal_opengl_1k.png",
			FloorRoughness: "textures/tiles/tiles_0116_roughness_1k.jpg",
			DoorModel:      "models/door/scene.gltf",
			GUIFont:        "fonts/NotoSans-Regular.ttf",
			MaxTextureSize: 2048,
			Workers:        4,
		},
		Camera: CameraConfig{
			Fov:      45,
			Near:     1,
			Far:      1000,
			Position: [3]float32{0, 3, 5},
			Target:   [3]float32{0, 0.5, 0},
		},
		Light: LightConfig{
			Position:      [3]float32{-3, 10, 14},
			Color:         [3]float32{1, 1, 1},
			Intensity:     2,
			ShadowMapSize: 2048,
		},
		Door: DoorConfig{
			BaseScale:   0.1,
			FloorOffset: -0.39,
			Width:       Range{Min: 0.1, Max: 1, Value: 1},
			Height:      Range{Min: 0, Max: 1, Value: 1},
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error:
// the defaults are returned as they are.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the slider ranges and clamps their initial values.
func (c *Config) Validate() error {
	for _, r := range []*Range{&c.Door.Width, &c.Door.Height} {
		if r.Max < r.Min {
			return fmt.Errorf("%w: min %v > max %v", ErrInvalidRange, r.Min, r.Max)
		}
		r.Value = r.Clamp(r.Value)
	}
	if c.Assets.Workers < 1 {
		c.Assets.Workers = 1
	}
	return nil
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float32) float32 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Path resolves an asset path against the asset root.
func (a AssetConfig) Path(rel string) string {
	if filepath.IsAbs(rel) || a.Root == "" {
		return rel
	}
	return filepath.Join(a.Root, rel)
}
