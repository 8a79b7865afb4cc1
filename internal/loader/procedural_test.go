package loader

import (
	"image"
	"testing"
)

func newTestImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 2, 2))
}

func TestFallbackTextures(t *testing.T) {
	white := WhiteTexture()
	if white.Linear {
		t.Error("colour fallback should be sRGB")
	}
	if c := white.Image.(*image.RGBA).RGBAAt(0, 0); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("white fallback = %v", c)
	}

	normal := FlatNormalTexture()
	if !normal.Linear {
		t.Error("normal fallback must be linear")
	}
	if c := normal.Image.(*image.RGBA).RGBAAt(0, 0); c.R != 128 || c.G != 128 || c.B != 255 {
		t.Errorf("flat normal = %v, want (128,128,255)", c)
	}
}

func TestNoiseRoughnessTexture(t *testing.T) {
	tex := NoiseRoughnessTexture(32, 0.6, 0.3, 7)

	if !tex.Linear {
		t.Error("roughness must be linear")
	}
	img := tex.Image.(*image.RGBA)
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Fatalf("size = %v, want 32x32", b.Size())
	}
	lo, hi := uint8(255), uint8(0)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			g := img.RGBAAt(x, y).G
			if g < lo {
				lo = g
			}
			if g > hi {
				hi = g
			}
		}
	}
	if lo == hi {
		t.Error("noise texture should vary")
	}

	again := NoiseRoughnessTexture(32, 0.6, 0.3, 7).Image.(*image.RGBA)
	if string(again.Pix) != string(img.Pix) {
		t.Error("same seed should give the same texture")
	}
}

func TestNoiseRoughnessTextureMinimumSize(t *testing.T) {
	tex := NoiseRoughnessTexture(0, 0.5, 0.1, 1)
	if b := tex.Image.Bounds(); b.Dx() != 1 {
		t.Errorf("size = %v, want 1x1", b.Size())
	}
}
