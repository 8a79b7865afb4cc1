package renderer

import (
	"image"
	"image/color"
	"testing"
)

func TestToRGBAPassThrough(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if toRGBA(img) != img {
		t.Error("tightly packed RGBA should be used as-is")
	}
}

func TestToRGBAConvertsAndRebases(t *testing.T) {
	gray := image.NewGray(image.Rect(2, 3, 4, 5))
	gray.SetGray(2, 3, color.Gray{Y: 200})

	rgba := toRGBA(gray)

	if rgba.Rect.Min != (image.Point{}) {
		t.Errorf("converted image should start at the origin, got %v", rgba.Rect)
	}
	if rgba.Rect.Dx() != 2 || rgba.Rect.Dy() != 2 {
		t.Errorf("size = %v, want 2x2", rgba.Rect.Size())
	}
	if c := rgba.RGBAAt(0, 0); c.R != 200 || c.A != 255 {
		t.Errorf("pixel (0,0) = %v, want gray 200", c)
	}
}

func TestCacheKeySeparatesColorSpaces(t *testing.T) {
	srgb := NewTexture("floor.jpg", nil, false)
	linear := NewTexture("floor.jpg", nil, true)
	if cacheKey(srgb) == cacheKey(linear) {
		t.Error("sRGB and linear uploads of one image need distinct keys")
	}
}

func TestUploadWithoutPixels(t *testing.T) {
	tm := NewTextureManager()
	if _, err := tm.Upload(nil); err != ErrNoPixels {
		t.Errorf("nil texture: got %v, want ErrNoPixels", err)
	}
	if _, err := tm.Upload(NewTexture("", nil, false)); err != ErrNoPixels {
		t.Errorf("empty texture: got %v, want ErrNoPixels", err)
	}
}

func TestReleaseUnknownTexture(t *testing.T) {
	tm := NewTextureManager()
	tm.ReleaseTexture(0)
	tm.ReleaseTexture(42)
	if stats := tm.GetStats(); stats.ActiveTextures != 0 {
		t.Errorf("ActiveTextures = %d, want 0", stats.ActiveTextures)
	}
}
