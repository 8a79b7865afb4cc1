package loader

import (
	"DoorScene/internal/logger"
	"DoorScene/internal/renderer"
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxTextureSize bounds the longest side of decoded textures; larger images
// are resampled down before upload. Zero disables the limit.
var MaxTextureSize = 2048

// TextureOptions describes how a decoded image is meant to be sampled.
type TextureOptions struct {
	// Linear marks data textures (normal, roughness) that must not be
	// treated as sRGB colour.
	Linear bool
	// FlipY puts the first image row at v=1, for geometry whose UVs grow
	// upwards (planes, OBJ). glTF UVs already match the image layout.
	FlipY bool
}

// LoadTexture reads and decodes an image file into a CPU-side texture.
func LoadTexture(path string, opts TextureOptions) (*renderer.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}
	defer f.Close()

	tex, err := DecodeTexture(path, f, opts)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes any registered image format (JPEG, PNG, WebP).
func DecodeTexture(name string, r io.Reader, opts TextureOptions) (*renderer.Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	img = downscale(img, MaxTextureSize)
	if opts.FlipY {
		img = flipVertical(img)
	}
	logger.Log.Debug("Texture decoded",
		zap.String("name", name),
		zap.String("format", format),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Int("uploadWidth", img.Bounds().Dx()),
		zap.Bool("linear", opts.Linear))
	return renderer.NewTexture(name, img, opts.Linear), nil
}

func decodeTextureBytes(name string, data []byte, opts TextureOptions) (*renderer.Texture, error) {
	return DecodeTexture(name, bytes.NewReader(data), opts)
}

// downscale resamples img so its longest side is at most limit.
func downscale(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if limit <= 0 || (w <= limit && h <= limit) {
		return img
	}
	if w >= h {
		h = max(1, h*limit/w)
		w = limit
	} else {
		w = max(1, w*limit/h)
		h = limit
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// flipVertical returns a copy of img with its rows reversed.
func flipVertical(img image.Image) *image.RGBA {
	b := img.Bounds()
	src, ok := img.(*image.RGBA)
	if !ok || src.Rect.Min != (image.Point{}) {
		src = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
	}
	h := src.Rect.Dy()
	row := src.Rect.Dx() * 4
	dst := image.NewRGBA(src.Rect)
	for y := 0; y < h; y++ {
		copy(dst.Pix[(h-1-y)*dst.Stride:(h-1-y)*dst.Stride+row], src.Pix[y*src.Stride:y*src.Stride+row])
	}
	return dst
}
