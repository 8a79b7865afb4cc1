package loader

import (
	"DoorScene/internal/logger"
	"DoorScene/internal/renderer"
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/mdouchement/hdr"
	_ "github.com/mdouchement/hdr/codec/rgbe"
	"go.uber.org/zap"
)

var ErrNotHDR = errors.New("image is not high dynamic range")

// LoadHDR decodes a Radiance RGBE (.hdr) panorama into linear float RGB.
func LoadHDR(path string) (*renderer.Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environment %s: %w", path, err)
	}
	defer f.Close()

	env, err := DecodeHDR(path, bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode environment %s: %w", path, err)
	}
	return env, nil
}

// DecodeHDR reads an HDR image from r. Rows are kept top-down.
func DecodeHDR(name string, r io.Reader) (*renderer.Environment, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	hdrImg, ok := img.(hdr.Image)
	if !ok {
		return nil, fmt.Errorf("%w: decoded as %s", ErrNotHDR, format)
	}

	b := hdrImg.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]float32, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := hdrImg.HDRAt(x, y).HDRRGBA()
			pixels = append(pixels, float32(cr), float32(cg), float32(cb))
		}
	}

	logger.Log.Debug("HDR decoded",
		zap.String("name", name),
		zap.String("format", format),
		zap.Int("width", w),
		zap.Int("height", h))
	return renderer.NewEnvironment(name, w, h, pixels)
}
