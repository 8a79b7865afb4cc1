package renderer

import (
	"DoorScene/internal/logger"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// ErrNoPixels is returned when a texture has neither pixels nor a GPU handle.
var ErrNoPixels = errors.New("texture has no pixel data")

// TextureStats provides debugging and profiling information
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
}

// TextureManager uploads CPU textures once and shares the GPU handle between
// every material that references the same image.
type TextureManager struct {
	textureCache    map[string]uint32 // cache key -> OpenGL texture ID
	textureRefCount map[uint32]int    // texture ID -> reference count
	texturePaths    map[uint32]string // texture ID -> cache key (for debugging)
	mu              sync.RWMutex
	stats           TextureStats
	defaultTexture  uint32
}

// NewTextureManager creates a new texture manager instance
func NewTextureManager() *TextureManager {
	return &TextureManager{
		textureCache:    make(map[string]uint32),
		textureRefCount: make(map[uint32]int),
		texturePaths:    make(map[uint32]string),
	}
}

// cacheKey separates colour and data uploads of the same image.
func cacheKey(tex *Texture) string {
	if tex.Linear {
		return tex.Name + "#linear"
	}
	return tex.Name + "#srgb"
}

// Upload creates the GPU texture for tex, or reuses a cached one, and stores
// the handle in tex.ID. The CPU image is dropped once it is on the GPU.
// Must run on the thread that owns the GL context.
func (tm *TextureManager) Upload(tex *Texture) (uint32, error) {
	if tex == nil {
		return 0, ErrNoPixels
	}
	if tex.Uploaded() {
		return tex.ID, nil
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	key := cacheKey(tex)
	if tex.Name != "" {
		if textureID, exists := tm.textureCache[key]; exists {
			tm.textureRefCount[textureID]++
			tm.stats.CacheHits++
			tex.ID = textureID
			tex.Image = nil
			logger.Log.Debug("Texture cache hit",
				zap.String("name", tex.Name),
				zap.Uint32("textureID", textureID),
				zap.Int("refCount", tm.textureRefCount[textureID]))
			return textureID, nil
		}
	}
	if tex.Image == nil {
		return 0, ErrNoPixels
	}
	tm.stats.CacheMisses++

	rgba := toRGBA(tex.Image)
	size := rgba.Rect.Size()

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(size.X), int32(size.Y),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if tex.Name != "" {
		tm.textureCache[key] = textureID
	}
	tm.textureRefCount[textureID] = 1
	tm.texturePaths[textureID] = key
	tm.stats.TotalTextures++
	tm.stats.ActiveTextures++

	tex.ID = textureID
	tex.Image = nil

	logger.Log.Info("Texture uploaded",
		zap.String("name", tex.Name),
		zap.Bool("linear", tex.Linear),
		zap.Uint32("textureID", textureID),
		zap.Int("width", size.X),
		zap.Int("height", size.Y))

	return textureID, nil
}

// toRGBA returns img as a tightly packed *image.RGBA anchored at the origin.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// DefaultTexture is a 1x1 white texture bound to empty sampler slots so the
// shaders never sample an unbound unit.
func (tm *TextureManager) DefaultTexture() uint32 {
	if tm.defaultTexture != 0 {
		return tm.defaultTexture
	}
	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.Set(0, 0, color.RGBA{255, 255, 255, 255})
	id, err := tm.Upload(NewTexture("default", white, true))
	if err != nil {
		logger.Log.Error("Failed to create default texture", zap.Error(err))
		return 0
	}
	tm.defaultTexture = id
	return id
}

// ReleaseTexture decrements reference count and frees texture if count reaches 0
func (tm *TextureManager) ReleaseTexture(textureID uint32) {
	if textureID == 0 {
		return
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	refCount, exists := tm.textureRefCount[textureID]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture",
			zap.Uint32("textureID", textureID))
		return
	}

	refCount--
	tm.textureRefCount[textureID] = refCount

	if refCount <= 0 {
		gl.DeleteTextures(1, &textureID)

		key := tm.texturePaths[textureID]
		delete(tm.textureCache, key)
		delete(tm.textureRefCount, textureID)
		delete(tm.texturePaths, textureID)
		tm.stats.ActiveTextures--
		if textureID == tm.defaultTexture {
			tm.defaultTexture = 0
		}

		logger.Log.Debug("Texture freed",
			zap.Uint32("textureID", textureID),
			zap.String("key", key))
	}
}

// ReleaseMaterial releases every uploaded texture of m.
func (tm *TextureManager) ReleaseMaterial(m *Material) {
	if m == nil {
		return
	}
	for _, tex := range m.Textures() {
		if tex.Uploaded() {
			tm.ReleaseTexture(tex.ID)
			tex.ID = 0
		}
	}
}

// GetStats returns current texture manager statistics
func (tm *TextureManager) GetStats() TextureStats {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	stats := tm.stats
	stats.ActiveTextures = len(tm.textureRefCount)
	return stats
}

// LogStats logs current texture statistics
func (tm *TextureManager) LogStats() {
	stats := tm.GetStats()
	hitRate := 0.0
	if total := stats.CacheHits + stats.CacheMisses; total > 0 {
		hitRate = float64(stats.CacheHits) / float64(total)
	}
	logger.Log.Info("Texture Manager Stats",
		zap.Int("totalTextures", stats.TotalTextures),
		zap.Int("activeTextures", stats.ActiveTextures),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("cacheMisses", stats.CacheMisses),
		zap.Float64("hitRate", hitRate))
}

// Clear releases all textures
func (tm *TextureManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for textureID := range tm.textureRefCount {
		id := textureID
		gl.DeleteTextures(1, &id)
	}

	tm.textureCache = make(map[string]uint32)
	tm.textureRefCount = make(map[uint32]int)
	tm.texturePaths = make(map[uint32]string)
	tm.stats.ActiveTextures = 0
	tm.defaultTexture = 0

	logger.Log.Info("Texture manager cleared")
}
