package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SourceCache provides thread-safe caching of decoded source images to avoid
// redundant disk reads and decodes.
//
// The cache stores pristine *image.NRGBA buffers keyed by their file path.
// Cached buffers are shared and MUST be treated as read-only: every pipeline
// invocation clones the buffer before transforming it, so repeated calls with
// different settings stay independent and reproducible.
//
// SourceCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict().
//
// # Example Usage
//
//	cache := imaging.NewSourceCache(imaging.NewPNGCodec())
//	src, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := pixelate.Pixelate(src, settings) // src is not modified
type SourceCache struct {
	mu     sync.RWMutex
	codec  Codec
	images map[string]*image.NRGBA
}

// NewSourceCache creates and initializes a new empty source cache that decodes
// with codec.
func NewSourceCache(codec Codec) *SourceCache {
	return &SourceCache{
		codec:  codec,
		images: make(map[string]*image.NRGBA),
	}
}

// Load retrieves a pristine image from the cache or loads it from disk if not
// cached.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns an error wrapping ErrTooLarge if the file exceeds MaxSourceBytes
//   - Returns an error wrapping ErrDecode if the file is not a decodable image
func (c *SourceCache) Load(path string) (*image.NRGBA, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := ReadSource(path)
	if err != nil {
		return nil, err
	}

	img, err := c.codec.Decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *SourceCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ReadSource reads an encoded source image from disk, enforcing the
// MaxSourceBytes limit before reading the contents.
func ReadSource(path string) ([]byte, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	if stat.Size() > MaxSourceBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, stat.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// ImageInfo contains metadata about a loaded source image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "png", "jpeg", "gif", "bmp",
	// "tiff", "webp" or "unknown". Detection is based on file extension.
	Format string `json:"format"`

	// HasAlpha reports whether any pixel is not fully opaque.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image into the cache (if not already cached) and
// returns its dimensions, format, alpha usage and file size.
func LoadImageInfo(cache *SourceCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        FormatFromPath(path),
		HasAlpha:      !img.Opaque(),
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatFromPath maps a file extension to a format name.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	default:
		return "unknown"
	}
}
