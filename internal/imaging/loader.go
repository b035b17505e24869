package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache provides thread-safe caching of loaded images to avoid redundant disk reads.
//
// The cache stores decoded image.Image objects keyed by their file path. Once an image
// is loaded, subsequent Load() calls for the same path return the cached copy without
// disk I/O. Failed loads are never cached.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("road.jpg")
//	if errors.Is(err, imaging.ErrImageLoad) {
//	    log.Fatal(err)
//	}
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Decoding is delegated to imaging.Open, which sniffs the format from the file
// contents (PNG, JPEG, GIF, BMP, TIFF) and applies EXIF orientation so that
// photographs taken in portrait mode come out upright.
//
// # Errors
//
// Any failure to open or decode the file is returned wrapped in ErrImageLoad,
// so callers can reject the input before any processing stage runs.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Open decodes the image at path without caching it.
func Open(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrImageLoad)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrImageLoad, path, err)
	}
	return img, nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format implied by the file extension: "png", "jpeg", "gif", or "unknown".
	Format string `json:"format"`

	// ColorModel is "gray", "color", or "paletted", depending on the decoded type.
	ColorModel string `json:"color_model"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	model := "color"
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		model = "gray"
	case *image.Paletted:
		model = "paletted"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		ColorModel:    model,
		FileSizeBytes: stat.Size(),
	}, nil
}
