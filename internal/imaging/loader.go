package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrEmptyImage is wrapped by DecodeError when the payload has no bytes at all.
var ErrEmptyImage = errors.New("empty image payload")

// DecodeError reports an image payload that cannot be decoded.
//
// It is the only failure that stops a label scan: without pixels there is nothing
// to recognize. Callers detect it with errors.As.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes a whole JPEG, PNG or GIF payload.
//
// EXIF orientation is applied, so a phone photo taken sideways comes back upright.
// That matters for OCR, which reads rotated labels poorly.
//
// Returns:
//   - image.Image: The decoded, upright image.
//   - string: The format name reported by the decoder ("jpeg", "png", "gif").
//   - error: A *DecodeError if the payload is empty or not a supported image.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &DecodeError{Err: ErrEmptyImage}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", &DecodeError{Err: err}
	}
	return img, format, nil
}

// ImageCache provides thread-safe caching of label image files to avoid redundant disk reads.
//
// The cache stores the raw file bytes keyed by path. Bytes rather than decoded images
// are kept because the scan pipeline takes the original payload and decodes it itself.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached files remain in memory until evicted with Evict, which callers use to re-read a
// file that changed on disk.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string][]byte
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string][]byte),
	}
}

// Load returns the contents of the image file at path, reading it on first use.
//
// The bytes are checked with image.DecodeConfig before they are cached, so a path
// that does not hold a supported image fails here with a *DecodeError and is never
// cached. The returned slice is shared; callers must not modify it.
func (c *ImageCache) Load(path string) ([]byte, error) {
	c.mu.RLock()
	if data, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, &DecodeError{Err: err}
	}

	c.mu.Lock()
	c.images[path] = data
	c.mu.Unlock()

	return data, nil
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a label image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder's format name: "png", "jpeg" or "gif".
	// Detection is based on file contents, not the file extension.
	Format string `json:"format"`

	// SizeBytes is the payload size in bytes.
	SizeBytes int64 `json:"size_bytes"`

	// SmallForOCR is set when the image is narrower than MinOCRWidth and will be
	// upscaled before recognition.
	SmallForOCR bool `json:"small_for_ocr"`
}

// Info reads the header of an image payload without decoding the pixels.
//
// Returns a *DecodeError if the payload is empty or not a supported image.
func Info(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: ErrEmptyImage}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &ImageInfo{
		Width:       cfg.Width,
		Height:      cfg.Height,
		Format:      format,
		SizeBytes:   int64(len(data)),
		SmallForOCR: cfg.Width < MinOCRWidth,
	}, nil
}

// LoadImageInfo loads an image file through the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	data, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return Info(data)
}
