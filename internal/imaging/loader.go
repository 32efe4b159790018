package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/image-strip-mcp/internal/crop"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Source is one picked image: the pixels as stored plus the orientation
// metadata that says how to display them.
//
// A Source is read-only once created. The upright copy is computed on first
// use and shared by later calls.
type Source struct {
	// Path is where the image was loaded from. Empty for in-memory sources.
	Path string

	// Image holds the decoded pixels in stored (not yet rotated) order.
	Image image.Image

	// Orientation is the EXIF orientation, OrientationNormal if absent.
	Orientation Orientation

	once    sync.Once
	upright *image.NRGBA
}

// NewSource wraps an already decoded image. Invalid orientations are
// replaced by OrientationNormal.
func NewSource(img image.Image, o Orientation) *Source {
	if !o.Valid() {
		o = OrientationNormal
	}
	return &Source{Image: img, Orientation: o}
}

// Upright returns the orientation-normalized image.
func (s *Source) Upright() *image.NRGBA {
	s.once.Do(func() {
		s.upright = Normalize(s.Image, s.Orientation)
	})
	return s.upright
}

// NaturalSize returns the upright pixel size of the image without
// normalizing it.
func (s *Source) NaturalSize() crop.Size {
	b := s.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	if s.Orientation.SwapsAxes() {
		w, h = h, w
	}
	return crop.Size{Width: float64(w), Height: float64(h)}
}

// ImageCache provides thread-safe caching of loaded images to avoid redundant
// disk reads when the same picture is selected again.
//
// An entry is reused only while the file's modification time and size are
// unchanged. Cached sources remain in memory until explicitly removed via
// Evict() or Clear().
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	src     *Source
	modTime time.Time
	size    int64
}

func (e cacheEntry) matches(info os.FileInfo) bool {
	return e.size == info.Size() && e.modTime.Equal(info.ModTime())
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]cacheEntry),
	}
}

// Load retrieves a source from the cache or loads it from disk if not cached
// or if the file changed since it was cached.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. The EXIF
// orientation is read when the file carries it; files without EXIF data
// (including every non-JPEG format) load as OrientationNormal.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func (c *ImageCache) Load(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	if e, ok := c.entries[path]; ok && e.matches(info) {
		c.mu.RUnlock()
		return e.src, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src := NewSource(img, readOrientation(data))
	src.Path = path

	c.mu.Lock()
	c.entries[path] = cacheEntry{src: src, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	return src, nil
}

// Clear removes all sources from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific source from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached sources.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// readOrientation extracts the EXIF orientation tag. Anything missing or
// malformed counts as OrientationNormal.
func readOrientation(data []byte) Orientation {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return OrientationNormal
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return OrientationNormal
	}
	v, err := tag.Int(0)
	if err != nil {
		return OrientationNormal
	}
	o := Orientation(v)
	if !o.Valid() {
		return OrientationNormal
	}
	return o
}

// SourceInfo describes a picked image for the host.
type SourceInfo struct {
	// Index is the display position within the active set.
	Index int `json:"index"`

	// Path is the file the image was loaded from.
	Path string `json:"path"`

	// Format is derived from the file extension: "png", "jpeg", "gif",
	// "bmp", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// Width and Height are the upright pixel dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Orientation is the EXIF orientation name, "normal" when absent.
	Orientation string `json:"orientation"`
}

// Info summarizes src as the index-th image of the active set.
func Info(index int, src *Source) SourceInfo {
	size := src.NaturalSize()
	return SourceInfo{
		Index:       index,
		Path:        src.Path,
		Format:      formatFromPath(src.Path),
		Width:       int(size.Width),
		Height:      int(size.Height),
		Orientation: src.Orientation.String(),
	}
}

func formatFromPath(path string) string {
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
