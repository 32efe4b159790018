// Package sink persists finished composites.
//
// A save either succeeds and reports where the image went, or fails with an
// error wrapping ErrSaveFailed. Failed saves are never retried.
package sink

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/google/uuid"
)

// ErrSaveFailed is returned when the composite could not be persisted.
var ErrSaveFailed = errors.New("save failed")

// DefaultJPEGQuality is used when a FileSink has no quality set.
const DefaultJPEGQuality = 90

// Sink accepts a finished composite. name is a hint; the returned string is
// where the image actually went.
type Sink interface {
	Save(ctx context.Context, img image.Image, name string) (string, error)
}

// FileSink writes composites to the local filesystem. The encoder is chosen
// from the file extension: ".jpg" and ".jpeg" give JPEG, ".png" or no
// extension give PNG.
type FileSink struct {
	// Dir is where unnamed and relative outputs are written.
	Dir string

	// JPEGQuality is the JPEG quality (1-100). Zero means DefaultJPEGQuality.
	JPEGQuality int
}

// NewFileSink creates a sink writing into dir.
func NewFileSink(dir string, jpegQuality int) *FileSink {
	return &FileSink{Dir: dir, JPEGQuality: jpegQuality}
}

// Save writes img and returns the absolute path of the written file.
// An empty name produces "strip-<uuid>.png" inside Dir.
func (s *FileSink) Save(ctx context.Context, img image.Image, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if img == nil || img.Bounds().Empty() {
		return "", fmt.Errorf("%w: empty image", ErrSaveFailed)
	}

	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	encoder, err := s.encoderFor(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := imgio.Save(path, img, encoder); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrSaveFailed, path, err)
	}
	return path, nil
}

func (s *FileSink) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "strip-" + uuid.NewString() + ".png"
	}
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	if !filepath.IsAbs(name) {
		dir := s.Dir
		if dir == "" {
			dir = os.TempDir()
		}
		name = filepath.Join(dir, name)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return abs, nil
}

func (s *FileSink) encoderFor(path string) (imgio.Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		q := s.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return imgio.JPEGEncoder(q), nil
	default:
		return nil, fmt.Errorf("%w: unsupported output format %q", ErrSaveFailed, filepath.Ext(path))
	}
}
