package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/image-strip-mcp/internal/crop"
)

// ErrCropOutOfBounds is returned when a crop rectangle does not fit inside
// the upright image. It points at a defect in the rectangle's caller, so the
// rectangle is reported rather than clamped.
var ErrCropOutOfBounds = errors.New("crop rectangle outside image bounds")

// ImageResult contains an image encoded for transport
type ImageResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropOne normalizes the orientation of src and extracts rect from the
// upright image. The source is never modified.
func CropOne(src *Source, rect crop.PixelRect) (*image.NRGBA, error) {
	if src == nil || src.Image == nil {
		return nil, fmt.Errorf("crop: no image")
	}
	if err := checkOrdered(rect); err != nil {
		return nil, err
	}
	upright := src.Upright()
	bounds := upright.Bounds()
	r := rect.Bounds()

	// Validate coordinates
	if r.Min.X < bounds.Min.X || r.Min.Y < bounds.Min.Y || r.Max.X > bounds.Max.X || r.Max.Y > bounds.Max.Y {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d), image (%d,%d)-(%d,%d)",
			ErrCropOutOfBounds, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("%w: empty crop (%d,%d)-(%d,%d)", crop.ErrInvalidRegion, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	}

	return imaging.Crop(upright, r), nil
}

// checkOrdered rejects rectangles with a negative extent. image.Rect would
// swap their edges into a valid-looking crop.
func checkOrdered(rect crop.PixelRect) error {
	if rect.Width < 0 || rect.Height < 0 {
		return fmt.Errorf("%w: negative extent %.2fx%.2f at (%.2f,%.2f)",
			ErrCropOutOfBounds, rect.Width, rect.Height, rect.X, rect.Y)
	}
	return nil
}

// EncodePNG encodes img as a base64 PNG result.
func EncodePNG(img image.Image) (*ImageResult, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ImageResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
