package crop

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidRegion is returned when a region spans zero or negative height,
// which means it was never laid out properly. Callers skip that image.
var ErrInvalidRegion = errors.New("invalid crop region")

// Size is a width and height, in layout units or pixels depending on context.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PixelRect is a crop rectangle in the source image's upright pixel space.
// X is always 0 because cropping is vertical only.
type PixelRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds rounds the rectangle to whole pixels. Each edge is rounded on its
// own so that adjacent rectangles never overlap or leave a gap.
func (p PixelRect) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Round(p.X)),
		int(math.Round(p.Y)),
		int(math.Round(p.X+p.Width)),
		int(math.Round(p.Y+p.Height)),
	)
}

// MapToPixelRect converts the handle positions of r into a rectangle in the
// pixel space of an image whose upright size is natural.
//
// The full extent ever spanned by the two handles is the displayed height of
// the image (the miniature). Its ratio to the natural height converts layout
// units into pixels; the distance each handle has moved inward becomes the
// number of pixel rows trimmed from that end.
func MapToPixelRect(r *Region, natural Size) (PixelRect, error) {
	if r == nil {
		return PixelRect{}, fmt.Errorf("%w: region is nil", ErrInvalidRegion)
	}
	miniatureHeight := r.Max(EdgeBottom) - r.Min(EdgeTop)
	if !(miniatureHeight > 0) {
		return PixelRect{}, fmt.Errorf("%w: span %.2f", ErrInvalidRegion, miniatureHeight)
	}
	if !(natural.Width > 0) || !(natural.Height > 0) {
		return PixelRect{}, fmt.Errorf("%w: natural size %.0fx%.0f", ErrInvalidRegion, natural.Width, natural.Height)
	}

	scale := natural.Height / miniatureHeight
	cropFromTop := r.Current(EdgeTop) - r.Min(EdgeTop)
	cropFromBottom := r.Max(EdgeBottom) - r.Current(EdgeBottom)

	return PixelRect{
		X:      0,
		Y:      cropFromTop * scale,
		Width:  natural.Width,
		Height: (miniatureHeight-cropFromTop)*scale - cropFromBottom*scale,
	}, nil
}
