package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrEmptyInput is returned when there is nothing to stitch.
var ErrEmptyInput = errors.New("nothing to stitch")

// StitchVertically stacks images top to bottom in the given order.
//
// The composite is as wide as the widest input and as tall as all inputs
// together. Narrower images are left-aligned; the area to their right is
// painted with fill (fully transparent when fill is nil). Nil and empty
// images are ignored.
func StitchVertically(images []image.Image, fill color.Color) (*image.NRGBA, error) {
	width, height := 0, 0
	for _, img := range images {
		if img == nil || img.Bounds().Empty() {
			continue
		}
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
	}
	if width == 0 || height == 0 {
		return nil, ErrEmptyInput
	}
	if fill == nil {
		fill = color.Transparent
	}

	dst := imaging.New(width, height, fill)
	y := 0
	for _, img := range images {
		if img == nil || img.Bounds().Empty() {
			continue
		}
		dst = imaging.Paste(dst, img, image.Pt(0, y))
		y += img.Bounds().Dy()
	}
	return dst, nil
}

// ParseFill converts a fill colour name into a color.Color.
//
// "", "transparent" and "none" give fully transparent black. Anything else
// must be a hex colour ("#rgb" or "#rrggbb", the "#" is optional) and is
// fully opaque.
func ParseFill(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "transparent", "none":
		return color.NRGBA{}, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid fill colour %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
