package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/image-strip-mcp/internal/crop"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// coordImage encodes each pixel's position in its colour so that
// transforms can be checked pixel by pixel.
func coordImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, coordColor(x, y))
		}
	}
	return img
}

func coordColor(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 7, A: 255}
}

// measure lays out src in box and stores its region at index, the way a
// host does on the first layout pass.
func measure(t *testing.T, store *crop.Store, index int, src *Source, box crop.Size) *crop.Region {
	t.Helper()
	top, bottom := crop.Seed(box.Height, crop.FitHeight(src.NaturalSize(), box))
	r, _ := store.Ensure(index, top, bottom)
	return r
}

func samePixels(a, b *image.NRGBA) bool {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return false
	}
	for y := 0; y < a.Bounds().Dy(); y++ {
		for x := 0; x < a.Bounds().Dx(); x++ {
			if a.NRGBAAt(a.Bounds().Min.X+x, a.Bounds().Min.Y+y) != b.NRGBAAt(b.Bounds().Min.X+x, b.Bounds().Min.Y+y) {
				return false
			}
		}
	}
	return true
}
