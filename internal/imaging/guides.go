package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/image-strip-mcp/internal/crop"
)

// DefaultGuideColor is used by CropGuides when no colour is given.
var DefaultGuideColor = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// CropGuides returns an upright copy of src with the crop rectangle marked:
// rows that will be cut are dimmed to half brightness and a horizontal guide
// line is drawn at the top and bottom edge of the rectangle.
func CropGuides(src *Source, rect crop.PixelRect, guide color.Color) (*image.NRGBA, error) {
	if src == nil || src.Image == nil {
		return nil, fmt.Errorf("guides: no image")
	}
	if guide == nil {
		guide = DefaultGuideColor
	}

	if err := checkOrdered(rect); err != nil {
		return nil, err
	}

	result := imaging.Clone(src.Upright())
	bounds := result.Bounds()
	r := rect.Bounds()
	if r.Min.Y < bounds.Min.Y || r.Max.Y > bounds.Max.Y {
		return nil, fmt.Errorf("%w: rows %d-%d, image height %d", ErrCropOutOfBounds, r.Min.Y, r.Max.Y, bounds.Dy())
	}

	// Dim the rows outside the crop
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		if y >= r.Min.Y && y < r.Max.Y {
			continue
		}
		row := result.Pix[y*result.Stride : y*result.Stride+bounds.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i] /= 2
			row[i+1] /= 2
			row[i+2] /= 2
		}
	}

	thickness := bounds.Dy() / 200
	if thickness < 1 {
		thickness = 1
	}
	c := color.NRGBAModel.Convert(guide).(color.NRGBA)
	drawGuide(result, r.Min.Y, thickness, c)
	drawGuide(result, r.Max.Y-thickness, thickness, c)

	return result, nil
}

// drawGuide paints a full-width band of the given thickness starting at row y.
// Rows outside the image are skipped.
func drawGuide(img *image.NRGBA, y, thickness int, c color.NRGBA) {
	bounds := img.Bounds()
	for dy := 0; dy < thickness; dy++ {
		py := y + dy
		if py < bounds.Min.Y || py >= bounds.Max.Y {
			continue
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetNRGBA(x, py, c)
		}
	}
}
