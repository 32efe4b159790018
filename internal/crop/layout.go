package crop

import "math"

// FitHeight returns the displayed height of an image of the given natural
// size when it is aspect-fit (letterboxed) into box. It returns 0 if any
// dimension is not positive.
func FitHeight(natural, box Size) float64 {
	if !(natural.Width > 0) || !(natural.Height > 0) || !(box.Width > 0) || !(box.Height > 0) {
		return 0
	}
	scale := math.Min(box.Width/natural.Width, box.Height/natural.Height)
	return natural.Height * scale
}

// Seed returns the resting positions of the top and bottom handles for an
// image of fittedHeight centred vertically in a box of boxHeight.
func Seed(boxHeight, fittedHeight float64) (topY, bottomY float64) {
	topY = (boxHeight - fittedHeight) / 2
	return topY, topY + fittedHeight
}
