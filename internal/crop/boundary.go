package crop

import (
	"fmt"
	"math"
	"strings"
)

// Edge identifies one of the two handles of a Region.
type Edge int

const (
	// EdgeTop is the handle that trims from the top of the image.
	EdgeTop Edge = iota
	// EdgeBottom is the handle that trims from the bottom of the image.
	EdgeBottom
)

// String returns "top" or "bottom".
func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Edge(%d)", int(e))
	}
}

// ParseEdge converts "top" or "bottom" (case-insensitive) into an Edge.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return EdgeTop, nil
	case "bottom":
		return EdgeBottom, nil
	default:
		return 0, fmt.Errorf("unknown edge %q: want top or bottom", s)
	}
}

// Boundary is one draggable edge: where it rested when the image was first
// laid out, and where it is now.
//
// The fields are unexported so that only the owning Region can move a
// boundary; that is what keeps the two handles from crossing.
type Boundary struct {
	initial float64
	current float64
}

// Initial returns the resting position computed at first layout.
func (b Boundary) Initial() float64 { return b.initial }

// Current returns the live position.
func (b Boundary) Current() float64 { return b.current }

// Min returns the smaller of the initial and current positions.
func (b Boundary) Min() float64 { return math.Min(b.initial, b.current) }

// Max returns the larger of the initial and current positions.
func (b Boundary) Max() float64 { return math.Max(b.initial, b.current) }
