package crop

import "math"

// Region pairs the top and bottom handles of one image.
//
// A Region is created once, the first time its image is laid out, and is
// mutated only through UpdateEdge and Reset. It is not safe for concurrent
// mutation.
type Region struct {
	top        Boundary
	bottom     Boundary
	lastEdited Edge
}

// RegionState is a read-only snapshot of a Region, suitable for JSON output.
type RegionState struct {
	TopInitial    float64 `json:"top_initial"`
	TopCurrent    float64 `json:"top_current"`
	BottomInitial float64 `json:"bottom_initial"`
	BottomCurrent float64 `json:"bottom_current"`
	Span          float64 `json:"span"`
	LastEdited    string  `json:"last_edited"`
}

// NewRegion creates a region whose handles rest at topY and bottomY.
//
// Callers are expected to pass topY <= bottomY. If they are reversed the
// values are swapped so the region can never start inverted.
func NewRegion(topY, bottomY float64) *Region {
	if topY > bottomY {
		topY, bottomY = bottomY, topY
	}
	return &Region{
		top:        Boundary{initial: topY, current: topY},
		bottom:     Boundary{initial: bottomY, current: bottomY},
		lastEdited: EdgeTop,
	}
}

// UpdateEdge moves one handle to pos, clamped so that the top handle stays
// in [top.initial, bottom.current] and the bottom handle stays in
// [top.current, bottom.initial]. The other handle is never touched.
// A NaN position leaves the handle where it is.
func (r *Region) UpdateEdge(e Edge, pos float64) {
	switch e {
	case EdgeTop:
		if !math.IsNaN(pos) {
			r.top.current = clamp(pos, r.top.initial, r.bottom.current)
		}
	case EdgeBottom:
		if !math.IsNaN(pos) {
			r.bottom.current = clamp(pos, r.top.current, r.bottom.initial)
		}
	default:
		return
	}
	r.lastEdited = e
}

// Reset moves both handles back to their initial positions.
func (r *Region) Reset() {
	r.top.current = r.top.initial
	r.bottom.current = r.bottom.initial
}

// Top returns the top handle.
func (r *Region) Top() Boundary { return r.top }

// Bottom returns the bottom handle.
func (r *Region) Bottom() Boundary { return r.bottom }

// Boundary returns the handle for e. Unknown edges return the top handle.
func (r *Region) Boundary(e Edge) Boundary {
	if e == EdgeBottom {
		return r.bottom
	}
	return r.top
}

// Min returns the smaller of the initial and current positions of e.
func (r *Region) Min(e Edge) float64 { return r.Boundary(e).Min() }

// Max returns the larger of the initial and current positions of e.
func (r *Region) Max(e Edge) float64 { return r.Boundary(e).Max() }

// Current returns the live position of e.
func (r *Region) Current(e Edge) float64 { return r.Boundary(e).Current() }

// Initial returns the resting position of e.
func (r *Region) Initial(e Edge) float64 { return r.Boundary(e).Initial() }

// LastEdited reports which handle was moved most recently. Hosts use it to
// draw that handle above the other one.
func (r *Region) LastEdited() Edge { return r.lastEdited }

// Span is the height of the visible window between the two handles.
func (r *Region) Span() float64 { return r.bottom.current - r.top.current }

// Snapshot returns the current state of the region.
func (r *Region) Snapshot() RegionState {
	return RegionState{
		TopInitial:    r.top.initial,
		TopCurrent:    r.top.current,
		BottomInitial: r.bottom.initial,
		BottomCurrent: r.bottom.current,
		Span:          r.Span(),
		LastEdited:    r.lastEdited.String(),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
