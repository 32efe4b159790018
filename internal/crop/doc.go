// Package crop implements the vertical crop handles of an image strip and the
// arithmetic that turns handle positions into source-pixel rectangles.
//
// Every image in the strip is displayed letterboxed inside a layout box. Two
// handles, top and bottom, start at the edges of the displayed image and can
// be dragged inward to trim it. All handle positions are in layout units
// (the coordinate space of the box, Y increasing downward); MapToPixelRect
// converts a region into the image's own pixel space.
//
// # Clamp Policy
//
// A handle can never leave the extent the image had when it was first laid
// out, and it can never cross the other handle's live position:
//
//	top.current    in [top.initial, bottom.current]
//	bottom.current in [top.current, bottom.initial]
//
// Out-of-range positions are clamped, never rejected.
//
// # Thread Safety
//
// Store is safe for concurrent use. A Region is not: it assumes a single
// writer, which is the case when drag events are delivered on one thread.
package crop
