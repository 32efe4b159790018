// Package imaging provides the pixel side of the image strip: loading the
// picked images, normalizing their orientation, cropping each one to its
// handle region and stacking the results into a single composite.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward. Crop rectangles are always interpreted in the upright
// (orientation-normalized) image, never in the stored pixel layout.
//
// # Orientation
//
// Cameras store pixels in sensor order and record the intended rotation as
// EXIF metadata. Source keeps both; Normalize applies the recorded transform
// so that every crop sees the image the way the user saw it on screen.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. CropOne, StitchVertically
// and Normalize never modify their inputs and can be called concurrently.
// CropAllAndStitch reads every region on the calling goroutine before it
// starts cropping, so regions must not be mutated while it runs.
//
// # Error Handling
//
// Per-image failures (ErrCropOutOfBounds, crop.ErrInvalidRegion) are
// recorded and the image is skipped. ErrEmptyInput is returned when nothing
// is left to stitch.
package imaging
