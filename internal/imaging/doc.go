// Package imaging provides the pixel-level stages of the lane pipeline.
//
// This package implements loading, grayscale conversion, smoothing, Canny edge
// detection, binarization, and HSV color-range masking. All operations work
// with standard Go image.Image types and use a coordinate system where (0,0)
// is at the top-left corner, X increases rightward, and Y increases downward.
//
// # Output Bounds
//
// Every stage returns an image whose bounds start at (0,0) and whose width and
// height equal the input's, regardless of the input's Min point. Callers can
// therefore chain stages and compare results pixel by pixel.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The processing functions are
// stateless and allocate their outputs, so they can be called concurrently on
// the same source image as long as nobody mutates it.
//
// # Color Representation
//
// HSV values follow the 8-bit convention used by most vision toolkits:
//   - H: 0-180 (degrees halved so a full turn fits in a byte)
//   - S: 0-255
//   - V: 0-255
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Missing or undecodable image files (wrapping ErrImageLoad)
//   - Even or non-positive blur kernel sizes (ErrInvalidKernel)
//   - Encoding errors during image output
package imaging
