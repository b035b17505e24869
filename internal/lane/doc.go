// Package lane wires the imaging and detection stages into the lane-marking
// pipeline.
//
// A single Process call runs, in order: load, grayscale and 5x5 blur, Canny
// edge detection, probabilistic Hough segment extraction, thick-line
// rasterization onto a blank canvas, and binarization. Independently, the
// original image is masked by an HSV brightness range to isolate light paint.
//
// No state persists between calls. A load failure stops the pipeline before
// any stage runs and is reported as an error wrapping imaging.ErrImageLoad.
package lane
