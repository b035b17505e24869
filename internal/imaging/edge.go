package imaging

import (
	"fmt"
	"image"
)

// Default hysteresis thresholds for DetectEdges.
const (
	DefaultCannyLow  = 50
	DefaultCannyHigh = 150
)

// EdgeDetectResult contains an edge-detected image encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect preprocesses img with the default 5x5 blur and runs DetectEdges,
// returning the edge map as a base64 PNG.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	gray, err := Preprocess(img, DefaultBlurKernel)
	if err != nil {
		return nil, err
	}
	edges := DetectEdges(gray, thresholdLow, thresholdHigh)

	encoded, err := EncodePNGBase64(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edge image: %w", err)
	}

	bounds := edges.Bounds()
	return &EdgeDetectResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		EdgePixels:  CountNonZero(edges),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// gradient direction buckets, in degrees modulo 180
const (
	dir0 uint8 = iota
	dir45
	dir90
	dir135
)

// DetectEdges performs Canny edge detection on an already smoothed grayscale image.
//
// Parameters:
//   - gray: Single-channel intensity image, typically the output of Preprocess.
//   - thresholdLow: Gradient magnitudes at or below this are never edges.
//   - thresholdHigh: Gradient magnitudes above this always start an edge.
//
// If thresholdLow exceeds thresholdHigh the two are swapped.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators on the 0-255 intensity values,
//     magnitude = |Gx| + |Gy|
//
//  2. Non-maximum suppression: a pixel survives only if it is a local maximum
//     along its gradient direction, quantized to 0, 45, 90 or 135 degrees.
//     The comparison is strict on one side so that a plateau two pixels wide
//     keeps exactly one of them.
//
//  3. Hysteresis: surviving pixels above thresholdHigh are strong edges; those
//     above thresholdLow are kept only when 8-connected to a strong edge
//     through other kept pixels.
//
// The one-pixel image border is never marked. The returned image has bounds
// starting at (0,0) with the input's width and height, and contains only the
// values 0 and 255.
func DetectEdges(gray *image.Gray, thresholdLow, thresholdHigh int) *image.Gray {
	if thresholdLow > thresholdHigh {
		thresholdLow, thresholdHigh = thresholdHigh, thresholdLow
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	at := func(x, y int) int {
		return int(gray.Pix[gray.PixOffset(x+bounds.Min.X, y+bounds.Min.Y)])
	}

	magnitude := make([]int, width*height)
	direction := make([]uint8, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			gx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy := (bl + 2*bc + br) - (tl + 2*tc + tr)

			idx := y*width + x
			magnitude[idx] = abs(gx) + abs(gy)
			direction[idx] = quantizeDirection(gx, gy)
		}
	}

	// Non-maximum suppression, recording candidates above the low threshold.
	const (
		none uint8 = iota
		weak
		strong
	)
	class := make([]uint8, width*height)
	stack := make([]int, 0, width)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			idx := y*width + x
			mag := magnitude[idx]
			if mag <= thresholdLow {
				continue
			}

			var before, after int
			switch direction[idx] {
			case dir0:
				before, after = magnitude[idx-1], magnitude[idx+1]
			case dir45:
				before, after = magnitude[idx-width-1], magnitude[idx+width+1]
			case dir90:
				before, after = magnitude[idx-width], magnitude[idx+width]
			default:
				before, after = magnitude[idx-width+1], magnitude[idx+width-1]
			}
			if mag <= before || mag < after {
				continue
			}

			if mag > thresholdHigh {
				class[idx] = strong
				stack = append(stack, idx)
			} else {
				class[idx] = weak
			}
		}
	}

	// Grow strong edges through connected weak pixels.
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		result.Pix[(idx/width)*result.Stride+idx%width] = 255

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				n := idx + dy*width + dx
				if class[n] == weak {
					class[n] = strong
					stack = append(stack, n)
				}
			}
		}
	}

	return result
}

// quantizeDirection maps a gradient vector to the nearest of four directions.
// Image Y grows downward, so a positive gy with positive gx points to the
// bottom-right neighbor.
func quantizeDirection(gx, gy int) uint8 {
	ax, ay := abs(gx), abs(gy)
	// tan(22.5°) ≈ 0.4142, tan(67.5°) ≈ 2.4142; compare in fixed point.
	switch {
	case ay*10000 <= ax*4142:
		return dir0
	case ay*10000 >= ax*24142:
		return dir90
	case (gx > 0) == (gy > 0):
		return dir45
	default:
		return dir135
	}
}

// CountNonZero returns the number of non-zero pixels in gray.
func CountNonZero(gray *image.Gray) int {
	bounds := gray.Bounds()
	count := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, y):gray.PixOffset(bounds.Max.X-1, y)+1]
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
