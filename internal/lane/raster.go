package lane

import (
	"image"
	"math"

	"github.com/Mayankkcode/Lane-detection/internal/detection"
)

// DefaultLineThickness is the stroke width used when drawing detected lanes.
const DefaultLineThickness = 10

// DrawSegments rasterizes segments onto a blank width×height canvas.
//
// Each segment becomes a solid stroke with round caps: a pixel is set to 255
// when its centre lies within thickness/2 of the segment. Strokes are clipped
// to the canvas. With no segments the canvas stays all zero.
func DrawSegments(width, height int, segments []detection.Segment, thickness int) *image.Gray {
	canvas := image.NewGray(image.Rect(0, 0, width, height))
	if thickness < 1 {
		thickness = 1
	}
	radius := float64(thickness) / 2
	reach := int(math.Ceil(radius))

	for _, s := range segments {
		minX := max(min(s.Start.X, s.End.X)-reach, 0)
		maxX := min(max(s.Start.X, s.End.X)+reach, width-1)
		minY := max(min(s.Start.Y, s.End.Y)-reach, 0)
		maxY := min(max(s.Start.Y, s.End.Y)+reach, height-1)

		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if distanceToSegment(float64(x), float64(y), s) <= radius {
					canvas.Pix[y*canvas.Stride+x] = 255
				}
			}
		}
	}
	return canvas
}

// distanceToSegment returns the distance from (px, py) to the closest point of s.
func distanceToSegment(px, py float64, s detection.Segment) float64 {
	ax, ay := float64(s.Start.X), float64(s.Start.Y)
	bx, by := float64(s.End.X), float64(s.End.Y)
	dx, dy := bx-ax, by-ay

	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
