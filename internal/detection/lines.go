package detection

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"
)

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Segment is a detected line segment between two edge pixels.
type Segment struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Length returns the Euclidean length of the segment in pixels.
func (s Segment) Length() float64 {
	dx := float64(s.End.X - s.Start.X)
	dy := float64(s.End.Y - s.Start.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// HoughParams configures DetectSegments.
type HoughParams struct {
	// Rho is the distance resolution of the accumulator in pixels.
	Rho float64 `json:"rho" yaml:"rho"`

	// Theta is the angular resolution of the accumulator in radians.
	Theta float64 `json:"theta" yaml:"theta"`

	// Threshold is the number of votes a cell needs before its line is traced.
	Threshold int `json:"threshold" yaml:"threshold"`

	// MinLineLength is the minimum horizontal or vertical extent of a kept segment.
	MinLineLength int `json:"min_line_length" yaml:"min_line_length"`

	// MaxLineGap is the longest run of missing pixels bridged while tracing.
	MaxLineGap int `json:"max_line_gap" yaml:"max_line_gap"`

	// MaxLines stops detection after this many segments. Zero means no limit.
	MaxLines int `json:"max_lines,omitempty" yaml:"max_lines"`

	// Seed selects the pixel visiting order.
	Seed uint64 `json:"seed,omitempty" yaml:"seed"`
}

// DefaultHoughParams returns the lane-detection settings: 1 pixel and 1 degree
// resolution, 100 votes, segments of at least 50 pixels, gaps up to 50 pixels.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		Rho:           1,
		Theta:         math.Pi / 180,
		Threshold:     100,
		MinLineLength: 50,
		MaxLineGap:    50,
	}
}

// Validate reports whether p can be used for detection.
func (p HoughParams) Validate() error {
	switch {
	case !(p.Rho > 0):
		return fmt.Errorf("%w: rho must be positive, got %v", ErrInvalidParams, p.Rho)
	case !(p.Theta > 0) || p.Theta > math.Pi:
		return fmt.Errorf("%w: theta must be in (0, pi], got %v", ErrInvalidParams, p.Theta)
	case p.Threshold < 1:
		return fmt.Errorf("%w: threshold must be at least 1, got %d", ErrInvalidParams, p.Threshold)
	case p.MinLineLength < 0 || p.MaxLineGap < 0 || p.MaxLines < 0:
		return fmt.Errorf("%w: lengths and limits must not be negative", ErrInvalidParams)
	}
	return nil
}

// fixed-point precision used while tracing a line
const shift = 16

// DetectSegments finds line segments in a binary edge map using the
// progressive probabilistic Hough transform.
//
// Parameters:
//   - edges: Edge map; any non-zero pixel is an edge. It is not modified.
//   - p: Accumulator resolution, vote threshold and segment filters.
//
// Returns:
//   - []Segment: Detected segments in discovery order, with coordinates in the
//     edge map's own coordinate space. Empty (never nil) when nothing is found.
//   - error: Non-nil only when p is invalid.
func DetectSegments(edges *image.Gray, p HoughParams) ([]Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	segments := make([]Segment, 0)

	mask := make([]bool, width*height)
	points := make([]Point, 0)
	for y := 0; y < height; y++ {
		row := edges.Pix[edges.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			if row[x] != 0 {
				mask[y*width+x] = true
				points = append(points, Point{X: x, Y: y})
			}
		}
	}
	if len(points) == 0 {
		return segments, nil
	}

	numAngles := int(math.Round(math.Pi / p.Theta))
	if numAngles < 1 {
		numAngles = 1
	}
	cosTab := make([]float64, numAngles)
	sinTab := make([]float64, numAngles)
	for n := 0; n < numAngles; n++ {
		angle := float64(n) * p.Theta
		cosTab[n] = math.Cos(angle) / p.Rho
		sinTab[n] = math.Sin(angle) / p.Rho
	}

	rhoOffset := int(math.Ceil(float64(width+height)/p.Rho)) + 1
	numRho := 2*rhoOffset + 1
	accumulator := make([]int, numAngles*numRho)
	cell := func(n, x, y int) int {
		r := int(math.RoundToEven(float64(x)*cosTab[n] + float64(y)*sinTab[n]))
		return n*numRho + r + rhoOffset
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	for count := len(points); count > 0; count-- {
		idx := rng.IntN(count)
		pt := points[idx]
		points[idx] = points[count-1]

		// Already consumed by an earlier trace.
		if !mask[pt.Y*width+pt.X] {
			continue
		}

		maxVotes := p.Threshold - 1
		bestAngle := 0
		for n := 0; n < numAngles; n++ {
			c := cell(n, pt.X, pt.Y)
			accumulator[c]++
			if accumulator[c] > maxVotes {
				maxVotes = accumulator[c]
				bestAngle = n
			}
		}
		if maxVotes < p.Threshold {
			continue
		}

		walker := newLineWalker(pt, -sinTab[bestAngle], cosTab[bestAngle])

		// Find the segment ends, bridging gaps up to MaxLineGap.
		var ends [2]Point
		for k := 0; k < 2; k++ {
			gap := 0
			x, y, dx, dy := walker.start(k)
			for ; ; x, y = x+dx, y+dy {
				px, py := walker.pixel(x, y)
				if px < 0 || px >= width || py < 0 || py >= height {
					break
				}
				if mask[py*width+px] {
					gap = 0
					ends[k] = Point{X: px, Y: py}
				} else if gap++; gap > p.MaxLineGap {
					break
				}
			}
		}

		good := abs(ends[1].X-ends[0].X) >= p.MinLineLength ||
			abs(ends[1].Y-ends[0].Y) >= p.MinLineLength

		// Consume the traced pixels; an accepted segment also withdraws their votes.
		for k := 0; k < 2; k++ {
			x, y, dx, dy := walker.start(k)
			for ; ; x, y = x+dx, y+dy {
				px, py := walker.pixel(x, y)
				if mask[py*width+px] {
					if good {
						for n := 0; n < numAngles; n++ {
							accumulator[cell(n, px, py)]--
						}
					}
					mask[py*width+px] = false
				}
				if px == ends[k].X && py == ends[k].Y {
					break
				}
			}
		}

		if !good {
			continue
		}
		segments = append(segments, Segment{
			Start: Point{X: ends[0].X + bounds.Min.X, Y: ends[0].Y + bounds.Min.Y},
			End:   Point{X: ends[1].X + bounds.Min.X, Y: ends[1].Y + bounds.Min.Y},
		})
		if p.MaxLines > 0 && len(segments) >= p.MaxLines {
			break
		}
	}

	return segments, nil
}

// lineWalker steps one pixel at a time along the major axis of a line,
// carrying the minor axis in 16.16 fixed point.
type lineWalker struct {
	x0, y0 int
	dx, dy int
	xMajor bool
}

// newLineWalker prepares a walk through origin along direction (a, b).
func newLineWalker(origin Point, a, b float64) lineWalker {
	w := lineWalker{x0: origin.X, y0: origin.Y}
	if math.Abs(a) > math.Abs(b) {
		w.xMajor = true
		w.dx = 1
		if a < 0 {
			w.dx = -1
		}
		w.dy = int(math.RoundToEven(b * (1 << shift) / math.Abs(a)))
		w.y0 = (w.y0 << shift) + (1 << (shift - 1))
	} else {
		w.dy = 1
		if b < 0 {
			w.dy = -1
		}
		w.dx = int(math.RoundToEven(a * (1 << shift) / math.Abs(b)))
		w.x0 = (w.x0 << shift) + (1 << (shift - 1))
	}
	return w
}

// start returns the initial position and step for direction k (0 forward, 1 backward).
func (w lineWalker) start(k int) (x, y, dx, dy int) {
	if k == 0 {
		return w.x0, w.y0, w.dx, w.dy
	}
	return w.x0, w.y0, -w.dx, -w.dy
}

// pixel converts a walker position to pixel coordinates.
func (w lineWalker) pixel(x, y int) (int, int) {
	if w.xMajor {
		return x, y >> shift
	}
	return x >> shift, y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
