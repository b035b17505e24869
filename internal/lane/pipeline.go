package lane

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/Mayankkcode/Lane-detection/internal/detection"
	"github.com/Mayankkcode/Lane-detection/internal/imaging"
)

// Default output file names, written to the output directory.
const (
	DefaultBitmapFile   = "lane_bitmap.jpg"
	DefaultIsolatedFile = "isolated_background.jpg"
)

// Params configures every stage of the pipeline.
type Params struct {
	// BlurKernel is the side length of the smoothing kernel (odd, >= 1).
	BlurKernel int `json:"blur_kernel" yaml:"blur_kernel"`

	// CannyLow and CannyHigh are the hysteresis thresholds for edge detection.
	CannyLow  int `json:"canny_low" yaml:"canny_low"`
	CannyHigh int `json:"canny_high" yaml:"canny_high"`

	// Hough configures segment extraction.
	Hough detection.HoughParams `json:"hough" yaml:"hough"`

	// LineThickness is the stroke width used when drawing segments.
	LineThickness int `json:"line_thickness" yaml:"line_thickness"`

	// LaneLower and LaneUpper bound the HSV range kept by color isolation.
	LaneLower imaging.HSVColor `json:"lane_lower" yaml:"lane_lower"`
	LaneUpper imaging.HSVColor `json:"lane_upper" yaml:"lane_upper"`

	// BitmapFile and IsolatedFile name the files written by Result.Save.
	BitmapFile   string `json:"bitmap_file" yaml:"bitmap_file"`
	IsolatedFile string `json:"isolated_file" yaml:"isolated_file"`
}

// DefaultParams returns the fixed lane-detection settings.
func DefaultParams() Params {
	return Params{
		BlurKernel:    imaging.DefaultBlurKernel,
		CannyLow:      imaging.DefaultCannyLow,
		CannyHigh:     imaging.DefaultCannyHigh,
		Hough:         detection.DefaultHoughParams(),
		LineThickness: DefaultLineThickness,
		LaneLower:     imaging.DefaultLaneLower,
		LaneUpper:     imaging.DefaultLaneUpper,
		BitmapFile:    DefaultBitmapFile,
		IsolatedFile:  DefaultIsolatedFile,
	}
}

// Validate reports the first parameter outside its valid range.
func (p Params) Validate() error {
	if p.BlurKernel < 1 || p.BlurKernel%2 == 0 {
		return fmt.Errorf("%w: blur_kernel must be a positive odd number, got %d", ErrInvalidParams, p.BlurKernel)
	}
	if p.CannyLow < 0 || p.CannyHigh < 0 {
		return fmt.Errorf("%w: canny thresholds must not be negative", ErrInvalidParams)
	}
	if p.LineThickness < 1 {
		return fmt.Errorf("%w: line_thickness must be at least 1, got %d", ErrInvalidParams, p.LineThickness)
	}
	if err := p.Hough.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// Result holds the outputs of one pipeline run. Every image has bounds
// starting at (0,0) with the source image's width and height.
type Result struct {
	// Edges is the binary Canny edge map.
	Edges *image.Gray

	// Segments are the line segments found in Edges.
	Segments []detection.Segment

	// Mask is the canvas with every segment drawn as a thick stroke.
	Mask *image.Gray

	// Bitmap is the binarized mask: 255 on lanes, 0 elsewhere.
	Bitmap *image.Gray

	// Isolated is the source image with everything outside the lane color
	// range blacked out.
	Isolated *image.NRGBA
}

// Process loads the image at path through cache and runs the full pipeline.
//
// A load failure is returned immediately, wrapping imaging.ErrImageLoad, and no
// processing stage runs.
func Process(cache *imaging.ImageCache, path string, p Params) (*Result, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	Logf("lane: loaded %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
	return ProcessImage(img, p)
}

// ProcessImage runs the pipeline on an already decoded image.
func ProcessImage(img image.Image, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	gray, err := imaging.Preprocess(img, p.BlurKernel)
	if err != nil {
		return nil, err
	}

	edges := imaging.DetectEdges(gray, p.CannyLow, p.CannyHigh)

	segments, err := detection.DetectSegments(edges, p.Hough)
	if err != nil {
		return nil, err
	}

	bounds := gray.Bounds()
	mask := DrawSegments(bounds.Dx(), bounds.Dy(), segments, p.LineThickness)
	bitmap := imaging.Binarize(mask)
	isolated := imaging.IsolateColor(img, p.LaneLower, p.LaneUpper)

	Logf("lane: %d edge pixels, %d segments, %d lane pixels in %s",
		imaging.CountNonZero(edges), len(segments), imaging.CountNonZero(bitmap), time.Since(start))

	return &Result{
		Edges:    edges,
		Segments: segments,
		Mask:     mask,
		Bitmap:   bitmap,
		Isolated: isolated,
	}, nil
}

// Outputs lists the files written by Result.Save.
type Outputs struct {
	BitmapPath   string `json:"bitmap_path"`
	IsolatedPath string `json:"isolated_path"`
}

// Save writes the lane bitmap and the isolated-color image into dir using the
// file names from p. The encoder is chosen from each file's extension.
func (r *Result) Save(dir string, p Params) (*Outputs, error) {
	if p.BitmapFile == "" {
		p.BitmapFile = DefaultBitmapFile
	}
	if p.IsolatedFile == "" {
		p.IsolatedFile = DefaultIsolatedFile
	}

	out := &Outputs{
		BitmapPath:   filepath.Join(dir, p.BitmapFile),
		IsolatedPath: filepath.Join(dir, p.IsolatedFile),
	}
	if err := imaging.Save(r.Bitmap, out.BitmapPath); err != nil {
		return nil, err
	}
	if err := imaging.Save(r.Isolated, out.IsolatedPath); err != nil {
		return nil, err
	}
	Logf("lane: wrote %s and %s", out.BitmapPath, out.IsolatedPath)
	return out, nil
}
