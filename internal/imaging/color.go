package imaging

import (
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSVColor is a color in 8-bit HSV space.
type HSVColor struct {
	H uint8 `json:"h" yaml:"h"` // Hue: 0-180 (degrees / 2)
	S uint8 `json:"s" yaml:"s"` // Saturation: 0-255
	V uint8 `json:"v" yaml:"v"` // Value: 0-255
}

// Bounds for the light lane-paint range: any hue or saturation, bright value.
var (
	DefaultLaneLower = HSVColor{H: 0, S: 0, V: 200}
	DefaultLaneUpper = HSVColor{H: 180, S: 255, V: 255}
)

// ToHSV converts c to 8-bit HSV.
//
// Fully transparent colors convert to black. Hue is rounded to the nearest
// half-degree step and wraps so that 360° maps back to 0.
func ToHSV(c color.Color) HSVColor {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return HSVColor{}
	}
	h, s, v := cf.Hsv()

	hue := int(math.Round(h/2)) % 180
	return HSVColor{
		H: uint8(hue),
		S: uint8(math.Round(clampUnit(s) * 255)),
		V: uint8(math.Round(clampUnit(v) * 255)),
	}
}

// InRange returns a mask with 255 wherever the pixel's HSV value lies within
// [lower, upper] on every channel (inclusive), and 0 elsewhere.
func InRange(img image.Image, lower, upper HSVColor) *image.Gray {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	mask := image.NewGray(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			hsv := ToHSV(img.At(x+bounds.Min.X, y+bounds.Min.Y))
			if hsv.H >= lower.H && hsv.H <= upper.H &&
				hsv.S >= lower.S && hsv.S <= upper.S &&
				hsv.V >= lower.V && hsv.V <= upper.V {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}

// ApplyMask keeps the pixels of img where mask is non-zero and sets the rest to
// opaque black. The mask must have the same width and height as img; pixels
// outside the mask are treated as masked out.
func ApplyMask(img image.Image, mask *image.Gray) *image.NRGBA {
	bounds := img.Bounds()
	mb := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := y*out.Stride + x*4
			out.Pix[off+3] = 255

			mp := image.Pt(mb.Min.X+x, mb.Min.Y+y)
			if !mp.In(mb) || mask.Pix[mask.PixOffset(mp.X, mp.Y)] == 0 {
				continue
			}
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)
			out.Pix[off+0] = c.R
			out.Pix[off+1] = c.G
			out.Pix[off+2] = c.B
		}
	}
	return out
}

// IsolateColor extracts the regions of img whose HSV values fall inside
// [lower, upper], blacking out everything else.
func IsolateColor(img image.Image, lower, upper HSVColor) *image.NRGBA {
	return ApplyMask(img, InRange(img, lower, upper))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
