package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// DefaultBlurKernel is the side length of the smoothing kernel applied before edge detection.
const DefaultBlurKernel = 5

// Preprocess converts img to single-channel intensity and smooths it with a
// kernelSize×kernelSize Gaussian kernel.
//
// A kernel size of 1 skips smoothing. The kernel is the outer product of the
// binomial row for kernelSize (1-4-6-4-1 for the default of 5), which is the
// integer approximation of a Gaussian with sigma ≈ 1.1 for a 5×5 window.
// Border pixels replicate the nearest edge value.
func Preprocess(img image.Image, kernelSize int) (*image.Gray, error) {
	if kernelSize < 1 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKernel, kernelSize)
	}

	gray := ToGray(img)
	if kernelSize == 1 {
		return gray, nil
	}

	// Bias 0.5 turns bild's truncation into round-to-nearest.
	blurred := convolution.Convolve(gray, binomialKernel(kernelSize), &convolution.Options{
		Bias:      0.5,
		Wrap:      false,
		KeepAlpha: true,
	})
	return ToGray(blurred), nil
}

// ToGray converts img to an 8-bit grayscale image with bounds starting at (0,0).
//
// Luminance uses ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B) as
// implemented by imaging.Grayscale.
func ToGray(img image.Image) *image.Gray {
	nrgba := imaging.Grayscale(img)
	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+width]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// binomialKernel builds a normalized size×size kernel from binomial coefficients.
func binomialKernel(size int) *convolution.Kernel {
	row := make([]float64, size)
	row[0] = 1
	for i := 1; i < size; i++ {
		for j := i; j > 0; j-- {
			row[j] += row[j-1]
		}
	}

	var sum float64
	for _, v := range row {
		sum += v
	}

	k := convolution.NewKernel(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			k.Matrix[y*size+x] = row[y] * row[x] / (sum * sum)
		}
	}
	return k
}
