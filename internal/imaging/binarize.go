package imaging

import "image"

// Binarize maps every non-zero pixel of gray to 255 and leaves zero pixels at 0.
//
// The operation is idempotent: binarizing an already binary image returns an
// identical copy.
func Binarize(gray *image.Gray) *image.Gray {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := gray.Pix[gray.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		dst := out.Pix[y*out.Stride : y*out.Stride+width]
		for x := range dst {
			if src[x] != 0 {
				dst[x] = 255
			}
		}
	}
	return out
}
