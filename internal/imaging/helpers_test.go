package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStepImage creates an image that is black left of splitX and white from splitX on
func createStepImage(width, height, splitX int) *image.RGBA {
	img := createInMemoryImage(width, height, color.Black)
	for y := 0; y < height; y++ {
		for x := splitX; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

// createGray creates a grayscale image filled with v
func createGray(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// createTestImage writes a solid-color PNG to a temp file and returns its path.
// The file is removed when the test finishes.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := createInMemoryImage(width, height, c)

	tmpFile, err := os.CreateTemp(t.TempDir(), "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}

func isBinary(img *image.Gray) bool {
	for _, v := range img.Pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}
