package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// EncodePNGBase64 encodes img as PNG and returns the base64 string.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Save writes img to path, choosing the encoder from the file extension.
// Missing parent directories are created.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
