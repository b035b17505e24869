package imaging

import "errors"

var (
	// ErrImageLoad indicates the path did not resolve to a decodable image.
	ErrImageLoad = errors.New("imaging: cannot load image")
	// ErrInvalidKernel indicates a blur kernel size that is not a positive odd number.
	ErrInvalidKernel = errors.New("imaging: kernel size must be a positive odd number")
)
