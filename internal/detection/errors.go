package detection

import "errors"

// ErrInvalidParams indicates HoughParams that cannot drive the transform.
var ErrInvalidParams = errors.New("detection: invalid hough parameters")
