package lane

import "errors"

// ErrInvalidParams indicates pipeline parameters outside their valid range.
var ErrInvalidParams = errors.New("lane: invalid pipeline parameters")
