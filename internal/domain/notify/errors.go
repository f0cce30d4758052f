package notify

import "errors"

// Sentinel kinds for dispatcher errors.
var (
	ErrMissingFields = errors.New("missing required fields")
)
