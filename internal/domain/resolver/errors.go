package resolver

import "errors"

// Sentinel kinds for resolver errors.
var (
	ErrUnknownRanking = errors.New("unknown ranking")
	ErrEmptyRecord    = errors.New("provider returned no game record")
)
