package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("game not found")
	ErrDuplicateID = errors.New("duplicate game id")
	ErrCorrupt     = errors.New("store file is corrupt")
)
