package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidEntry = errors.New("invalid entry")
	ErrClosed       = errors.New("store closed")
)
