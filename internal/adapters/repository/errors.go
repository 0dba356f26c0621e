package repository

import "errors"

// Sentinel kinds for reading store errors.
var (
	ErrNotFound         = errors.New("location not found")
	ErrDuplicateReading = errors.New("duplicate reading")
)
