package model

import "errors"

// Sentinel kinds for reading validation errors.
var (
	ErrInvalidReading = errors.New("invalid reading")
)
