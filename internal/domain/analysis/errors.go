package analysis

import "errors"

// Sentinel kinds for pattern analysis errors.
var (
	ErrInsufficientData = errors.New("insufficient data for analysis")
)
