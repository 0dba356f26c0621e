package trend

import "errors"

// Sentinel kinds for prediction errors.
var (
	ErrInsufficientData = errors.New("insufficient data for prediction")
	ErrInvalidHorizon   = errors.New("invalid prediction horizon")
)
