package collector

import "errors"

// Sentinel kinds for collector errors.
var (
	ErrRateLimited  = errors.New("rate limited")
	ErrServerError  = errors.New("server error")
	ErrUnexpected   = errors.New("unexpected status code")
	ErrCircuitOpen  = errors.New("circuit breaker open")
	ErrNoAPIKey     = errors.New("provider api key not configured")
	ErrBadBackoff   = errors.New("invalid backoff configuration")
	ErrNoHTTPClient = errors.New("http client not configured")
)
