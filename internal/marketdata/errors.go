package marketdata

import "errors"

var (
	// ErrNotFound means the provider has no data for the ticker. Not a
	// transient failure; callers must not retry it.
	ErrNotFound = errors.New("marketdata: ticker not found")

	// ErrRateLimited means the provider rejected the request for quota
	// reasons. Transient; safe to retry after a backoff.
	ErrRateLimited = errors.New("marketdata: rate limited")
)
