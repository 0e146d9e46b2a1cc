package models

import "errors"

// Failure taxonomy. The HTTP layer translates these to response codes; inside
// the core they are matched with errors.Is.
var (
	// ErrNotFound means the requested entity exists neither in the cache nor
	// upstream.
	ErrNotFound = errors.New("not found")

	// ErrExternalService means the movie source or a scraper was unreachable
	// or answered with a non-2xx status.
	ErrExternalService = errors.New("external service failure")

	// ErrDataFormat means an upstream payload could not be parsed.
	ErrDataFormat = errors.New("unparseable upstream payload")

	// ErrStore means the store was unavailable or a query failed. Always
	// fatal to the current operation; the core does not retry.
	ErrStore = errors.New("store failure")

	// ErrValidation means the caller passed an argument the core rejects.
	ErrValidation = errors.New("validation failure")
)
