package domain

import "errors"

var (
	// ErrNotFound means no row exists for the requested entity or date.
	// Callers render it as "no data", not as a failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned before any query runs for unparseable dates,
	// unknown dimension keys and similar caller mistakes.
	ErrInvalidInput = errors.New("invalid input")
)
