package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRateNotFound means the rate source had no value for the requested
	// date (or the fallback window was exhausted). Non-fatal: the dependent
	// conversion is skipped, not assumed zero.
	ErrRateNotFound = errors.New("rate not found")

	// ErrNotFound is returned by repositories for missing rows.
	ErrNotFound = errors.New("not found")
)

// StatusError carries an upstream HTTP status so callers can decide between
// retrying (timeouts, 5xx, 429) and surfacing immediately (other 4xx).
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.Status, e.URL)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
