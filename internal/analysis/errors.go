package analysis

import (
	"fmt"
	"strconv"
)

// Error indicates an unrecoverable provider failure for one document. It is
// fatal for that file; the batch driver converts it to a degraded sentinel.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s analysis failed: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps a provider failure.
func NewError(provider string, err error) *Error {
	return &Error{Provider: provider, Err: err}
}

// TimeoutError indicates the long-running operation did not reach a terminal
// state within the poll budget.
type TimeoutError struct {
	Provider string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s analyze operation timed out after %d poll attempts", e.Provider, e.Attempts)
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns -1 if the value is empty or not a valid integer, so a literal
// "Retry-After: 0" is distinguishable from an absent header.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return -1
	}
	secs, err := strconv.Atoi(val)
	if err != nil || secs < 0 {
		return -1
	}
	return secs
}
