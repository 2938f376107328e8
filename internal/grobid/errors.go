package grobid

import (
	"errors"
	"fmt"
)

// Sentinel errors for extraction-service failures. The three causes carry
// different operator guidance but callers route them the same way: a failure
// before any reference is processed aborts the run.
var (
	// ErrUnavailable means the service could not be reached at all.
	ErrUnavailable = errors.New("extraction service unreachable")

	// ErrTimeout means the service accepted the request but did not answer
	// within the deadline.
	ErrTimeout = errors.New("extraction service timed out")
)

// APIError means the service was reachable but rejected the request, for
// example a malformed or oversized PDF.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("extraction service rejected request: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("extraction service rejected request: HTTP %d: %s", e.StatusCode, e.Message)
}
