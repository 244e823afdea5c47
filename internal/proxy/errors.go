package proxy

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnreachable indicates the resolved backend could not be
// reached or errored at the transport level.
var ErrUpstreamUnreachable = errors.New("upstream unreachable")

// UpstreamError is a transport-level forwarding failure. It carries the
// target that was being contacted and a short description of the
// underlying failure; it is terminal for the request, no retry is
// attempted.
type UpstreamError struct {
	Target string
	Cause  error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Failed to proxy request to server: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *UpstreamError) Is(target error) bool {
	if target == ErrUpstreamUnreachable {
		return true
	}
	_, ok := target.(*UpstreamError)
	return ok || errors.Is(e.Cause, target)
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(target string, cause error) *UpstreamError {
	return &UpstreamError{Target: target, Cause: cause}
}

// IsUpstreamError checks whether err is a transport-level forwarding
// failure.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamUnreachable)
}
