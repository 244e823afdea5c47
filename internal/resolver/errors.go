// Package resolver maps logical resource references to live backend
// addresses and the headers to inject when forwarding to them.
package resolver

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolution.
var (
	// ErrInvalidResource indicates the named resource could not be
	// fetched from the registry (not found, or the fetch itself errored).
	ErrInvalidResource = errors.New("invalid resource")

	// ErrNotResolved indicates the resource exists but carries no
	// usable resolved address yet.
	ErrNotResolved = errors.New("resource has no resolved address")

	// ErrUnknownKind indicates an unrecognized resource kind.
	ErrUnknownKind = errors.New("unknown resource kind")
)

// ResolutionError is a resolution failure carrying the resource
// reference that failed. The message deliberately includes only a short
// description of the cause, never full internal error detail.
type ResolutionError struct {
	Kind  Kind
	Name  string
	Cause error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if errors.Is(e.Cause, ErrNotResolved) {
		return fmt.Sprintf("%s server '%s' has no resolved address", e.Kind, e.Name)
	}
	return fmt.Sprintf("Invalid resource %s %s", e.Kind, e.Name)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ResolutionError) Is(target error) bool {
	_, ok := target.(*ResolutionError)
	return ok || errors.Is(e.Cause, target)
}

// NewInvalidResourceError creates an error for a failed registry fetch.
func NewInvalidResourceError(kind Kind, name string, cause error) *ResolutionError {
	if cause == nil {
		cause = ErrInvalidResource
	} else if !errors.Is(cause, ErrInvalidResource) {
		cause = fmt.Errorf("%w: %v", ErrInvalidResource, cause)
	}
	return &ResolutionError{Kind: kind, Name: name, Cause: cause}
}

// NewNotResolvedError creates an error for a resource without a
// resolved address.
func NewNotResolvedError(kind Kind, name string) *ResolutionError {
	return &ResolutionError{Kind: kind, Name: name, Cause: ErrNotResolved}
}

// IsInvalidResource checks whether err is a failed registry fetch.
func IsInvalidResource(err error) bool {
	return errors.Is(err, ErrInvalidResource)
}

// IsNotResolved checks whether err is a not-yet-resolved resource.
func IsNotResolved(err error) bool {
	return errors.Is(err, ErrNotResolved)
}
