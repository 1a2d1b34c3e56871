package asset

import (
	"errors"
	"fmt"
)

// Common errors returned by the cache
var (
	// ErrUnknownIdentifier is returned by Release when no entry exists for the identifier.
	// It usually means a double release or a release without a matching acquire.
	ErrUnknownIdentifier = errors.New("asset: unknown identifier")

	// ErrHandleReleased is returned by Release when the handle has already been released.
	ErrHandleReleased = errors.New("asset: handle already released")

	// ErrHandleMismatch is returned by Release when the handle was issued for a different identifier.
	ErrHandleMismatch = errors.New("asset: handle does not belong to identifier")

	// ErrNilHandle is returned by Release when called without a handle.
	ErrNilHandle = errors.New("asset: nil handle")

	// ErrCacheClosed is returned by Acquire after Close has been called.
	ErrCacheClosed = errors.New("asset: cache closed")
)

// LoadError reports that the loader collaborator failed to fetch, parse, or instantiate an asset.
// Every caller waiting on the failed load receives the same LoadError.
type LoadError struct {
	// Identifier is the asset that failed to load.
	Identifier string
	// Message is a human-readable description of the failure.
	Message string
	// Cause is the underlying collaborator error.
	Cause error
}

// Error implements the error interface
func (e *LoadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("asset: failed to load %q: %s", e.Identifier, e.Message)
	}
	return fmt.Sprintf("asset: failed to load %q: %s: %v", e.Identifier, e.Message, e.Cause)
}

// Unwrap returns the underlying error
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// newLoadError wraps a collaborator failure. Failures that are already a LoadError keep their
// message but are re-attributed to identifier.
func newLoadError(identifier string, cause error) *LoadError {
	var le *LoadError
	if errors.As(cause, &le) {
		return &LoadError{Identifier: identifier, Message: le.Message, Cause: le.Cause}
	}
	return &LoadError{Identifier: identifier, Message: "load failed", Cause: cause}
}

// LegacyDisposalError reports a failure while disposing a container that was attached to an
// entity outside the cache. It is logged and never propagated to callers.
type LegacyDisposalError struct {
	// Owner describes the entity that held the container.
	Owner string
	// Cause is the underlying disposal failure.
	Cause error
}

// Error implements the error interface
func (e *LegacyDisposalError) Error() string {
	return fmt.Sprintf("asset: legacy disposal of %s failed: %v", e.Owner, e.Cause)
}

// Unwrap returns the underlying error
func (e *LegacyDisposalError) Unwrap() error {
	return e.Cause
}
