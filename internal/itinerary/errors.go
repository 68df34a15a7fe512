package itinerary

import "errors"

// Common errors returned by store operations. Callers should use errors.Is
// to test for them since they are usually wrapped with context.
var (
	// ErrValidation indicates input that fails a stop's structural rules.
	ErrValidation = errors.New("invalid stop")

	// ErrStopNotFound indicates no stop matches the given id or prefix.
	ErrStopNotFound = errors.New("stop not found")

	// ErrAmbiguousID indicates an id prefix matches more than one stop.
	ErrAmbiguousID = errors.New("ambiguous stop id")

	// ErrNoRemote indicates a remote-only operation was requested on a
	// store configured without a remote.
	ErrNoRemote = errors.New("no remote store configured")
)

// IsNotFound reports whether err indicates a missing stop.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStopNotFound)
}
