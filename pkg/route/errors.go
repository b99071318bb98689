package route

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrNotFound is returned when no route exists for a key or no route matches a request.
	ErrNotFound = errors.New("route not found")

	// ErrValidation is returned when a route is rejected before any mutation.
	ErrValidation = errors.New("invalid route")

	// ErrConflict is returned when an expected version does not match the stored version.
	ErrConflict = errors.New("route version conflict")

	// ErrRouteLimit is returned when creating a route would exceed the configured maximum.
	ErrRouteLimit = errors.New("route limit reached")
)

// ValidationError describes why a route was rejected.
type ValidationError struct {
	Field  string
	Value  any
	Reason string

	cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match both ErrValidation and the specific cause.
func (e *ValidationError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrValidation, e.cause}
	}
	return []error{ErrValidation}
}

// ConflictError reports an optimistic concurrency failure.
type ConflictError struct {
	Method      string
	PathPattern string
	Expected    int64
	Actual      int64 // 0 when the route does not exist
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("route %s %s was modified concurrently: expected version %d, current version %d",
		e.Method, e.PathPattern, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func notFound(method, pathPattern string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, method, pathPattern)
}
