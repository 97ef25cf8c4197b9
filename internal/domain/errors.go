package domain

import (
	"errors"
	"fmt"

	m "testscope.dev/pkg/testscope/internal/model"
)

// Sentinel errors for the failure classes of a deployment build.
var (
	// ErrResolution is returned when a late-bound class name cannot be found.
	ErrResolution = errors.New("class resolution failed")
	// ErrExtensionInstantiation is returned when a concrete extension type
	// cannot be instantiated.
	ErrExtensionInstantiation = errors.New("extension instantiation failed")
	// ErrCompatibilityExhausted is returned when no known runtime shape
	// matches the running container version.
	ErrCompatibilityExhausted = errors.New("no compatible runtime shape")
	// ErrProbeFailure marks a failed optional probe. It never escapes the
	// classifier.
	ErrProbeFailure = errors.New("probe failed")
)

// ResolutionError reports a late-bound class name that is not in the index.
type ResolutionError struct {
	Name      string
	Requester m.TypeName
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve class %q requested by %s", e.Name, e.Requester)
}

func (e *ResolutionError) Unwrap() error { return ErrResolution }

// ExtensionInstantiationError reports an extension type that could not be
// built.
type ExtensionInstantiationError struct {
	Type  m.TypeName
	Cause error
}

func (e *ExtensionInstantiationError) Error() string {
	return fmt.Sprintf("cannot instantiate extension %s: %v", e.Type, e.Cause)
}

func (e *ExtensionInstantiationError) Unwrap() []error { return []error{ErrExtensionInstantiation, e.Cause} }

// CompatibilityError reports an unsupported runtime version.
type CompatibilityError struct {
	Version string
	Arity   int
	Cause   error
}

func (e *CompatibilityError) Error() string {
	msg := fmt.Sprintf("unsupported runtime version %q", e.Version)
	if e.Arity > 0 {
		msg += fmt.Sprintf(" (descriptor arity %d)", e.Arity)
	}

	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	return msg
}

func (e *CompatibilityError) Unwrap() error { return ErrCompatibilityExhausted }
