package lifecycle

import (
	"errors"
	"fmt"
)

// ErrNoRegistry is returned by NewProcessor when no registry is supplied.
// A Processor without a registry cannot run any lifecycle pass.
var ErrNoRegistry = errors.New("lifecycle: no registry configured")

// StartError wraps a component start failure with the component's name.
// It aborts the start call chain it occurred in; components started earlier
// in independent chains stay started.
type StartError struct {
	// Component is the name of the component whose Start failed.
	Component string

	// Err is the error returned by the component.
	Err error
}

// Error implements the error interface.
func (e *StartError) Error() string {
	return fmt.Sprintf("lifecycle: failed to start component %q: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *StartError) Unwrap() error {
	return e.Err
}
