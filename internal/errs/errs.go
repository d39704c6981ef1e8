// Package errs provides the wrapped-error type used throughout the fdt
// module, plus the synchronous diagnostic callback the parser reports
// through alongside (not instead of) normal Go error returns.
package errs

import "fmt"

// FDTError is a contextual error: a short description of what the module
// was doing, wrapping the underlying cause (which may be nil).
type FDTError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *FDTError) Error() string {
	if e.Cause == nil {
		return e.Context
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// Unwrap provides compatibility with errors.Unwrap/errors.Is/errors.As.
func (e *FDTError) Unwrap() error {
	return e.Cause
}

// Wrap creates a contextual error. Returns nil if cause is nil, so callers
// can write `return errs.Wrap("...", err)` without a separate nil check.
func Wrap(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &FDTError{Context: context, Cause: cause}
}

// New creates a contextual error with no underlying cause.
func New(context string) error {
	return &FDTError{Context: context}
}

// Reporter receives synchronous diagnostic strings during parsing and
// mutation. It is the injected `on_error` collaborator from the external
// interface: it may be nil, in which case diagnostics are silently
// dropped. A Reporter must not reenter any fdt API.
type Reporter func(message string)

// Report invokes fn if non-nil. Safe to call with a nil Reporter.
func Report(fn Reporter, message string) {
	if fn != nil {
		fn(message)
	}
}

// Reportf is Report with fmt.Sprintf formatting.
func Reportf(fn Reporter, format string, args ...interface{}) {
	if fn != nil {
		fn(fmt.Sprintf(format, args...))
	}
}
