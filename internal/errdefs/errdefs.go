// Package errdefs defines the error taxonomy shared by the report loader,
// index builders and resolver. Callers classify failures with errors.Is
// against the sentinel kinds below.
package errdefs

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrTransport marks a failed or timed-out fetch. Fatal for the report it belongs to.
	ErrTransport = errors.Base("transport failure")
	// ErrStructural marks a report that is not valid JSON or lacks a required field.
	ErrStructural = errors.Base("malformed report")
	// ErrNotFound marks a function name absent from the function index.
	ErrNotFound = errors.Base("not found")
	// ErrTypeUnresolved marks a referenced type that could not be resolved to source.
	ErrTypeUnresolved = errors.Base("type unresolved")
)

// Error pairs a sentinel kind with a message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind, cause error, format string, args ...any) error {
	return errors.WithStack(&Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	})
}

func Transport(cause error, format string, args ...any) error {
	return newError(ErrTransport, cause, format, args...)
}

func Structural(cause error, format string, args ...any) error {
	return newError(ErrStructural, cause, format, args...)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, nil, format, args...)
}

func Unresolved(cause error, format string, args ...any) error {
	return newError(ErrTypeUnresolved, cause, format, args...)
}

// IsFatal reports whether err aborts the whole invocation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStructural)
}
