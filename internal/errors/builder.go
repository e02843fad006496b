package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError carries a message, a user-facing hint and structured details
// alongside the wrapped cause. It is the concrete error type produced by the
// builders below.
type InternalError struct {
	cause   error
	hint    string
	details map[string]any
}

func (e *InternalError) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.hint
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-facing hint, falling back to the cause message.
func (e *InternalError) Hint() string {
	if e.hint != "" {
		return e.hint
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return ""
}

// Details returns the reportable details attached to the error, if any.
func (e *InternalError) Details() map[string]any {
	return e.details
}

// ErrorBuilder accumulates context before the error is finalized with Mark.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder from a plain message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.New(message)}}
}

// NewErrorf starts a builder from a formatted message.
func NewErrorf(format string, args ...any) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: errors.Newf(format, args...)}}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: &InternalError{cause: err}}
}

// WithHint attaches a safe, user-facing hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user-facing hint.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details that are safe to return
// to API callers.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	b.err.details = details
	return b
}

// Mark finalizes the builder, marking the error with the given class marker
// so that errors.Is matches it.
func (b *ErrorBuilder) Mark(marker error) error {
	return errors.Mark(b.err, marker)
}

// Hint extracts the user-facing hint from any error in the chain.
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint()
	}
	return err.Error()
}

// Details extracts the reportable details from any error in the chain.
func Details(err error) map[string]any {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Details()
	}
	return nil
}
