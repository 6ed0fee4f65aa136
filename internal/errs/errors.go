// Package errs defines the error taxonomy shared across the analysis
// engine. Callers branch on these with errors.As / errors.Is.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError is client-facing: malformed media, unsupported file
// kinds, unreadable containers. Never retried automatically.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func ValidationWrap(err error, format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...), Err: err}
}

// ErrNotFound marks operations on a record id that does not exist.
var ErrNotFound = errors.New("record not found")

// InferenceError is a recoverable classifier/detector invocation failure.
// The caller substitutes a safe default and continues. Timeout reports
// whether the failure was a deadline, which callers may retry; validation
// failures are never wrapped in InferenceError.
type InferenceError struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s failed: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func Inference(op string, err error) error {
	return &InferenceError{Op: op, Err: err}
}

// IsValidation reports whether err is client-facing.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInference reports whether err came from a model invocation.
func IsInference(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}
