// Package exception provides the error type used by gridwatch batch and warehouse code.
// A BatchError records which module failed and wraps the underlying cause so that
// sentinel errors remain reachable through errors.Is.
package exception

import (
	"errors"
	"fmt"
	"runtime"
)

// BatchError is an error raised while building or loading the warehouse.
type BatchError struct {
	// Module names the component that failed (e.g., "normalizer", "loader", "config").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped cause. It may be nil.
	OriginalErr error
	// StackTrace is captured at construction for DEBUG logging.
	StackTrace string
}

// NewBatchError creates a new BatchError instance.
func NewBatchError(module, message string, originalErr error) *BatchError {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)

	return &BatchError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  string(buf[:n]),
	}
}

// NewBatchErrorf creates a BatchError from a format string.
// If the last argument is an error it becomes OriginalErr and is not used for formatting.
//
//	NewBatchErrorf("normalizer", "row %d: bad timestamp %q", 12, raw, ErrInvalidTimestamp)
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return NewBatchError(module, fmt.Sprintf(format, args...), originalErr)
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Is and errors.As.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// IsBatchError reports whether err, or anything it wraps, is a *BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// ModuleOf returns the Module of the outermost BatchError in err's chain, or "" if there is none.
func ModuleOf(err error) string {
	var be *BatchError
	if errors.As(err, &be) {
		return be.Module
	}
	return ""
}

// ExtractErrorMessage returns the Message of a BatchError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}
