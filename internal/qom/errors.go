package qom

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes operand errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates an operand was built with a missing
	// or empty argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeUnknownSelector indicates an operand references a selector
	// that the row does not bind.
	ErrCodeUnknownSelector ErrorCode = "UNKNOWN_SELECTOR"

	// ErrCodeUnsupportedOperand indicates an operand kind the evaluator
	// does not handle.
	ErrCodeUnsupportedOperand ErrorCode = "UNSUPPORTED_OPERAND"
)

// Error is returned for construction and binding problems detected by this
// package. Repository failures are never converted into an Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operand kind or operation that failed.
	Op string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalidArgument(op, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidArgument returns true if err is an invalid argument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeInvalidArgument
	}
	return false
}

// IsUnknownSelector returns true if err reports an unbound selector.
func IsUnknownSelector(err error) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeUnknownSelector
	}
	return false
}
