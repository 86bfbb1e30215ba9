package errors

import (
	"errors"
	"fmt"
)

// Error is a structured error carrying a code, message, optional context
// values, and the wrapped cause. It supports errors.Is/errors.As through
// Unwrap.
type Error struct {
	// Code classifies the error condition.
	Code ErrorCode `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Context holds structured key/value details about the failure.
	Context map[string]interface{} `json:"context,omitempty"`

	// cause is the wrapped underlying error, if any.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, enabling errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and message. Returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// WrapWithContext wraps an error with a code, message, and structured context.
// Returns nil if err is nil.
func WrapWithContext(err error, code ErrorCode, message string, context map[string]interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Context: context, cause: err}
}

// GetCode extracts the ErrorCode from an error chain. Returns CodeUnknown if
// no *Error is found in the chain.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
