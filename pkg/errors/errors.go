package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	// ErrorTypeCorruption marks a locally cached value that failed to parse.
	ErrorTypeCorruption ErrorType = "CORRUPTION"
	// ErrorTypeQuotaExceeded marks a local write refused for lack of space.
	ErrorTypeQuotaExceeded ErrorType = "QUOTA_EXCEEDED"
	// ErrorTypeRemoteUnavailable marks a remote store call that failed or
	// was short-circuited by an open circuit breaker.
	ErrorTypeRemoteUnavailable ErrorType = "REMOTE_UNAVAILABLE"
	// ErrorTypeRejected marks a save refused by the destructive-overwrite
	// guard. Rejections are terminal and deliberately quiet.
	ErrorTypeRejected ErrorType = "REJECTED_DESTRUCTIVE"
	// ErrorTypeIdentifierInvalid marks an identifier that is neither a
	// durable id nor a recognized ephemeral one.
	ErrorTypeIdentifierInvalid ErrorType = "IDENTIFIER_INVALID"
	// ErrorTypeExhausted marks a save that failed every retry attempt.
	ErrorTypeExhausted ErrorType = "EXHAUSTED"

	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewCorruption creates a corruption error for an unreadable cached value
func NewCorruption(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeCorruption,
		Message: message,
		Err:     err,
	}
}

// NewQuotaExceeded creates a storage quota error
func NewQuotaExceeded(message string) error {
	return &AppError{
		Type:    ErrorTypeQuotaExceeded,
		Message: message,
	}
}

// NewRemoteUnavailable creates an error for a failed remote store call
func NewRemoteUnavailable(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeRemoteUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewRejected creates a destructive-overwrite rejection
func NewRejected(message string) error {
	return &AppError{
		Type:    ErrorTypeRejected,
		Message: message,
	}
}

// NewIdentifierInvalid creates an error for an unusable identifier
func NewIdentifierInvalid(id string) error {
	return &AppError{
		Type:    ErrorTypeIdentifierInvalid,
		Message: fmt.Sprintf("identifier %q is not durable", id),
	}
}

// NewExhausted creates an error for a save that used up every attempt
func NewExhausted(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeExhausted,
		Message: message,
		Err:     err,
	}
}

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	// Otherwise, create an internal error
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

func typeOf(err error) (ErrorType, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type, true
	}
	return "", false
}

// IsCorruption checks if an error is a corruption error
func IsCorruption(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeCorruption
}

// IsQuotaExceeded checks if an error is a storage quota error
func IsQuotaExceeded(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeQuotaExceeded
}

// IsRemoteUnavailable checks if an error is a remote availability error
func IsRemoteUnavailable(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeRemoteUnavailable
}

// IsRejected checks if an error is a destructive-overwrite rejection
func IsRejected(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeRejected
}

// IsIdentifierInvalid checks if an error is an invalid identifier error
func IsIdentifierInvalid(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeIdentifierInvalid
}

// IsExhausted checks if an error is a retries-exhausted error
func IsExhausted(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeExhausted
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeValidation
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeNotFound
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrorTypeInternal
}

// Retryable reports whether another attempt at the failed operation could
// plausibly succeed. Guard rejections, validation failures and identifier
// problems are terminal no matter how many attempts remain.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if t, ok := typeOf(err); ok {
		switch t {
		case ErrorTypeValidation, ErrorTypeRejected, ErrorTypeIdentifierInvalid,
			ErrorTypeNotFound, ErrorTypeQuotaExceeded, ErrorTypeExhausted:
			return false
		}
	}
	return true
}
