package response

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNetwork      = "NETWORK_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// AppError is the error type surfaced to callers of the controller and the view API
type AppError struct {
	Code    string
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError creates a validation error; no state is changed when one is returned
func NewValidationError(message, details string) *AppError {
	return NewAppError(ErrCodeValidation, message, details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message, details string) *AppError {
	return NewAppError(ErrCodeNotFound, message, details)
}

// NewNetworkError wraps a failed API call
func NewNetworkError(message string, err error) *AppError {
	appErr := NewAppError(ErrCodeNetwork, message, "")
	if err != nil {
		appErr.Details = err.Error()
		appErr.Err = err
	}
	return appErr
}

// NewInvalidStateError reports an operation that the current modal state does not allow
func NewInvalidStateError(message string) *AppError {
	return NewAppError(ErrCodeInvalidState, message, "")
}

// NewInvalidInputError reports a payload that is not the expected shape
func NewInvalidInputError(message, details string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message, details)
}

// CodeOf returns the AppError code in the chain, or ErrCodeInternal
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the user-facing message for err
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsNetwork reports whether err came from the remote API. Not found is a network variant.
func IsNetwork(err error) bool {
	switch CodeOf(err) {
	case ErrCodeNetwork, ErrCodeNotFound, ErrCodeUnauthorized:
		return true
	}
	return false
}
