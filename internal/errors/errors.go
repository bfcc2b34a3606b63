package errors

import (
	"errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound          ErrCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrCode = "UNAUTHORIZED"
	ErrCodeRateLimited       ErrCode = "RATE_LIMITED"
	ErrCodeInternal          ErrCode = "INTERNAL_ERROR"
	ErrCodeBadRequest        ErrCode = "BAD_REQUEST"
	ErrCodeForbidden         ErrCode = "FORBIDDEN"
	ErrCodeValidation        ErrCode = "VALIDATION_FAILED"
	ErrCodeRemoteRejected    ErrCode = "REMOTE_REJECTED"
	ErrCodeInsufficientFunds ErrCode = "INSUFFICIENT_FUNDS"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// RemoteError is a failure reported by the backend through the response envelope.
// RemoteCode is the backend's own code and may be empty.
type RemoteError struct {
	Endpoint   string
	Message    string
	RemoteCode string
}

func (e *RemoteError) Error() string {
	if e.RemoteCode != "" {
		return fmt.Sprintf("%s: %s [%s]", e.Endpoint, e.Message, e.RemoteCode)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: message,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Err:     err,
	}
}

// NewRemoteRejectedError wraps a backend rejection
func NewRemoteRejectedError(remote *RemoteError) *AppError {
	return &AppError{
		Code:    ErrCodeRemoteRejected,
		Message: remote.Message,
		Err:     remote,
	}
}

// NewInsufficientFundsError creates a new insufficient funds error
func NewInsufficientFundsError(required, balance float64) *AppError {
	return &AppError{
		Code:    ErrCodeInsufficientFunds,
		Message: fmt.Sprintf("total fee %.2f exceeds wallet balance %.2f", required, balance),
	}
}

// CodeOf returns the code of the first AppError in the chain, or "" when there is none
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

// IsInsufficientFunds checks if the error is an insufficient funds error
func IsInsufficientFunds(err error) bool {
	return CodeOf(err) == ErrCodeInsufficientFunds
}

// IsRemote checks if the error carries a backend rejection
func IsRemote(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote)
}
