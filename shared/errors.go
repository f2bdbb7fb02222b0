package shared

import (
	"errors"
	"net/http"
)

// AppError is the error shape the HTTP layer knows how to render. Services
// return one whenever the failure should map to a specific client response;
// anything else surfaces as a generic internal error.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewValidationError(message string, data interface{}) *AppError {
	if message == "" {
		message = "Validation failed"
	}
	return &AppError{StatusCode: http.StatusBadRequest, Message: message, Data: data}
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return &AppError{StatusCode: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	return &AppError{StatusCode: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = "Not Found"
	}
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

func NewTooManyRequestsError(message string, data interface{}) *AppError {
	if message == "" {
		message = "Too many requests. Please try again later."
	}
	return &AppError{StatusCode: http.StatusTooManyRequests, Message: message, Data: data}
}

func NewConflictError(message string) *AppError {
	if message == "" {
		message = "Conflict"
	}
	return &AppError{StatusCode: http.StatusConflict, Message: message}
}
