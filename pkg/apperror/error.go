// Package apperror carries the error taxonomy shared by the service and the
// HTTP layer. Each kind maps to one status code and a stable message.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation         Kind = "ValidationFailed"
	KindEmailAlreadyExists Kind = "EmailAlreadyExists"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindUnauthorized       Kind = "Unauthorized"
	KindNotFound           Kind = "NotFound"
	KindInternal           Kind = "Internal"
)

const (
	MsgEmailAlreadyExists = "User already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgNoToken            = "No token provided"
	MsgInvalidToken       = "Invalid token"
	MsgUserNotFound       = "User not found"
	MsgInternal           = "Server error"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(message string, details any) *AppError {
	e := New(KindValidation, http.StatusBadRequest, message, nil)
	e.Details = details
	return e
}

func EmailAlreadyExists() *AppError {
	return New(KindEmailAlreadyExists, http.StatusBadRequest, MsgEmailAlreadyExists, nil)
}

func InvalidCredentials() *AppError {
	return New(KindInvalidCredentials, http.StatusBadRequest, MsgInvalidCredentials, nil)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

// Internal wraps an unexpected failure; the cause is kept for logs only.
func Internal(err error) *AppError {
	return New(KindInternal, http.StatusInternalServerError, MsgInternal, err)
}

// From returns err as an AppError, treating anything unknown as Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
