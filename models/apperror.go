package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every failure a handler can surface is one of these, so the
// HTTP mapping and retry policy stay in one place.
type ErrorKind string

const (
	KindValidation     ErrorKind = "ValidationError"
	KindConflict       ErrorKind = "ConflictError"
	KindAuth           ErrorKind = "AuthError"
	KindNotFound       ErrorKind = "NotFoundError"
	KindTransientStore ErrorKind = "TransientStoreError"
)

// Reason codes, surfaced verbatim to callers.
const (
	ReasonDuplicateUser      = "DuplicateUser"
	ReasonAlreadyResponded   = "AlreadyResponded"
	ReasonInvalidTransition  = "InvalidTransition"
	ReasonInvalidCredentials = "InvalidCredentials"
	ReasonInvalidToken       = "InvalidToken"
	ReasonTokenExpired       = "TokenExpired"
	ReasonForbidden          = "Forbidden"
	ReasonAccountInactive    = "AccountInactive"
)

type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s(%s): %s", e.Kind, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Status maps the error kind to its HTTP equivalent. Forbidden is the one
// auth reason that is a permissions problem rather than an identity problem.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		if e.Reason == ReasonForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NewConflictError(reason, message string) *AppError {
	return &AppError{Kind: KindConflict, Reason: reason, Message: message}
}

func NewAuthError(reason, message string) *AppError {
	return &AppError{Kind: KindAuth, Reason: reason, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewTransientStoreError(message string) *AppError {
	return &AppError{Kind: KindTransientStore, Message: message}
}

// AsAppError unwraps err into an AppError if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
