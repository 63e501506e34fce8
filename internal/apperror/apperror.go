// Package apperror defines the typed failures returned by the services and how
// the HTTP layer turns them into responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is an unexpected failure (store outage, hashing or signing failure).
	Internal Kind = iota
	// InvalidInput is a request defect the caller can fix.
	InvalidInput
	// NotFound means the referenced entity is absent or outside the caller's scope.
	NotFound
	// Conflict is a uniqueness violation.
	Conflict
	// Unauthorized means a missing, invalid or expired credential or token.
	Unauthorized
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	default:
		return "internal_error"
	}
}

// AppError is the error type every service returns to the boundary layer.
// Err keeps the underlying cause for logging; it is never serialized.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for the error kind.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body written for a failed request.
type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ToResponse builds the client-facing payload. Only Message and Fields are exposed.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Kind:    e.Kind.String(),
		Message: e.Message,
		Errors:  e.Fields,
	}
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewInvalidInput(message string, fields map[string]string) *AppError {
	return &AppError{Kind: InvalidInput, Message: message, Fields: fields}
}

func NewNotFound(message string) *AppError {
	return New(NotFound, message, nil)
}

func NewConflict(message string, err error) *AppError {
	return New(Conflict, message, err)
}

func NewUnauthorized(message string, err error) *AppError {
	return New(Unauthorized, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(Internal, message, err)
}

// FromError unwraps err to an *AppError when one is present in the chain.
func FromError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err. Errors that are not AppErrors are Internal.
func KindOf(err error) Kind {
	if appErr, ok := FromError(err); ok {
		return appErr.Kind
	}
	return Internal
}

// Wrap passes business-rule errors through unchanged and turns anything else
// into an Internal error carrying the generic message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := FromError(err); ok && appErr.Kind != Internal {
		return appErr
	}
	return NewInternal(message, err)
}

func IsNotFound(err error) bool     { return isKind(err, NotFound) }
func IsConflict(err error) bool     { return isKind(err, Conflict) }
func IsInvalidInput(err error) bool { return isKind(err, InvalidInput) }
func IsUnauthorized(err error) bool { return isKind(err, Unauthorized) }
func IsInternal(err error) bool     { return err != nil && KindOf(err) == Internal }

func isKind(err error, kind Kind) bool {
	appErr, ok := FromError(err)
	return ok && appErr.Kind == kind
}
