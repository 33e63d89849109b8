package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError independently of the transport.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidState    Kind = "invalid_state"
	KindForbidden       Kind = "forbidden"
	KindUnauthorized    Kind = "unauthorized"
	KindInternal        Kind = "internal"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Taxonomy bucket, rendered as "code" in JSON
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
// The Kind is derived from the status code.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFromStatus(code),
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindFromStatus(code),
		Message: message,
		Err:     err,
	}
}

func InvalidArgument(message string) *AppError { return New(http.StatusBadRequest, message) }
func NotFound(message string) *AppError        { return New(http.StatusNotFound, message) }
func Conflict(message string) *AppError        { return New(http.StatusConflict, message) }
func InvalidState(message string) *AppError    { return New(http.StatusUnprocessableEntity, message) }
func Forbidden(message string) *AppError       { return New(http.StatusForbidden, message) }
func Unauthorized(message string) *AppError    { return New(http.StatusUnauthorized, message) }

// KindOf returns the Kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func kindFromStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindInvalidArgument
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindInvalidState
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnauthorized:
		return KindUnauthorized
	default:
		return KindInternal
	}
}
