package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the common failure classes. Services wrap these so
// handlers can map any error chain to an HTTP status.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrUnprocessable  = errors.New("unprocessable entity")
	ErrGone           = errors.New("gone")
)

// AppError carries a machine-readable code and an HTTP status alongside the
// human-readable message.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(code, message string, status int, sentinel error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: sentinel}
}

// NotFound builds a 404 for a missing resource.
func NotFound(resource, id string) *AppError {
	return newAppError("NOT_FOUND",
		fmt.Sprintf("%s with id %s not found", resource, id),
		http.StatusNotFound, ErrNotFound)
}

// AlreadyExists builds a 409 for a uniqueness violation.
func AlreadyExists(resource, field, value string) *AppError {
	return newAppError("ALREADY_EXISTS",
		fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		http.StatusConflict, ErrAlreadyExists)
}

// InvalidInput builds a 400.
func InvalidInput(message string) *AppError {
	return newAppError("INVALID_INPUT", message, http.StatusBadRequest, ErrInvalidInput)
}

// Unauthorized builds a 401.
func Unauthorized(message string) *AppError {
	return newAppError("UNAUTHORIZED", message, http.StatusUnauthorized, ErrUnauthorized)
}

// Forbidden builds a 403.
func Forbidden(message string) *AppError {
	return newAppError("FORBIDDEN", message, http.StatusForbidden, ErrForbidden)
}

// Internal builds a 500 wrapping the underlying cause. The message stays
// generic so internals never leak to clients.
func Internal(err error) *AppError {
	return newAppError("INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError, err)
}

// Conflict builds a 409 for state conflicts that are not uniqueness
// violations, e.g. an order rejected during pricing.
func Conflict(message string) *AppError {
	return newAppError("CONFLICT", message, http.StatusConflict, ErrConflict)
}

// Unprocessable builds a 422 for a well-formed request that cannot be acted
// on, e.g. an expired discount referenced by id.
func Unprocessable(message string) *AppError {
	return newAppError("UNPROCESSABLE_ENTITY", message, http.StatusUnprocessableEntity, ErrUnprocessable)
}

// Gone builds a 410 for resources that existed but were removed.
func Gone(message string) *AppError {
	return newAppError("GONE", message, http.StatusGone, ErrGone)
}

// Wrap adds context while keeping the chain intact for errors.Is/As.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus maps an error chain to a status code, defaulting to 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrGone):
		return http.StatusGone
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
