package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
	"github.com/BinhLe15/bookworm-app/pkg/logger"
	"github.com/BinhLe15/bookworm-app/pkg/validator"
)

// Response is the JSON envelope every endpoint returns: either data or error,
// never both.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out, so an encode failure cannot be reported.
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Response{
		Error: &ErrorResponse{Code: code, Message: message, RequestID: requestID},
	})
}

// WriteError maps err to the standard error envelope. AppError values keep
// their own code and status; sentinel errors get generic messages; anything
// unrecognized becomes a logged 500. The request-scoped logger is preferred
// over fallback when the RequestLogger middleware is mounted.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message, requestID)
		return
	}

	status := apperrors.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message, status = "NOT_FOUND", "resource not found", http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists):
		code, message, status = "ALREADY_EXISTS", "resource already exists", http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidInput):
		code, message, status = "INVALID_INPUT", err.Error(), http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeErrorResponse(w, status, code, message, requestID)
}

// PaginatedResponse is the envelope for skip/limit list endpoints.
type PaginatedResponse[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Skip       int  `json:"skip"`
	Limit      int  `json:"limit"`
	HasNext    bool `json:"has_next"`
}

// NewPaginatedResponse wraps one page of results. A nil slice becomes an
// empty JSON array rather than null.
func NewPaginatedResponse[T any](data []T, totalCount, skip, limit int) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data:       data,
		TotalCount: totalCount,
		Skip:       skip,
		Limit:      limit,
		HasNext:    skip+len(data) < totalCount,
	}
}

// WriteValidationError returns a 400 with per-field messages when err is a
// validator.ValidationError, or a plain INVALID_INPUT otherwise.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Error: &ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  valErr.Fields(),
			},
		})
		return
	}

	writeErrorResponse(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), "")
}

// ParseUUID parses a path parameter, writing a 400 and returning false when
// it is not a UUID so handlers can bail out with a one-liner.
func ParseUUID(w http.ResponseWriter, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(param)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid UUID: "+param, "")
		return uuid.Nil, false
	}
	return id, true
}
