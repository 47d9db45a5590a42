package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BinhLe15/bookworm-app/internal/service"
	"github.com/BinhLe15/bookworm-app/pkg/httputil"
	"github.com/BinhLe15/bookworm-app/pkg/pagination"
	"github.com/BinhLe15/bookworm-app/pkg/validator"
)

// AuthorHandler handles HTTP requests for author endpoints.
type AuthorHandler struct {
	service *service.AuthorService
	logger  *slog.Logger
}

// NewAuthorHandler creates a new author HTTP handler.
func NewAuthorHandler(svc *service.AuthorService, logger *slog.Logger) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateAuthorRequest is the JSON request body for creating an author.
type CreateAuthorRequest struct {
	Name string  `json:"name" validate:"required,max=255"`
	Bio  *string `json:"bio"`
}

// UpdateAuthorRequest is the JSON request body for updating an author.
type UpdateAuthorRequest struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
	Bio  *string `json:"bio"`
}

// ListAuthors handles GET /api/v1/authors
func (h *AuthorHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	authors, total, err := h.service.ListAuthors(r.Context(), params.Skip, params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(authors, total, params.Skip, params.Limit))
}

// GetAuthor handles GET /api/v1/authors/{id}
func (h *AuthorHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	author, err := h.service.GetAuthor(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: author})
}

// CreateAuthor handles POST /api/v1/authors
func (h *AuthorHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	author, err := h.service.CreateAuthor(r.Context(), service.CreateAuthorInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: author})
}

// UpdateAuthor handles PUT /api/v1/authors/{id}
func (h *AuthorHandler) UpdateAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateAuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	author, err := h.service.UpdateAuthor(r.Context(), id.String(), service.UpdateAuthorInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: author})
}

// DeleteAuthor handles DELETE /api/v1/authors/{id}
func (h *AuthorHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteAuthor(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
