package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BinhLe15/bookworm-app/internal/service"
	"github.com/BinhLe15/bookworm-app/pkg/httputil"
	"github.com/BinhLe15/bookworm-app/pkg/pagination"
	"github.com/BinhLe15/bookworm-app/pkg/validator"
)

// BookHandler handles HTTP requests for catalog endpoints.
type BookHandler struct {
	service *service.BookService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(svc *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateBookRequest is the JSON request body for creating a book.
type CreateBookRequest struct {
	Title      string  `json:"title" validate:"required,max=255"`
	Summary    string  `json:"summary"`
	Price      int64   `json:"price" validate:"required,gt=0"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	AuthorID   string  `json:"author_id" validate:"required,uuid"`
	CoverPhoto *string `json:"cover_photo"`
}

// UpdateBookRequest is the JSON request body for updating a book.
type UpdateBookRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=255"`
	Summary    *string `json:"summary"`
	Price      *int64  `json:"price" validate:"omitempty,gt=0"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	CoverPhoto *string `json:"cover_photo"`
}

// --- Handlers ---

// ListBooks handles GET /api/v1/books
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	input := service.ListBooksInput{
		Sort:  r.URL.Query().Get("sort"),
		Skip:  params.Skip,
		Limit: params.Limit,
	}

	if v := r.URL.Query().Get("category_id"); v != "" {
		input.CategoryID = &v
	}
	if v := r.URL.Query().Get("author_id"); v != "" {
		input.AuthorID = &v
	}
	if v := r.URL.Query().Get("min_rating"); v != "" {
		minRating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "min_rating must be a number"},
			})
			return
		}
		input.MinRating = &minRating
	}

	books, total, err := h.service.ListBooks(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(books, total, input.Skip, input.Limit))
}

// GetBook handles GET /api/v1/books/{id}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	book, err := h.service.GetBook(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// CreateBook handles POST /api/v1/books
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookRequest
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

	book, err := h.service.CreateBook(r.Context(), service.CreateBookInput{
		Title:      req.Title,
		Summary:    req.Summary,
		Price:      req.Price,
		CategoryID: req.CategoryID,
		AuthorID:   req.AuthorID,
		CoverPhoto: req.CoverPhoto,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// UpdateBook handles PUT /api/v1/books/{id}
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateBookRequest
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

	book, err := h.service.UpdateBook(r.Context(), id.String(), service.UpdateBookInput{
		Title:      req.Title,
		Summary:    req.Summary,
		Price:      req.Price,
		CategoryID: req.CategoryID,
		CoverPhoto: req.CoverPhoto,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// DeleteBook handles DELETE /api/v1/books/{id}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
