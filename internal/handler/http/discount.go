package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BinhLe15/bookworm-app/internal/service"
	"github.com/BinhLe15/bookworm-app/pkg/httputil"
	"github.com/BinhLe15/bookworm-app/pkg/pagination"
	"github.com/BinhLe15/bookworm-app/pkg/validator"
)

// DiscountHandler handles HTTP requests for discount endpoints.
type DiscountHandler struct {
	service *service.DiscountService
	logger  *slog.Logger
}

// NewDiscountHandler creates a new discount HTTP handler.
func NewDiscountHandler(svc *service.DiscountService, logger *slog.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateDiscountRequest is the JSON request body for creating a discount.
type CreateDiscountRequest struct {
	BookID    string     `json:"book_id" validate:"required,uuid"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	Price     int64      `json:"price" validate:"required,gt=0"`
}

// UpdateDiscountRequest is the JSON request body for updating a discount.
type UpdateDiscountRequest struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Price     *int64     `json:"price" validate:"omitempty,gt=0"`
}

// CreateDiscount handles POST /api/v1/discounts
func (h *DiscountHandler) CreateDiscount(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateDiscountRequest
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

	discount, err := h.service.CreateDiscount(r.Context(), service.CreateDiscountInput{
		BookID:    req.BookID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Price:     req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: discount})
}

// ListActiveDiscounts handles GET /api/v1/discounts
func (h *DiscountHandler) ListActiveDiscounts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	discounts, total, err := h.service.ListActiveDiscounts(r.Context(), params.Skip, params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(discounts, total, params.Skip, params.Limit))
}

// GetDiscount handles GET /api/v1/discounts/{id}
func (h *DiscountHandler) GetDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	discount, err := h.service.GetDiscount(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: discount})
}

// UpdateDiscount handles PUT /api/v1/discounts/{id}
func (h *DiscountHandler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateDiscountRequest
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

	discount, err := h.service.UpdateDiscount(r.Context(), id.String(), service.UpdateDiscountInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Price:     req.Price,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: discount})
}

// DeleteDiscount handles DELETE /api/v1/discounts/{id}
func (h *DiscountHandler) DeleteDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteDiscount(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
