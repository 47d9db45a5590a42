package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/service"
	"github.com/BinhLe15/bookworm-app/pkg/httputil"
	"github.com/BinhLe15/bookworm-app/pkg/middleware"
	"github.com/BinhLe15/bookworm-app/pkg/pagination"
	"github.com/BinhLe15/bookworm-app/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// PlaceOrderItemRequest is the JSON request body for an order line item.
type PlaceOrderItemRequest struct {
	BookID   string `json:"book_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required"`
}

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	Items []PlaceOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// --- Handlers ---

// PlaceOrder handles POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PlaceOrderRequest
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

	items := make([]service.PlaceOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.PlaceOrderItemInput{
			BookID:   item.BookID,
			Quantity: item.Quantity,
		}
	}

	order, err := h.service.PlaceOrder(r.Context(), service.PlaceOrderInput{
		UserID: middleware.UserIDFromContext(r.Context()),
		Items:  items,
	})
	if err != nil {
		writeOrderError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	requesterID := middleware.UserIDFromContext(r.Context())
	isAdmin := middleware.RoleFromContext(r.Context()) == domain.RoleAdmin

	order, err := h.service.GetOrder(r.Context(), id.String(), requesterID, isAdmin)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// ListMyOrders handles GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	userID := middleware.UserIDFromContext(r.Context())

	orders, total, err := h.service.ListUserOrders(r.Context(), userID, params.Skip, params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, params.Skip, params.Limit))
}

// ListAllOrders handles GET /api/v1/admin/orders
func (h *OrderHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.service.ListOrders(r.Context(), params.Skip, params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, params.Skip, params.Limit))
}

// writeOrderError renders an order rejection as a 400 listing every invalid
// item; all other errors go through the standard error writer.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var rejection *domain.OrderRejectionError
	if errors.As(err, &rejection) {
		httputil.WriteJSON(w, http.StatusBadRequest, struct {
			Error        *httputil.ErrorResponse  `json:"error"`
			InvalidItems []domain.InvalidOrderItem `json:"invalid_items"`
		}{
			Error: &httputil.ErrorResponse{
				Code:    "ORDER_REJECTED",
				Message: rejection.Error(),
			},
			InvalidItems: rejection.Items,
		})
		return
	}

	httputil.WriteError(w, r, err, logger)
}
