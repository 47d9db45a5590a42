package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/event"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
	"github.com/BinhLe15/bookworm-app/pkg/pagination"
)

// OrderService implements the order placement workflow.
type OrderService struct {
	repo     repository.OrderRepository
	books    repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, books repository.BookRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		books:    books,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrderItemInput holds one requested line item.
type PlaceOrderItemInput struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=8"`
}

// PlaceOrderInput holds the parameters for placing an order.
type PlaceOrderInput struct {
	UserID string
	Items  []PlaceOrderItemInput
}

// PlaceOrder validates and prices every requested item, then persists the
// order and its items in a single transaction. Validation inspects all items
// before deciding: if any item is invalid the whole order is rejected with a
// domain.OrderRejectionError listing every offending item, and nothing is
// written. Unit prices are frozen at the effective price (active discount or
// list price) observed at placement time.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	now := s.now()
	orderID := uuid.New().String()

	var (
		invalid []domain.InvalidOrderItem
		items   []domain.OrderItem
	)

	for _, itemInput := range input.Items {
		if !domain.IsValidQuantity(itemInput.Quantity) {
			invalid = append(invalid, domain.InvalidOrderItem{
				BookID: itemInput.BookID,
				Reason: fmt.Sprintf("quantity must be between %d and %d", domain.MinQuantity, domain.MaxQuantity),
			})
			continue
		}

		book, err := s.books.GetByID(ctx, itemInput.BookID, now)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				invalid = append(invalid, domain.InvalidOrderItem{
					BookID: itemInput.BookID,
					Reason: "book not found",
				})
				continue
			}
			return nil, fmt.Errorf("price order item: %w", err)
		}

		items = append(items, domain.OrderItem{
			ID:       uuid.New().String(),
			OrderID:  orderID,
			BookID:   book.ID,
			Quantity: itemInput.Quantity,
			Price:    book.EffectivePrice(),
		})
	}

	if len(invalid) > 0 {
		s.logger.InfoContext(ctx, "order rejected",
			slog.String("user_id", input.UserID),
			slog.Int("invalid_items", len(invalid)),
		)
		return nil, &domain.OrderRejectionError{Items: invalid}
	}

	order := &domain.Order{
		ID:          orderID,
		UserID:      input.UserID,
		OrderDate:   now,
		Items:       items,
		TotalAmount: domain.CalculateTotal(items),
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves an order by id. Non-admin requesters may only read
// their own orders.
func (s *OrderService) GetOrder(ctx context.Context, id, requesterID string, isAdmin bool) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if !isAdmin && order.UserID != requesterID {
		return nil, apperrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListUserOrders returns the requesting user's orders, newest first.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, skip, limit int) ([]domain.Order, int, error) {
	skip, limit = clampWindow(skip, limit)

	orders, total, err := s.repo.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list user orders: %w", err)
	}

	return orders, total, nil
}

// ListOrders returns all orders, newest first. Admin only.
func (s *OrderService) ListOrders(ctx context.Context, skip, limit int) ([]domain.Order, int, error) {
	skip, limit = clampWindow(skip, limit)

	orders, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// clampWindow normalizes pagination parameters to their allowed ranges.
func clampWindow(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	return skip, limit
}
