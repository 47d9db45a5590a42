package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

// CartService implements shopping cart operations backed by Redis.
type CartService struct {
	repo   repository.CartRepository
	books  repository.BookRepository
	orders *OrderService
	logger *slog.Logger
	now    func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, books repository.BookRepository, orders *OrderService, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		books:  books,
		orders: orders,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetCart retrieves the user's cart. An absent cart is returned as an empty
// one rather than an error.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			now := s.now()
			return &domain.Cart{UserID: userID, Items: []domain.CartItem{}, CreatedAt: now, UpdatedAt: now}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a book to the cart, merging quantities when the book is
// already present. The stored price is refreshed from the catalog's current
// effective price.
func (s *CartService) AddItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	if !domain.IsValidQuantity(quantity) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"quantity must be between %d and %d", domain.MinQuantity, domain.MaxQuantity))
	}

	book, err := s.books.GetByID(ctx, bookID, s.now())
	if err != nil {
		return nil, fmt.Errorf("get book for cart: %w", err)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.AddItem(domain.CartItem{
		BookID:   book.ID,
		Title:    book.Title,
		Price:    book.EffectivePrice(),
		Quantity: quantity,
	})
	cart.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// UpdateItem sets the quantity of an existing cart line.
func (s *CartService) UpdateItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	if !domain.IsValidQuantity(quantity) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"quantity must be between %d and %d", domain.MinQuantity, domain.MaxQuantity))
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	idx := cart.FindItemIndex(bookID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", bookID)
	}
	cart.Items[idx].Quantity = quantity
	cart.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// RemoveItem removes a book from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, bookID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	if !cart.RemoveItem(bookID) {
		return nil, apperrors.NotFound("cart item", bookID)
	}
	cart.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	return cart, nil
}

// ClearCart deletes the user's cart.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Checkout places an order from the cart's contents and clears the cart on
// success. Prices are re-resolved by the order workflow at placement time, so
// a discount that expired while the item sat in the cart is not honored.
func (s *CartService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	items := make([]PlaceOrderItemInput, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = PlaceOrderItemInput{BookID: item.BookID, Quantity: item.Quantity}
	}

	order, err := s.orders.PlaceOrder(ctx, PlaceOrderInput{UserID: userID, Items: items})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		// The order is committed; a stale cart is an inconvenience, not a failure.
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}
