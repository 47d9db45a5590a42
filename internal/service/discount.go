package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

// DiscountService implements the business logic for discount management.
type DiscountService struct {
	repo   repository.DiscountRepository
	books  repository.BookRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewDiscountService creates a new discount service.
func NewDiscountService(repo repository.DiscountRepository, books repository.BookRepository, logger *slog.Logger) *DiscountService {
	return &DiscountService{
		repo:   repo,
		books:  books,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateDiscountInput holds the parameters for creating a discount.
type CreateDiscountInput struct {
	BookID    string     `json:"book_id" validate:"required"`
	StartDate time.Time  `json:"start_date" validate:"required"`
	EndDate   *time.Time `json:"end_date"`
	Price     int64      `json:"price" validate:"required,gt=0"`
}

// UpdateDiscountInput holds the parameters for updating a discount.
type UpdateDiscountInput struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Price     *int64     `json:"price" validate:"omitempty,gt=0"`
}

// CreateDiscount creates a discount for a book. The discounted price must
// undercut the book's list price, and an open-ended window is allowed.
func (s *DiscountService) CreateDiscount(ctx context.Context, input CreateDiscountInput) (*domain.Discount, error) {
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, apperrors.InvalidInput("end_date must not precede start_date")
	}

	book, err := s.books.GetByID(ctx, input.BookID, s.now())
	if err != nil {
		return nil, fmt.Errorf("get book for discount: %w", err)
	}
	if input.Price >= book.Price {
		return nil, apperrors.InvalidInput("discount price must be lower than the book price")
	}

	now := s.now()
	discount := &domain.Discount{
		ID:        uuid.New().String(),
		BookID:    input.BookID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Price:     input.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, discount); err != nil {
		return nil, fmt.Errorf("create discount: %w", err)
	}

	s.logger.InfoContext(ctx, "discount created",
		slog.String("discount_id", discount.ID),
		slog.String("book_id", discount.BookID),
		slog.Int64("price", discount.Price),
	)

	return discount, nil
}

// GetDiscount retrieves a discount by id.
func (s *DiscountService) GetDiscount(ctx context.Context, id string) (*domain.Discount, error) {
	discount, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get discount by id: %w", err)
	}
	return discount, nil
}

// ListActiveDiscounts returns discounts whose window contains the current
// instant.
func (s *DiscountService) ListActiveDiscounts(ctx context.Context, skip, limit int) ([]domain.Discount, int, error) {
	skip, limit = clampWindow(skip, limit)

	discounts, total, err := s.repo.ListActive(ctx, s.now(), skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list active discounts: %w", err)
	}

	return discounts, total, nil
}

// UpdateDiscount applies a partial update to a discount.
func (s *DiscountService) UpdateDiscount(ctx context.Context, id string, input UpdateDiscountInput) (*domain.Discount, error) {
	discount, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get discount for update: %w", err)
	}

	if input.StartDate != nil {
		discount.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		discount.EndDate = input.EndDate
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.InvalidInput("price must be positive")
		}
		discount.Price = *input.Price
	}
	if discount.EndDate != nil && discount.EndDate.Before(discount.StartDate) {
		return nil, apperrors.InvalidInput("end_date must not precede start_date")
	}

	if err := s.repo.Update(ctx, discount); err != nil {
		return nil, fmt.Errorf("update discount: %w", err)
	}

	return discount, nil
}

// DeleteDiscount removes a discount. Already-placed orders keep the prices
// they were committed with.
func (s *DiscountService) DeleteDiscount(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}

	s.logger.InfoContext(ctx, "discount deleted", slog.String("discount_id", id))

	return nil
}
