package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

// Review list sort modes.
const (
	ReviewSortNewest = "newest"
	ReviewSortOldest = "oldest"
)

// ReviewService implements the business logic for book reviews.
type ReviewService struct {
	repo   repository.ReviewRepository
	books  repository.BookRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, books repository.BookRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		books:  books,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateReviewInput holds the parameters for posting a review.
type CreateReviewInput struct {
	Title   string  `json:"title" validate:"required,max=255"`
	Details *string `json:"details"`
	Rating  int     `json:"rating" validate:"required,min=1,max=5"`
}

// ListReviewsInput holds the parameters for listing a book's reviews.
type ListReviewsInput struct {
	Rating *int
	Sort   string
	Skip   int
	Limit  int
}

// CreateReview posts a review for a book. Reviews are anonymous and
// permanent.
func (s *ReviewService) CreateReview(ctx context.Context, bookID string, input CreateReviewInput) (*domain.Review, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	// The book must exist; a review against a deleted book is rejected.
	if _, err := s.books.GetByID(ctx, bookID, s.now()); err != nil {
		return nil, fmt.Errorf("get book for review: %w", err)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		BookID:    bookID,
		Title:     input.Title,
		Details:   input.Details,
		Rating:    input.Rating,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("book_id", bookID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns a book's reviews matching the filter with total count.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string, input ListReviewsInput) ([]domain.Review, int, error) {
	if input.Sort == "" {
		input.Sort = ReviewSortNewest
	}
	if input.Sort != ReviewSortNewest && input.Sort != ReviewSortOldest {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf(
			"invalid sort %q, must be %q or %q", input.Sort, ReviewSortNewest, ReviewSortOldest))
	}
	if input.Rating != nil && !domain.IsValidRating(*input.Rating) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf(
			"rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}
	input.Skip, input.Limit = clampWindow(input.Skip, input.Limit)

	filter := repository.ReviewFilter{
		Rating: input.Rating,
		Sort:   input.Sort,
		Skip:   input.Skip,
		Limit:  input.Limit,
	}

	reviews, total, err := s.repo.ListByBook(ctx, bookID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

// GetRatingSummary returns the aggregate review statistics for a book.
func (s *ReviewService) GetRatingSummary(ctx context.Context, bookID string) (*domain.RatingSummary, error) {
	summary, err := s.repo.RatingSummary(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get rating summary: %w", err)
	}
	return summary, nil
}
