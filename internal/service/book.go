package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/event"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
	"github.com/BinhLe15/bookworm-app/pkg/pagination"
)

// BookService implements the business logic for catalog operations.
type BookService struct {
	repo     repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewBookService creates a new book service.
func NewBookService(repo repository.BookRepository, producer *event.Producer, logger *slog.Logger) *BookService {
	return &BookService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	Title      string  `json:"title" validate:"required,max=255"`
	Summary    string  `json:"summary"`
	Price      int64   `json:"price" validate:"required,gt=0"`
	CategoryID *string `json:"category_id"`
	AuthorID   string  `json:"author_id" validate:"required"`
	CoverPhoto *string `json:"cover_photo"`
}

// UpdateBookInput holds the parameters for updating a book. Nil fields are
// left unchanged.
type UpdateBookInput struct {
	Title      *string `json:"title" validate:"omitempty,max=255"`
	Summary    *string `json:"summary"`
	Price      *int64  `json:"price" validate:"omitempty,gt=0"`
	CategoryID *string `json:"category_id"`
	CoverPhoto *string `json:"cover_photo"`
}

// ListBooksInput holds the catalog listing parameters.
type ListBooksInput struct {
	CategoryID *string
	AuthorID   *string
	MinRating  *float64
	Sort       string
	Skip       int
	Limit      int
}

// CreateBook creates a new book in the catalog.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if input.AuthorID == "" {
		return nil, apperrors.InvalidInput("author_id is required")
	}

	now := s.now()
	book := &domain.Book{
		ID:         uuid.New().String(),
		Title:      input.Title,
		Summary:    input.Summary,
		Price:      input.Price,
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
		CoverPhoto: input.CoverPhoto,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// GetBook retrieves a book by id with its active discount and rating summary.
func (s *BookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	return book, nil
}

// ListBooks returns a filtered, sorted, paginated catalog window with the
// total count of matching books. The default sort surfaces the deepest
// discounts first.
func (s *BookService) ListBooks(ctx context.Context, input ListBooksInput) ([]domain.Book, int, error) {
	if input.Sort == "" {
		input.Sort = domain.SortOnSale
	}
	if !domain.IsValidSortMode(input.Sort) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf(
			"invalid sort %q, must be one of: %s", input.Sort, strings.Join(domain.ValidSortModes(), ", ")))
	}
	if input.MinRating != nil && (*input.MinRating < 0 || *input.MinRating > domain.MaxRating) {
		return nil, 0, apperrors.InvalidInput("min_rating must be between 0 and 5")
	}
	if input.Skip < 0 {
		input.Skip = 0
	}
	if input.Limit <= 0 {
		input.Limit = pagination.DefaultLimit
	}
	if input.Limit > pagination.MaxLimit {
		input.Limit = pagination.MaxLimit
	}

	filter := repository.BookFilter{
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
		MinRating:  input.MinRating,
		Sort:       input.Sort,
		Skip:       input.Skip,
		Limit:      input.Limit,
		Now:        s.now(),
	}

	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}

// UpdateBook applies a partial update to a book.
func (s *BookService) UpdateBook(ctx context.Context, id string, input UpdateBookInput) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("get book for update: %w", err)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.InvalidInput("title cannot be empty")
		}
		book.Title = *input.Title
	}
	if input.Summary != nil {
		book.Summary = *input.Summary
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.InvalidInput("price must be positive")
		}
		book.Price = *input.Price
	}
	if input.CategoryID != nil {
		book.CategoryID = input.CategoryID
	}
	if input.CoverPhoto != nil {
		book.CoverPhoto = input.CoverPhoto
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.producer.PublishBookUpdated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	return book, nil
}

// DeleteBook removes a book from the catalog.
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.producer.PublishBookDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted", slog.String("book_id", id))

	return nil
}
