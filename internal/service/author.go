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

// AuthorService implements the business logic for author management.
type AuthorService struct {
	repo   repository.AuthorRepository
	logger *slog.Logger
}

// NewAuthorService creates a new author service.
func NewAuthorService(repo repository.AuthorRepository, logger *slog.Logger) *AuthorService {
	return &AuthorService{repo: repo, logger: logger}
}

// CreateAuthorInput holds the parameters for creating an author.
type CreateAuthorInput struct {
	Name string  `json:"name" validate:"required,max=255"`
	Bio  *string `json:"bio"`
}

// UpdateAuthorInput holds the parameters for updating an author.
type UpdateAuthorInput struct {
	Name *string `json:"name" validate:"omitempty,max=255"`
	Bio  *string `json:"bio"`
}

// CreateAuthor creates a new author.
func (s *AuthorService) CreateAuthor(ctx context.Context, input CreateAuthorInput) (*domain.Author, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	now := time.Now().UTC()
	author := &domain.Author{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Bio:       input.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, author); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}

	s.logger.InfoContext(ctx, "author created",
		slog.String("author_id", author.ID),
		slog.String("name", author.Name),
	)

	return author, nil
}

// GetAuthor retrieves an author by id.
func (s *AuthorService) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author by id: %w", err)
	}
	return author, nil
}

// ListAuthors returns authors ordered by name with total count.
func (s *AuthorService) ListAuthors(ctx context.Context, skip, limit int) ([]domain.Author, int, error) {
	skip, limit = clampWindow(skip, limit)

	authors, total, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}

	return authors, total, nil
}

// UpdateAuthor applies a partial update to an author.
func (s *AuthorService) UpdateAuthor(ctx context.Context, id string, input UpdateAuthorInput) (*domain.Author, error) {
	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get author for update: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.InvalidInput("name cannot be empty")
		}
		author.Name = *input.Name
	}
	if input.Bio != nil {
		author.Bio = input.Bio
	}

	if err := s.repo.Update(ctx, author); err != nil {
		return nil, fmt.Errorf("update author: %w", err)
	}

	return author, nil
}

// DeleteAuthor removes an author.
func (s *AuthorService) DeleteAuthor(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	return nil
}
