package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/pkg/database"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

// AuthorRepository implements repository.AuthorRepository using PostgreSQL.
type AuthorRepository struct {
	pool database.DBTX
}

// NewAuthorRepository creates a new PostgreSQL-backed author repository.
func NewAuthorRepository(pool database.DBTX) *AuthorRepository {
	return &AuthorRepository{pool: pool}
}

// Create inserts a new author into the database.
func (r *AuthorRepository) Create(ctx context.Context, a *domain.Author) error {
	query := `
		INSERT INTO authors (id, name, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Name, a.Bio, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}

	return nil
}

// GetByID retrieves an author by id.
func (r *AuthorRepository) GetByID(ctx context.Context, id string) (*domain.Author, error) {
	query := `
		SELECT id, name, bio, created_at, updated_at
		FROM authors
		WHERE id = $1`

	var a domain.Author
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan author: %w", err)
	}

	return &a, nil
}

// List returns authors ordered by name with the total count.
func (r *AuthorRepository) List(ctx context.Context, skip, limit int) ([]domain.Author, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	query := `
		SELECT id, name, bio, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM authors
		ORDER BY name, id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var (
		authors    []domain.Author
		totalCount int
	)

	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Bio, &a.CreatedAt, &a.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan author row: %w", err)
		}
		authors = append(authors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate author rows: %w", err)
	}

	if authors == nil {
		authors = []domain.Author{}
	}

	return authors, totalCount, nil
}

// Update modifies an existing author.
func (r *AuthorRepository) Update(ctx context.Context, a *domain.Author) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE authors
		SET name = $1, bio = $2, updated_at = $3
		WHERE id = $4`

	ct, err := r.pool.Exec(ctx, query, a.Name, a.Bio, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("update author: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("author", a.ID)
	}

	return nil
}

// Delete removes an author by id.
func (r *AuthorRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("author", id)
	}

	return nil
}
