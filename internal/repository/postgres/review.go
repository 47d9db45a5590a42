package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	"github.com/BinhLe15/bookworm-app/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, title, details, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		rv.ID,
		rv.BookID,
		rv.Title,
		rv.Details,
		rv.Rating,
		rv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ListByBook returns a book's reviews matching the filter with the total count.
func (r *ReviewRepository) ListByBook(ctx context.Context, bookID string, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	conditions := []string{"book_id = $1"}
	args := []any{bookID}
	argIndex := 2

	if filter.Rating != nil {
		conditions = append(conditions, fmt.Sprintf("rating = $%d", argIndex))
		args = append(args, *filter.Rating)
		argIndex++
	}

	order := "created_at DESC, id"
	if filter.Sort == "oldest" {
		order = "created_at ASC, id"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`
		SELECT id, book_id, title, details, rating, created_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), order, argIndex, argIndex+1,
	)
	args = append(args, limit, skip)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.BookID, &rv.Title, &rv.Details, &rv.Rating, &rv.CreatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// RatingSummary returns aggregate review statistics for a book: average
// rating, review count, and per-star counts. A book with no reviews yields a
// zero-valued summary, not an error.
func (r *ReviewRepository) RatingSummary(ctx context.Context, bookID string) (*domain.RatingSummary, error) {
	query := `
		SELECT rating, COUNT(*)
		FROM reviews
		WHERE book_id = $1
		GROUP BY rating`

	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}
	defer rows.Close()

	summary := &domain.RatingSummary{
		StarCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var weightedSum int
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("scan rating row: %w", err)
		}
		summary.StarCounts[rating] = count
		summary.ReviewCount += count
		weightedSum += rating * count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating rows: %w", err)
	}

	if summary.ReviewCount > 0 {
		summary.AvgRating = float64(weightedSum) / float64(summary.ReviewCount)
	}

	return summary, nil
}
