package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	"github.com/BinhLe15/bookworm-app/pkg/database"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

// reviewAggJoin aggregates per-book review statistics. Books without reviews
// produce no row here, which is what lets the recommended/popular sorts
// exclude them via an inner join.
const reviewAggJoin = `(
		SELECT book_id, AVG(rating)::float8 AS avg_rating, COUNT(*) AS review_count
		FROM reviews
		GROUP BY book_id
	) rv ON rv.book_id = b.id`

// activeDiscountJoin resolves the single discount applying to each book at
// the reference instant. Overlaps are broken by lowest price, then most
// recently created.
const activeDiscountJoin = `LEFT JOIN LATERAL (
		SELECT d.price
		FROM discounts d
		WHERE d.book_id = b.id
		  AND d.start_date <= $%d
		  AND (d.end_date IS NULL OR d.end_date >= $%d)
		ORDER BY d.price ASC, d.created_at DESC
		LIMIT 1
	) ad ON true`

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, summary, price, category_id, author_id, cover_photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Summary,
		b.Price,
		b.CategoryID,
		b.AuthorID,
		b.CoverPhoto,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book by id, with its active discount price and rating
// summary resolved as of the given instant.
func (r *BookRepository) GetByID(ctx context.Context, id string, now time.Time) (*domain.Book, error) {
	query := `
		SELECT b.id, b.title, b.summary, b.price, b.category_id, b.author_id, b.cover_photo,
		       b.created_at, b.updated_at,
		       ad.price AS discount_price,
		       rv.avg_rating,
		       COALESCE(rv.review_count, 0) AS review_count
		FROM books b
		LEFT JOIN ` + reviewAggJoin + `
		` + fmt.Sprintf(activeDiscountJoin, 2, 2) + `
		WHERE b.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetBook", query)

	var b domain.Book
	err := r.pool.QueryRow(ctx, query, id, now).Scan(
		&b.ID,
		&b.Title,
		&b.Summary,
		&b.Price,
		&b.CategoryID,
		&b.AuthorID,
		&b.CoverPhoto,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.DiscountPrice,
		&b.AvgRating,
		&b.ReviewCount,
	)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// List returns books matching the filter with the total count. The total is
// produced by a separate count query that repeats every inclusion-affecting
// predicate, so it stays correct on out-of-range pages.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.Book, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("b.category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("b.author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	// NULL avg_rating never satisfies >=, so books without reviews drop out.
	if filter.MinRating != nil {
		conditions = append(conditions, fmt.Sprintf("rv.avg_rating >= $%d", argIndex))
		args = append(args, *filter.MinRating)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// recommended/popular rank by review aggregates, so books without
	// reviews are excluded from those listings entirely.
	reviewJoin := "LEFT JOIN " + reviewAggJoin
	if filter.Sort == domain.SortRecommended || filter.Sort == domain.SortPopular {
		reviewJoin = "JOIN " + reviewAggJoin
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM books b
		%s
		%s`,
		reviewJoin, whereClause,
	)

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	nowIndex := argIndex
	args = append(args, filter.Now)
	argIndex++

	query := fmt.Sprintf(`
		SELECT b.id, b.title, b.summary, b.price, b.category_id, b.author_id, b.cover_photo,
		       b.created_at, b.updated_at,
		       ad.price AS discount_price,
		       rv.avg_rating,
		       COALESCE(rv.review_count, 0) AS review_count
		FROM books b
		%s
		%s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		reviewJoin,
		fmt.Sprintf(activeDiscountJoin, nowIndex, nowIndex),
		whereClause,
		orderClause(filter.Sort),
		argIndex, argIndex+1,
	)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	args = append(args, limit, skip)

	ctx, end := database.TraceQuery(ctx, "ListBooks", query)
	rows, err := r.pool.Query(ctx, query, args...)
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Summary,
			&b.Price,
			&b.CategoryID,
			&b.AuthorID,
			&b.CoverPhoto,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.DiscountPrice,
			&b.AvgRating,
			&b.ReviewCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}

// orderClause maps a sort mode to its ORDER BY expression. Every mode ends
// with b.id so consecutive pages never overlap on ties.
func orderClause(sort string) string {
	switch sort {
	case domain.SortRecommended:
		return "rv.avg_rating DESC, COALESCE(ad.price, b.price) ASC, b.id"
	case domain.SortPopular:
		return "rv.review_count DESC, COALESCE(ad.price, b.price) ASC, b.id"
	case domain.SortPriceAsc:
		return "COALESCE(ad.price, b.price) ASC, b.id"
	case domain.SortPriceDesc:
		return "COALESCE(ad.price, b.price) DESC, b.id"
	default: // onsale
		return "(b.price - ad.price) DESC NULLS LAST, b.id"
	}
}

// Update modifies an existing book in the database.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $1, summary = $2, price = $3, category_id = $4, author_id = $5,
		    cover_photo = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		b.Title,
		b.Summary,
		b.Price,
		b.CategoryID,
		b.AuthorID,
		b.CoverPhoto,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book from the database by its id.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	return nil
}
