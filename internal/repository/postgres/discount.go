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

// DiscountRepository implements repository.DiscountRepository using PostgreSQL.
type DiscountRepository struct {
	pool database.DBTX
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool database.DBTX) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// Create inserts a new discount into the database.
func (r *DiscountRepository) Create(ctx context.Context, d *domain.Discount) error {
	query := `
		INSERT INTO discounts (id, book_id, start_date, end_date, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		d.ID,
		d.BookID,
		d.StartDate,
		d.EndDate,
		d.Price,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}

	return nil
}

// GetByID retrieves a discount by id.
func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	query := `
		SELECT id, book_id, start_date, end_date, price, created_at, updated_at
		FROM discounts
		WHERE id = $1`

	return r.scanDiscount(ctx, query, id)
}

// ListActive returns discounts whose window contains the given instant,
// newest first, with the total count.
func (r *DiscountRepository) ListActive(ctx context.Context, now time.Time, skip, limit int) ([]domain.Discount, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	query := `
		SELECT id, book_id, start_date, end_date, price, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM discounts
		WHERE start_date <= $1 AND (end_date IS NULL OR end_date >= $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, now, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list active discounts: %w", err)
	}
	defer rows.Close()

	var (
		discounts  []domain.Discount
		totalCount int
	)

	for rows.Next() {
		var d domain.Discount
		if err := rows.Scan(
			&d.ID, &d.BookID, &d.StartDate, &d.EndDate, &d.Price,
			&d.CreatedAt, &d.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan discount row: %w", err)
		}
		discounts = append(discounts, d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate discount rows: %w", err)
	}

	if discounts == nil {
		discounts = []domain.Discount{}
	}

	return discounts, totalCount, nil
}

// ActiveForBook resolves the discount applying to the book at the given
// instant. Overlapping windows are broken by lowest price first, then by the
// most recently created discount.
func (r *DiscountRepository) ActiveForBook(ctx context.Context, bookID string, now time.Time) (*domain.Discount, error) {
	query := `
		SELECT id, book_id, start_date, end_date, price, created_at, updated_at
		FROM discounts
		WHERE book_id = $1
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY price ASC, created_at DESC
		LIMIT 1`

	return r.scanDiscount(ctx, query, bookID, now)
}

// Update modifies an existing discount.
func (r *DiscountRepository) Update(ctx context.Context, d *domain.Discount) error {
	d.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE discounts
		SET book_id = $1, start_date = $2, end_date = $3, price = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query, d.BookID, d.StartDate, d.EndDate, d.Price, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("update discount: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("discount", d.ID)
	}

	return nil
}

// Delete removes a discount by id.
func (r *DiscountRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("discount", id)
	}

	return nil
}

// scanDiscount executes a query expected to return a single discount row.
func (r *DiscountRepository) scanDiscount(ctx context.Context, query string, args ...any) (*domain.Discount, error) {
	var d domain.Discount
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&d.ID,
		&d.BookID,
		&d.StartDate,
		&d.EndDate,
		&d.Price,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan discount: %w", err)
	}

	return &d, nil
}
