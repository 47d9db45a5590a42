package repository

import (
	"context"
	"time"

	"github.com/BinhLe15/bookworm-app/internal/domain"
)

// BookFilter defines filter criteria for catalog listings. Now is the
// reference instant used to decide which discounts are active; callers pass
// time.Now().UTC() in production and a fixed value in tests.
type BookFilter struct {
	CategoryID *string
	AuthorID   *string
	MinRating  *float64
	Sort       string
	Skip       int
	Limit      int
	Now        time.Time
}

// ReviewFilter defines filter criteria for listing a book's reviews.
type ReviewFilter struct {
	Rating *int
	Sort   string // "newest" or "oldest"
	Skip   int
	Limit  int
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	// Create inserts a new book into the store.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by id, including its active discount price
	// and rating summary as of the given reference instant.
	GetByID(ctx context.Context, id string, now time.Time) (*domain.Book, error)

	// List returns books matching the filter along with the total count.
	// The total is computed by a count query sharing every predicate that
	// affects row inclusion, so it is independent of Skip and Limit.
	List(ctx context.Context, filter BookFilter) ([]domain.Book, int, error)

	// Update modifies an existing book.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book by id.
	Delete(ctx context.Context, id string) error
}

// AuthorRepository defines persistence operations for authors.
type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	GetByID(ctx context.Context, id string) (*domain.Author, error)
	List(ctx context.Context, skip, limit int) ([]domain.Author, int, error)
	Update(ctx context.Context, author *domain.Author) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, skip, limit int) ([]domain.Category, int, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// DiscountRepository defines persistence operations for discounts.
type DiscountRepository interface {
	Create(ctx context.Context, discount *domain.Discount) error
	GetByID(ctx context.Context, id string) (*domain.Discount, error)

	// ListActive returns discounts whose window contains the given instant.
	ListActive(ctx context.Context, now time.Time, skip, limit int) ([]domain.Discount, int, error)

	// ActiveForBook resolves the discount that applies to the book at the
	// given instant. Overlapping discounts are broken by lowest price, then
	// most recently created. Returns ErrNotFound when no discount applies.
	ActiveForBook(ctx context.Context, bookID string, now time.Time) (*domain.Discount, error)

	Update(ctx context.Context, discount *domain.Discount) error
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error

	// ListByBook returns a book's reviews matching the filter with total count.
	ListByBook(ctx context.Context, bookID string, filter ReviewFilter) ([]domain.Review, int, error)

	// RatingSummary returns aggregate review statistics for a book,
	// including per-star counts.
	RatingSummary(ctx context.Context, bookID string) (*domain.RatingSummary, error)
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create inserts an order and its items atomically in one transaction.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUser returns a user's orders, newest first, with total count.
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]domain.Order, int, error)

	// List returns all orders, newest first, with total count.
	List(ctx context.Context, skip, limit int) ([]domain.Order, int, error)
}

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// CountByRole returns the number of users holding the given role.
	CountByRole(ctx context.Context, role string) (int, error)
}

// CartRepository defines persistence operations for carts.
type CartRepository interface {
	// Get retrieves a user's cart. Returns ErrNotFound when absent.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save stores the cart with the configured TTL.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes a user's cart. Deleting an absent cart is not an error.
	Delete(ctx context.Context, userID string) error
}
