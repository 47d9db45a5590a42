package domain

import "time"

// Book sort mode constants for catalog listings.
const (
	SortOnSale      = "onsale"
	SortRecommended = "recommended"
	SortPopular     = "popular"
	SortPriceAsc    = "price_asc"
	SortPriceDesc   = "price_desc"
)

// Book represents a book in the catalog. Prices are in cents.
type Book struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	Price      int64     `json:"price"`
	CategoryID *string   `json:"category_id,omitempty"`
	AuthorID   string    `json:"author_id"`
	CoverPhoto *string   `json:"cover_photo,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// List-view fields populated by catalog queries. DiscountPrice is the
	// currently active discount price, nil when the book is not on sale.
	DiscountPrice *int64   `json:"discount_price,omitempty"`
	AvgRating     *float64 `json:"avg_rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
}

// EffectivePrice returns the price a buyer pays right now: the active
// discount price when one is set, the list price otherwise.
func (b *Book) EffectivePrice() int64 {
	if b.DiscountPrice != nil {
		return *b.DiscountPrice
	}
	return b.Price
}

// ValidSortModes returns the set of valid catalog sort modes.
func ValidSortModes() []string {
	return []string{SortOnSale, SortRecommended, SortPopular, SortPriceAsc, SortPriceDesc}
}

// IsValidSortMode checks whether the given string is a valid sort mode.
func IsValidSortMode(sort string) bool {
	for _, s := range ValidSortModes() {
		if s == sort {
			return true
		}
	}
	return false
}
