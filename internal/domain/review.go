package domain

import "time"

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a customer review of a book.
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	Title     string    `json:"title"`
	Details   *string   `json:"details,omitempty"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidRating checks whether a rating value is within the allowed range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// RatingSummary aggregates review statistics for a book.
type RatingSummary struct {
	AvgRating   float64     `json:"avg_rating"`
	ReviewCount int         `json:"review_count"`
	StarCounts  map[int]int `json:"star_counts"`
}
