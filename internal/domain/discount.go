package domain

import "time"

// Discount represents a time-bounded promotional price for a book.
// A nil EndDate means the discount is open-ended. Price is in cents.
type Discount struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Price     int64      `json:"price"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ActiveAt reports whether the discount applies at the given instant.
// The window is inclusive on both ends.
func (d *Discount) ActiveAt(t time.Time) bool {
	if t.Before(d.StartDate) {
		return false
	}
	if d.EndDate != nil && t.After(*d.EndDate) {
		return false
	}
	return true
}
