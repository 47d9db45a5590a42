package domain

import (
	"fmt"
	"strings"
	"time"
)

// Per-line quantity bounds for orders and carts.
const (
	MinQuantity = 1
	MaxQuantity = 8
)

// Order represents a placed order. TotalAmount is computed from the items,
// never taken from client input.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	OrderDate   time.Time   `json:"order_date"`
	TotalAmount int64       `json:"total_amount"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is a single line of an order. Price is the unit price frozen at
// placement time, in cents.
type OrderItem struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// LineTotal returns quantity times the frozen unit price.
func (i *OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CalculateTotal sums the line totals of items.
func CalculateTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// CalculateTotal sums the line totals of the order's items.
func (o *Order) CalculateTotal() int64 {
	return CalculateTotal(o.Items)
}

// IsValidQuantity checks whether a per-line quantity is within bounds.
func IsValidQuantity(q int) bool {
	return q >= MinQuantity && q <= MaxQuantity
}

// InvalidOrderItem describes why a requested line item cannot be ordered.
type InvalidOrderItem struct {
	BookID string `json:"book_id"`
	Reason string `json:"reason"`
}

// OrderRejectionError is returned when order placement fails validation.
// It carries every invalid line item so the client can fix them all at once.
type OrderRejectionError struct {
	Items []InvalidOrderItem
}

func (e *OrderRejectionError) Error() string {
	ids := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		ids = append(ids, it.BookID)
	}
	return fmt.Sprintf("order rejected: %d invalid item(s): %s", len(e.Items), strings.Join(ids, ", "))
}
