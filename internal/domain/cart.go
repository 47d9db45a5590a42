package domain

import "time"

// Cart represents a user's shopping cart.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is a single line in the cart. Price is the effective unit price
// captured when the item was added; it is re-resolved at checkout.
type CartItem struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// TotalAmount calculates the total price of all items in the cart (in cents).
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the cart item for the given book id,
// or -1 if the book is not in the cart.
func (c *Cart) FindItemIndex(bookID string) int {
	for i := range c.Items {
		if c.Items[i].BookID == bookID {
			return i
		}
	}
	return -1
}

// AddItem merges the given item into the cart. Adding a book already in the
// cart increases its quantity; the per-line quantity is capped at MaxQuantity.
func (c *Cart) AddItem(item CartItem) {
	if idx := c.FindItemIndex(item.BookID); idx >= 0 {
		q := c.Items[idx].Quantity + item.Quantity
		if q > MaxQuantity {
			q = MaxQuantity
		}
		c.Items[idx].Quantity = q
		c.Items[idx].Price = item.Price
		return
	}
	if item.Quantity > MaxQuantity {
		item.Quantity = MaxQuantity
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the line for the given book id and reports whether the
// book was in the cart. A missing book leaves the cart unchanged.
func (c *Cart) RemoveItem(bookID string) bool {
	idx := c.FindItemIndex(bookID)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	return true
}
