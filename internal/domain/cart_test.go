package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Cart.TotalAmount Tests
// ============================================================================

func TestTotalAmount_SingleItem(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{Price: 1999, Quantity: 2},
		},
	}
	assert.Equal(t, int64(3998), c.TotalAmount())
}

func TestTotalAmount_MultipleItems(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{Price: 1000, Quantity: 2},
			{Price: 500, Quantity: 3},
			{Price: 2500, Quantity: 1},
		},
	}
	// 2000 + 1500 + 2500 = 6000
	assert.Equal(t, int64(6000), c.TotalAmount())
}

func TestTotalAmount_EmptyCart(t *testing.T) {
	c := &Cart{Items: []CartItem{}}
	assert.Equal(t, int64(0), c.TotalAmount())
}

func TestTotalAmount_NilItems(t *testing.T) {
	c := &Cart{}
	assert.Equal(t, int64(0), c.TotalAmount())
}

// ============================================================================
// Cart.ItemCount Tests
// ============================================================================

func TestItemCount_MultipleItems(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{Quantity: 2},
			{Quantity: 3},
			{Quantity: 1},
		},
	}
	assert.Equal(t, 6, c.ItemCount())
}

func TestItemCount_EmptyCart(t *testing.T) {
	c := &Cart{Items: []CartItem{}}
	assert.Equal(t, 0, c.ItemCount())
}

// ============================================================================
// Cart.FindItemIndex Tests
// ============================================================================

func TestFindItemIndex_Found(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1"},
			{BookID: "book-2"},
		},
	}
	assert.Equal(t, 1, c.FindItemIndex("book-2"))
}

func TestFindItemIndex_NotFound(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1"},
		},
	}
	assert.Equal(t, -1, c.FindItemIndex("book-9"))
}

// ============================================================================
// Cart.AddItem Tests
// ============================================================================

func TestAddItem_NewBook(t *testing.T) {
	c := &Cart{}
	c.AddItem(CartItem{BookID: "book-1", Title: "Dune", Price: 1500, Quantity: 2})

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddItem_MergesExistingBook(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1", Price: 1500, Quantity: 3},
		},
	}
	c.AddItem(CartItem{BookID: "book-1", Price: 1500, Quantity: 2})

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddItem_MergeCapsAtMaxQuantity(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1", Price: 1500, Quantity: 6},
		},
	}
	c.AddItem(CartItem{BookID: "book-1", Price: 1500, Quantity: 5})

	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
}

func TestAddItem_NewBookCappedAtMaxQuantity(t *testing.T) {
	c := &Cart{}
	c.AddItem(CartItem{BookID: "book-1", Price: 1500, Quantity: 99})

	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
}

func TestAddItem_RefreshesPriceOnMerge(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1", Price: 2000, Quantity: 1},
		},
	}
	// A later add carries the currently effective price.
	c.AddItem(CartItem{BookID: "book-1", Price: 1500, Quantity: 1})

	assert.Equal(t, int64(1500), c.Items[0].Price)
}

// ============================================================================
// Cart.RemoveItem Tests
// ============================================================================

func TestRemoveItem_Existing(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1"},
			{BookID: "book-2"},
		},
	}
	assert.True(t, c.RemoveItem("book-1"))

	assert.Len(t, c.Items, 1)
	assert.Equal(t, "book-2", c.Items[0].BookID)
}

func TestRemoveItem_Missing_LeavesCartUnchanged(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{BookID: "book-1"},
		},
	}
	assert.False(t, c.RemoveItem("book-9"))

	assert.Len(t, c.Items, 1)
}
