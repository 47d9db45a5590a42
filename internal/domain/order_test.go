package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// OrderItem / Order totals
// ============================================================================

func TestOrderItem_LineTotal(t *testing.T) {
	item := &OrderItem{Price: 1500, Quantity: 2}
	assert.Equal(t, int64(3000), item.LineTotal())
}

func TestCalculateTotal(t *testing.T) {
	items := []OrderItem{
		{Price: 1500, Quantity: 2},
		{Price: 1000, Quantity: 1},
	}
	assert.Equal(t, int64(4000), CalculateTotal(items))
	assert.Equal(t, int64(0), CalculateTotal(nil))
}

func TestOrder_CalculateTotal(t *testing.T) {
	o := &Order{
		Items: []OrderItem{
			{Price: 1500, Quantity: 2},
			{Price: 1000, Quantity: 1},
		},
	}
	assert.Equal(t, int64(4000), o.CalculateTotal())
}

func TestOrder_CalculateTotal_Empty(t *testing.T) {
	o := &Order{}
	assert.Equal(t, int64(0), o.CalculateTotal())
}

// ============================================================================
// Quantity bounds
// ============================================================================

func TestIsValidQuantity(t *testing.T) {
	tests := []struct {
		quantity int
		want     bool
	}{
		{0, false},
		{1, true},
		{4, true},
		{8, true},
		{9, false},
		{-1, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidQuantity(tt.quantity), "quantity %d", tt.quantity)
	}
}

// ============================================================================
// OrderRejectionError
// ============================================================================

func TestOrderRejectionError_Message(t *testing.T) {
	err := &OrderRejectionError{
		Items: []InvalidOrderItem{
			{BookID: "book-1", Reason: "book not found"},
			{BookID: "book-2", Reason: "quantity out of range"},
		},
	}
	assert.Contains(t, err.Error(), "2 invalid item(s)")
	assert.Contains(t, err.Error(), "book-1")
	assert.Contains(t, err.Error(), "book-2")
}
