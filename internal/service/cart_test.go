package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestCartService(carts *mockCartRepository, books *mockBookRepository, orders *mockOrderRepository) *CartService {
	orderSvc := newTestOrderService(orders, books)
	svc := NewCartService(carts, books, orderSvc, newTestLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestGetCart_AbsentCartIsEmpty(t *testing.T) {
	carts := new(mockCartRepository)
	svc := newTestCartService(carts, new(mockBookRepository), new(mockOrderRepository))
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(nil, apperrors.ErrNotFound)

	cart, err := svc.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestAddItem_UsesEffectivePrice(t *testing.T) {
	carts := new(mockCartRepository)
	books := new(mockBookRepository)
	svc := newTestCartService(carts, books, new(mockOrderRepository))
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 3000, int64Ptr(1500)), nil)
	carts.On("Get", ctx, "user-1").Return(nil, apperrors.ErrNotFound)
	carts.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)

	cart, err := svc.AddItem(ctx, "user-1", "book-1", 2)

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1500), cart.Items[0].Price)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	carts.AssertExpectations(t)
}

func TestAddItem_MergesAndCapsQuantity(t *testing.T) {
	carts := new(mockCartRepository)
	books := new(mockBookRepository)
	svc := newTestCartService(carts, books, new(mockOrderRepository))
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 2000, nil), nil)
	carts.On("Get", ctx, "user-1").Return(&domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{BookID: "book-1", Title: "Book book-1", Price: 2000, Quantity: 6}},
	}, nil)
	carts.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)

	cart, err := svc.AddItem(ctx, "user-1", "book-1", 5)

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, domain.MaxQuantity, cart.Items[0].Quantity)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := newTestCartService(new(mockCartRepository), new(mockBookRepository), new(mockOrderRepository))

	_, err := svc.AddItem(context.Background(), "user-1", "book-1", 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateItem_MissingLine(t *testing.T) {
	carts := new(mockCartRepository)
	svc := newTestCartService(carts, new(mockBookRepository), new(mockOrderRepository))
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(&domain.Cart{UserID: "user-1"}, nil)

	_, err := svc.UpdateItem(ctx, "user-1", "book-9", 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemoveItem_DropsLine(t *testing.T) {
	carts := new(mockCartRepository)
	svc := newTestCartService(carts, new(mockBookRepository), new(mockOrderRepository))
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(&domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{BookID: "book-1", Price: 1500, Quantity: 2},
			{BookID: "book-2", Price: 1000, Quantity: 1},
		},
	}, nil)
	carts.On("Save", ctx, mock.AnythingOfType("*domain.Cart")).Return(nil)

	cart, err := svc.RemoveItem(ctx, "user-1", "book-1")

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "book-2", cart.Items[0].BookID)
	carts.AssertExpectations(t)
}

func TestRemoveItem_MissingLine(t *testing.T) {
	carts := new(mockCartRepository)
	svc := newTestCartService(carts, new(mockBookRepository), new(mockOrderRepository))
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(&domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{BookID: "book-1", Price: 1500, Quantity: 1}},
	}, nil)

	_, err := svc.RemoveItem(ctx, "user-1", "book-9")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCheckout_PlacesOrderAndClearsCart(t *testing.T) {
	carts := new(mockCartRepository)
	books := new(mockBookRepository)
	orders := new(mockOrderRepository)
	svc := newTestCartService(carts, books, orders)
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(&domain.Cart{
		UserID: "user-1",
		Items: []domain.CartItem{
			{BookID: "book-1", Price: 1500, Quantity: 2},
			{BookID: "book-2", Price: 1000, Quantity: 1},
		},
	}, nil)
	// Checkout re-prices from the catalog, not from the cart snapshot.
	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 3000, int64Ptr(1500)), nil)
	books.On("GetByID", ctx, "book-2", testNow).Return(catalogBook("book-2", 1000, nil), nil)
	orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
	carts.On("Delete", ctx, "user-1").Return(nil)

	order, err := svc.Checkout(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(4000), order.TotalAmount)
	carts.AssertCalled(t, "Delete", ctx, "user-1")
}

func TestCheckout_EmptyCart(t *testing.T) {
	carts := new(mockCartRepository)
	svc := newTestCartService(carts, new(mockBookRepository), new(mockOrderRepository))
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(nil, apperrors.ErrNotFound)

	order, err := svc.Checkout(ctx, "user-1")

	assert.Nil(t, order)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCheckout_RejectionKeepsCart(t *testing.T) {
	carts := new(mockCartRepository)
	books := new(mockBookRepository)
	orders := new(mockOrderRepository)
	svc := newTestCartService(carts, books, orders)
	ctx := context.Background()

	carts.On("Get", ctx, "user-1").Return(&domain.Cart{
		UserID: "user-1",
		Items:  []domain.CartItem{{BookID: "ghost", Price: 1000, Quantity: 1}},
	}, nil)
	books.On("GetByID", ctx, "ghost", testNow).Return(nil, apperrors.ErrNotFound)

	order, err := svc.Checkout(ctx, "user-1")

	assert.Nil(t, order)
	var rejection *domain.OrderRejectionError
	require.ErrorAs(t, err, &rejection)
	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
