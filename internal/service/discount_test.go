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

type mockDiscountRepository struct {
	mock.Mock
}

func (m *mockDiscountRepository) Create(ctx context.Context, discount *domain.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *mockDiscountRepository) GetByID(ctx context.Context, id string) (*domain.Discount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

func (m *mockDiscountRepository) ListActive(ctx context.Context, now time.Time, skip, limit int) ([]domain.Discount, int, error) {
	args := m.Called(ctx, now, skip, limit)
	return args.Get(0).([]domain.Discount), args.Int(1), args.Error(2)
}

func (m *mockDiscountRepository) ActiveForBook(ctx context.Context, bookID string, now time.Time) (*domain.Discount, error) {
	args := m.Called(ctx, bookID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Discount), args.Error(1)
}

func (m *mockDiscountRepository) Update(ctx context.Context, discount *domain.Discount) error {
	args := m.Called(ctx, discount)
	return args.Error(0)
}

func (m *mockDiscountRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestDiscountService(repo *mockDiscountRepository, books *mockBookRepository) *DiscountService {
	svc := NewDiscountService(repo, books, newTestLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateDiscount_Success(t *testing.T) {
	repo := new(mockDiscountRepository)
	books := new(mockBookRepository)
	svc := newTestDiscountService(repo, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 3000, nil), nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Discount")).Return(nil)

	end := testNow.Add(30 * 24 * time.Hour)
	discount, err := svc.CreateDiscount(ctx, CreateDiscountInput{
		BookID:    "book-1",
		StartDate: testNow,
		EndDate:   &end,
		Price:     1500,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1500), discount.Price)
	assert.NotEmpty(t, discount.ID)
}

func TestCreateDiscount_OpenEndedWindow(t *testing.T) {
	repo := new(mockDiscountRepository)
	books := new(mockBookRepository)
	svc := newTestDiscountService(repo, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 3000, nil), nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Discount")).Return(nil)

	discount, err := svc.CreateDiscount(ctx, CreateDiscountInput{
		BookID:    "book-1",
		StartDate: testNow,
		Price:     1500,
	})

	require.NoError(t, err)
	assert.Nil(t, discount.EndDate)
}

func TestCreateDiscount_MustUndercutListPrice(t *testing.T) {
	repo := new(mockDiscountRepository)
	books := new(mockBookRepository)
	svc := newTestDiscountService(repo, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 3000, nil), nil)

	_, err := svc.CreateDiscount(ctx, CreateDiscountInput{
		BookID:    "book-1",
		StartDate: testNow,
		Price:     3000,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateDiscount_EndBeforeStart(t *testing.T) {
	svc := newTestDiscountService(new(mockDiscountRepository), new(mockBookRepository))

	end := testNow.Add(-time.Hour)
	_, err := svc.CreateDiscount(context.Background(), CreateDiscountInput{
		BookID:    "book-1",
		StartDate: testNow,
		EndDate:   &end,
		Price:     1500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateDiscount_UnknownBook(t *testing.T) {
	repo := new(mockDiscountRepository)
	books := new(mockBookRepository)
	svc := newTestDiscountService(repo, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "ghost", testNow).Return(nil, apperrors.ErrNotFound)

	_, err := svc.CreateDiscount(ctx, CreateDiscountInput{
		BookID:    "ghost",
		StartDate: testNow,
		Price:     1500,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateDiscount_RejectsInvertedWindow(t *testing.T) {
	repo := new(mockDiscountRepository)
	svc := newTestDiscountService(repo, new(mockBookRepository))
	ctx := context.Background()

	repo.On("GetByID", ctx, "disc-1").Return(&domain.Discount{
		ID:        "disc-1",
		BookID:    "book-1",
		StartDate: testNow,
		Price:     1500,
	}, nil)

	end := testNow.Add(-time.Hour)
	_, err := svc.UpdateDiscount(ctx, "disc-1", UpdateDiscountInput{EndDate: &end})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestListActiveDiscounts_PassesNow(t *testing.T) {
	repo := new(mockDiscountRepository)
	svc := newTestDiscountService(repo, new(mockBookRepository))
	ctx := context.Background()

	repo.On("ListActive", ctx, testNow, 0, 20).Return([]domain.Discount{}, 0, nil)

	_, _, err := svc.ListActiveDiscounts(ctx, 0, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
