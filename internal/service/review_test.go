package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
)

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByBook(ctx context.Context, bookID string, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	args := m.Called(ctx, bookID, filter)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) RatingSummary(ctx context.Context, bookID string) (*domain.RatingSummary, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RatingSummary), args.Error(1)
}

func newTestReviewService(repo *mockReviewRepository, books *mockBookRepository) *ReviewService {
	svc := NewReviewService(repo, books, newTestLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreateReview_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	books := new(mockBookRepository)
	svc := newTestReviewService(repo, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "book-1", testNow).Return(catalogBook("book-1", 2000, nil), nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.CreateReview(ctx, "book-1", CreateReviewInput{
		Title:   "Loved it",
		Details: strPtr("Read it twice."),
		Rating:  5,
	})

	require.NoError(t, err)
	assert.Equal(t, "book-1", review.BookID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, testNow, review.CreatedAt)
}

func TestCreateReview_RatingBounds(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		svc := newTestReviewService(new(mockReviewRepository), new(mockBookRepository))

		_, err := svc.CreateReview(context.Background(), "book-1", CreateReviewInput{
			Title:  "x",
			Rating: rating,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
}

func TestCreateReview_UnknownBook(t *testing.T) {
	repo := new(mockReviewRepository)
	books := new(mockBookRepository)
	svc := newTestReviewService(repo, books)
	ctx := context.Background()

	books.On("GetByID", ctx, "ghost", testNow).Return(nil, apperrors.ErrNotFound)

	_, err := svc.CreateReview(ctx, "ghost", CreateReviewInput{Title: "x", Rating: 3})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListReviews_DefaultsToNewest(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo, new(mockBookRepository))
	ctx := context.Background()

	repo.On("ListByBook", ctx, "book-1", mock.MatchedBy(func(f repository.ReviewFilter) bool {
		return f.Sort == ReviewSortNewest && f.Limit == 20
	})).Return([]domain.Review{}, 0, nil)

	_, _, err := svc.ListReviews(ctx, "book-1", ListReviewsInput{})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListReviews_RejectsUnknownSort(t *testing.T) {
	svc := newTestReviewService(new(mockReviewRepository), new(mockBookRepository))

	_, _, err := svc.ListReviews(context.Background(), "book-1", ListReviewsInput{Sort: "best"})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListReviews_RejectsInvalidRatingFilter(t *testing.T) {
	svc := newTestReviewService(new(mockReviewRepository), new(mockBookRepository))

	_, _, err := svc.ListReviews(context.Background(), "book-1", ListReviewsInput{Rating: intPtr(7)})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
