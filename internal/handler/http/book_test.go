package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/repository"
	"github.com/BinhLe15/bookworm-app/internal/service"
	apperrors "github.com/BinhLe15/bookworm-app/pkg/errors"
	"github.com/BinhLe15/bookworm-app/pkg/middleware"
)

func testBookService(books *mockBookRepository) *service.BookService {
	return service.NewBookService(books, testEventProducer(), testLogger())
}

// setupBookRouter mirrors the production catalog routes including admin gating.
func setupBookRouter(handler *BookHandler, role string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/books", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Get("/", handler.ListBooks)
		r.Get("/{id}", handler.GetBook)

		r.Group(func(r chi.Router) {
			r.Use(testAuth(testUserID, role), middleware.RequireRole(domain.RoleAdmin))
			r.Post("/", handler.CreateBook)
			r.Delete("/{id}", handler.DeleteBook)
		})
	})
	return r
}

func TestListBooks_DefaultWindow(t *testing.T) {
	books := new(mockBookRepository)
	handler := NewBookHandler(testBookService(books), testLogger())
	router := setupBookRouter(handler, domain.RoleCustomer)

	books.On("List", mock.Anything, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Sort == domain.SortOnSale && f.Skip == 0 && f.Limit == 20
	})).Return([]domain.Book{{ID: testBookID, Title: "A Book", Price: 2000}}, 1, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Book `json:"data"`
		TotalCount int           `json:"total_count"`
		Skip       int           `json:"skip"`
		Limit      int           `json:"limit"`
		HasNext    bool          `json:"has_next"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, 20, resp.Limit)
	assert.False(t, resp.HasNext)
}

func TestListBooks_ForwardsFilters(t *testing.T) {
	books := new(mockBookRepository)
	handler := NewBookHandler(testBookService(books), testLogger())
	router := setupBookRouter(handler, domain.RoleCustomer)

	books.On("List", mock.Anything, mock.MatchedBy(func(f repository.BookFilter) bool {
		return f.Sort == domain.SortRecommended &&
			f.CategoryID != nil && *f.CategoryID == "cat-1" &&
			f.MinRating != nil && *f.MinRating == 4.0 &&
			f.Skip == 10 && f.Limit == 5
	})).Return([]domain.Book{}, 0, nil)

	target := "/api/v1/books?sort=recommended&category_id=cat-1&min_rating=4&skip=10&limit=5"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	books.AssertExpectations(t)
}

func TestListBooks_InvalidSort(t *testing.T) {
	handler := NewBookHandler(testBookService(new(mockBookRepository)), testLogger())
	router := setupBookRouter(handler, domain.RoleCustomer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books?sort=alphabetical", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBooks_InvalidMinRating(t *testing.T) {
	handler := NewBookHandler(testBookService(new(mockBookRepository)), testLogger())
	router := setupBookRouter(handler, domain.RoleCustomer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books?min_rating=lots", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBook_IncludesDiscountAndRating(t *testing.T) {
	books := new(mockBookRepository)
	handler := NewBookHandler(testBookService(books), testLogger())
	router := setupBookRouter(handler, domain.RoleCustomer)

	discountPrice := int64(1500)
	avgRating := 4.5
	books.On("GetByID", mock.Anything, testBookID, mock.AnythingOfType("time.Time")).
		Return(&domain.Book{
			ID:            testBookID,
			Title:         "A Book",
			Price:         3000,
			DiscountPrice: &discountPrice,
			AvgRating:     &avgRating,
			ReviewCount:   12,
		}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books/"+testBookID, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Book `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.DiscountPrice)
	assert.Equal(t, int64(1500), *resp.Data.DiscountPrice)
	assert.Equal(t, 12, resp.Data.ReviewCount)
}

func TestGetBook_NotFound(t *testing.T) {
	books := new(mockBookRepository)
	handler := NewBookHandler(testBookService(books), testLogger())
	router := setupBookRouter(handler, domain.RoleCustomer)

	books.On("GetByID", mock.Anything, testBookID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrNotFound)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books/"+testBookID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBook_AdminOnly(t *testing.T) {
	books := new(mockBookRepository)
	handler := NewBookHandler(testBookService(books), testLogger())

	body := []byte(`{"title":"New Book","price":2500,"author_id":"` + testUserID + `"}`)

	// Customer role is rejected by the role gate.
	customerRouter := setupBookRouter(handler, domain.RoleCustomer)
	rec := httptest.NewRecorder()
	customerRouter.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/books", body))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin role passes through to the service.
	books.On("Create", mock.Anything, mock.AnythingOfType("*domain.Book")).Return(nil)
	adminRouter := setupBookRouter(handler, domain.RoleAdmin)
	rec = httptest.NewRecorder()
	adminRouter.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/books", body))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBook_ValidationError(t *testing.T) {
	handler := NewBookHandler(testBookService(new(mockBookRepository)), testLogger())
	router := setupBookRouter(handler, domain.RoleAdmin)

	// Missing required fields.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/books", []byte(`{"summary":"no title"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestDeleteBook_Returns204(t *testing.T) {
	books := new(mockBookRepository)
	handler := NewBookHandler(testBookService(books), testLogger())
	router := setupBookRouter(handler, domain.RoleAdmin)

	books.On("Delete", mock.Anything, testBookID).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/api/v1/books/"+testBookID, nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
