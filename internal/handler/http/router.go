package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BinhLe15/bookworm-app/internal/domain"
	"github.com/BinhLe15/bookworm-app/internal/service"
	"github.com/BinhLe15/bookworm-app/pkg/health"
	"github.com/BinhLe15/bookworm-app/pkg/middleware"
)

// Services bundles the application services consumed by the router.
type Services struct {
	Books      *service.BookService
	Authors    *service.AuthorService
	Categories *service.CategoryService
	Discounts  *service.DiscountService
	Reviews    *service.ReviewService
	Orders     *service.OrderService
	Carts      *service.CartService
	Users      *service.UserService
}

// RouterConfig carries the policy knobs the router needs.
type RouterConfig struct {
	CORS middleware.CORSConfig

	// Per-IP limit on the auth endpoints.
	AuthRateRPS   int
	AuthRateBurst int
}

// NewRouter creates a chi router with all application routes registered.
// Catalog reads are public; cart and order routes require authentication;
// catalog writes and discount management require the admin role.
func NewRouter(
	svcs Services,
	validateToken middleware.TokenValidator,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("bookworm"))
	r.Use(middleware.Tracing("bookworm"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	bookHandler := NewBookHandler(svcs.Books, logger)
	authorHandler := NewAuthorHandler(svcs.Authors, logger)
	categoryHandler := NewCategoryHandler(svcs.Categories, logger)
	discountHandler := NewDiscountHandler(svcs.Discounts, logger)
	reviewHandler := NewReviewHandler(svcs.Reviews, logger)
	orderHandler := NewOrderHandler(svcs.Orders, logger)
	cartHandler := NewCartHandler(svcs.Carts, logger)
	authHandler := NewAuthHandler(svcs.Users, logger)

	requireAuth := middleware.Auth(validateToken)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)
	authRateLimit := middleware.RateLimit(cfg.AuthRateRPS, cfg.AuthRateBurst, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Auth, rate limited per IP against credential stuffing.
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(requireAuth).Get("/me", authHandler.Me)
		})

		// Catalog: public reads, admin writes.
		r.Route("/books", func(r chi.Router) {
			r.With(middleware.CacheControl(60)).Get("/", bookHandler.ListBooks)
			r.Get("/{id}", bookHandler.GetBook)
			r.Get("/{id}/reviews", reviewHandler.ListReviews)
			r.Get("/{id}/reviews/ratings", reviewHandler.GetRatingSummary)
			r.Post("/{id}/reviews", reviewHandler.CreateReview)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", bookHandler.CreateBook)
				r.Put("/{id}", bookHandler.UpdateBook)
				r.Delete("/{id}", bookHandler.DeleteBook)
			})
		})

		r.Route("/authors", func(r chi.Router) {
			r.Get("/", authorHandler.ListAuthors)
			r.Get("/{id}", authorHandler.GetAuthor)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", authorHandler.CreateAuthor)
				r.Put("/{id}", authorHandler.UpdateAuthor)
				r.Delete("/{id}", authorHandler.DeleteAuthor)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Get("/{id}", categoryHandler.GetCategory)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", categoryHandler.CreateCategory)
				r.Put("/{id}", categoryHandler.UpdateCategory)
				r.Delete("/{id}", categoryHandler.DeleteCategory)
			})
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", discountHandler.ListActiveDiscounts)
			r.Get("/{id}", discountHandler.GetDiscount)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, requireAdmin)
				r.Post("/", discountHandler.CreateDiscount)
				r.Put("/{id}", discountHandler.UpdateDiscount)
				r.Delete("/{id}", discountHandler.DeleteDiscount)
			})
		})

		// Orders: authenticated.
		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", orderHandler.PlaceOrder)
			r.Get("/", orderHandler.ListMyOrders)
			r.Get("/{id}", orderHandler.GetOrder)
		})

		r.With(requireAuth, requireAdmin).Get("/admin/orders", orderHandler.ListAllOrders)

		// Cart: authenticated.
		r.Route("/cart", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{bookID}", cartHandler.UpdateItem)
			r.Delete("/items/{bookID}", cartHandler.RemoveItem)
			r.Post("/checkout", cartHandler.Checkout)
		})
	})

	return r
}
