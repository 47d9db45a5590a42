package middleware

import (
	"log/slog"
	"net/http"

	"github.com/BinhLe15/bookworm-app/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// correlation id, user id and trace/span ids. Handlers retrieve it with
// logger.FromContext. Mount after RequestLogging (correlation id) and
// Tracing (span context) so both are available for enrichment.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The auth middleware is the usual source of the user id; the
			// X-User-ID header covers requests that skip authentication.
			userID := UserIDFromContext(ctx)
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
