package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rateLimitedHandler(rps, burst int) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return RateLimit(rps, burst, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	handler := rateLimitedHandler(1, 3)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	handler := rateLimitedHandler(1, 2)

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Contains(t, last.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_BucketsPerIP(t *testing.T) {
	handler := rateLimitedHandler(1, 1)

	for _, addr := range []string{"10.0.0.3:1", "10.0.0.4:1", "10.0.0.5:1"} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "fresh ip %s gets its own bucket", addr)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr with port", "192.0.2.7:5000", nil, "192.0.2.7"},
		{"x-forwarded-for single", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"x-forwarded-for chain", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"forwarded-for beats real-ip", "10.0.0.1:1", map[string]string{
			"X-Forwarded-For": "203.0.113.9", "X-Real-IP": "198.51.100.4",
		}, "203.0.113.9"},
		{"garbage forwarded-for ignored", "192.0.2.7:5000", map[string]string{"X-Forwarded-For": "not-an-ip"}, "192.0.2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestVisitorStore_EvictsStale(t *testing.T) {
	s := &visitorStore{
		visitors: make(map[string]*visitor),
		rps:      1,
		burst:    1,
		ttl:      time.Minute,
		nowFunc:  time.Now,
	}

	base := time.Now()
	s.nowFunc = func() time.Time { return base }
	s.limiterFor("10.0.0.1")
	s.limiterFor("10.0.0.2")
	assert.Equal(t, 2, s.size())

	// One visitor comes back later, the other goes stale.
	s.nowFunc = func() time.Time { return base.Add(45 * time.Second) }
	s.limiterFor("10.0.0.1")

	s.nowFunc = func() time.Time { return base.Add(90 * time.Second) }
	s.evictStale()

	assert.Equal(t, 1, s.size())
}
