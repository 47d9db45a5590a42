package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig controls the cross-origin policy of the API.
type CORSConfig struct {
	// AllowedOrigins lists the origins that may call the API. A literal "*"
	// entry allows any origin, which is only sensible in development.
	AllowedOrigins []string

	// AllowedMethods defaults to GET, POST, PUT, PATCH, DELETE, OPTIONS.
	AllowedMethods []string

	// AllowedHeaders defaults to Accept, Authorization, Content-Type,
	// X-Correlation-ID, X-User-ID.
	AllowedHeaders []string

	// ExposedHeaders are response headers the browser may read.
	ExposedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds. Defaults to 3600.
	MaxAge int

	// AllowCredentials permits cookies and auth headers on cross-origin calls.
	AllowCredentials bool

	// Environment gates the wildcard: "development" implies any origin even
	// without an explicit "*" entry.
	Environment string
}

// withDefaults fills zero-valued fields with the standard method and header
// sets.
func (c CORSConfig) withDefaults() CORSConfig {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID", "X-User-ID"}
	}
	if c.MaxAge == 0 {
		c.MaxAge = 3600
	}
	return c
}

// DefaultCORSConfig returns the development policy: any origin, the standard
// method set, and the headers the API actually uses.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		ExposedHeaders: []string{"X-Correlation-ID", "X-User-ID"},
		Environment:    "development",
	}.withDefaults()
}

// corsPolicy is the precomputed form of a CORSConfig. Header values are
// joined once at construction so the per-request work is just header writes.
type corsPolicy struct {
	anyOrigin   bool
	origins     map[string]struct{}
	methods     string
	headers     string
	exposed     string
	maxAge      string
	credentials bool
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	p := &corsPolicy{
		anyOrigin:   cfg.Environment == "development",
		origins:     make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods:     strings.Join(cfg.AllowedMethods, ", "),
		headers:     strings.Join(cfg.AllowedHeaders, ", "),
		exposed:     strings.Join(cfg.ExposedHeaders, ", "),
		maxAge:      strconv.Itoa(cfg.MaxAge),
		credentials: cfg.AllowCredentials,
	}
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			p.anyOrigin = true
		}
		p.origins[o] = struct{}{}
	}
	return p
}

// originValue returns the Access-Control-Allow-Origin value for a request
// origin, and whether the response varies by origin. An empty value means the
// origin gets no CORS grant.
func (p *corsPolicy) originValue(origin string) (value string, varies bool) {
	if p.anyOrigin {
		return "*", false
	}
	if origin == "" {
		return "", false
	}
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	return "", false
}

func (p *corsPolicy) writeHeaders(w http.ResponseWriter, origin string) {
	h := w.Header()

	if value, varies := p.originValue(origin); value != "" {
		h.Set("Access-Control-Allow-Origin", value)
		if varies {
			h.Set("Vary", "Origin")
		}
	}

	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Allow-Headers", p.headers)
	if p.exposed != "" {
		h.Set("Access-Control-Expose-Headers", p.exposed)
	}
	h.Set("Access-Control-Max-Age", p.maxAge)

	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}

// CORS applies the configured cross-origin policy and short-circuits
// preflight OPTIONS requests with 204.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg.withDefaults())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.writeHeaders(w, r.Header.Get("Origin"))

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
