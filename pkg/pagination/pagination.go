package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is applied when the request carries no limit parameter.
	DefaultLimit = 20
	// MaxLimit caps the page size regardless of what the client asks for.
	MaxLimit = 100
)

// Params holds offset pagination parameters extracted from query strings.
type Params struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Skip:  0,
		Limit: DefaultLimit,
	}
}

// FromRequest extracts skip/limit parameters from an HTTP request.
// Invalid or out-of-range values fall back to the defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if skip := r.URL.Query().Get("skip"); skip != "" {
		if v, err := strconv.Atoi(skip); err == nil && v >= 0 {
			p.Skip = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 && v <= MaxLimit {
			p.Limit = v
		}
	}

	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Skip       int  `json:"skip"`
	Limit      int  `json:"limit"`
	HasNext    bool `json:"has_next"`
}

// NewResult creates a paginated result.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Skip:       params.Skip,
		Limit:      params.Limit,
		HasNext:    params.Skip+len(data) < totalCount,
	}
}
