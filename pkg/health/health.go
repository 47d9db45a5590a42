// Package health exposes liveness and readiness endpoints. Liveness only
// proves the process is serving. Readiness runs every registered dependency
// check: a failing critical check makes the probe fail, a failing
// non-critical one only degrades it.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// checkTimeout bounds the whole readiness probe, not each check.
const checkTimeout = 5 * time.Second

// Checker reports whether one dependency is reachable.
type Checker func(ctx context.Context) error

// Status is the reported state of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the JSON body of both health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency check.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type check struct {
	run      Checker
	critical bool
}

// Handler serves the health endpoints over a set of registered checkers.
type Handler struct {
	mu     sync.RWMutex
	checks map[string]check
}

// NewHandler creates a health handler with no registered checks.
func NewHandler() *Handler {
	return &Handler{checks: make(map[string]check)}
}

// Register adds a critical dependency check. Registering the same name
// again replaces the previous checker.
func (h *Handler) Register(name string, checker Checker) {
	h.RegisterCritical(name, checker)
}

// RegisterCritical adds a check whose failure makes the service not ready.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.add(name, check{run: checker, critical: true})
}

// RegisterNonCritical adds a check whose failure only degrades readiness.
// The probe still returns 200 so orchestrators keep routing traffic.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.add(name, check{run: checker, critical: false})
}

func (h *Handler) add(name string, c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = c
}

// LivenessHandler always reports up while the process can serve requests.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs all registered checks concurrently. Any critical
// failure yields 503/down; only non-critical failures yield 200/degraded.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		checks := make(map[string]check, len(h.checks))
		for name, c := range h.checks {
			checks[name] = c
		}
		h.mu.RUnlock()

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			results = make(map[string]CheckResult, len(checks))
			overall = StatusUp
		)

		for name, c := range checks {
			wg.Add(1)
			go func(name string, c check) {
				defer wg.Done()
				result := CheckResult{Status: StatusUp, Critical: c.critical}
				if err := c.run(ctx); err != nil {
					result.Status = StatusDown
					result.Error = err.Error()
				}
				mu.Lock()
				results[name] = result
				if result.Status == StatusDown {
					if c.critical {
						overall = StatusDown
					} else if overall == StatusUp {
						overall = StatusDegraded
					}
				}
				mu.Unlock()
			}(name, c)
		}
		wg.Wait()

		status := http.StatusOK
		if overall == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeResponse(w, status, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    results,
		})
	}
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}
