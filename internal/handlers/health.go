package handlers

import (
	"context"
	"net/http"
	"time"

	domain "github.com/maplecart/api/internal/domain"
)

// ReadinessProbe checks a downstream dependency. A nil error means ready.
type ReadinessProbe func(ctx context.Context) error

// HealthHandlers serves liveness and readiness endpoints.
type HealthHandlers struct {
	startedAt time.Time
	clock     func() time.Time
	probes    map[string]ReadinessProbe
}

// HealthOption customises HealthHandlers construction.
type HealthOption func(*HealthHandlers)

// WithHealthClock injects a custom clock (useful for tests).
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithHealthStartedAt overrides the process start time used for uptime reporting.
func WithHealthStartedAt(at time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if !at.IsZero() {
			h.startedAt = at
		}
	}
}

// WithReadinessProbe registers a named dependency check for /readyz.
func WithReadinessProbe(name string, probe ReadinessProbe) HealthOption {
	return func(h *HealthHandlers) {
		if name != "" && probe != nil {
			h.probes[name] = probe
		}
	}
}

// NewHealthHandlers constructs health endpoints with the provided options.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{
		startedAt: time.Now().UTC(),
		clock:     time.Now,
		probes:    make(map[string]ReadinessProbe),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Healthz reports process liveness.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	now := h.clock().UTC()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    domain.HealthStatusOK,
		"uptime":    now.Sub(h.startedAt).String(),
		"timestamp": now.Format(time.RFC3339),
	})
}

// Readyz runs every registered dependency probe and degrades to 503 when any fails.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	now := h.clock().UTC()
	checks := make(map[string]string, len(h.probes))
	status := domain.HealthStatusOK
	httpStatus := http.StatusOK

	for name, probe := range h.probes {
		if err := probe(r.Context()); err != nil {
			checks[name] = domain.HealthStatusError
			status = domain.HealthStatusError
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = domain.HealthStatusOK
	}

	payload := map[string]any{
		"status":    status,
		"timestamp": now.Format(time.RFC3339),
	}
	if len(checks) > 0 {
		payload["checks"] = checks
	}
	writeJSON(w, httpStatus, payload)
}
