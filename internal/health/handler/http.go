// Package handler serves the liveness endpoint.
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"event-raffle/backend/internal/server/respond"
)

const checkTimeout = 2 * time.Second

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Handler serves GET /api/health.
type Handler struct {
	checks map[string]Check
	log    zerolog.Logger
}

// New returns a health Handler. checks may be empty; a nil Check is ignored.
func New(checks map[string]Check, log zerolog.Logger) *Handler {
	return &Handler{checks: checks, log: log}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ServeHTTP runs every check and answers 200 when all pass, 503 otherwise.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name, c := range h.checks {
		if c != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	resp := healthResponse{Status: "ok", Message: "Event raffle API is running"}
	status := http.StatusOK
	for _, name := range names {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(names))
		}
		if err := h.checks[name](ctx); err != nil {
			h.log.Warn().Err(err).Str("check", name).Msg("health check failed")
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	respond.JSON(w, status, resp)
}
