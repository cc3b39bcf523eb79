// Package httpapi assembles the service's HTTP surface: the shared middleware
// chain, the country endpoints, and the Prometheus exposition endpoint.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"atlas/internal/country/handler"
	"atlas/internal/platform/metrics"
	"atlas/internal/platform/middleware"
)

// requestTimeout caps a whole request. Refresh carries two 30s external
// fetches, so this must comfortably exceed the fetch timeout.
const requestTimeout = 90 * time.Second

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(h *handler.Handler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(m))

	h.Register(r)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
