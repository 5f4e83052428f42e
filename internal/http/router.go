// Package httpapi assembles the HTTP router: the shared middleware chain,
// the authenticated route group for mutations, and the public group for
// reads and operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"canopy/internal/ledger"
	"canopy/internal/platform/metrics"
	"canopy/internal/platform/middleware"
)

// Registrar is implemented by each domain handler; mutating routes go on the
// authed router, snapshot reads on the public one.
type Registrar interface {
	Register(authed, public chi.Router)
}

// Deps carries everything the router needs besides the handlers.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Sequencer *ledger.Sequencer
	Validator middleware.JWTValidator

	// Health reports readiness of the backing stores; nil means always ready.
	Health func() error
}

// New builds the full router. Handler order does not matter; route sets are
// disjoint.
func New(deps Deps, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", healthz(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Both groups share the route tree; the authed one adds credentials and
	// the ledger-height stamp in front of every mutation.
	authed := r.With(
		middleware.RequireAuth(deps.Validator, deps.Logger),
		middleware.Height(deps.Sequencer),
	)
	for _, h := range handlers {
		h.Register(authed, r)
	}
	return r
}

func healthz(health func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
