// Package httptransport is the thin HTTP layer. Handlers delegate to the
// identity service and the session codec; access control happens in the
// gate middleware before any handler runs.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sahay/internal/gate"
	"sahay/internal/platform/middleware"
)

// Registrar is anything that can attach routes to the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter assembles the middleware chain and mounts all handlers. The
// gate sits after logging so denied requests still produce access logs.
func NewRouter(logger *slog.Logger, g *gate.Gate, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(g.Middleware)

	r.Get("/", handleRoot)
	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true}`))
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
