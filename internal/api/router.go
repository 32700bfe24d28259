package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// healthPath is excluded from request logging.
const healthPath = "/health"

// NewRouter assembles the service's HTTP surface. healthcheck probes the
// store on /health and may be nil for a liveness-only probe.
func NewRouter(h *Handler, log *slog.Logger, healthcheck func(ctx context.Context) error) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID())
	if log != nil {
		r.Use(RequestLogger(log, healthPath))
	}
	r.Use(chimiddleware.Recoverer)

	r.Get(healthPath, healthHandler(healthcheck))

	r.Route("/v1/moviesInfo", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/stream", h.stream)
		r.Get("/{id}", h.getByID)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
