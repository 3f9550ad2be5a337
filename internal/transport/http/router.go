// Package httptransport assembles the HTTP surface: middleware chain,
// per-module route registration, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authHandler "formbridge/internal/auth/handler"
	formHandler "formbridge/internal/form/handler"
	"formbridge/internal/platform/metrics"
	"formbridge/internal/platform/middleware"
	responseHandler "formbridge/internal/response/handler"
	webhookHandler "formbridge/internal/webhook/handler"
)

// Handlers collects the per-module handlers the router mounts.
type Handlers struct {
	Auth      *authHandler.Handler
	Forms     *formHandler.Handler
	Responses *responseHandler.Handler
	Webhooks  *webhookHandler.Handler
}

// NewRouter wires the full route table.
func NewRouter(h Handlers, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Metadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Route("/auth", h.Auth.Register)
		r.Route("/forms", h.Forms.Register)
		r.Route("/responses", h.Responses.Register)
		r.Route("/webhooks", h.Webhooks.Register)
	})

	return r
}
