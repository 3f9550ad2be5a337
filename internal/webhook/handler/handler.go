// Package handler receives provider change notifications.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/webhook/service"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/httputil"
)

// Service defines the webhook processing the handler needs.
type Service interface {
	Process(ctx context.Context, n service.Notification) int
}

// Handler handles the provider webhook endpoint.
type Handler struct {
	webhooks Service
	logger   *slog.Logger
}

func New(webhooks Service, logger *slog.Logger) *Handler {
	return &Handler{webhooks: webhooks, logger: logger}
}

// Register registers the webhook route. The provider authenticates with its
// own retry semantics, not a user session, so the route is unauthenticated.
func (h *Handler) Register(r chi.Router) {
	r.Post("/airtable", h.handleNotification)
}

// handleNotification acknowledges everything it can parse. Ping payloads
// (no table changes) return processed: 0. A malformed body is the only 4xx:
// the provider should not retry garbage.
func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var n service.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		h.logger.WarnContext(ctx, "undecodable webhook payload", "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid notification payload"))
		return
	}

	processed := h.webhooks.Process(ctx, n)
	h.logger.InfoContext(ctx, "webhook notification handled", "processed", processed)

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"processed": processed})
}
