// Package handler exposes the form authoring and schema discovery endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/airtable"
	"formbridge/internal/form/models"
	"formbridge/internal/form/service"
	"formbridge/internal/platform/middleware"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/httputil"
)

// Service defines the form operations the handler needs.
type Service interface {
	Create(ctx context.Context, ownerID string, input service.CreateFormInput) (*models.Form, error)
	List(ctx context.Context, ownerID string) ([]models.Form, error)
	Get(ctx context.Context, formID string) (*models.Form, error)
	Delete(ctx context.Context, ownerID, formID string) error
	Bases(ctx context.Context, userID string) ([]airtable.Base, error)
	Tables(ctx context.Context, userID, baseID string) ([]airtable.Table, error)
	Fields(ctx context.Context, userID, baseID, tableID string) ([]airtable.DiscoveredField, error)
}

// Handler handles form endpoints.
type Handler struct {
	forms        Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(forms Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{forms: forms, logger: logger, jwtValidator: jwtValidator}
}

// Register registers the form routes. Fetching a form by ID is public so
// respondents can render it; everything else requires a session.
func (h *Handler) Register(r chi.Router) {
	r.Get("/{formID}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/bases", h.handleBases)
		r.Get("/bases/{baseID}/tables", h.handleTables)
		r.Get("/bases/{baseID}/tables/{tableID}/fields", h.handleFields)
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Delete("/{formID}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var input service.CreateFormInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	form, err := h.forms.Create(ctx, userID, input)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to create form", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, form)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	forms, err := h.forms.List(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list forms", "error", err)
		httputil.WriteError(w, err)
		return
	}
	if forms == nil {
		forms = []models.Form{}
	}

	httputil.WriteJSON(w, http.StatusOK, forms)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	form, err := h.forms.Get(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, form)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.forms.Delete(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "formID"))
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "failed to delete form", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bases, err := h.forms.Bases(ctx, middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"bases": bases})
}

func (h *Handler) handleTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tables, err := h.forms.Tables(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "baseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (h *Handler) handleFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	fields, err := h.forms.Fields(ctx, middleware.GetUserID(ctx),
		chi.URLParam(r, "baseID"), chi.URLParam(r, "tableID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"fields": fields})
}
