// Package handler exposes the submission and response-read endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/form/logic"
	formModels "formbridge/internal/form/models"
	"formbridge/internal/platform/middleware"
	"formbridge/internal/response/models"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/httputil"
)

// Service defines the response operations the handler needs.
type Service interface {
	Submit(ctx context.Context, formID string, answers formModels.AnswerSet) (*models.Response, []logic.FieldError, error)
	ListByForm(ctx context.Context, ownerID, formID string) ([]models.Response, error)
	Get(ctx context.Context, ownerID, responseID string) (*models.Response, error)
}

// Handler handles response endpoints.
type Handler struct {
	responses    Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(responses Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{responses: responses, logger: logger, jwtValidator: jwtValidator}
}

// Register registers the response routes. Submission is public; reads are
// owner-only.
func (h *Handler) Register(r chi.Router) {
	r.Post("/{formID}", h.handleSubmit)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/{formID}", h.handleList)
		r.Get("/detail/{responseID}", h.handleGet)
	})
}

type submitRequest struct {
	Answers formModels.AnswerSet `json:"answers"`
}

// validationResponse carries field errors back to the submitter unchanged.
type validationResponse struct {
	Errors []logic.FieldError `json:"errors"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	formID := chi.URLParam(r, "formID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Answers == nil {
		req.Answers = formModels.AnswerSet{}
	}

	resp, fieldErrs, err := h.responses.Submit(ctx, formID, req.Answers)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "submission failed", "form_id", formID, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	if len(fieldErrs) > 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, validationResponse{Errors: fieldErrs})
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":               resp.ID,
		"airtableRecordId": resp.AirtableRecordID,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	responses, err := h.responses.ListByForm(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "formID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if responses == nil {
		responses = []models.Response{}
	}

	httputil.WriteJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.responses.Get(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "responseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
