// Package handler exposes the authentication endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"formbridge/internal/auth/models"
	"formbridge/internal/platform/middleware"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/httputil"
)

// Service defines the auth operations the handler needs.
type Service interface {
	AuthURL(ctx context.Context) (authURL, state string, err error)
	LoginWithCode(ctx context.Context, code string) (string, *models.User, error)
	LoginWithPersonalToken(ctx context.Context, personalToken string) (string, *models.User, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// Handler handles authentication endpoints.
type Handler struct {
	auth         Service
	logger       *slog.Logger
	frontendURL  string
	jwtValidator middleware.JWTValidator
}

func New(auth Service, frontendURL string, jwtValidator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		auth:         auth,
		logger:       logger,
		frontendURL:  frontendURL,
		jwtValidator: jwtValidator,
	}
}

// Register registers the auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth-url", h.handleAuthURL)
	r.Get("/callback", h.handleCallback)
	r.Post("/login-pat", h.handleLoginPAT)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/me", h.handleMe)
	})
}

func (h *Handler) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authURL, state, err := h.auth.AuthURL(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build auth URL", "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"url":   authURL,
		"state": state,
	})
}

// handleCallback finishes the OAuth flow and redirects the browser back to
// the frontend, with the session token on success or an error marker on
// failure. The provider calls this endpoint, so errors surface as redirects
// rather than JSON.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.logger.WarnContext(ctx, "oauth consent denied", "error", errCode)
		h.redirectWithError(w, r, "access_denied")
		return
	}

	code := r.URL.Query().Get("code")
	token, _, err := h.auth.LoginWithCode(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "oauth callback login failed", "error", err)
		h.redirectWithError(w, r, "login_failed")
		return
	}

	dest := h.frontendURL + "/auth-success?token=" + url.QueryEscape(token)
	http.Redirect(w, r, dest, http.StatusFound)
}

func (h *Handler) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	dest := h.frontendURL + "/login?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, dest, http.StatusFound)
}

type loginPATRequest struct {
	PersonalAccessToken string `json:"personalAccessToken"`
}

func (h *Handler) handleLoginPAT(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginPATRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	token, user, err := h.auth.LoginWithPersonalToken(ctx, req.PersonalAccessToken)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "personal token login failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	user, err := h.auth.CurrentUser(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
