// Package service implements owner authentication against the tabular data
// provider: OAuth code exchange, personal-token login, and session JWTs.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"formbridge/internal/airtable"
	"formbridge/internal/auth/models"
	"formbridge/internal/auth/secrets"
	"formbridge/internal/jwttoken"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/platform/sentinel"
	"formbridge/pkg/requestcontext"
)

// UserStore persists users.
type UserStore interface {
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByAirtableUserID(ctx context.Context, providerID string) (*models.User, error)
}

// CodeExchanger performs the provider OAuth flow.
type CodeExchanger interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*airtable.TokenResponse, error)
}

// IdentityClient resolves the identity behind a provider token.
type IdentityClient interface {
	WhoAmI(ctx context.Context, token string) (*airtable.UserInfo, error)
}

// Service orchestrates owner login and provider-token custody.
type Service struct {
	users    UserStore
	oauth    CodeExchanger
	identity IdentityClient
	jwt      *jwttoken.Service
	sealer   *secrets.Sealer
	logger   *slog.Logger
}

func New(users UserStore, oauth CodeExchanger, identity IdentityClient,
	jwt *jwttoken.Service, sealer *secrets.Sealer, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if identity == nil {
		return nil, errors.New("identity client is required")
	}
	if jwt == nil {
		return nil, errors.New("jwt service is required")
	}
	if sealer == nil {
		return nil, errors.New("token sealer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		oauth:    oauth,
		identity: identity,
		jwt:      jwt,
		sealer:   sealer,
		logger:   logger,
	}, nil
}

// AuthURL builds the provider consent URL with a fresh state nonce.
func (s *Service) AuthURL(_ context.Context) (authURL, state string, err error) {
	if s.oauth == nil {
		return "", "", dErrors.New(dErrors.CodeUnavailable, "OAuth is not configured")
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	state = base64.RawURLEncoding.EncodeToString(buf)
	return s.oauth.AuthorizationURL(state), state, nil
}

// LoginWithCode completes the OAuth flow: exchanges the code, resolves the
// provider identity, upserts the user with sealed tokens, and mints a
// session JWT.
func (s *Service) LoginWithCode(ctx context.Context, code string) (string, *models.User, error) {
	if code == "" {
		return "", nil, dErrors.New(dErrors.CodeBadRequest, "authorization code is required")
	}
	if s.oauth == nil {
		return "", nil, dErrors.New(dErrors.CodeUnavailable, "OAuth is not configured")
	}

	tokens, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.WarnContext(ctx, "oauth code exchange failed", "error", err)
		return "", nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "authorization code exchange failed")
	}

	info, err := s.identity.WhoAmI(ctx, tokens.AccessToken)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "could not resolve provider identity")
	}

	expiresAt := requestcontext.Now(ctx).Add(time.Duration(tokens.ExpiresIn) * time.Second)
	user, err := s.upsertUser(ctx, info, tokens.AccessToken, tokens.RefreshToken, expiresAt)
	if err != nil {
		return "", nil, err
	}

	return s.mintSession(user)
}

// LoginWithPersonalToken validates a personal access token against the
// provider and logs the owner in with it. The token serves as both access
// and refresh credential, matching provider PAT semantics.
func (s *Service) LoginWithPersonalToken(ctx context.Context, personalToken string) (string, *models.User, error) {
	if personalToken == "" {
		return "", nil, dErrors.New(dErrors.CodeBadRequest, "personal access token required")
	}

	info, err := s.identity.WhoAmI(ctx, personalToken)
	if err != nil {
		s.logger.WarnContext(ctx, "personal token validation failed", "error", err)
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid personal access token")
	}

	user, err := s.upsertUser(ctx, info, personalToken, personalToken, time.Time{})
	if err != nil {
		return "", nil, err
	}

	return s.mintSession(user)
}

// CurrentUser loads the authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "not authenticated")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

// AccessToken unseals the provider access token for a user. Services call
// this immediately before a provider request; the plaintext token is never
// stored.
func (s *Service) AccessToken(ctx context.Context, userID string) (string, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return "", err
	}
	token, err := s.sealer.Open(user.SealedAccess)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to unseal provider token")
	}
	return token, nil
}

func (s *Service) upsertUser(ctx context.Context, info *airtable.UserInfo,
	accessToken, refreshToken string, expiresAt time.Time) (*models.User, error) {
	sealedAccess, err := s.sealer.Seal(accessToken)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal provider token")
	}
	sealedRefresh, err := s.sealer.Seal(refreshToken)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal provider token")
	}

	now := requestcontext.Now(ctx)
	user, err := s.users.FindByAirtableUserID(ctx, info.ID)
	switch {
	case err == nil:
		user.Email = info.Email
		user.SealedAccess = sealedAccess
		user.SealedRefresh = sealedRefresh
		user.TokenExpiresAt = expiresAt
		user.LoginAt = now
		user.UpdatedAt = now
	case errors.Is(err, sentinel.ErrNotFound):
		user = &models.User{
			ID:             uuid.NewString(),
			AirtableUserID: info.ID,
			Email:          info.Email,
			SealedAccess:   sealedAccess,
			SealedRefresh:  sealedRefresh,
			TokenExpiresAt: expiresAt,
			LoginAt:        now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save user")
	}
	return user, nil
}

func (s *Service) mintSession(user *models.User) (string, *models.User, error) {
	token, err := s.jwt.GenerateSessionToken(user.ID, user.AirtableUserID, jwttoken.SessionTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint session token")
	}
	return token, user, nil
}
