package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"formbridge/internal/airtable"
	"formbridge/internal/auth/secrets"
	"formbridge/internal/auth/service/mocks"
	"formbridge/internal/auth/store"
	"formbridge/internal/jwttoken"
	dErrors "formbridge/pkg/domain-errors"
)

type AuthServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	oauth    *mocks.MockCodeExchanger
	identity *mocks.MockIdentityClient
	users    *store.InMemory
	sealer   *secrets.Sealer
	jwt      *jwttoken.Service
	svc      *Service
	ctx      context.Context
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.oauth = mocks.NewMockCodeExchanger(s.ctrl)
	s.identity = mocks.NewMockIdentityClient(s.ctrl)
	s.users = store.NewInMemory()
	s.jwt = jwttoken.NewService("test-signing-key", "formbridge", "formbridge-api")

	var err error
	s.sealer, err = secrets.NewSealer("test-seal-key")
	s.Require().NoError(err)

	s.svc, err = New(s.users, s.oauth, s.identity, s.jwt, s.sealer, nil)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *AuthServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthServiceSuite) TestAuthURL() {
	s.Run("returns consent URL with fresh state", func() {
		s.oauth.EXPECT().AuthorizationURL(gomock.Any()).
			DoAndReturn(func(state string) string { return "https://provider/authorize?state=" + state })

		url, state, err := s.svc.AuthURL(s.ctx)
		s.Require().NoError(err)
		s.NotEmpty(state)
		s.Contains(url, state)
	})

	s.Run("fails when oauth is not configured", func() {
		svc, err := New(s.users, nil, s.identity, s.jwt, s.sealer, nil)
		s.Require().NoError(err)

		_, _, err = svc.AuthURL(s.ctx)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *AuthServiceSuite) TestLoginWithCode() {
	s.Run("creates user with sealed tokens and mints a session", func() {
		s.oauth.EXPECT().ExchangeCode(gomock.Any(), "code123").
			Return(&airtable.TokenResponse{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 3600}, nil)
		s.identity.EXPECT().WhoAmI(gomock.Any(), "acc").
			Return(&airtable.UserInfo{ID: "usrX", Email: "x@example.com"}, nil)

		token, user, err := s.svc.LoginWithCode(s.ctx, "code123")
		s.Require().NoError(err)
		s.NotEmpty(token)
		s.Equal("usrX", user.AirtableUserID)
		s.Equal("x@example.com", user.Email)

		claims, err := s.jwt.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(user.ID, claims.UserID)

		s.NotEqual("acc", user.SealedAccess)
		access, err := s.sealer.Open(user.SealedAccess)
		s.Require().NoError(err)
		s.Equal("acc", access)
	})

	s.Run("reuses the existing user on a second login", func() {
		s.oauth.EXPECT().ExchangeCode(gomock.Any(), gomock.Any()).
			Return(&airtable.TokenResponse{AccessToken: "acc", RefreshToken: "ref", ExpiresIn: 3600}, nil).Times(2)
		s.identity.EXPECT().WhoAmI(gomock.Any(), "acc").
			Return(&airtable.UserInfo{ID: "usrY", Email: "y@example.com"}, nil).Times(2)

		_, first, err := s.svc.LoginWithCode(s.ctx, "code1")
		s.Require().NoError(err)
		_, second, err := s.svc.LoginWithCode(s.ctx, "code2")
		s.Require().NoError(err)

		s.Equal(first.ID, second.ID)
	})

	s.Run("maps a failed exchange to unauthorized", func() {
		s.oauth.EXPECT().ExchangeCode(gomock.Any(), "bad").
			Return(nil, errors.New("invalid_grant"))

		_, _, err := s.svc.LoginWithCode(s.ctx, "bad")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects an empty code", func() {
		_, _, err := s.svc.LoginWithCode(s.ctx, "")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *AuthServiceSuite) TestLoginWithPersonalToken() {
	s.Run("logs in with a valid token", func() {
		s.identity.EXPECT().WhoAmI(gomock.Any(), "patABC").
			Return(&airtable.UserInfo{ID: "usrZ"}, nil)

		token, user, err := s.svc.LoginWithPersonalToken(s.ctx, "patABC")
		s.Require().NoError(err)
		s.NotEmpty(token)

		access, err := s.svc.AccessToken(s.ctx, user.ID)
		s.Require().NoError(err)
		s.Equal("patABC", access)
	})

	s.Run("maps an invalid token to unauthorized", func() {
		s.identity.EXPECT().WhoAmI(gomock.Any(), "nope").
			Return(nil, errors.New("401"))

		_, _, err := s.svc.LoginWithPersonalToken(s.ctx, "nope")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects an empty token", func() {
		_, _, err := s.svc.LoginWithPersonalToken(s.ctx, "")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *AuthServiceSuite) TestCurrentUser() {
	s.Run("returns not found for unknown IDs", func() {
		_, err := s.svc.CurrentUser(s.ctx, "missing")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("returns unauthorized for an empty ID", func() {
		_, err := s.svc.CurrentUser(s.ctx, "")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
