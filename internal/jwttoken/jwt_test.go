package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "formbridge/pkg/domain-errors"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", "formbridge", "formbridge-api")

	token, err := svc.GenerateSessionToken("user-1", "usrABC", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "usrABC", claims.AirtableUserID)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService("test-signing-key", "formbridge", "formbridge-api")

	token, err := svc.GenerateSessionToken("user-1", "usrABC", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestTokenSignedWithDifferentKeyRejected(t *testing.T) {
	minter := NewService("key-one", "formbridge", "formbridge-api")
	verifier := NewService("key-two", "formbridge", "formbridge-api")

	token, err := minter.GenerateSessionToken("user-1", "usrABC", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenForAnotherServiceRejected(t *testing.T) {
	verifier := NewService("shared-key", "formbridge", "formbridge-api")

	t.Run("wrong issuer", func(t *testing.T) {
		minter := NewService("shared-key", "other-service", "formbridge-api")
		token, err := minter.GenerateSessionToken("user-1", "usrABC", time.Hour)
		require.NoError(t, err)

		_, err = verifier.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong audience", func(t *testing.T) {
		minter := NewService("shared-key", "formbridge", "other-api")
		token, err := minter.GenerateSessionToken("user-1", "usrABC", time.Hour)
		require.NoError(t, err)

		_, err = verifier.ValidateToken(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewService("test-signing-key", "formbridge", "formbridge-api")
	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
