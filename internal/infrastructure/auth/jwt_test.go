package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karobar/backend/internal/infrastructure/config"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars-long",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "karobar-backend",
	})
}

func TestJWTService(t *testing.T) {
	t.Run("round-trips org and user through a token", func(t *testing.T) {
		svc := newTestService()
		orgID := uuid.New()
		userID := uuid.New()

		token, expiresAt, err := svc.GenerateAccessToken(orgID, userID)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

		claims, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)

		gotOrg, err := claims.GetOrgUUID()
		require.NoError(t, err)
		gotUser, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, orgID, gotOrg)
		assert.Equal(t, userID, gotUser)
		assert.Equal(t, "karobar-backend", claims.Issuer)
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		svc := newTestService()
		token, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		svc := newTestService()
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-that-is-long-too!",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "karobar-backend",
		})

		token, _, err := other.GenerateAccessToken(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars-long",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "karobar-backend",
		})

		token, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
