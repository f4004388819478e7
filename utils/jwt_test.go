package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManagerRoundTrip(t *testing.T) {
	m, err := NewTokenManager("test-secret-test-secret-test-secret", "oneclick-auth")
	require.NoError(t, err)

	token, err := m.GenerateToken("user-1", "agent@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "agent@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestTokenManagerRejects(t *testing.T) {
	m, err := NewTokenManager("test-secret-test-secret-test-secret", "oneclick-auth")
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key interface{}, claims Claims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("another-secret-another-secret-xx", "oneclick-auth")
		require.NoError(t, err)
		token, err := other.GenerateToken("user-1", "a@example.com", RoleUser)
		require.NoError(t, err)
		_, err = m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte("test-secret-test-secret-test-secret"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		_, err := m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte("test-secret-test-secret-test-secret"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		})
		_, err := m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte("test-secret-test-secret-test-secret"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "oneclick-auth", ExpiresAt: future},
		})
		_, err := m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS512, []byte("test-secret-test-secret-test-secret"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "oneclick-auth", Subject: "user-1", ExpiresAt: future},
		})
		_, err := m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("other issuer", func(t *testing.T) {
		other, err := NewTokenManager("test-secret-test-secret-test-secret", "someone-else")
		require.NoError(t, err)
		token, err := other.GenerateToken("user-1", "a@example.com", RoleUser)
		require.NoError(t, err)
		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})

	t.Run("missing issuer", func(t *testing.T) {
		token := sign(jwt.SigningMethodHS256, []byte("test-secret-test-secret-test-secret"), Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: future},
		})
		_, err := m.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", "oneclick-auth")
	assert.Error(t, err)
}
