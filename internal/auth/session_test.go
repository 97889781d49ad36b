package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "1h")
	require.NoError(t, Init())
	assert.Equal(t, time.Hour, TokenExpiry)

	playerID := uuid.New()
	token, err := CreateJWT(playerID)
	require.NoError(t, err)

	got, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, got)
}

func TestAuthenticateJWTRejects(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "never")
	require.NoError(t, Init())

	_, err := AuthenticateJWT("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// HMAC signed tokens are refused.
	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": uuid.New().String()})
	signed, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = AuthenticateJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Tokens of a previous key pair are refused.
	old, err := CreateJWT(uuid.New())
	require.NoError(t, err)
	require.NoError(t, Init())
	_, err = AuthenticateJWT(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	malformed := jwt.NewWithClaims(jwt.SigningMethodEdDSA, jwt.MapClaims{"sub": "not-a-uuid"})
	signed, err = malformed.SignedString(privateKey)
	require.NoError(t, err)
	_, err = AuthenticateJWT(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestInitRejectsBadExpiry(t *testing.T) {
	t.Setenv("TOKEN_EXPIRE_TIME", "soon")
	assert.Error(t, Init())
}
