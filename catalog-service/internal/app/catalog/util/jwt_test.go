package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateSessionToken_Success(t *testing.T) {
	// Arrange
	jwtManager := NewJWTManager("test-secret-key", 12*time.Hour)
	now := time.Now()

	// Act
	token, expiresAt, err := jwtManager.GenerateSessionToken("admin", now)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, now.Add(12*time.Hour), expiresAt, time.Second)

	claims, err := jwtManager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManager_GenerateSessionToken_UniqueIDs(t *testing.T) {
	jwtManager := NewJWTManager("test-secret-key", time.Hour)
	now := time.Now()

	token1, _, err1 := jwtManager.GenerateSessionToken("admin", now)
	token2, _, err2 := jwtManager.GenerateSessionToken("admin", now)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, token1, token2) // jti разный даже в одну секунду
}

func TestJWTManager_ValidateToken_Expired(t *testing.T) {
	// Arrange
	jwtManager := NewJWTManager("test-secret-key", time.Minute)
	token, _, err := jwtManager.GenerateSessionToken("admin", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	// Act
	claims, err := jwtManager.ValidateToken(token)

	// Assert
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_ValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-1", time.Hour)
	validator := NewJWTManager("secret-2", time.Hour)

	token, _, err := issuer.GenerateSessionToken("admin", time.Now())
	require.NoError(t, err)

	claims, err := validator.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_ValidateToken_Malformed(t *testing.T) {
	jwtManager := NewJWTManager("test-secret-key", time.Hour)

	for _, token := range []string{"", "not.a.token", "abc"} {
		claims, err := jwtManager.ValidateToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestJWTManager_ValidateToken_WrongAlgorithm(t *testing.T) {
	jwtManager := NewJWTManager("test-secret-key", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := jwtManager.ValidateToken(token)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
