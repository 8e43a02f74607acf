package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// SessionClaims - claims сессии администратора
type SessionClaims struct {
	jwt.RegisteredClaims
}

// JWTManager выпускает и проверяет токены сессий админки (HS256)
type JWTManager struct {
	secretKey       string
	sessionDuration time.Duration
}

func NewJWTManager(secretKey string, sessionDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       secretKey,
		sessionDuration: sessionDuration,
	}
}

// GenerateSessionToken выпускает токен с subject = username и уникальным jti
func (m *JWTManager) GenerateSessionToken(username string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(m.sessionDuration)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *JWTManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secretKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *JWTManager) SessionDuration() time.Duration {
	return m.sessionDuration
}
