package service

import (
	"context"
	"crypto/subtle"
	"time"

	"hearwell/catalog-service/internal/app/catalog/util"
	"hearwell/pkg/logger"
	"hearwell/pkg/metrics"
)

// Session - выданная сессия администратора
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// AuthService проверяет единственную пару логин/пароль админки
// и выдает подписанные токены сессий. Состояние входа не хранится в процессе.
type AuthService struct {
	username     string
	passwordHash string
	jwtManager   *util.JWTManager
	now          func() time.Time
}

func NewAuthService(username, passwordHash string, jwtManager *util.JWTManager) *AuthService {
	return &AuthService{
		username:     username,
		passwordHash: passwordHash,
		jwtManager:   jwtManager,
		now:          time.Now,
	}
}

// Authenticate возвращает сессию или ErrUnauthorized
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// пароль проверяется всегда, чтобы время ответа не зависело от логина
	passwordOK := util.CheckAdminPassword(password, s.passwordHash)

	if !usernameOK || !passwordOK {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		logger.Warn().Str("username", username).Msg("Admin login failed")
		return nil, &Error{Kind: ErrUnauthorized, Message: "invalid username or password"}
	}

	token, expiresAt, err := s.jwtManager.GenerateSessionToken(s.username, s.now())
	if err != nil {
		return nil, storageError("issue session", err)
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	logger.Info().Str("username", username).Msg("Admin logged in")
	return &Session{Token: token, Username: s.username, ExpiresAt: expiresAt}, nil
}

// ValidateSession возвращает имя администратора из токена
func (s *AuthService) ValidateSession(token string) (string, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return "", &Error{Kind: ErrUnauthorized, Message: "invalid or expired session", Cause: err}
	}
	if subtle.ConstantTimeCompare([]byte(claims.Subject), []byte(s.username)) != 1 {
		return "", &Error{Kind: ErrUnauthorized, Message: "invalid or expired session"}
	}
	return claims.Subject, nil
}
