package handler

import (
	"net/http"
	"strings"

	"hearwell/catalog-service/internal/app/catalog/service"
	"hearwell/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AdminUsernameKey - ключ gin.Context с именем администратора из сессии
const AdminUsernameKey = logger.UserKey

type AuthMiddleware struct {
	authService service.AuthServiceInterface
}

func NewAuthMiddleware(authService service.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate требует заголовок Authorization: Bearer <token>
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			respondError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		username, err := m.authService.ValidateSession(parts[1])
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(AdminUsernameKey, username)
		c.Next()
	}
}
