package handler

import (
	"net/http"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler выдает сессии администратора
type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := decodeJSON(c.Request.Body, &req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	session, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, entity.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}
