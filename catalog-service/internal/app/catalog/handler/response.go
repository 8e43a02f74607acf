package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"hearwell/catalog-service/internal/app/catalog/entity"
	"hearwell/catalog-service/internal/app/catalog/service"
	"hearwell/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError отправляет ответ об ошибке
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// handleServiceError сопоставляет вид ошибки сервиса со статусом HTTP.
// Неожиданные ошибки логируются и отдаются клиенту без деталей.
func handleServiceError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, service.Message(err))
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, service.Message(err))
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, service.Message(err))
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, service.Message(err))
	default:
		logger.Error().
			Err(err).
			Str("operation", operation).
			Str("path", c.Request.URL.Path).
			Str("id", c.Param("id")).
			Str("request_id", c.GetString(logger.RequestIDKey)).
			Msg("Catalog operation failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// parseID разбирает :id из пути. Отрицательные и нечисловые id отклоняются.
func parseID(c *gin.Context, entityName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+entityName+" ID")
		return 0, false
	}
	return id, true
}

// decodeJSON читает тело запроса и отклоняет неизвестные поля
func decodeJSON(r io.Reader, dst interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if decoder.More() {
		return errors.New("invalid request body: unexpected data after JSON object")
	}
	return nil
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
