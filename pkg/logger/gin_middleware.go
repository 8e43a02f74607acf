package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"

	// UserKey - ключ gin.Context, под которым аутентификация кладет имя пользователя
	UserKey = "admin_username"

	maxRequestIDLength = 64
)

// health check балансировщика и сбор prometheus пишутся только на debug уровне
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		requestID := requestIDFrom(c.GetHeader(RequestIDHeader))
		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)

		c.Next()

		status := c.Writer.Status()

		event := Info()
		switch {
		case status >= 500:
			event = Error()
		case status >= 400:
			event = Warn()
		default:
			if _, ok := quietPaths[path]; ok {
				event = Debug()
			}
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Str("query", query).
			Str("remote_addr", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Dur("duration", time.Since(start))

		if user := c.GetString(UserKey); user != "" {
			event.Str("admin", user)
		}
		if len(c.Errors) > 0 {
			event.Str("error", c.Errors.String())
		}

		event.Msg("HTTP request")
	}
}

// requestIDFrom берет id из заголовка прокси или выдает новый
func requestIDFrom(header string) string {
	if header == "" || len(header) > maxRequestIDLength {
		return uuid.NewString()
	}
	return header
}
