package http

import (
	"log/slog"
	"time"

	authhttp "product-catalog/internal/auth/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags the request with the caller's X-Request-ID,
// minting one when absent, and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the id RequestIDMiddleware assigned to this request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDHeader)
}

// AccessLogMiddleware logs one line per request. Matched requests carry
// the route template rather than the raw path so /api/products/:id
// aggregates as one route in log queries; authenticated requests carry
// the user the bearer gate resolved.
func AccessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", RequestID(c),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := authhttp.ClaimsFrom(c); ok {
			attrs = append(attrs, "user_id", claims.UserID, "role", claims.Role)
		}
		logger.Info("http request", attrs...)
	}
}
