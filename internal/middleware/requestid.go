package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates an incoming X-Request-Id header or generates a fresh
// UUID per request, echoing it back on the response so log lines and client
// reports can be correlated.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(requestIDHeader, id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}

// GetRequestID returns the request id placed by RequestID, or "".
func GetRequestID(c echo.Context) string {
	if s, ok := c.Get("request_id").(string); ok {
		return s
	}
	return ""
}
