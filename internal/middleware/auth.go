package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
)

// Authenticate returns an Echo middleware that validates a Bearer token
// through the session manager (signature, token store presence, stored
// expiry) and injects the resulting identity into the request context.
// A missing or malformed Authorization header lets the request through
// unauthenticated; protected routes then reject it via RequireRole or the
// handler's identity lookup.
func Authenticate(sessions *auth.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return next(c)
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			ident, err := sessions.Validate(c.Request().Context(), raw)
			if err != nil {
				if auth.AuthenticationFailed(err) {
					// EXPIRED and REVOKED surface identically.
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token validation failed"})
			}
			auth.SetIdentity(c, ident)
			return next(c)
		}
	}
}

// RequireAuth rejects requests that reached the handler without an
// authenticated identity.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := auth.IdentityFromContext(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			return next(c)
		}
	}
}
