package auth

import "github.com/labstack/echo/v4"

// Identity is the authenticated caller of the current request, derived once
// from a validated token and passed explicitly to everything that needs it.
// It is never persisted and never shared across requests.
type Identity struct {
	UserID uint64
	Email  string
	Role   string
}

const identityContextKey = "auth_identity"

// SetIdentity stores the identity in the Echo context. Called exactly once
// per request by the auth middleware after validation succeeds.
func SetIdentity(c echo.Context, ident Identity) {
	c.Set(identityContextKey, ident)
}

// IdentityFromContext returns the identity placed by the auth middleware.
// The second return is false when the request is unauthenticated.
func IdentityFromContext(c echo.Context) (Identity, bool) {
	v, ok := c.Get(identityContextKey).(Identity)
	if !ok || v.UserID == 0 {
		return Identity{}, false
	}
	return v, true
}
