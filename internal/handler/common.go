// Package handler implements the HTTP endpoints of the marina backend.
// Handlers bind and validate input, resolve the caller's tenant scope
// through the auth package, and delegate persistence to the repositories.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
)

// dbTimeout bounds every handler-initiated database round trip.
const dbTimeout = 5 * time.Second

// ownerRefFromRequest reads the optional customer_owner_id query parameter
// into an explicit OwnerRef. An absent or empty parameter means the caller
// selected nothing; what that means is decided by the scope operation, not
// here.
func ownerRefFromRequest(c echo.Context) (auth.OwnerRef, error) {
	raw := c.QueryParam("customer_owner_id")
	if raw == "" {
		return auth.NoOwner(), nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return auth.OwnerRef{}, errors.New("customer_owner_id must be a positive integer")
	}
	return auth.Owner(id), nil
}

// identity returns the authenticated caller or writes 401. The bool result
// tells the handler whether to proceed.
func identity(c echo.Context) (auth.Identity, bool) {
	ident, ok := auth.IdentityFromContext(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return auth.Identity{}, false
	}
	return ident, true
}

// scopeError translates an authorization rejection into the HTTP response
// the boundary contract requires. Unknown errors surface as 500.
func scopeError(c echo.Context, err error) error {
	var (
		notAuthorized *auth.NotAuthorizedError
		scopeRequired *auth.ScopeRequiredError
		scopeMismatch *auth.ScopeMismatchError
		notOwner      *auth.NotCustomerOwnerError
		notFound      *auth.ResourceNotFoundError
	)
	switch {
	case errors.As(err, &notAuthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.As(err, &scopeRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &scopeMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.As(err, &notOwner):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authorization check failed"})
	}
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
