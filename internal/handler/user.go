package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/config"
	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/repository"
)

// UserHandler serves the /v1/users account-management endpoints. Listing and
// deletion run through their own scope operations, which deliberately treat
// an omitted customer owner selection differently from the entity endpoints.
type UserHandler struct {
	Cfg      config.Config
	Scopes   *auth.ScopeBuilder
	Users    *repository.UserRepo
	Sessions *auth.SessionManager
}

func NewUserHandler(cfg config.Config, scopes *auth.ScopeBuilder, users *repository.UserRepo, sessions *auth.SessionManager) *UserHandler {
	return &UserHandler{Cfg: cfg, Scopes: scopes, Users: users, Sessions: sessions}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Create handles POST /v1/users. Administrators may create customer owners
// (no scope) or staff beneath a selected owner; customer owners may create
// staff beneath themselves.
func (h *UserHandler) Create(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and a password of at least 8 characters are required"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	var customerOwnerID *uint64
	switch role {
	case model.RoleCustomerOwner:
		if ident.Role != model.RoleAdministrator {
			return scopeError(c, &auth.NotAuthorizedError{Role: ident.Role})
		}
	case model.RoleTechnician, model.RoleFinance:
		scope, err := h.Scopes.EntityScope(ctx, ident, owner)
		if err != nil {
			return scopeError(c, err)
		}
		id := scope.OwnerID
		customerOwnerID = &id
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be CUSTOMER_OWNER, TECHNICIAN or FINANCE"})
	}

	uid, err := h.Users.Create(ctx, req.Email, req.Password, role, customerOwnerID, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}
	return c.JSON(http.StatusCreated, userPart{
		ID: uid, Email: req.Email, Role: role, CustomerOwnerID: customerOwnerID,
	})
}

// List handles GET /v1/users. For an administrator, omitting
// customer_owner_id lists the customer owners themselves; naming one lists
// the technician and finance staff beneath it.
func (h *UserHandler) List(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	filter, err := h.Scopes.UserListScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	users, err := h.Users.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{
			ID: u.ID, Email: u.Email, Role: u.Role, CustomerOwnerID: u.CustomerOwnerID,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /v1/users/:id. Deleting an account revokes every
// token it holds before the row is removed.
func (h *UserHandler) Delete(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	target, err := h.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load user"})
	}
	if err := h.Scopes.AuthorizeUserDelete(ctx, ident, owner, target); err != nil {
		return scopeError(c, err)
	}
	if err := h.Sessions.RevokeAll(ctx, target.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete user"})
	}
	if err := h.Users.Delete(ctx, target.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}
