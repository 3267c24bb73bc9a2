package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/repository"
)

// BoatYardHandler serves the /v1/boatyards endpoints.
type BoatYardHandler struct {
	Scopes *auth.ScopeBuilder
	Yards  *repository.BoatYardRepo
}

func NewBoatYardHandler(scopes *auth.ScopeBuilder, yards *repository.BoatYardRepo) *BoatYardHandler {
	return &BoatYardHandler{Scopes: scopes, Yards: yards}
}

type boatYardResp struct {
	ID              uint64 `json:"id"`
	CustomerOwnerID uint64 `json:"customer_owner_id"`
	Name            string `json:"name"`
	Address         string `json:"address"`
	Capacity        uint32 `json:"capacity"`
}

func toBoatYardResp(y model.BoatYard) boatYardResp {
	return boatYardResp{
		ID:              y.ID,
		CustomerOwnerID: y.CustomerOwnerID,
		Name:            y.Name,
		Address:         y.Address,
		Capacity:        y.Capacity,
	}
}

type boatYardReq struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity uint32 `json:"capacity"`
}

func (r *boatYardReq) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// Create handles POST /v1/boatyards.
func (h *BoatYardHandler) Create(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req boatYardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := req.normalize(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	y := &model.BoatYard{Name: req.Name, Address: req.Address, Capacity: req.Capacity}
	if err := h.Yards.Create(ctx, scope, y); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "boat yard name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create boat yard"})
	}
	return c.JSON(http.StatusCreated, toBoatYardResp(*y))
}

// List handles GET /v1/boatyards.
func (h *BoatYardHandler) List(c echo.Context) error {
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

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	yards, err := h.Yards.List(ctx, scope)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list boat yards"})
	}
	out := make([]boatYardResp, 0, len(yards))
	for _, y := range yards {
		out = append(out, toBoatYardResp(y))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/boatyards/:id.
func (h *BoatYardHandler) Get(c echo.Context) error {
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

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	y, err := h.Yards.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boat yard not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load boat yard"})
	}
	return c.JSON(http.StatusOK, toBoatYardResp(y))
}

// Update handles PUT /v1/boatyards/:id.
func (h *BoatYardHandler) Update(c echo.Context) error {
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
	var req boatYardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := req.normalize(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	y := &model.BoatYard{ID: id, Name: req.Name, Address: req.Address, Capacity: req.Capacity}
	if err := h.Yards.Update(ctx, scope, y); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boat yard not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update boat yard"})
	}
	y.CustomerOwnerID = scope.OwnerID
	return c.JSON(http.StatusOK, toBoatYardResp(*y))
}

// Delete handles DELETE /v1/boatyards/:id.
func (h *BoatYardHandler) Delete(c echo.Context) error {
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

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	if err := h.Yards.Delete(ctx, scope, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "boat yard not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete boat yard"})
	}
	return c.NoContent(http.StatusNoContent)
}
