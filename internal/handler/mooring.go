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

// MooringHandler serves the /v1/moorings endpoints.
type MooringHandler struct {
	Scopes   *auth.ScopeBuilder
	Moorings *repository.MooringRepo
}

func NewMooringHandler(scopes *auth.ScopeBuilder, moorings *repository.MooringRepo) *MooringHandler {
	return &MooringHandler{Scopes: scopes, Moorings: moorings}
}

type mooringResp struct {
	ID              uint64 `json:"id"`
	CustomerOwnerID uint64 `json:"customer_owner_id"`
	SerialNumber    string `json:"serial_number"`
	Harbor          string `json:"harbor"`
	GPSCoordinates  string `json:"gps_coordinates"`
	BoatName        string `json:"boat_name"`
	BoatType        string `json:"boat_type"`
	Status          string `json:"status"`
}

func toMooringResp(m model.Mooring) mooringResp {
	return mooringResp{
		ID:              m.ID,
		CustomerOwnerID: m.CustomerOwnerID,
		SerialNumber:    m.SerialNumber,
		Harbor:          m.Harbor,
		GPSCoordinates:  m.GPSCoordinates,
		BoatName:        m.BoatName,
		BoatType:        m.BoatType,
		Status:          m.Status,
	}
}

type mooringReq struct {
	SerialNumber   string `json:"serial_number"`
	Harbor         string `json:"harbor"`
	GPSCoordinates string `json:"gps_coordinates"`
	BoatName       string `json:"boat_name"`
	BoatType       string `json:"boat_type"`
	Status         string `json:"status"`
}

func (r *mooringReq) normalize() error {
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
	r.Harbor = strings.TrimSpace(r.Harbor)
	if r.SerialNumber == "" || r.Harbor == "" {
		return errors.New("serial_number and harbor are required")
	}
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	switch r.Status {
	case "":
		r.Status = model.MooringStatusAvailable
	case model.MooringStatusAvailable, model.MooringStatusOccupied, model.MooringStatusMaintenance:
	default:
		return errors.New("invalid status")
	}
	return nil
}

// Create handles POST /v1/moorings.
func (h *MooringHandler) Create(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req mooringReq
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
	m := &model.Mooring{
		SerialNumber:   req.SerialNumber,
		Harbor:         req.Harbor,
		GPSCoordinates: req.GPSCoordinates,
		BoatName:       req.BoatName,
		BoatType:       req.BoatType,
		Status:         req.Status,
	}
	if err := h.Moorings.Create(ctx, scope, m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "serial number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create mooring"})
	}
	return c.JSON(http.StatusCreated, toMooringResp(*m))
}

// List handles GET /v1/moorings with an optional ?search= filter.
func (h *MooringHandler) List(c echo.Context) error {
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
	moorings, err := h.Moorings.List(ctx, scope, c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list moorings"})
	}
	out := make([]mooringResp, 0, len(moorings))
	for _, m := range moorings {
		out = append(out, toMooringResp(m))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/moorings/:id.
func (h *MooringHandler) Get(c echo.Context) error {
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
	m, err := h.Moorings.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mooring not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load mooring"})
	}
	return c.JSON(http.StatusOK, toMooringResp(m))
}

// Update handles PUT /v1/moorings/:id.
func (h *MooringHandler) Update(c echo.Context) error {
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
	var req mooringReq
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
	m := &model.Mooring{
		ID:             id,
		SerialNumber:   req.SerialNumber,
		Harbor:         req.Harbor,
		GPSCoordinates: req.GPSCoordinates,
		BoatName:       req.BoatName,
		BoatType:       req.BoatType,
		Status:         req.Status,
	}
	if err := h.Moorings.Update(ctx, scope, m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mooring not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update mooring"})
	}
	m.CustomerOwnerID = scope.OwnerID
	return c.JSON(http.StatusOK, toMooringResp(*m))
}

// Delete handles DELETE /v1/moorings/:id.
func (h *MooringHandler) Delete(c echo.Context) error {
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
	if err := h.Moorings.Delete(ctx, scope, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "mooring has open work orders"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mooring not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete mooring"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
