package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/auth"
	"github.com/iliyamo/marina-mooring-management/internal/model"
	"github.com/iliyamo/marina-mooring-management/internal/repository"
)

// WorkOrderHandler serves the /v1/workorders endpoints.
type WorkOrderHandler struct {
	Scopes *auth.ScopeBuilder
	Orders *repository.WorkOrderRepo
	Users  *repository.UserRepo
}

func NewWorkOrderHandler(scopes *auth.ScopeBuilder, orders *repository.WorkOrderRepo, users *repository.UserRepo) *WorkOrderHandler {
	return &WorkOrderHandler{Scopes: scopes, Orders: orders, Users: users}
}

type workOrderResp struct {
	ID              uint64 `json:"id"`
	CustomerOwnerID uint64 `json:"customer_owner_id"`
	MooringID       uint64 `json:"mooring_id"`
	TechnicianID    uint64 `json:"technician_id"`
	DueDate         string `json:"due_date"`
	Status          string `json:"status"`
	Problem         string `json:"problem"`
	Note            string `json:"note"`
}

func toWorkOrderResp(w model.WorkOrder) workOrderResp {
	return workOrderResp{
		ID:              w.ID,
		CustomerOwnerID: w.CustomerOwnerID,
		MooringID:       w.MooringID,
		TechnicianID:    w.TechnicianID,
		DueDate:         w.DueDate.Format("2006-01-02"),
		Status:          w.Status,
		Problem:         w.Problem,
		Note:            w.Note,
	}
}

type workOrderReq struct {
	MooringID    uint64 `json:"mooring_id"`
	TechnicianID uint64 `json:"technician_id"`
	DueDate      string `json:"due_date"` // YYYY-MM-DD
	Status       string `json:"status"`
	Problem      string `json:"problem"`
	Note         string `json:"note"`
}

func (r *workOrderReq) parse() (due time.Time, err error) {
	if r.MooringID == 0 || r.TechnicianID == 0 {
		return time.Time{}, errors.New("mooring_id and technician_id are required")
	}
	due, err = time.Parse("2006-01-02", strings.TrimSpace(r.DueDate))
	if err != nil {
		return time.Time{}, errors.New("due_date must be YYYY-MM-DD")
	}
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	switch r.Status {
	case "":
		r.Status = model.WorkOrderStatusNew
	case model.WorkOrderStatusNew, model.WorkOrderStatusInProgress, model.WorkOrderStatusCompleted:
	default:
		return time.Time{}, errors.New("invalid status")
	}
	return due, nil
}

// checkTechnician verifies the assigned technician exists, has the
// TECHNICIAN role and belongs to the granted scope.
func (h *WorkOrderHandler) checkTechnician(ctx context.Context, scope auth.Scope, technicianID uint64) error {
	tech, err := h.Users.FindByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.New("technician not found")
		}
		return err
	}
	if tech.Role != model.RoleTechnician {
		return errors.New("assigned user is not a technician")
	}
	if tech.CustomerOwnerID == nil || *tech.CustomerOwnerID != scope.OwnerID {
		return errors.New("technician belongs to a different customer owner")
	}
	return nil
}

// Create handles POST /v1/workorders.
func (h *WorkOrderHandler) Create(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req workOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	due, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	if err := h.checkTechnician(ctx, scope, req.TechnicianID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	w := &model.WorkOrder{
		MooringID:    req.MooringID,
		TechnicianID: req.TechnicianID,
		DueDate:      due,
		Status:       req.Status,
		Problem:      req.Problem,
		Note:         req.Note,
	}
	if err := h.Orders.Create(ctx, scope, w); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "mooring belongs to a different customer owner"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mooring not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create work order"})
		}
	}
	return c.JSON(http.StatusCreated, toWorkOrderResp(*w))
}

// List handles GET /v1/workorders with an optional ?status= filter.
func (h *WorkOrderHandler) List(c echo.Context) error {
	ident, ok := identity(c)
	if !ok {
		return nil
	}
	owner, err := ownerRefFromRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	status := strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))
	switch status {
	case "", model.WorkOrderStatusNew, model.WorkOrderStatusInProgress, model.WorkOrderStatusCompleted:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	orders, err := h.Orders.List(ctx, scope, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list work orders"})
	}
	out := make([]workOrderResp, 0, len(orders))
	for _, w := range orders {
		out = append(out, toWorkOrderResp(w))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/workorders/:id.
func (h *WorkOrderHandler) Get(c echo.Context) error {
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
	w, err := h.Orders.Get(ctx, scope, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load work order"})
	}
	return c.JSON(http.StatusOK, toWorkOrderResp(w))
}

// Update handles PUT /v1/workorders/:id.
func (h *WorkOrderHandler) Update(c echo.Context) error {
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
	var req workOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	due, err := req.parse()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	scope, err := h.Scopes.EntityScope(ctx, ident, owner)
	if err != nil {
		return scopeError(c, err)
	}
	if err := h.checkTechnician(ctx, scope, req.TechnicianID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	w := &model.WorkOrder{
		ID:           id,
		TechnicianID: req.TechnicianID,
		DueDate:      due,
		Status:       req.Status,
		Problem:      req.Problem,
		Note:         req.Note,
	}
	if err := h.Orders.Update(ctx, scope, w); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update work order"})
	}
	// Re-read so the response reflects the stored row; mooring_id is
	// immutable on update.
	stored, err := h.Orders.Get(ctx, scope, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load work order"})
	}
	return c.JSON(http.StatusOK, toWorkOrderResp(stored))
}

// Delete handles DELETE /v1/workorders/:id.
func (h *WorkOrderHandler) Delete(c echo.Context) error {
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
	if err := h.Orders.Delete(ctx, scope, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete work order"})
	}
	return c.NoContent(http.StatusNoContent)
}
