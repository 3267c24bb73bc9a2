// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marina-mooring-management/internal/handler"
	"github.com/iliyamo/marina-mooring-management/internal/middleware"
	"github.com/iliyamo/marina-mooring-management/internal/model"
)

// Handlers bundles everything route registration needs.
type Handlers struct {
	Auth       *handler.AuthHandler
	Moorings   *handler.MooringHandler
	BoatYards  *handler.BoatYardHandler
	WorkOrders *handler.WorkOrderHandler
	Users      *handler.UserHandler
}

// Register wires all routes. Authentication attaches per group: the session
// endpoints under /v1/auth never run it, so logout can accept an expired
// token and login stays reachable without one. The rate limiter runs after
// authentication on protected groups so its per-user key strategies see the
// identity; the response cache is attached only to the list GETs.
func Register(e *echo.Echo, h Handlers, authenticate, ratelimit, cache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	authGroup := e.Group("/v1/auth", ratelimit)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
	authGroup.POST("/reset-password", h.Auth.ResetPassword)
	authGroup.POST("/logout", h.Auth.Logout)

	me := e.Group("/v1/me", authenticate, ratelimit, middleware.RequireAuth())
	me.GET("", h.Auth.Me)

	// Business entities: administrators act on a selected customer owner,
	// customer owners on their own scope. Technician/finance calls reach
	// the scope check and are rejected there, so the role middleware only
	// filters out unauthenticated requests.
	entities := e.Group("/v1", authenticate, ratelimit, middleware.RequireRole(
		model.RoleAdministrator, model.RoleCustomerOwner,
		model.RoleTechnician, model.RoleFinance,
	))

	entities.POST("/moorings", h.Moorings.Create)
	entities.GET("/moorings", h.Moorings.List, cache)
	entities.GET("/moorings/:id", h.Moorings.Get)
	entities.PUT("/moorings/:id", h.Moorings.Update)
	entities.DELETE("/moorings/:id", h.Moorings.Delete)

	entities.POST("/boatyards", h.BoatYards.Create)
	entities.GET("/boatyards", h.BoatYards.List, cache)
	entities.GET("/boatyards/:id", h.BoatYards.Get)
	entities.PUT("/boatyards/:id", h.BoatYards.Update)
	entities.DELETE("/boatyards/:id", h.BoatYards.Delete)

	entities.POST("/workorders", h.WorkOrders.Create)
	entities.GET("/workorders", h.WorkOrders.List, cache)
	entities.GET("/workorders/:id", h.WorkOrders.Get)
	entities.PUT("/workorders/:id", h.WorkOrders.Update)
	entities.DELETE("/workorders/:id", h.WorkOrders.Delete)

	// Account management is limited to administrators and customer owners
	// outright; the scope operations decide the rest.
	users := e.Group("/v1/users", authenticate, ratelimit,
		middleware.RequireRole(model.RoleAdministrator, model.RoleCustomerOwner))
	users.POST("", h.Users.Create)
	users.GET("", h.Users.List)
	users.DELETE("/:id", h.Users.Delete)
}
