package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-registry/internal/handler"
	"github.com/iliyamo/parking-registry/internal/middleware"
	"github.com/iliyamo/parking-registry/internal/utils"
)

// RegisterRoutes registers routes that do not touch the registry: the
// health check.  db may be nil.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterClients registers the client endpoints.  cache wraps only the
// single-client read since clients never change after creation.
func RegisterClients(e *echo.Echo, h *handler.ClientHandler, cache echo.MiddlewareFunc) {
	e.GET("/clients", h.List)
	e.POST("/clients", h.Create)
	e.GET("/clients/:id", h.Get, cache)
}

// RegisterParkings registers the parking lot endpoints.  Creation requires
// an admin token when adminSecret is set and is open otherwise.
func RegisterParkings(e *echo.Echo, h *handler.ParkingHandler, adminSecret string) {
	e.GET("/parkings", h.List)
	e.GET("/parkings/:id", h.Get)
	e.POST("/parkings", h.Create,
		middleware.AdminAuth(adminSecret),
		middleware.RequireRole(adminSecret != "", utils.RoleAdmin),
	)
}

// RegisterSessions registers admission (POST) and release (DELETE) on the
// same path; both take {client_id, parking_id} in the body.
func RegisterSessions(e *echo.Echo, h *handler.SessionHandler) {
	e.POST("/client_parkings", h.Admit)
	e.DELETE("/client_parkings", h.Release)
}

// RegisterAdmin registers the admin login endpoint.  It is skipped when no
// secret is configured so the route answers 404.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler) {
	if h == nil || h.Secret == "" {
		return
	}
	e.POST("/admin/login", h.Login)
}
