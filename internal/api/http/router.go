package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/ticket-admin/internal/api/http/handlers"
	"github.com/spec-kit/ticket-admin/internal/auth"
	"github.com/spec-kit/ticket-admin/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Activity       *handlers.ActivityHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Group guards reject early; the services make the
// authoritative decision.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireActor())

	api.Get("/me", cfg.Users.Me)
	api.Get("/me/activity", cfg.Users.MyActivity)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	// Role changes validate the payload before the permission check, so that route
	// leaves authorization to the service.
	manageUsers := auth.RequireDecision(auth.CanManageUsers)
	users := api.Group("/users")
	users.Get("/", manageUsers, cfg.Users.ListUsers)
	users.Get("/:id", manageUsers, cfg.Users.GetUser)
	users.Patch("/:id/role", cfg.Users.UpdateRole)
	users.Patch("/:id/active", manageUsers, cfg.Users.ToggleActive)

	activity := api.Group("/activity", auth.RequireDecision(auth.CanViewActivityLogs))
	activity.Get("/", cfg.Activity.ListActivity)
	activity.Get("/stats/actions", cfg.Activity.ActionStats)
	activity.Get("/stats/users", cfg.Activity.UserStats)

	api.Get("/analytics/overview", auth.RequireDecision(auth.CanViewAnalytics), cfg.Activity.Overview)
}
