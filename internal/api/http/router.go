package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/legal-desk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Tickets   *handlers.TicketsHandler
	Contracts *handlers.ContractsHandler
	Jobs      *handlers.JobsHandler
	Directory *handlers.DirectoryHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/api/v1")

	tickets := v1.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/review", cfg.Tickets.BeginReview)
	tickets.Post("/:id/reject", cfg.Tickets.Reject)
	tickets.Post("/:id/complete", cfg.Tickets.Complete)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/contract", cfg.Contracts.Materialize)
	tickets.Post("/:id/attachments", cfg.Tickets.AddAttachment)
	tickets.Get("/:id/attachments", cfg.Tickets.ListAttachments)
	tickets.Get("/:id/activity", cfg.Tickets.ListActivity)

	contracts := v1.Group("/contracts")
	contracts.Get("", cfg.Contracts.ListContracts)
	contracts.Get("/:id", cfg.Contracts.GetContract)
	contracts.Post("/:id/terminate", cfg.Contracts.Terminate)
	contracts.Get("/:id/activity", cfg.Contracts.ListActivity)

	jobs := v1.Group("/jobs")
	jobs.Post("/backfill-aging", cfg.Jobs.BackfillAging)
	jobs.Post("/expire-contracts", cfg.Jobs.ExpireContracts)
	jobs.Post("/send-reminders", cfg.Jobs.SendReminders)

	v1.Get("/divisions", cfg.Directory.ListDivisions)
	v1.Get("/users", cfg.Directory.ListUsers)
	v1.Get("/notifications", cfg.Directory.ListNotifications)
	v1.Post("/notifications/:id/read", cfg.Directory.MarkNotificationRead)
	v1.Get("/settings", cfg.Directory.GetSettings)
	v1.Put("/settings", cfg.Directory.PutSetting)
}
