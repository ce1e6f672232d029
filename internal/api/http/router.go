package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-relay/internal/api/http/handlers"
	"github.com/spec-kit/rental-relay/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Properties     *handlers.PropertiesHandler
	Reservations   *handlers.ReservationsHandler
	Webhooks       *handlers.WebhooksHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Webhook routes are unauthenticated
// provider callbacks; the rest of the API requires a bearer token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)

	// Bearer auth is attached per route so it never shadows the
	// webhook group registered below.
	requireAuth := cfg.AuthMiddleware.Handle
	app.Post("/properties", requireAuth, cfg.Properties.CreateProperty)
	app.Get("/properties", requireAuth, cfg.Properties.ListProperties)
	app.Post("/reservations", requireAuth, cfg.Reservations.CreateReservation)
	app.Get("/reservations", requireAuth, cfg.Reservations.ListReservations)

	webhooks := app.Group("/webhooks")
	webhooks.Post("/reservations/confirm", cfg.Webhooks.ConfirmReservation)
	webhooks.Post("/exchange/sms", cfg.Webhooks.ExchangeSMS)
	webhooks.Post("/exchange/voice", cfg.Webhooks.ExchangeVoice)
}
