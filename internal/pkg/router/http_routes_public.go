package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/pixeldodo/pixeldodo/app/controllers"
	"github.com/pixeldodo/pixeldodo/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Auth
	app.Post("/register", controllers.HandleAuthRegister)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)
	app.Get("/activate", controllers.HandleAuthActivate)
	app.Post("/activate", controllers.HandleAuthActivate)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Payment provider endpoints (no session, signature-verified in controller)
	app.Post("/payments/webhook", controllers.HandlePaymentWebhook)
	app.Get("/payments/redirect", controllers.HandlePaymentRedirect)
	app.Get("/payments/packages", controllers.HandlePaymentPackages)
}
