package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pixeldodo/pixeldodo/app/controllers"
	"github.com/pixeldodo/pixeldodo/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/stats", controllers.HandleAdminStats)
	adminGroup.Get("/users", controllers.HandleAdminUsers)
}
