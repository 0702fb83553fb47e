package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pixeldodo/pixeldodo/internal/pkg/middleware"
)

// RegisterHandlers attaches the v1 endpoints to the given router group.
func RegisterHandlers(router fiber.Router, server *APIServer) {
	router.Get("/ping", server.GetPing)

	router.Get("/user", middleware.RequireAuth, server.GetUser)
	router.Get("/user/images", middleware.RequireAuth, server.GetUserImages)
	router.Post("/generate", middleware.RequireAuth, server.PostGenerate)
}
