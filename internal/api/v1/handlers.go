package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/pixeldodo/pixeldodo/app/controllers"
)

// Pong is the ping endpoint response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUser returns account information plus the latest generated image for
// the authenticated user. Security is enforced via session middleware
// attached in the router.
func (s *APIServer) GetUser(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

// GetUserImages returns the generation history of the authenticated user.
func (s *APIServer) GetUserImages(c *fiber.Ctx) error {
	return controllers.HandleGetUserImages(c)
}

// PostGenerate runs one image generation for the authenticated user.
func (s *APIServer) PostGenerate(c *fiber.Ctx) error {
	return controllers.HandleGenerate(c)
}
