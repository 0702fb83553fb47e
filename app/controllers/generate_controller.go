package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pixeldodo/pixeldodo/internal/pkg/generation"
	"github.com/pixeldodo/pixeldodo/internal/pkg/usercontext"
)

var generationService *generation.Service

// InitializeGenerateController wires the generation gate used by the
// generate endpoint. Called once during router setup.
func InitializeGenerateController(svc *generation.Service) {
	generationService = svc
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// HandleGenerate runs one paid image generation for the logged-in user.
func HandleGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}
	if generationService == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Generation service unavailable"})
	}

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	image, err := generationService.Generate(c.Context(), userCtx.UserID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, generation.ErrEmptyPrompt):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Prompt must not be empty"})
		case errors.Is(err, generation.ErrAccountNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Account not found"})
		case errors.Is(err, generation.ErrNotVerified):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not_verified", "message": "Please verify your email before generating images"})
		case errors.Is(err, generation.ErrInsufficientCredits):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient_credits", "message": "Not enough credits for a generation"})
		case errors.Is(err, generation.ErrUpstream):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upstream_failed", "message": "Image generation failed, no credits were charged"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Image generation failed"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid":       image.UUID,
		"prompt":     image.Prompt,
		"url":        image.URL,
		"created_at": image.CreatedAt.UTC().Format(time.RFC3339),
	})
}
