package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pixeldodo/pixeldodo/app/models"
	"github.com/pixeldodo/pixeldodo/app/repository"
	"github.com/pixeldodo/pixeldodo/internal/pkg/usercontext"
	"github.com/pixeldodo/pixeldodo/internal/pkg/utils"
)

// HandleGetUserAccount returns account information for the authenticated user.
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	imageRepo := repository.GetGlobalFactory().GetGeneratedImageRepository()
	var lastImage fiber.Map
	if latest, err := imageRepo.GetLatestByUserID(account.ID); err == nil {
		lastImage = generatedImageJSON(latest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load images"})
	}

	avatarURL := account.AvatarURL
	if avatarURL == "" {
		avatarURL = utils.GetGravatarURL(account.Email, 200)
	}

	return c.JSON(fiber.Map{
		"id":            account.ID,
		"username":      account.Name,
		"email":         account.Email,
		"status":        account.Status,
		"verified":      account.IsVerified(),
		"credits":       account.Credits,
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"avatar_url":    avatarURL,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"last_image":    lastImage,
	})
}

// HandleGetUserImages returns the user's generation history, newest first.
func HandleGetUserImages(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	const imagesPerPage = 20
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * imagesPerPage

	imageRepo := repository.GetGlobalFactory().GetGeneratedImageRepository()
	images, err := imageRepo.ListByUserID(userCtx.UserID, offset, imagesPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load images"})
	}

	items := make([]fiber.Map, 0, len(images))
	for i := range images {
		items = append(items, generatedImageJSON(&images[i]))
	}

	return c.JSON(fiber.Map{
		"page":   page,
		"images": items,
	})
}

func generatedImageJSON(image *models.GeneratedImage) fiber.Map {
	url := image.URL
	// Prefer the mirrored copy; upstream URLs expire.
	if image.MirrorURL != "" {
		url = image.MirrorURL
	}
	return fiber.Map{
		"uuid":       image.UUID,
		"prompt":     image.Prompt,
		"url":        url,
		"created_at": image.CreatedAt.UTC().Format(time.RFC3339),
	}
}
