package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pixeldodo/pixeldodo/app/repository"
	"github.com/pixeldodo/pixeldodo/internal/pkg/statistics"
)

// HandleAdminStats returns platform statistics and a per-day generation
// series for the last 30 days.
func HandleAdminStats(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	daily, err := repository.GetGlobalFactory().GetGeneratedImageRepository().GetDailyStats(start, end)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load daily statistics"})
	}

	series := make([]fiber.Map, 0, len(daily))
	for _, d := range daily {
		series = append(series, fiber.Map{"date": d.Date, "count": d.Count})
	}

	return c.JSON(fiber.Map{
		"total_users":       stats.TotalUsers,
		"total_generations": stats.TotalGenerations,
		"today_generations": stats.TodayGenerations,
		"daily":             series,
	})
}

// HandleAdminUsers lists accounts with their credit balances.
func HandleAdminUsers(c *fiber.Ctx) error {
	const usersPerPage = 50
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to count users"})
	}

	users, err := repo.List((page-1)*usersPerPage, usersPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load users"})
	}

	items := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		items = append(items, fiber.Map{
			"id":            u.ID,
			"username":      u.Name,
			"email":         u.Email,
			"status":        u.Status,
			"role":          u.Role,
			"credits":       u.Credits,
			"created_at":    u.CreatedAt.UTC().Format(time.RFC3339),
			"last_login_at": formatTimePtr(u.LastLoginAt),
		})
	}

	return c.JSON(fiber.Map{
		"page":  page,
		"total": total,
		"users": items,
	})
}
