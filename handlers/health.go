package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studyforge/study-assistant/database"
	"github.com/studyforge/study-assistant/utils/response"
)

// HandleCheckHealth reports liveness of the process and the database
func HandleCheckHealth(store *database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.ServiceUnavailable(c, "Database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// HandleGetStats returns course/message counts and the database size
func HandleGetStats(store *database.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := store.GetStats(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to collect stats")
		}
		return response.Success(c, stats)
	}
}
