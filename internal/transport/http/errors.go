package http

import (
	"errors"
	"log"

	"standup-service/internal/email"
	"standup-service/internal/gateway"
	"standup-service/internal/generation"
	"standup-service/internal/service"
	"standup-service/pkg/models"

	"github.com/gofiber/fiber/v2"
)

const schemaHint = "The remote tables are missing. Run the setup SQL from GET /api/settings/backend/schema in your database."

// respondError maps domain errors onto status codes. Anything unmapped goes
// to the app's error handler as a 500.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gateway.ErrNoHistory):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gateway.ErrNotConfigured),
		errors.Is(err, email.ErrNotConfigured),
		errors.Is(err, service.ErrExportDisabled):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gateway.ErrSchemaMissing):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
			"hint":  schemaHint,
		})
	case errors.Is(err, gateway.ErrBackendUnavailable):
		log.Printf("❌ [HTTP] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, generation.ErrGenerationFailed):
		log.Printf("❌ [GENERATE] %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return err
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
