package http

import (
	"log"

	"standup-service/internal/remote"
	"standup-service/pkg/models"

	"github.com/gofiber/fiber/v2"
)

// Sync answers 207 when one collection moved and the other did not; the
// body then names the failed side.
func (h *Handler) Sync(c *fiber.Ctx) error {
	res, err := h.svc.Sync(c.UserContext())
	if res == nil {
		return respondError(c, err)
	}
	if err != nil {
		log.Printf("⚠️ [SYNC] Partial sync: %v", err)
		return c.Status(fiber.StatusMultiStatus).JSON(res)
	}
	return c.JSON(res)
}

func (h *Handler) CredentialStatus(c *fiber.Ctx) error {
	st, err := h.svc.CredentialStatus(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) SaveCredential(c *fiber.Ctx) error {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.svc.SaveCredential(c.UserContext(), req.APIKey); err != nil {
		return respondError(c, err)
	}
	log.Println("✅ [SETTINGS] API key saved")
	return h.CredentialStatus(c)
}

func (h *Handler) RemoveCredential(c *fiber.Ctx) error {
	if err := h.svc.RemoveCredential(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	log.Println("🗑️ [SETTINGS] API key removed")
	return h.CredentialStatus(c)
}

func (h *Handler) BackendStatus(c *fiber.Ctx) error {
	st, err := h.svc.BackendStatus(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

func (h *Handler) SaveBackend(c *fiber.Ctx) error {
	var cfg models.BackendConfig
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "invalid request body")
	}
	st, err := h.svc.SaveBackendConfig(c.UserContext(), cfg)
	if err != nil {
		return respondError(c, err)
	}
	log.Printf("✅ [SETTINGS] Backend config saved | url=%s | key=%s", cfg.URL, cfg.MaskedKey())
	return c.JSON(st)
}

func (h *Handler) RemoveBackend(c *fiber.Ctx) error {
	st, err := h.svc.RemoveBackendConfig(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	log.Println("🗑️ [SETTINGS] Backend config removed, back to local mode")
	return c.JSON(st)
}

// BackendSchema serves the setup SQL for the remote tables.
func (h *Handler) BackendSchema(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/sql; charset=utf-8")
	return c.SendString(remote.SchemaSQL)
}
