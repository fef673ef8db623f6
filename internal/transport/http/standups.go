package http

import (
	"bytes"
	"fmt"
	"log"

	"standup-service/pkg/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListStandups(c *fiber.Ctx) error {
	list, err := h.svc.ListStandups(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"standups": nonNil(list)})
}

// LatestStandup answers {"standup": null} when the history is empty.
func (h *Handler) LatestStandup(c *fiber.Ctx) error {
	latest, err := h.svc.LatestStandup(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"standup": latest})
}

func (h *Handler) CreateStandup(c *fiber.Ctx) error {
	var rec models.Standup
	if err := c.BodyParser(&rec); err != nil {
		return badRequest(c, "invalid request body")
	}
	list, err := h.svc.CreateStandup(c.UserContext(), rec)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"standups": nonNil(list)})
}

func (h *Handler) UpdateStandup(c *fiber.Ctx) error {
	var rec models.Standup
	if err := c.BodyParser(&rec); err != nil {
		return badRequest(c, "invalid request body")
	}
	// the path wins over the body
	rec.ID = c.Params("id")
	list, err := h.svc.UpdateStandup(c.UserContext(), rec)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"standups": nonNil(list)})
}

func (h *Handler) DeleteStandup(c *fiber.Ctx) error {
	list, err := h.svc.RemoveStandup(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"standups": nonNil(list)})
}

// ExportStandups downloads the whole history as a JSON attachment.
func (h *Handler) ExportStandups(c *fiber.Ctx) error {
	var buf bytes.Buffer
	filename, err := h.svc.Export(c.UserContext(), &buf)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}

func (h *Handler) UploadExport(c *fiber.Ctx) error {
	uploaded, err := h.svc.UploadExport(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(uploaded)
}

func (h *Handler) Rollover(c *fiber.Ctx) error {
	text, err := h.svc.Rollover(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"rawInput": text})
}

func (h *Handler) ShareStandup(c *fiber.Ctx) error {
	var req struct {
		To string `json:"to"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.To == "" {
		return badRequest(c, "to is required")
	}
	id := c.Params("id")
	if err := h.svc.ShareStandup(c.UserContext(), id, req.To); err != nil {
		log.Printf("❌ [SHARE] standup=%s to=%s: %v", id, req.To, err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "sent",
		"message": "Standup emailed to " + req.To,
	})
}
