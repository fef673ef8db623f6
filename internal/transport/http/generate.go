package http

import (
	"log"
	"strings"

	"standup-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Generate(c *fiber.Ctx) error {
	var req service.GenerateInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.RawInput) == "" && len(req.TicketIDs) == 0 {
		return badRequest(c, "rawInput or ticketIds is required")
	}

	log.Printf("✨ [GENERATE] input=%d chars | tickets=%d", len(req.RawInput), len(req.TicketIDs))
	res, err := h.svc.Generate(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) Refine(c *fiber.Ctx) error {
	var req struct {
		CurrentText string `json:"currentText"`
		Instruction string `json:"instruction"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return badRequest(c, "instruction is required")
	}
	res, err := h.svc.Refine(c.UserContext(), req.CurrentText, req.Instruction)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
