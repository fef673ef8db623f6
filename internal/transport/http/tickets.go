package http

import (
	"standup-service/pkg/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListTickets(c *fiber.Ctx) error {
	list, err := h.svc.ListTickets(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tickets": nonNil(list)})
}

// SaveTicket creates or replaces a ticket by id.
func (h *Handler) SaveTicket(c *fiber.Ctx) error {
	var t models.Ticket
	if err := c.BodyParser(&t); err != nil {
		return badRequest(c, "invalid request body")
	}
	list, err := h.svc.SaveTicket(c.UserContext(), t)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tickets": nonNil(list)})
}

func (h *Handler) DeleteTicket(c *fiber.Ctx) error {
	list, err := h.svc.RemoveTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"tickets": nonNil(list)})
}
