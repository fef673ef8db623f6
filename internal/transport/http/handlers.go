// internal/transport/http/handlers.go
package http

import (
	"time"

	"standup-service/internal/service"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	svc       *service.StandupService
	startTime time.Time
	// interval between SSE keep-alive comments
	heartbeat time.Duration
}

func NewHandler(svc *service.StandupService) *Handler {
	return &Handler{
		svc:       svc,
		startTime: time.Now(),
		heartbeat: 30 * time.Second,
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r fiber.Router) {
	standups := r.Group("/standups")
	standups.Get("/", h.ListStandups)
	standups.Get("/latest", h.LatestStandup)
	standups.Get("/export", h.ExportStandups)
	standups.Post("/export/upload", h.UploadExport)
	standups.Get("/rollover", h.Rollover)
	standups.Post("/", h.CreateStandup)
	standups.Put("/:id", h.UpdateStandup)
	standups.Delete("/:id", h.DeleteStandup)
	standups.Post("/:id/share", h.ShareStandup)

	tickets := r.Group("/tickets")
	tickets.Get("/", h.ListTickets)
	tickets.Post("/", h.SaveTicket)
	tickets.Delete("/:id", h.DeleteTicket)

	r.Post("/sync", h.Sync)

	settings := r.Group("/settings")
	settings.Get("/credential", h.CredentialStatus)
	settings.Put("/credential", h.SaveCredential)
	settings.Delete("/credential", h.RemoveCredential)
	settings.Get("/backend", h.BackendStatus)
	settings.Put("/backend", h.SaveBackend)
	settings.Delete("/backend", h.RemoveBackend)
	settings.Get("/backend/schema", h.BackendSchema)

	r.Post("/generate", h.Generate)
	r.Post("/refine", h.Refine)

	r.Get("/events", h.StreamEvents)
}

// Health reports liveness and the persistence mode currently in effect.
func (h *Handler) Health(c *fiber.Ctx) error {
	mode := "unknown"
	if g, err := h.svc.Gateway(c.UserContext()); err == nil {
		mode = string(g.Mode())
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "standup-service",
		"mode":      mode,
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"clients":   h.svc.Broker().ClientCount(),
	})
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
