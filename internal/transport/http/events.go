package http

import (
	"bufio"
	"log"
	"time"

	"standup-service/internal/sse"

	"github.com/gofiber/fiber/v2"
)

// StreamEvents pushes collection snapshots to the client. The first event
// is "ready" with both collections; later events carry whichever collection
// changed.
func (h *Handler) StreamEvents(c *fiber.Ctx) error {
	ctx := c.UserContext()
	snapshot := fiber.Map{"standups": []any{}, "tickets": []any{}}
	if list, err := h.svc.ListStandups(ctx); err != nil {
		log.Printf("⚠️ [SSE] Failed to load standups snapshot: %v", err)
	} else {
		snapshot["standups"] = nonNil(list)
	}
	if list, err := h.svc.ListTickets(ctx); err != nil {
		log.Printf("⚠️ [SSE] Failed to load tickets snapshot: %v", err)
	} else {
		snapshot["tickets"] = nonNil(list)
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	broker := h.svc.Broker()
	heartbeat := h.heartbeat
	ip := c.IP()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		connStart := time.Now()
		clientChan := make(chan sse.Event, 10)
		broker.Register(clientChan)
		log.Printf("✅ [SSE] 🟢 Connection STARTED ip=%s (clients=%d)", ip, broker.ClientCount())
		defer func() {
			broker.Unregister(clientChan)
			log.Printf("🔌 [SSE] 🔴 Connection CLOSED ip=%s after %v", ip, time.Since(connStart).Round(time.Millisecond))
		}()

		if err := sse.WriteEvent(w, sse.Event{Type: sse.EventReady, Data: snapshot}); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-clientChan:
				if !ok {
					return
				}
				if err := sse.WriteEvent(w, ev); err != nil {
					return
				}
			case <-ticker.C:
				if err := sse.WriteHeartbeat(w); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				log.Printf("⚠️ [SSE] Client gone ip=%s: %v", ip, err)
				return
			}
		}
	})
	return nil
}
