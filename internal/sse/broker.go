package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
)

// Event types pushed to clients after a collection changes. Data carries
// the whole refreshed collection.
const (
	EventStandupsChanged = "standups.changed"
	EventTicketsChanged  = "tickets.changed"
	EventReady           = "ready"
)

// Event represents an SSE event
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Broker fans events out to every connected stream
type Broker struct {
	clients map[chan Event]struct{}
	mu      sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		clients: make(map[chan Event]struct{}),
	}
}

func (b *Broker) Register(clientChan chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clients[clientChan] = struct{}{}
	log.Printf("📡 [SSE Broker] Registered client (total clients: %d)", len(b.clients))
}

// Unregister removes and closes clientChan. Calling it twice is a no-op.
func (b *Broker) Unregister(clientChan chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.clients[clientChan]; !ok {
		return
	}
	delete(b.clients, clientChan)
	close(clientChan)
	log.Printf("📡 [SSE Broker] Unregistered client (remaining: %d)", len(b.clients))
}

// Broadcast sends event to every client. A client whose channel is full
// misses the event.
func (b *Broker) Broadcast(event Event) {
	// Marshal data once so every client gets the same snapshot
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		log.Printf("❌ [SSE Broker] Failed to marshal event data: %v", err)
		return
	}
	eventCopy := Event{Type: event.Type, Data: json.RawMessage(dataJSON)}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for clientChan := range b.clients {
		select {
		case clientChan <- eventCopy:
		default:
			log.Printf("⚠️ [SSE Broker] Client channel blocked, dropping %s", event.Type)
		}
	}
	if len(b.clients) > 0 {
		log.Printf("📡 [SSE Broker] Broadcast event %s to %d clients", event.Type, len(b.clients))
	}
}

func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// WriteEvent writes event in text/event-stream framing.
func WriteEvent(w io.Writer, event Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("sse: marshal %s: %w", event.Type, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}

// WriteHeartbeat writes a comment line that keeps idle proxies from closing the stream.
func WriteHeartbeat(w io.Writer) error {
	_, err := io.WriteString(w, ": heartbeat\n\n")
	return err
}
