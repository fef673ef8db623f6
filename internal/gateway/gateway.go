// Package gateway routes standup and ticket persistence to either the local
// store or the remote relational store, and moves local records into the
// remote store on Sync.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"standup-service/internal/localstore"
	"standup-service/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// locals are the local collections. They outlive any single Gateway so
// that every gateway over the same store shares their locks.
type locals struct {
	standups *localBackend[models.Standup]
	tickets  *localBackend[models.Ticket]
}

func newLocals(kv localstore.KV) *locals {
	return &locals{
		standups: newLocalBackend(kv, localstore.KeyStandups, func(s models.Standup) time.Time { return s.Date }),
		tickets:  newLocalBackend(kv, localstore.KeyTickets, func(t models.Ticket) time.Time { return t.UpdatedAt }),
	}
}

// Gateway is a persistence view bound to one backend. It is cheap to build;
// Provider builds a fresh one per request so backend config changes apply
// immediately.
type Gateway struct {
	Standups *Collection[models.Standup]
	Tickets  *Collection[models.Ticket]

	mode   Mode
	db     *gorm.DB
	locals *locals

	remoteStandups Backend[models.Standup]
	remoteTickets  Backend[models.Ticket]

	now func() time.Time
}

// New returns a gateway over kv. With a nil db it runs in local mode.
func New(kv localstore.KV, db *gorm.DB) *Gateway {
	return newGateway(newLocals(kv), db, nil)
}

// newGateway picks the backend: remote when a connection exists or was
// attempted (openErr), local otherwise.
func newGateway(l *locals, db *gorm.DB, openErr error) *Gateway {
	g := &Gateway{mode: ModeLocal, db: db, locals: l, now: time.Now}

	g.Standups = &Collection[models.Standup]{
		name:    "standups",
		active:  l.standups,
		local:   l.standups,
		prepare: g.prepareStandup,
	}
	g.Tickets = &Collection[models.Ticket]{
		name:    "tickets",
		active:  l.tickets,
		local:   l.tickets,
		prepare: g.prepareTicket,
	}

	if db == nil && openErr == nil {
		return g
	}

	g.mode = ModeRemote
	g.remoteStandups = &remoteBackend[models.Standup, models.StandupRow]{
		db:          db,
		openErr:     openErr,
		table:       "standups",
		orderColumn: "date",
		toRow:       models.StandupToRow,
		fromRow:     models.StandupFromRow,
		updates:     standupUpdates,
	}
	g.remoteTickets = &remoteBackend[models.Ticket, models.TicketRow]{
		db:          db,
		openErr:     openErr,
		table:       "jira_tickets",
		orderColumn: "updated_at",
		toRow:       models.TicketToRow,
		fromRow:     models.TicketFromRow,
		updates:     ticketUpdates,
	}
	g.Standups.active, g.Standups.remote = g.remoteStandups, true
	g.Tickets.active, g.Tickets.remote = g.remoteTickets, true
	return g
}

func (g *Gateway) Mode() Mode { return g.mode }

// LastSync returns when Sync last moved records into the remote store. The
// zero time means never, or that the remote has no sync_configs table.
func (g *Gateway) LastSync(ctx context.Context) (time.Time, error) {
	if g.mode != ModeRemote {
		return time.Time{}, ErrNotConfigured
	}
	if g.db == nil {
		return time.Time{}, backendError("read", "sync_configs", errors.New("no connection"))
	}
	var cfg models.SyncConfig
	err := g.db.WithContext(ctx).Where(map[string]any{"key": models.SyncConfigLastLocalSync}).Limit(1).Find(&cfg).Error
	if err != nil {
		if berr := backendError("read", "sync_configs", err); !errors.Is(berr, ErrSchemaMissing) {
			return time.Time{}, berr
		}
		return time.Time{}, nil
	}
	if cfg.Value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, cfg.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("gateway: bad %s value %q: %w", models.SyncConfigLastLocalSync, cfg.Value, err)
	}
	return ts, nil
}

func (g *Gateway) prepareStandup(s models.Standup, creating bool) models.Standup {
	if creating && strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.Date.IsZero() {
		s.Date = g.now()
	}
	return s.Normalized()
}

// prepareTicket stamps UpdatedAt on every write so the list orders by the
// last edit.
func (g *Gateway) prepareTicket(t models.Ticket, creating bool) models.Ticket {
	if creating && strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TicketStatusToDo
	}
	t.TicketKey = strings.TrimSpace(t.TicketKey)
	t.Title = strings.TrimSpace(t.Title)
	t.Link = strings.TrimSpace(t.Link)
	t.UpdatedAt = g.now().UTC()
	return t
}

func standupUpdates(s models.Standup) map[string]any {
	row := models.StandupToRow(s)
	return map[string]any{
		"date":              row.Date,
		"raw_input":         row.RawInput,
		"generated_output":  row.GeneratedOutput,
		"consistency_notes": row.ConsistencyNotes,
	}
}

func ticketUpdates(t models.Ticket) map[string]any {
	row := models.TicketToRow(t)
	return map[string]any{
		"ticket_key": row.TicketKey,
		"title":      row.Title,
		"status":     row.Status,
		"link":       row.Link,
		"updated_at": row.UpdatedAt,
	}
}
