package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"standup-service/pkg/models"

	"gorm.io/gorm/clause"
)

// SyncResult reports what one Sync moved. A collection whose transfer
// failed keeps its local records and carries the failure in its Error field.
type SyncResult struct {
	StandupsSynced int    `json:"standupsSynced"`
	TicketsSynced  int    `json:"ticketsSynced"`
	StandupsError  string `json:"standupsError,omitempty"`
	TicketsError   string `json:"ticketsError,omitempty"`

	// Standups is the remote history after the transfer.
	Standups []models.Standup `json:"standups"`
}

// Synced is the total number of records moved.
func (r *SyncResult) Synced() int { return r.StandupsSynced + r.TicketsSynced }

// Sync upserts every local record into the remote store by id and clears a
// local collection only after its upsert succeeded. The two collections are
// transferred independently. Re-running after a partial failure is safe.
func (g *Gateway) Sync(ctx context.Context) (*SyncResult, error) {
	if g.mode != ModeRemote {
		return nil, ErrNotConfigured
	}

	res := &SyncResult{}
	var errs []error

	n, err := syncCollection(ctx, g.locals.standups, g.remoteStandups)
	res.StandupsSynced = n
	if err != nil {
		res.StandupsError = err.Error()
		errs = append(errs, err)
	}

	n, err = syncCollection(ctx, g.locals.tickets, g.remoteTickets)
	res.TicketsSynced = n
	if err != nil {
		res.TicketsError = err.Error()
		errs = append(errs, err)
	}

	if res.Synced() > 0 {
		g.markSynced(ctx)
		log.Printf("✅ [SYNC] Moved %d standups and %d tickets to remote", res.StandupsSynced, res.TicketsSynced)
	}

	standups, err := g.Standups.List(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	res.Standups = standups

	return res, errors.Join(errs...)
}

func syncCollection[T record](ctx context.Context, local *localBackend[T], dst Backend[T]) (int, error) {
	recs, err := local.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	if err := dst.Upsert(ctx, recs); err != nil {
		return 0, err
	}
	if err := local.Clear(ctx); err != nil {
		return len(recs), fmt.Errorf("gateway: synced %d records but could not clear local copy: %w", len(recs), err)
	}
	return len(recs), nil
}

// markSynced records the sync time. Failure only logs: the records are
// already in place.
func (g *Gateway) markSynced(ctx context.Context) {
	if g.db == nil {
		return
	}
	cfg := models.SyncConfig{
		Key:   models.SyncConfigLastLocalSync,
		Value: g.now().UTC().Format(time.RFC3339),
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&cfg).Error
	if err != nil {
		log.Printf("⚠️ [SYNC] Could not record %s: %v", models.SyncConfigLastLocalSync, err)
	}
}
