package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"standup-service/pkg/models"
)

// Collection is the CRUD surface of one record kind. Reads in remote mode
// fall back to the local copy when the remote request fails; writes never
// fall back and surface the failure instead.
type Collection[T record] struct {
	name   string
	active Backend[T]
	local  *localBackend[T]
	remote bool

	// prepare fills defaults before a write; creating is false on Update.
	prepare func(rec T, creating bool) T
}

// List returns every record, newest first.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	recs, err := c.active.List(ctx)
	if err == nil {
		return recs, nil
	}
	if !c.remote {
		return nil, err
	}
	if errors.Is(err, ErrSchemaMissing) {
		log.Printf("⚠️ [GATEWAY] Remote %s table missing, serving local copy", c.name)
	} else {
		log.Printf("⚠️ [GATEWAY] Reading %s from remote failed, serving local copy: %v", c.name, err)
	}
	return c.local.List(ctx)
}

// Latest returns the newest record, or nil for an empty collection.
func (c *Collection[T]) Latest(ctx context.Context) (*T, error) {
	recs, err := c.List(ctx)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

// Create inserts rec and returns the refreshed list.
func (c *Collection[T]) Create(ctx context.Context, rec T) ([]T, error) {
	rec = c.prepare(rec, true)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := c.active.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Update replaces the record with rec's id. An unknown id changes nothing.
func (c *Collection[T]) Update(ctx context.Context, rec T) ([]T, error) {
	rec = c.prepare(rec, false)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := c.active.Update(ctx, rec); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Save inserts rec or overwrites the record with the same id.
func (c *Collection[T]) Save(ctx context.Context, rec T) ([]T, error) {
	rec = c.prepare(rec, true)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := c.active.Upsert(ctx, []T{rec}); err != nil {
		return nil, err
	}
	return c.List(ctx)
}

// Remove deletes the record with id. Removing an unknown id is not an error.
func (c *Collection[T]) Remove(ctx context.Context, id string) ([]T, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: id is required", models.ErrValidation)
	}
	if err := c.active.Delete(ctx, id); err != nil {
		return nil, err
	}
	return c.List(ctx)
}
