package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"standup-service/internal/localstore"
	"standup-service/pkg/models"
)

// localBackend keeps a whole collection as one JSON array under a single
// local store key.
type localBackend[T record] struct {
	kv      localstore.KV
	key     string
	sortKey func(T) time.Time

	// guards read-modify-write of the stored array
	mu sync.Mutex
}

func newLocalBackend[T record](kv localstore.KV, key string, sortKey func(T) time.Time) *localBackend[T] {
	return &localBackend[T]{kv: kv, key: key, sortKey: sortKey}
}

func (b *localBackend[T]) Name() string { return "local" }

// load returns the stored collection sorted. A value that no longer parses is
// treated as an empty collection.
func (b *localBackend[T]) load(ctx context.Context) ([]T, error) {
	v, ok, err := b.kv.Get(ctx, b.key)
	if err != nil {
		return nil, fmt.Errorf("gateway: read local %s: %w", b.key, err)
	}
	recs := []T{}
	if !ok || v == "" {
		return recs, nil
	}
	if err := json.Unmarshal([]byte(v), &recs); err != nil {
		log.Printf("⚠️ [LOCAL] Ignoring unreadable %s: %v", b.key, err)
		return []T{}, nil
	}
	sortRecords(recs, b.sortKey)
	return recs, nil
}

func (b *localBackend[T]) store(ctx context.Context, recs []T) error {
	sortRecords(recs, b.sortKey)
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("gateway: encode local %s: %w", b.key, err)
	}
	if err := b.kv.Set(ctx, b.key, string(data)); err != nil {
		return fmt.Errorf("gateway: write local %s: %w", b.key, err)
	}
	return nil
}

func (b *localBackend[T]) List(ctx context.Context) ([]T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(ctx)
}

func (b *localBackend[T]) Insert(ctx context.Context, rec T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	recs, err := b.load(ctx)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if r.RecordID() == rec.RecordID() {
			return fmt.Errorf("%w: id %q already exists", models.ErrValidation, rec.RecordID())
		}
	}
	return b.store(ctx, append([]T{rec}, recs...))
}

func (b *localBackend[T]) Update(ctx context.Context, rec T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	recs, err := b.load(ctx)
	if err != nil {
		return err
	}
	for i := range recs {
		if recs[i].RecordID() == rec.RecordID() {
			recs[i] = rec
		}
	}
	return b.store(ctx, recs)
}

func (b *localBackend[T]) Upsert(ctx context.Context, in []T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	recs, err := b.load(ctx)
	if err != nil {
		return err
	}
	for _, rec := range in {
		replaced := false
		for i := range recs {
			if recs[i].RecordID() == rec.RecordID() {
				recs[i] = rec
				replaced = true
			}
		}
		if !replaced {
			recs = append([]T{rec}, recs...)
		}
	}
	return b.store(ctx, recs)
}

func (b *localBackend[T]) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	recs, err := b.load(ctx)
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, r := range recs {
		if r.RecordID() != id {
			kept = append(kept, r)
		}
	}
	return b.store(ctx, kept)
}

// Clear drops the whole collection. Sync calls it once the remote copy is in place.
func (b *localBackend[T]) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.kv.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("gateway: clear local %s: %w", b.key, err)
	}
	return nil
}
