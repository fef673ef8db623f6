package gateway

import (
	"context"
	"sort"
	"time"
)

// record is implemented by the collection record types.
type record interface {
	RecordID() string
	Validate() error
}

// Backend is one place a record collection can live. The gateway picks a
// local or a remote implementation once, when it is constructed.
type Backend[T record] interface {
	Name() string
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, rec T) error
	Update(ctx context.Context, rec T) error
	Upsert(ctx context.Context, recs []T) error
	Delete(ctx context.Context, id string) error
}

// sortRecords orders recs newest first by key, keeping input order on ties.
func sortRecords[T any](recs []T, key func(T) time.Time) {
	sort.SliceStable(recs, func(i, j int) bool {
		return key(recs[i]).After(key(recs[j]))
	})
}
