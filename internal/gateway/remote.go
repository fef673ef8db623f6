package gateway

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// remoteBackend maps records of type T onto rows of type R in one table.
type remoteBackend[T record, R any] struct {
	db *gorm.DB
	// set when the connection could not be opened; every call fails with it
	openErr error

	table       string
	orderColumn string
	toRow       func(T) R
	fromRow     func(R) T
	updates     func(T) map[string]any
}

func (b *remoteBackend[T, R]) Name() string { return "remote" }

func (b *remoteBackend[T, R]) conn(ctx context.Context) (*gorm.DB, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	if b.db == nil {
		return nil, errors.New("no connection")
	}
	return b.db.WithContext(ctx), nil
}

func (b *remoteBackend[T, R]) List(ctx context.Context) ([]T, error) {
	db, err := b.conn(ctx)
	if err != nil {
		return nil, backendError("list", b.table, err)
	}
	var rows []R
	if err := db.Order(b.orderColumn + " DESC").Find(&rows).Error; err != nil {
		return nil, backendError("list", b.table, err)
	}
	recs := make([]T, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, b.fromRow(r))
	}
	return recs, nil
}

func (b *remoteBackend[T, R]) Insert(ctx context.Context, rec T) error {
	db, err := b.conn(ctx)
	if err != nil {
		return backendError("insert into", b.table, err)
	}
	row := b.toRow(rec)
	if err := db.Create(&row).Error; err != nil {
		return backendError("insert into", b.table, err)
	}
	return nil
}

func (b *remoteBackend[T, R]) Update(ctx context.Context, rec T) error {
	db, err := b.conn(ctx)
	if err != nil {
		return backendError("update", b.table, err)
	}
	if err := db.Model(new(R)).Where("id = ?", rec.RecordID()).Updates(b.updates(rec)).Error; err != nil {
		return backendError("update", b.table, err)
	}
	return nil
}

// Upsert writes recs keyed by id; an existing row with the same id is overwritten.
func (b *remoteBackend[T, R]) Upsert(ctx context.Context, recs []T) error {
	if len(recs) == 0 {
		return nil
	}
	db, err := b.conn(ctx)
	if err != nil {
		return backendError("upsert into", b.table, err)
	}
	rows := make([]R, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, b.toRow(rec))
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		return backendError("upsert into", b.table, err)
	}
	return nil
}

func (b *remoteBackend[T, R]) Delete(ctx context.Context, id string) error {
	db, err := b.conn(ctx)
	if err != nil {
		return backendError("delete from", b.table, err)
	}
	if err := db.Where("id = ?", id).Delete(new(R)).Error; err != nil {
		return backendError("delete from", b.table, err)
	}
	return nil
}
