package boltstore

import (
	"context"
	"errors"

	"github.com/timshannon/bolthold"

	"github.com/moviegraph/moviegraph/internal/models"
)

// pageCursor is the persisted bulk-sync cursor, one per category.
type pageCursor struct {
	Category string `boltholdKey:"Category"`
	LastPage int
}

// LastPage returns the last externally-fetched page for the category,
// 0 when the category has never been synced.
func (s *Store) LastPage(ctx context.Context, category models.SyncCategory) (int, error) {
	var cursor pageCursor
	err := s.store.Get(string(category), &cursor)
	if errors.Is(err, bolthold.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("get page cursor", err)
	}
	return cursor.LastPage, nil
}

// SetLastPage records the page just fetched for the category.
func (s *Store) SetLastPage(ctx context.Context, category models.SyncCategory, page int) error {
	cursor := pageCursor{Category: string(category), LastPage: page}
	if err := s.store.Upsert(cursor.Category, &cursor); err != nil {
		return storeErr("set page cursor", err)
	}
	return nil
}
