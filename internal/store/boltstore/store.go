// Package boltstore is the embedded store backend, built on bolthold. Movies
// are stored whole, relations nested in the record, which gives the
// "relations replaced wholesale" upsert semantics for free: every save
// rewrites the record in a single transaction.
package boltstore

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"

	"github.com/moviegraph/moviegraph/internal/models"
)

// Store wraps the bolthold store
type Store struct {
	store *bolthold.Store
}

// Open opens (creating if needed) the database file
func Open(path string) (*Store, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{store: store}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.store.Close()
}

// storeErr tags a bolthold failure with the StoreFailure sentinel so callers
// can match it without importing bolthold.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, models.ErrStore, err)
}
