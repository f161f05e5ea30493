// Package prefs persists the last filter and sort chosen for a collection.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"placeplanner/internal/projection"
	"placeplanner/shared/go/models"
)

const keyPrefix = "prefs:"

// Preferences is the view state remembered for one scope.
type Preferences struct {
	Filter projection.FilterState `json:"filter"`
	Sort   projection.SortState   `json:"sort"`
}

// Defaults returns the preferences of a scope that has never saved any.
func Defaults() Preferences {
	return Preferences{Filter: projection.DefaultFilter(), Sort: projection.DefaultSort()}
}

// Store reads and writes preferences keyed by scope.
type Store interface {
	Load(ctx context.Context, scope models.Scope) (Preferences, error)
	Save(ctx context.Context, scope models.Scope, p Preferences) error
	Reset(ctx context.Context, scope models.Scope) error
}

// BadgerStore implements Store on BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// Open opens (or creates) a preference database in dir.
func Open(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory returns a store that keeps nothing on disk.
func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// Load returns the saved preferences, or Defaults when none were saved.
func (s *BadgerStore) Load(ctx context.Context, scope models.Scope) (Preferences, error) {
	if err := ctx.Err(); err != nil {
		return Preferences{}, err
	}

	p := Defaults()
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(scope))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get preferences: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return Defaults(), err
	}
	return p.normalized(), nil
}

// Save stores p for scope, replacing what was there.
func (s *BadgerStore) Save(ctx context.Context, scope models.Scope, p Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(scope), data)
	})
}

// Reset forgets the preferences of scope.
func (s *BadgerStore) Reset(ctx context.Context, scope models.Scope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(scope))
	})
}

func key(scope models.Scope) []byte {
	return []byte(keyPrefix + scope.Key())
}

// normalized fills in zero-valued modes left by older or partial records.
func (p Preferences) normalized() Preferences {
	if p.Filter.PlannedDate.Mode == "" {
		p.Filter.PlannedDate.Mode = projection.DateAny
	}
	if p.Sort.Key == "" {
		p.Sort.Key = projection.SortTitle
	}
	if p.Sort.Direction == "" {
		p.Sort.Direction = projection.Asc
	}
	return p
}
