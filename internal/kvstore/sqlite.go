// Package kvstore provides the persistent backends behind settings.Store.
package kvstore

import (
	"context"

	"github.com/b0ase/ckwidget/internal/db"
)

// SQLite stores keys in the config table of the shared database. db.Open
// must have been called first.
type SQLite struct{}

func NewSQLite() *SQLite {
	return &SQLite{}
}

func (s *SQLite) Get(_ context.Context, key string) (string, bool, error) {
	return db.LookupConfig(key)
}

func (s *SQLite) Set(_ context.Context, key, value string) error {
	return db.SetConfig(key, value)
}

func (s *SQLite) Close() error {
	db.Close()
	return nil
}
