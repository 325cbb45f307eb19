// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

// Package store persists parsed danmaku lists in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is reported when a requested list is not in the store.
var ErrNotFound = errors.New("list not found")

// A Store is a handle to a database of danmaku lists. It is safe for
// concurrent use by multiple goroutines.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path, creating its parent directory
// if necessary, and brings its schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?"+strings.Join(pragmas, "&"))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema %d: %w", i, err)
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path reports the path of the database file.
func (s *Store) Path() string { return s.path }

// withTx calls fn in a transaction, which is committed if fn succeeds and
// rolled back otherwise.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no effect once committed
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// pragmas are applied by the driver to each new connection.
var pragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_pragma=busy_timeout(5000)",
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		source_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS comments (
		list_id TEXT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		text TEXT NOT NULL,
		time REAL NOT NULL,
		mode TEXT NOT NULL,
		size INTEGER NOT NULL,
		color INTEGER NOT NULL,
		bottom INTEGER NOT NULL DEFAULT 0,
		source_id TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (list_id, seq)
	);`,
}
