// Package sqlite implements store.Store on top of a pure-Go, cgo-free
// SQLite driver. It follows the teacher's internal/infrastructure/sqlite
// layout: one *sql.DB shared by per-table files, Unix-timestamp columns,
// and nullable fields represented as typed pointers at the model boundary.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/store"
)

// Store implements store.Store against a SQLite database file.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema. path may be ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection, so this process's statements run one at a time;
	// callers hold no per-worker lock of their own.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	log.Info(log.CatStore, "opened database", "path", path)
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, query, args...)
}
