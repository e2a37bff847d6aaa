package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// GetConfigEntry returns the cached config value for key.
func (s *Store) GetConfigEntry(ctx context.Context, key string) (*store.ConfigEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT key, value, encrypted, updated_at FROM config WHERE key = ?`, key)
	var e store.ConfigEntry
	var updatedAt int64
	err := row.Scan(&e.Key, &e.Value, &e.Encrypted, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, swarmerr.New(swarmerr.KindStoreNotFound, "store", "config entry not found").WithDetail("key", key)
	}
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "get config entry failed", err)
	}
	e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &e, nil
}

// SetConfigEntry upserts a config key/value pair.
func (s *Store) SetConfigEntry(ctx context.Context, e *store.ConfigEntry) error {
	updatedAt := e.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := s.execContext(ctx, `
		INSERT INTO config (key, value, encrypted, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, encrypted = excluded.encrypted, updated_at = excluded.updated_at`,
		e.Key, e.Value, e.Encrypted, updatedAt.Unix(),
	)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "set config entry failed", err)
	}
	e.UpdatedAt = updatedAt
	return nil
}
