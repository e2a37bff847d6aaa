package sqlite

import (
	"context"

	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// Backup writes a consistent snapshot of the database to path using
// SQLite's VACUUM INTO, which copies a defragmented, lock-consistent image
// in a single statement.
func (s *Store) Backup(ctx context.Context, path string) error {
	_, err := s.execContext(ctx, `VACUUM INTO ?`, path)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "backup failed", err)
	}
	log.Info(log.CatStore, "backup complete", "path", path)
	return nil
}

// Vacuum reclaims space left by deleted rows and defragments the database
// file in place.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.execContext(ctx, `VACUUM`); err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "vacuum failed", err)
	}
	log.Info(log.CatStore, "vacuum complete")
	return nil
}
