package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

const issueColumns = `number, repo_owner, repo_name, title, body, state, labels, created_at, updated_at, synced_at`

// CreateIssueRecord caches a task/issue created by a planning worker's
// create_task tool.
func (s *Store) CreateIssueRecord(ctx context.Context, rec *store.IssueRecord) error {
	now := time.Now()
	if rec.SyncedAt.IsZero() {
		rec.SyncedAt = now
	}
	_, err := s.execContext(ctx, `
		INSERT INTO issues (number, repo_owner, repo_name, title, body, state, labels, created_at, updated_at, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Number, rec.RepoOwner, rec.RepoName, rec.Title, rec.Body, rec.State, rec.Labels,
		rec.CreatedAt.Unix(), rec.UpdatedAt.Unix(), rec.SyncedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return swarmerr.New(swarmerr.KindStoreConflict, "store", "issue record already exists").
				WithDetail("number", rec.Number)
		}
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "insert issue record failed", err)
	}
	return nil
}

// GetIssueRecord returns the cached issue identified by number and repo.
func (s *Store) GetIssueRecord(ctx context.Context, number int, owner, name string) (*store.IssueRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+issueColumns+` FROM issues WHERE number = ? AND repo_owner = ? AND repo_name = ?`,
		number, owner, name)

	var rec store.IssueRecord
	var createdAt, updatedAt, syncedAt int64
	err := row.Scan(&rec.Number, &rec.RepoOwner, &rec.RepoName, &rec.Title, &rec.Body, &rec.State, &rec.Labels,
		&createdAt, &updatedAt, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, swarmerr.New(swarmerr.KindStoreNotFound, "store", "issue record not found").
			WithDetail("number", number)
	}
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "get issue record failed", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	rec.SyncedAt = time.Unix(syncedAt, 0).UTC()
	return &rec, nil
}
