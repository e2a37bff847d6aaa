package sqlite

import (
	"context"
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// LogToolEvent appends an immutable audit record of a tool invocation
// attempt. Tool events are never updated or deleted (spec.md §3:
// "append-only").
func (s *Store) LogToolEvent(ctx context.Context, e *store.ToolEvent) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	var statusChange *string
	if e.StatusChange != nil {
		v := string(*e.StatusChange)
		statusChange = &v
	}

	res, err := s.execContext(ctx, `
		INSERT INTO tool_events (
			worker_id, tool_name, success, error, metadata, git_commit_hash,
			status_change, is_status_updating, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.WorkerID, e.ToolName, e.Success, e.Error, e.Metadata, e.GitCommitHash,
		statusChange, e.IsStatusUpdating, timestamp.Unix(),
	)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "log tool event failed", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "tool event last insert id failed", err)
	}
	e.ID = id
	e.Timestamp = timestamp
	return nil
}
