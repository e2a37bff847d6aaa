package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// CreateWorker inserts a new worker row. The id is caller-assigned
// (spec.md §3: ids are generated by the caller, typically google/uuid).
func (s *Store) CreateWorker(ctx context.Context, w *store.Worker) error {
	r := toWorkerRow(w)
	_, err := s.execContext(ctx, `
		INSERT INTO workers (
			id, kind, status, worktree_path, branch, base_branch, session_name,
			lm_pid, tool_server_pid, issue_number, system_prompt, parent_id, pr_number, pr_url,
			created_at, last_activity, terminated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Status, r.WorktreePath, r.Branch, r.BaseBranch, r.SessionName,
		r.LMPid, r.ToolServerPid, r.IssueNumber, r.SystemPrompt, r.ParentID, r.PRNumber, r.PRURL,
		r.CreatedAt, r.LastActivity, r.TerminatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return swarmerr.New(swarmerr.KindStoreConflict, "store", "worker already exists").WithDetail("id", w.ID)
		}
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "insert worker failed", err)
	}
	return nil
}

// GetWorker returns the worker with the given id.
func (s *Store) GetWorker(ctx context.Context, id string) (*store.Worker, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workerColumns+` FROM workers WHERE id = ?`, id)
	r, err := scanWorker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, swarmerr.New(swarmerr.KindStoreNotFound, "store", "worker not found").WithDetail("id", id)
	}
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "get worker failed", err)
	}
	return r.toDomain(), nil
}

// UpdateWorker applies patch to the worker with id. Returns KindStoreTerminal
// if the worker is terminated, or if it is completed or failed and patch
// changes its status. A completed or failed row still accepts a patch that
// keeps its status, which is how cleanup sets terminated_at and clears
// handles after create_pull_request or create_task.
func (s *Store) UpdateWorker(ctx context.Context, id string, patch store.WorkerPatch) error {
	current, err := s.GetWorker(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == store.StatusTerminated ||
		(current.Status.IsTerminal() && patch.Status != nil && *patch.Status != current.Status) {
		return swarmerr.New(swarmerr.KindStoreTerminal, "store", "worker is in a terminal state").
			WithDetail("id", id).WithDetail("status", string(current.Status))
	}

	sets := make([]string, 0, 16)
	args := make([]any, 0, 16)

	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.WorktreePath != nil {
		sets = append(sets, "worktree_path = ?")
		args = append(args, *patch.WorktreePath)
	} else if patch.ClearWorktreePath {
		sets = append(sets, "worktree_path = NULL")
	}
	if patch.Branch != nil {
		sets = append(sets, "branch = ?")
		args = append(args, *patch.Branch)
	} else if patch.ClearBranch {
		sets = append(sets, "branch = NULL")
	}
	if patch.BaseBranch != nil {
		sets = append(sets, "base_branch = ?")
		args = append(args, *patch.BaseBranch)
	} else if patch.ClearBaseBranch {
		sets = append(sets, "base_branch = NULL")
	}
	if patch.SessionName != nil {
		sets = append(sets, "session_name = ?")
		args = append(args, *patch.SessionName)
	} else if patch.ClearSessionName {
		sets = append(sets, "session_name = NULL")
	}
	if patch.LMPid != nil {
		sets = append(sets, "lm_pid = ?")
		args = append(args, int64(*patch.LMPid))
	} else if patch.ClearLMPid {
		sets = append(sets, "lm_pid = NULL")
	}
	if patch.ToolServerPid != nil {
		sets = append(sets, "tool_server_pid = ?")
		args = append(args, int64(*patch.ToolServerPid))
	} else if patch.ClearToolServerPid {
		sets = append(sets, "tool_server_pid = NULL")
	}
	if patch.IssueNumber != nil {
		sets = append(sets, "issue_number = ?")
		args = append(args, int64(*patch.IssueNumber))
	}
	if patch.SystemPrompt != nil {
		sets = append(sets, "system_prompt = ?")
		args = append(args, *patch.SystemPrompt)
	}
	if patch.PRNumber != nil {
		sets = append(sets, "pr_number = ?")
		args = append(args, int64(*patch.PRNumber))
	}
	if patch.PRURL != nil {
		sets = append(sets, "pr_url = ?")
		args = append(args, *patch.PRURL)
	}
	if patch.TerminatedAt != nil {
		sets = append(sets, "terminated_at = ?")
		args = append(args, patch.TerminatedAt.Unix())
	}

	lastActivity := time.Now()
	if patch.LastActivity != nil {
		lastActivity = *patch.LastActivity
	}
	sets = append(sets, "last_activity = ?")
	args = append(args, lastActivity.Unix())

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE workers SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := s.execContext(ctx, query, args...)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "update worker failed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "update worker rows affected failed", err)
	}
	if n == 0 {
		return swarmerr.New(swarmerr.KindStoreNotFound, "store", "worker not found").WithDetail("id", id)
	}
	return nil
}

// ListWorkers returns workers matching f, ordered and paginated.
func (s *Store) ListWorkers(ctx context.Context, f store.ListFilter) ([]*store.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE 1=1`
	var args []any

	if len(f.Kinds) > 0 {
		query += " AND kind IN (" + placeholders(len(f.Kinds)) + ")"
		for _, k := range f.Kinds {
			args = append(args, string(k))
		}
	}
	if len(f.Statuses) > 0 {
		query += " AND status IN (" + placeholders(len(f.Statuses)) + ")"
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if f.ParentID != nil {
		query += " AND parent_id = ?"
		args = append(args, *f.ParentID)
	}

	orderBy := "created_at"
	if f.OrderBy == store.OrderByLastActivity {
		orderBy = "last_activity"
	}
	dir := "DESC"
	if f.Direction == store.Asc {
		dir = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", orderBy, dir)

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "list workers failed", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*store.Worker
	for rows.Next() {
		r, err := scanWorker(rows)
		if err != nil {
			return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "scan worker row failed", err)
		}
		out = append(out, r.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindStoreConnection, "store", "iterate worker rows failed", err)
	}
	return out, nil
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "?"
	}
	return strings.Join(ph, ", ")
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
