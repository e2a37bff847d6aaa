package sqlite

import (
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
)

// workerColumns lists the columns selected for every worker query, in the
// order scanWorker expects them.
const workerColumns = `id, kind, status, worktree_path, branch, base_branch, session_name,
	lm_pid, tool_server_pid, issue_number, system_prompt, parent_id, pr_number, pr_url,
	created_at, last_activity, terminated_at`

// workerRow mirrors the workers table layout. Nullable columns are typed
// pointers, matching the teacher's SessionModel convention.
type workerRow struct {
	ID            string
	Kind          string
	Status        string
	WorktreePath  *string
	Branch        *string
	BaseBranch    *string
	SessionName   *string
	LMPid         *int64
	ToolServerPid *int64
	IssueNumber   *int64
	SystemPrompt  *string
	ParentID      *string
	PRNumber      *int64
	PRURL         *string
	CreatedAt     int64
	LastActivity  int64
	TerminatedAt  *int64
}

func toWorkerRow(w *store.Worker) *workerRow {
	r := &workerRow{
		ID:           w.ID,
		Kind:         string(w.Kind),
		Status:       string(w.Status),
		WorktreePath: w.WorktreePath,
		Branch:       w.Branch,
		BaseBranch:   w.BaseBranch,
		SessionName:  w.SessionName,
		SystemPrompt: w.SystemPrompt,
		ParentID:     w.ParentID,
		PRURL:        w.PRURL,
		CreatedAt:    w.CreatedAt.Unix(),
		LastActivity: w.LastActivity.Unix(),
	}
	if w.LMPid != nil {
		v := int64(*w.LMPid)
		r.LMPid = &v
	}
	if w.ToolServerPid != nil {
		v := int64(*w.ToolServerPid)
		r.ToolServerPid = &v
	}
	if w.IssueNumber != nil {
		v := int64(*w.IssueNumber)
		r.IssueNumber = &v
	}
	if w.PRNumber != nil {
		v := int64(*w.PRNumber)
		r.PRNumber = &v
	}
	if w.TerminatedAt != nil {
		v := w.TerminatedAt.Unix()
		r.TerminatedAt = &v
	}
	return r
}

func (r *workerRow) toDomain() *store.Worker {
	w := &store.Worker{
		ID:           r.ID,
		Kind:         store.Kind(r.Kind),
		Status:       store.Status(r.Status),
		WorktreePath: r.WorktreePath,
		Branch:       r.Branch,
		BaseBranch:   r.BaseBranch,
		SessionName:  r.SessionName,
		SystemPrompt: r.SystemPrompt,
		ParentID:     r.ParentID,
		PRURL:        r.PRURL,
		CreatedAt:    time.Unix(r.CreatedAt, 0).UTC(),
		LastActivity: time.Unix(r.LastActivity, 0).UTC(),
	}
	if r.LMPid != nil {
		v := int(*r.LMPid)
		w.LMPid = &v
	}
	if r.ToolServerPid != nil {
		v := int(*r.ToolServerPid)
		w.ToolServerPid = &v
	}
	if r.IssueNumber != nil {
		v := int(*r.IssueNumber)
		w.IssueNumber = &v
	}
	if r.PRNumber != nil {
		v := int(*r.PRNumber)
		w.PRNumber = &v
	}
	if r.TerminatedAt != nil {
		t := time.Unix(*r.TerminatedAt, 0).UTC()
		w.TerminatedAt = &t
	}
	return w
}

func scanWorker(scanner interface{ Scan(...any) error }) (*workerRow, error) {
	var r workerRow
	err := scanner.Scan(
		&r.ID, &r.Kind, &r.Status, &r.WorktreePath, &r.Branch, &r.BaseBranch, &r.SessionName,
		&r.LMPid, &r.ToolServerPid, &r.IssueNumber, &r.SystemPrompt, &r.ParentID, &r.PRNumber, &r.PRURL,
		&r.CreatedAt, &r.LastActivity, &r.TerminatedAt,
	)
	return &r, err
}
