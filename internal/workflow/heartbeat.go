package workflow

import (
	"context"
	"time"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// Heartbeat records that workerID's subprocess pair is still alive,
// reusing the existing last_activity column (SPEC_FULL.md §9 supplemented
// feature: no new schema needed, since staleness detection only cares
// about "how long since we last heard from this worker").
func (e *Engine) Heartbeat(ctx context.Context, workerID string) error {
	w, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindWorkflowInstanceNotFound, "workflow", "worker not found", err)
	}
	if w.Status.IsTerminal() {
		return swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "cannot heartbeat a terminal worker").WithDetail("worker_id", workerID)
	}
	now := time.Now()
	return e.Store.UpdateWorker(ctx, workerID, store.WorkerPatch{LastActivity: &now})
}
