package workflow

import (
	"context"
	"time"

	"github.com/zjrosen/swarmctl/internal/agentdriver"
	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/termdriver"
)

// resourceHandles is the subset of a Worker row cleanup needs: enough to
// tear down each acquired resource in reverse order without re-reading the
// whole row at every step.
type resourceHandles struct {
	ToolServerPID *int
	LMPid         *int
	SessionName   *string
	WorktreePath  *string
}

// cleanup runs the reverse-order teardown protocol of spec.md §4.5.5.
// Every step's failure is logged but never short-circuits a later step;
// the worker is left in status terminated (or its existing terminal
// status) regardless of individual driver failures.
func (e *Engine) cleanup(ctx context.Context, id string, h resourceHandles, finalStatus store.Status) {
	e.cleanupNamed(ctx, id, h, finalStatus, "cleanup")
}

// cleanupNamed is cleanup with an explicit tool name attached to the final
// status-change ToolEvent, so the audit trail records which tool call
// actually drove the worker into its terminal state (e.g. request_changes
// for a review worker, create_pull_request for completion).
func (e *Engine) cleanupNamed(ctx context.Context, id string, h resourceHandles, finalStatus store.Status, toolName string) {
	lmHandle, toolServerHandle := e.liveHandlesFor(id)
	defer e.dropHandles(id)

	toolServerCleared := true
	if h.ToolServerPID != nil {
		var err error
		if toolServerHandle != nil {
			err = e.Agent.TerminateToolServer(ctx, toolServerHandle, agentdriver.TerminateOptions{GracePeriod: e.Cfg.TermKillTimeout})
		} else {
			err = e.Agent.TerminatePID(ctx, *h.ToolServerPID, agentdriver.TerminateOptions{GracePeriod: e.Cfg.TermKillTimeout})
		}
		if err != nil {
			toolServerCleared = false
			e.recordCleanupFailure(ctx, id, toolName, "tool_server_pid", err)
		}
	}

	lmCleared := true
	if h.LMPid != nil {
		var err error
		if lmHandle != nil {
			err = e.Agent.TerminateLM(ctx, lmHandle, agentdriver.TerminateOptions{GracePeriod: e.Cfg.TermKillTimeout})
		} else {
			err = e.Agent.TerminatePID(ctx, *h.LMPid, agentdriver.TerminateOptions{GracePeriod: e.Cfg.TermKillTimeout})
		}
		if err != nil {
			lmCleared = false
			e.recordCleanupFailure(ctx, id, toolName, "lm_pid", err)
		}
	}

	sessionCleared := true
	if h.SessionName != nil {
		if err := e.Term.KillSession(ctx, *h.SessionName, termdriver.KillSessionOptions{GracefulTimeout: e.Cfg.TermKillTimeout}); err != nil {
			sessionCleared = false
			e.recordCleanupFailure(ctx, id, toolName, "session_name", err)
		}
	}

	worktreeCleared := true
	if h.WorktreePath != nil {
		if err := e.Git.RemoveWorktree(ctx, *h.WorktreePath); err != nil {
			worktreeCleared = false
			e.recordCleanupFailure(ctx, id, toolName, "worktree_path", err)
		}
	}

	// Only handles that actually tore down are nulled; a failed step
	// leaves its handle populated so operator tooling can retry (spec.md
	// §4.5.5, §8 resource-conservation property).
	now := time.Now()
	patch := store.WorkerPatch{
		Status:             &finalStatus,
		TerminatedAt:       &now,
		LastActivity:       &now,
		ClearWorktreePath:  worktreeCleared,
		ClearBranch:        false,
		ClearBaseBranch:    false,
		ClearSessionName:   sessionCleared,
		ClearLMPid:         lmCleared,
		ClearToolServerPid: toolServerCleared,
	}
	updateErr := e.Store.UpdateWorker(ctx, id, patch)
	if updateErr != nil {
		log.ErrorErr(log.CatWorkflow, "cleanup: failed to finalize worker row", updateErr, "worker_id", id)
	}
	e.emitStatusEvent(ctx, id, toolName, updateErr == nil, finalStatus, updateErr)
}

// recordCleanupFailure logs and audits a single teardown step's failure,
// naming the leaked handle so operator tooling knows what to retry
// (spec.md §8: "a workflow-cleanup-failed ToolEvent naming the leaked
// handle").
func (e *Engine) recordCleanupFailure(ctx context.Context, id, toolName, handle string, cause error) {
	log.ErrorErr(log.CatWorkflow, "cleanup: failed to tear down resource", cause, "worker_id", id, "handle", handle)
	failErr := swarmerr.Wrap(swarmerr.KindWorkflowCleanupFailed, "workflow", "failed to tear down "+handle, cause).
		WithDetail("handle", handle).WithDetail("worker_id", id)
	e.emitToolEvent(ctx, id, toolName, false, failErr)
}

// handlesFromWorker extracts the resource handles currently populated on
// w, for use by Cleanup when called against an existing Store row (as
// opposed to the partial in-flight state tracked during Launch/SpawnReview).
func handlesFromWorker(w *store.Worker) resourceHandles {
	return resourceHandles{
		ToolServerPID: w.ToolServerPid,
		LMPid:         w.LMPid,
		SessionName:   w.SessionName,
		WorktreePath:  w.WorktreePath,
	}
}

// Cleanup tears down a worker's acquired resources and marks it terminal.
// If the worker is already in a terminal status, its existing status is
// retained rather than overwritten with terminated (spec.md §4.5.5 step 5).
func (e *Engine) Cleanup(ctx context.Context, id string) error {
	w, err := e.Store.GetWorker(ctx, id)
	if err != nil {
		return err
	}
	final := store.StatusTerminated
	if w.Status.IsTerminal() {
		final = w.Status
	}
	e.cleanup(ctx, id, handlesFromWorker(w), final)
	return nil
}
