package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/swarmctl/internal/agentdriver"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/tracing"
)

// LaunchRequest is the input to Launch (spec.md §4.5.2).
type LaunchRequest struct {
	Kind         store.Kind
	Prompt       string
	SystemPrompt string
	IssueNumber  *int
	BaseBranch   string
}

// settlingDelay is the pause between a worker's LM process starting and
// the composed prompt being sent into its terminal session, giving the LM
// CLI time to initialize its own stdin reader (spec.md §4.5.2 step 7
// "after a short settling delay").
const settlingDelay = 500 * time.Millisecond

// Launch implements the launch protocol of spec.md §4.5.2 for coding and
// planning workers: create a Store row, acquire a worktree, terminal
// session, and subprocess pair, then seed the session with the composed
// prompt. Any failure from worktree creation onward triggers cleanup of
// whatever was partially acquired and returns a workflow-launch-failed
// error.
func (e *Engine) Launch(ctx context.Context, req LaunchRequest) (w *store.Worker, err error) {
	if req.Kind != store.KindCoding && req.Kind != store.KindPlanning {
		return nil, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "launch only supports coding or planning workers").WithDetail("kind", string(req.Kind))
	}
	if req.Prompt == "" {
		return nil, swarmerr.New(swarmerr.KindWorkflowLaunchFailed, "workflow", "prompt is required")
	}

	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "launch", "")
	defer func() { tracing.EndSpan(span, err) }()

	if _, err := e.Git.ValidateRepo(ctx); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindGitRepoInvalid, "workflow", "canonical repository failed validation", err)
	}

	if err := e.checkWorktreeCapacity(ctx); err != nil {
		return nil, err
	}

	id := newWorkerID()
	baseBranch := req.BaseBranch
	if baseBranch == "" {
		baseBranch = e.Cfg.GitDefault
	}

	now := time.Now()
	worker := &store.Worker{
		ID:           id,
		Kind:         req.Kind,
		Status:       store.StatusStarted,
		IssueNumber:  req.IssueNumber,
		CreatedAt:    now,
		LastActivity: now,
	}
	if req.SystemPrompt != "" {
		worker.SystemPrompt = &req.SystemPrompt
	}
	if err := e.Store.CreateWorker(ctx, worker); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowLaunchFailed, "workflow", "failed to create worker row", err)
	}

	h := resourceHandles{}
	fail := func(stepErr error) (*store.Worker, error) {
		e.cleanup(ctx, id, h, store.StatusFailed)
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowLaunchFailed, "workflow", "launch failed", stepErr).WithDetail("worker_id", id)
	}

	path := e.worktreePath(id)
	branch := "swarm/" + id
	if err := e.Git.CreateWorktree(ctx, path, branch, baseBranch); err != nil {
		return fail(err)
	}
	h.WorktreePath = &path

	name := sessionName(id)
	envPairs := map[string]string{
		"INSTANCE_ID":     id,
		"MCP_SERVER_TYPE": string(req.Kind),
		"MCP_AGENT_ID":    id,
	}
	env, err := newSessionEnv(envPairs)
	if err != nil {
		return fail(err)
	}
	if _, err := e.Term.CreateSession(ctx, createSessionRequest(name, path, envPairs, "")); err != nil {
		return fail(err)
	}
	h.SessionName = &name

	toolArgs := []string{"--agent-id", id, "--workspace", path, "--branch", branch, "--session", name}
	if req.IssueNumber != nil {
		toolArgs = append(toolArgs, "--issue", fmt.Sprintf("%d", *req.IssueNumber))
	}
	toolHandle, err := e.Agent.StartToolServer(ctx, agentdriver.ToolServerSpec{
		Binary:  e.Cfg.ToolServerBinary(req.Kind),
		Args:    toolArgs,
		WorkDir: path,
		Env:     env,
	})
	if err != nil {
		return fail(err)
	}
	h.ToolServerPID = &toolHandle.PID
	e.registerHandle(id, nil, toolHandle)

	lmHandle, err := e.Agent.StartLM(ctx, agentdriver.LMSpec{
		Binary:  e.Cfg.LMBinary,
		WorkDir: path,
		Env:     env,
	})
	if err != nil {
		return fail(err)
	}
	h.LMPid = &lmHandle.PID
	e.registerHandle(id, lmHandle, nil)

	time.Sleep(settlingDelay)

	composed := composeLaunchPrompt(req.SystemPrompt, req.Prompt)
	if err := e.Term.SendKeys(ctx, name, composed, true); err != nil {
		return fail(err)
	}

	updateNow := time.Now()
	patch := store.WorkerPatch{
		WorktreePath:  &path,
		Branch:        &branch,
		BaseBranch:    &baseBranch,
		SessionName:   &name,
		LMPid:         &lmHandle.PID,
		ToolServerPid: &toolHandle.PID,
		LastActivity:  &updateNow,
	}
	if err := e.Store.UpdateWorker(ctx, id, patch); err != nil {
		return fail(err)
	}

	return e.Store.GetWorker(ctx, id)
}

// checkWorktreeCapacity enforces the configured concurrent-worktree cap
// at creation time (spec.md §5 "Configurable cap on concurrent
// worktrees ... excess rejected capacity").
func (e *Engine) checkWorktreeCapacity(ctx context.Context) error {
	active, err := e.Store.ListWorkers(ctx, store.ListFilter{
		Statuses: []store.Status{
			store.StatusStarted, store.StatusWaitingReview, store.StatusUnderReview,
			store.StatusFeedbackReceived, store.StatusCreatingPR,
		},
	})
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindStoreConnection, "workflow", "failed to count active worktrees", err)
	}
	if len(active) >= e.Cfg.WorktreeMax {
		return swarmerr.New(swarmerr.KindCapacity, "workflow", "worktree capacity exceeded").
			WithDetail("active", len(active)).WithDetail("max", e.Cfg.WorktreeMax).
			WithSuggestion("wait for an active worker to complete or raise WORKTREE_MAX")
	}
	return nil
}
