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

// SpawnReviewRequest is the input to SpawnReview (spec.md §4.5.3).
type SpawnReviewRequest struct {
	ParentID     string
	ReviewPrompt string
	IssueNumber  *int
}

// SpawnReview implements the review spawn protocol of spec.md §4.5.3:
// validate the parent is a waiting coding worker, create a sibling
// worktree branched from the parent's branch, launch its terminal
// session and subprocess pair, seed it with a composed review prompt, and
// record the spawned_review relationship before moving the parent to
// under_review.
func (e *Engine) SpawnReview(ctx context.Context, req SpawnReviewRequest) (child *store.Worker, err error) {
	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "spawn_review", req.ParentID)
	defer func() { tracing.EndSpan(span, err) }()

	parent, err := e.Store.GetWorker(ctx, req.ParentID)
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowParentNotFound, "workflow", "parent not found", err)
	}
	if parent.Kind != store.KindCoding || parent.Status != store.StatusWaitingReview {
		return nil, swarmerr.New(swarmerr.KindWorkflowParentInvalidState, "workflow", "parent is not a coding worker awaiting review").
			WithDetail("parent_id", parent.ID).WithDetail("kind", string(parent.Kind)).WithDetail("status", string(parent.Status))
	}
	if parent.Branch == nil {
		return nil, swarmerr.New(swarmerr.KindWorkflowParentInvalidState, "workflow", "parent has no branch to review").WithDetail("parent_id", parent.ID)
	}

	if err := e.checkWorktreeCapacity(ctx); err != nil {
		return nil, err
	}

	id := childID(req.ParentID)
	branch := "review/" + id
	baseBranch := *parent.Branch

	now := time.Now()
	childWorker := &store.Worker{
		ID:           id,
		Kind:         store.KindReview,
		Status:       store.StatusStarted,
		ParentID:     &req.ParentID,
		IssueNumber:  req.IssueNumber,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := e.Store.CreateWorker(ctx, childWorker); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowLaunchFailed, "workflow", "failed to create review worker row", err)
	}

	h := resourceHandles{}
	fail := func(stepErr error) (*store.Worker, error) {
		e.cleanup(ctx, id, h, store.StatusFailed)
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowLaunchFailed, "workflow", "review spawn failed", stepErr).WithDetail("worker_id", id)
	}

	path := e.worktreePath(id)
	if err := e.Git.CreateWorktree(ctx, path, branch, baseBranch); err != nil {
		return fail(err)
	}
	h.WorktreePath = &path

	name := sessionName(id)
	envPairs := map[string]string{
		"INSTANCE_ID":        id,
		"PARENT_INSTANCE_ID": req.ParentID,
		"MCP_SERVER_TYPE":    string(store.KindReview),
		"MCP_AGENT_ID":       id,
	}
	env, err := newSessionEnv(envPairs)
	if err != nil {
		return fail(err)
	}
	if _, err := e.Term.CreateSession(ctx, createSessionRequest(name, path, envPairs, "")); err != nil {
		return fail(err)
	}
	h.SessionName = &name

	parentSession := ""
	if parent.SessionName != nil {
		parentSession = *parent.SessionName
	}
	toolArgs := []string{
		"--agent-id", id, "--workspace", path, "--branch", branch, "--session", name,
		"--parent-instance-id", req.ParentID, "--parent-tmux-session", parentSession,
	}
	if req.IssueNumber != nil {
		toolArgs = append(toolArgs, "--issue", fmt.Sprintf("%d", *req.IssueNumber))
	}
	toolHandle, err := e.Agent.StartToolServer(ctx, agentdriver.ToolServerSpec{
		Binary:  e.Cfg.ToolServerBinary(store.KindReview),
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

	parentPrompt := ""
	if parent.SystemPrompt != nil {
		parentPrompt = *parent.SystemPrompt
	}
	composed := composeReviewPrompt(e.Cfg.ReviewPromptTemplate, parentPrompt, req.ReviewPrompt)
	if err := e.Term.SendKeys(ctx, name, composed, true); err != nil {
		return fail(err)
	}

	updateNow := time.Now()
	if err := e.Store.UpdateWorker(ctx, id, store.WorkerPatch{
		WorktreePath:  &path,
		Branch:        &branch,
		BaseBranch:    &baseBranch,
		SessionName:   &name,
		LMPid:         &lmHandle.PID,
		ToolServerPid: &toolHandle.PID,
		LastActivity:  &updateNow,
	}); err != nil {
		return fail(err)
	}

	iteration, err := e.nextReviewIteration(ctx, req.ParentID)
	if err != nil {
		return fail(err)
	}
	rel := &store.Relationship{
		ParentID:  req.ParentID,
		ChildID:   id,
		Kind:      store.RelationshipSpawnedReview,
		Iteration: iteration,
	}
	if err := e.Store.CreateRelationship(ctx, rel); err != nil {
		return fail(err)
	}

	if err := e.transition(ctx, req.ParentID, store.StatusWaitingReview, store.StatusUnderReview, "spawn_review"); err != nil {
		return fail(err)
	}

	return e.Store.GetWorker(ctx, id)
}

// nextReviewIteration returns max(existing spawned_review iteration for
// parentID) + 1 (spec.md §4.5.3 step 9).
func (e *Engine) nextReviewIteration(ctx context.Context, parentID string) (int, error) {
	rels, err := e.Store.GetRelationships(ctx, parentID)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, r := range rels {
		if r.ParentID == parentID && r.Kind == store.RelationshipSpawnedReview && r.Iteration > max {
			max = r.Iteration
		}
	}
	return max + 1, nil
}
