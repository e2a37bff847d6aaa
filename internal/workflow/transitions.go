package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zjrosen/swarmctl/internal/hostingclient"
	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/tracing"
)

// RequestReview implements the request_review tool (spec.md §4.5.4):
// called by a coding worker to move itself from started to waiting_review
// and immediately spawn a review worker against its current branch.
func (e *Engine) RequestReview(ctx context.Context, workerID, description string) (child *store.Worker, err error) {
	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "request_review", workerID)
	defer func() { tracing.EndSpan(span, err) }()

	w, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowInstanceNotFound, "workflow", "worker not found", err)
	}
	if w.Kind != store.KindCoding {
		return nil, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "only coding workers may request review").WithDetail("worker_id", workerID)
	}
	if err := e.transition(ctx, workerID, w.Status, store.StatusWaitingReview, "request_review"); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindWorkflowInvalidState, "workflow", "cannot request review from current state", err).
			WithSuggestion("wait for the active review to terminate before requesting another")
	}

	return e.SpawnReview(ctx, SpawnReviewRequest{ParentID: workerID, ReviewPrompt: description})
}

// reviewDecision is the JSON shape recorded into the spawned_review
// relationship's metadata column once the review concludes (spec.md
// §4.5.4 "{review, decision, completed_at}").
type reviewDecision struct {
	Review      string    `json:"review"`
	Decision    string    `json:"decision"`
	CompletedAt time.Time `json:"completed_at"`
}

// RequestChanges implements the request_changes tool (spec.md §4.5.4):
// called by a review worker to push feedback back into its parent's
// session, resume the parent, record the decision, and terminate itself.
func (e *Engine) RequestChanges(ctx context.Context, reviewWorkerID, feedback string) (err error) {
	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "request_changes", reviewWorkerID)
	defer func() { tracing.EndSpan(span, err) }()

	review, err := e.Store.GetWorker(ctx, reviewWorkerID)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindWorkflowInstanceNotFound, "workflow", "review worker not found", err)
	}
	if review.Kind != store.KindReview {
		return swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "only review workers may request changes").WithDetail("worker_id", reviewWorkerID)
	}
	if review.ParentID == nil {
		return swarmerr.New(swarmerr.KindWorkflowParentNotFound, "workflow", "review worker has no parent").WithDetail("worker_id", reviewWorkerID)
	}

	parent, err := e.Store.GetWorker(ctx, *review.ParentID)
	if err != nil {
		return swarmerr.Wrap(swarmerr.KindWorkflowParentNotFound, "workflow", "parent not found", err)
	}

	block := composeFeedbackBlock(feedback)
	if parent.Status == store.StatusTerminated {
		// Degrade to a best-effort attempt (spec.md §4.5.4 tie-break):
		// the parent is already gone, so failing to reach its session is
		// not fatal to finishing this review.
		if parent.SessionName != nil {
			if sendErr := e.Term.SendKeys(ctx, *parent.SessionName, block, true); sendErr != nil {
				log.Warn(log.CatWorkflow, "request_changes: best-effort send_keys to terminated parent failed", "parent_id", parent.ID, "error", sendErr.Error())
			}
		}
	} else {
		if parent.SessionName == nil {
			return swarmerr.New(swarmerr.KindWorkflowParentInvalidState, "workflow", "parent has no session to receive feedback").WithDetail("parent_id", parent.ID)
		}
		if sendErr := e.Term.SendKeys(ctx, *parent.SessionName, block, true); sendErr != nil {
			return swarmerr.Wrap(swarmerr.KindWorkflowFeedbackDeliveryFailed, "workflow", "failed to deliver feedback to parent session", sendErr)
		}

		if parent.Status == store.StatusUnderReview {
			if err := e.transition(ctx, parent.ID, store.StatusUnderReview, store.StatusFeedbackReceived, "request_changes"); err != nil {
				return err
			}
			if err := e.transition(ctx, parent.ID, store.StatusFeedbackReceived, store.StatusStarted, "request_changes"); err != nil {
				return err
			}
		}
	}

	if err := e.recordReviewDecision(ctx, *review.ParentID, reviewWorkerID, feedback, changesRequestedMarker); err != nil {
		log.ErrorErr(log.CatWorkflow, "request_changes: failed to record review decision", err, "review_id", reviewWorkerID)
	}

	reviewRow, err := e.Store.GetWorker(ctx, reviewWorkerID)
	if err != nil {
		return err
	}
	e.cleanupNamed(ctx, reviewWorkerID, handlesFromWorker(reviewRow), store.StatusTerminated, "request_changes")
	return nil
}

// recordReviewDecision finds the spawned_review relationship between
// parentID and childID and overwrites its metadata with the review
// decision (spec.md §4.5.4).
func (e *Engine) recordReviewDecision(ctx context.Context, parentID, childID, review, decision string) error {
	rels, err := e.Store.GetRelationships(ctx, parentID)
	if err != nil {
		return err
	}
	for _, r := range rels {
		if r.ParentID == parentID && r.ChildID == childID && r.Kind == store.RelationshipSpawnedReview {
			payload, err := json.Marshal(reviewDecision{Review: review, Decision: decision, CompletedAt: time.Now()})
			if err != nil {
				return err
			}
			return e.Store.UpdateRelationshipMetadata(ctx, r.ID, string(payload))
		}
	}
	return swarmerr.New(swarmerr.KindStoreNotFound, "workflow", "spawned_review relationship not found").
		WithDetail("parent_id", parentID).WithDetail("child_id", childID)
}

// CreatePullRequest implements the create_pull_request tool (spec.md
// §4.5.4), callable by coding or review workers. On success the caller
// moves to completed, records the PR number/URL, and is cleaned up. On
// failure a coding caller reverts to started; a review caller is left in
// place for operator action.
func (e *Engine) CreatePullRequest(ctx context.Context, workerID string, req hostingclient.PRRequest) (result hostingclient.PRResult, err error) {
	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "create_pull_request", workerID)
	defer func() { tracing.EndSpan(span, err) }()

	w, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return hostingclient.PRResult{}, swarmerr.Wrap(swarmerr.KindWorkflowInstanceNotFound, "workflow", "worker not found", err)
	}
	if w.Kind != store.KindCoding && w.Kind != store.KindReview {
		return hostingclient.PRResult{}, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "only coding or review workers may create pull requests").WithDetail("worker_id", workerID)
	}
	if w.WorktreePath == nil {
		return hostingclient.PRResult{}, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "worker has no worktree").WithDetail("worker_id", workerID)
	}

	if err := e.transition(ctx, workerID, w.Status, store.StatusCreatingPR, "create_pull_request"); err != nil {
		return hostingclient.PRResult{}, swarmerr.Wrap(swarmerr.KindWorkflowInvalidState, "workflow", "cannot create pull request from current state", err)
	}

	client := e.Hosting(*w.WorktreePath)
	result, prErr := client.CreatePullRequest(ctx, req)
	if prErr != nil {
		prErr = swarmerr.Wrap(swarmerr.KindWorkflowPRCreationFailed, "workflow", "pull request creation failed", prErr)
		if w.Kind == store.KindCoding {
			if revertErr := e.transition(ctx, workerID, store.StatusCreatingPR, store.StatusStarted, "create_pull_request"); revertErr != nil {
				log.ErrorErr(log.CatWorkflow, "create_pull_request: failed to revert coding worker to started", revertErr, "worker_id", workerID)
			}
		} else {
			e.emitStatusEvent(ctx, workerID, "create_pull_request", false, store.StatusCreatingPR, prErr)
		}
		return hostingclient.PRResult{}, prErr
	}

	now := time.Now()
	completed := store.StatusCompleted
	if err := e.Store.UpdateWorker(ctx, workerID, store.WorkerPatch{
		Status:       &completed,
		PRNumber:     &result.Number,
		PRURL:        &result.URL,
		LastActivity: &now,
	}); err != nil {
		return hostingclient.PRResult{}, swarmerr.Wrap(swarmerr.KindStoreConnection, "workflow", "failed to record pull request result", err)
	}
	e.emitStatusEvent(ctx, workerID, "create_pull_request", true, completed, nil)

	wRow, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return result, err
	}
	e.cleanupNamed(ctx, workerID, handlesFromWorker(wRow), store.StatusCompleted, "create_pull_request")
	return result, nil
}

// CreateTaskRequest is the input to CreateTask (spec.md §4.6 create_task
// tool schema).
type CreateTaskRequest struct {
	Title           string
	Description     string
	Priority        string
	EstimatedHours  *float64
	RepoOwner       string
	RepoName        string
}

// CreateTask implements the create_task tool (spec.md §4.5.4): records an
// IssueRecord and completes the calling planning worker.
func (e *Engine) CreateTask(ctx context.Context, workerID string, req CreateTaskRequest) (issueNumber int, err error) {
	ctx, span := tracing.StartWorkflowSpan(ctx, e.Tracer, "create_task", workerID)
	defer func() { tracing.EndSpan(span, err) }()

	w, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return 0, swarmerr.Wrap(swarmerr.KindWorkflowInstanceNotFound, "workflow", "worker not found", err)
	}
	if w.Kind != store.KindPlanning {
		return 0, swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "only planning workers may create tasks").WithDetail("worker_id", workerID)
	}

	issueNumber = e.nextIssueNumber(ctx, req.RepoOwner, req.RepoName)
	now := time.Now()
	rec := &store.IssueRecord{
		Number:    issueNumber,
		RepoOwner: req.RepoOwner,
		RepoName:  req.RepoName,
		Title:     req.Title,
		Body:      req.Description,
		State:     "open",
		Labels:    req.Priority,
		CreatedAt: now,
		UpdatedAt: now,
		SyncedAt:  now,
	}
	if err := e.Store.CreateIssueRecord(ctx, rec); err != nil {
		return 0, swarmerr.Wrap(swarmerr.KindStoreConnection, "workflow", "failed to record task", err)
	}

	if err := e.transition(ctx, workerID, w.Status, store.StatusCompleted, "create_task"); err != nil {
		return issueNumber, err
	}

	wRow, err := e.Store.GetWorker(ctx, workerID)
	if err != nil {
		return issueNumber, err
	}
	e.cleanupNamed(ctx, workerID, handlesFromWorker(wRow), store.StatusCompleted, "create_task")
	return issueNumber, nil
}

// nextIssueNumber derives a monotonically increasing issue number scoped
// to repoOwner/repoName (spec.md §9 Open Question: implementers choose the
// numbering scheme; this module uses the lowest number, counting up from
// 1, that has no existing record rather than integrating a hosting-site
// issue-number allocator,
// since create_task's IssueRecord is explicitly a local cache, not a
// synced hosting-site issue).
func (e *Engine) nextIssueNumber(ctx context.Context, owner, name string) int {
	n := 1
	for {
		if _, err := e.Store.GetIssueRecord(ctx, n, owner, name); err != nil {
			return n
		}
		n++
	}
}
