package workflow

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/google/uuid"

	"github.com/zjrosen/swarmctl/internal/agentdriver"
	"github.com/zjrosen/swarmctl/internal/config"
	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/termdriver"
)

// Engine is the only component that mutates Store worker rows (spec.md §3
// "Ownership"). It owns the per-kind state machines and every lifecycle
// protocol: launch, review spawn, tool-driven transitions, and cleanup.
// Grounded in the teacher's controlplane.Supervisor/WorkflowInstance pair,
// collapsed into a single type since this module has no separate
// coordinator-process layer to supervise.
type Engine struct {
	Store   store.Store
	Git     GitDriver
	Term    TermDriver
	Agent   AgentDriver
	Cfg     *config.Config
	Tracer  trace.Tracer

	// RepoInspector builds a read-only git inspector rooted at an
	// arbitrary worktree path (analyze_repository runs against the
	// caller's own worktree, not the canonical checkout Git is rooted
	// at).
	RepoInspector RepoInspectorFactory

	// Hosting builds a hosting client rooted at a worker's worktree so
	// `gh` can infer --repo from that worktree's configured remote.
	Hosting HostingFactory

	// liveHandles tracks subprocess Handles this Engine instance itself
	// started, keyed by worker id then by "lm"/"tool_server". Only the
	// process that called AgentDriver.StartLM/StartToolServer holds a
	// usable exit channel for that subprocess (spec.md §5 "Subprocess
	// handles: owned by AgentDriver; only the owning engine code path may
	// terminate them") — Cleanup falls back to PID-only termination when
	// no live Handle is registered, e.g. after a process restart.
	handlesMu   sync.Mutex
	liveHandles map[string]*workerHandles
}

type workerHandles struct {
	LM         *agentdriver.Handle
	ToolServer *agentdriver.Handle
}

func (e *Engine) registerHandle(workerID string, lm, toolServer *agentdriver.Handle) {
	e.handlesMu.Lock()
	defer e.handlesMu.Unlock()
	if e.liveHandles == nil {
		e.liveHandles = make(map[string]*workerHandles)
	}
	h, ok := e.liveHandles[workerID]
	if !ok {
		h = &workerHandles{}
		e.liveHandles[workerID] = h
	}
	if lm != nil {
		h.LM = lm
	}
	if toolServer != nil {
		h.ToolServer = toolServer
	}
}

func (e *Engine) dropHandles(workerID string) {
	e.handlesMu.Lock()
	defer e.handlesMu.Unlock()
	delete(e.liveHandles, workerID)
}

func (e *Engine) liveHandlesFor(workerID string) (lm, toolServer *agentdriver.Handle) {
	e.handlesMu.Lock()
	defer e.handlesMu.Unlock()
	h, ok := e.liveHandles[workerID]
	if !ok {
		return nil, nil
	}
	return h.LM, h.ToolServer
}

// New returns a ready Engine. repoInspector and hosting must be non-nil;
// callers in production wire gitdriver.New and hostingclient.NewGHClient,
// tests supply fakes.
func New(st store.Store, git GitDriver, term TermDriver, agent AgentDriver, cfg *config.Config, tracer trace.Tracer, repoInspector RepoInspectorFactory, hosting HostingFactory) *Engine {
	return &Engine{
		Store:         st,
		Git:           git,
		Term:          term,
		Agent:         agent,
		Cfg:           cfg,
		Tracer:        tracer,
		RepoInspector: repoInspector,
		Hosting:       hosting,
	}
}

// newWorkerID generates a worker id (spec.md §4.5.2 step 1 "generate id").
func newWorkerID() string {
	return uuid.New().String()
}

// childID derives a review worker's id from its parent (spec.md §4.5.3
// step 2: "timestamp-plus-random suffix").
func childID(parentID string) string {
	return parentID + "-review-" + uuid.New().String()[:8]
}

// worktreePath composes the on-disk path for a worker's isolated worktree,
// partitioned by worker id under the configured base directory (spec.md
// §5 "Filesystem ... partitioned by worker id").
func (e *Engine) worktreePath(workerID string) string {
	return filepath.Join(e.Cfg.WorktreeBasePath, workerID)
}

// sessionName is the terminal-mux session name for a worker, always equal
// to its id (spec.md §5 "Terminal mux: partitioned by session name (=
// worker id)").
func sessionName(workerID string) string {
	return workerID
}

// emitStatusEvent writes exactly one ToolEvent recording a status
// transition (spec.md §8 audit completeness: every transition produces
// exactly one ToolEvent with is_status_updating=true).
func (e *Engine) emitStatusEvent(ctx context.Context, workerID, toolName string, success bool, statusChange store.Status, toolErr error) {
	evt := &store.ToolEvent{
		WorkerID:         workerID,
		ToolName:         toolName,
		Success:          success,
		StatusChange:     &statusChange,
		IsStatusUpdating: true,
		Timestamp:        time.Now(),
	}
	if toolErr != nil {
		msg := toolErr.Error()
		evt.Error = &msg
	}
	if err := e.Store.LogToolEvent(ctx, evt); err != nil {
		log.ErrorErr(log.CatWorkflow, "failed to record tool event", err, "worker_id", workerID, "tool", toolName)
	}
}

// emitToolEvent writes exactly one ToolEvent for a tool call that does not
// itself change the worker's status (spec.md §3 "every tool invocation
// attempt, success or failure" — e.g. analyze_repository, which is
// read-only). Status-changing calls use emitStatusEvent instead.
func (e *Engine) emitToolEvent(ctx context.Context, workerID, toolName string, success bool, toolErr error) {
	evt := &store.ToolEvent{
		WorkerID:         workerID,
		ToolName:         toolName,
		Success:          success,
		IsStatusUpdating: false,
		Timestamp:        time.Now(),
	}
	if toolErr != nil {
		msg := toolErr.Error()
		evt.Error = &msg
	}
	if err := e.Store.LogToolEvent(ctx, evt); err != nil {
		log.ErrorErr(log.CatWorkflow, "failed to record tool event", err, "worker_id", workerID, "tool", toolName)
	}
}

// transition validates and applies a status change to worker id, recording
// the audit event. Callers must have already performed any driver-level
// side effects; transition only touches the Store.
func (e *Engine) transition(ctx context.Context, id string, from, to store.Status, toolName string) error {
	if !canTransition(from, to) {
		rejectErr := swarmerr.New(swarmerr.KindWorkflowInvalidState, "workflow", "illegal status transition").
			WithDetail("from", string(from)).WithDetail("to", string(to)).WithDetail("worker_id", id)
		e.emitStatusEvent(ctx, id, toolName, false, to, rejectErr)
		return rejectErr
	}
	now := time.Now()
	patch := store.WorkerPatch{Status: &to, LastActivity: &now}
	if to.IsTerminal() {
		patch.TerminatedAt = &now
	}
	err := e.Store.UpdateWorker(ctx, id, patch)
	e.emitStatusEvent(ctx, id, toolName, err == nil, to, err)
	return err
}

// newSessionEnv composes the environment slice for a worker's terminal
// session / LM subprocess (spec.md §6 "Environment variables consumed by
// launched LM subprocess"), validating every value against agentdriver's
// safe-string rule before it ever reaches exec.Cmd.
func newSessionEnv(pairs map[string]string) ([]string, error) {
	env := make([]string, 0, len(pairs))
	for k, v := range pairs {
		if !agentdriver.ValidKey(k) || !agentdriver.ValidValue(v) {
			return nil, swarmerr.New(swarmerr.KindTermInvalidDirectory, "workflow", "invalid environment value").WithDetail("key", k)
		}
		env = append(env, k+"="+v)
	}
	return env, nil
}

func createSessionRequest(name, cwd string, env map[string]string, initialCommand string) termdriver.CreateSessionRequest {
	return termdriver.CreateSessionRequest{
		Name:           name,
		Cwd:            cwd,
		Env:            env,
		InitialCommand: initialCommand,
	}
}
