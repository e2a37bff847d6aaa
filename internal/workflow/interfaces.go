// Package workflow implements the per-kind worker lifecycle state machines:
// launch, review spawn, tool-driven transitions, and cleanup. Engine is the
// only component that mutates Store worker rows (spec.md §3 "Ownership").
package workflow

import (
	"context"

	"github.com/zjrosen/swarmctl/internal/agentdriver"
	"github.com/zjrosen/swarmctl/internal/gitdriver"
	"github.com/zjrosen/swarmctl/internal/hostingclient"
	"github.com/zjrosen/swarmctl/internal/termdriver"
)

// GitDriver is the subset of gitdriver.Driver the engine needs for worktree
// lifecycle management. Declared as an interface here (spec.md §9
// "Injected collaborators for testing") so tests can supply a fake without
// spawning real git processes. Bound once, rooted at the canonical repo
// checkout (config.RepoPath) — every CreateWorktree call names its own
// target path, so a single root-rooted driver suffices.
type GitDriver interface {
	ValidateRepo(ctx context.Context) (gitdriver.Repo, error)
	CreateWorktree(ctx context.Context, path, newBranch, baseBranch string) error
	RemoveWorktree(ctx context.Context, path string) error
}

// RepoInspector is the read-only subset of gitdriver.Driver needed by
// analyze_repository, scoped to a single worker's own worktree (unlike
// GitDriver above, which is rooted at the shared canonical checkout).
type RepoInspector interface {
	GetCurrentBranch(ctx context.Context) (string, error)
	WorkingTreeClean(ctx context.Context) (bool, error)
	Summary(ctx context.Context, base, target string) (gitdriver.DiffSummary, error)
	CommitLog(ctx context.Context, ref string, limit int) ([]gitdriver.CommitInfo, error)
}

// RepoInspectorFactory builds a RepoInspector rooted at a given worktree
// path. gitdriver.Driver itself satisfies this shape via gitdriver.New.
type RepoInspectorFactory func(workDir string) RepoInspector

// TermDriver is the subset of termdriver.Driver the engine needs.
type TermDriver interface {
	CreateSession(ctx context.Context, req termdriver.CreateSessionRequest) (*termdriver.SessionInfo, error)
	KillSession(ctx context.Context, name string, opts termdriver.KillSessionOptions) error
	SendKeys(ctx context.Context, name, text string, pressEnter bool) error
}

// AgentDriver is the subset of agentdriver.Driver the engine needs.
type AgentDriver interface {
	StartLM(ctx context.Context, spec agentdriver.LMSpec) (*agentdriver.Handle, error)
	StartToolServer(ctx context.Context, spec agentdriver.ToolServerSpec) (*agentdriver.Handle, error)
	TerminateLM(ctx context.Context, h *agentdriver.Handle, opts agentdriver.TerminateOptions) error
	TerminateToolServer(ctx context.Context, h *agentdriver.Handle, opts agentdriver.TerminateOptions) error
	TerminatePID(ctx context.Context, pid int, opts agentdriver.TerminateOptions) error
}

// Hosting is the subset of hostingclient.HostingClient the engine needs.
type Hosting interface {
	CreatePullRequest(ctx context.Context, req hostingclient.PRRequest) (hostingclient.PRResult, error)
}

// HostingFactory builds a Hosting client rooted at a worker's worktree
// (gh infers --repo from the working directory's git remote when the
// caller doesn't supply PRRequest.Repo explicitly).
type HostingFactory func(workDir string) Hosting
