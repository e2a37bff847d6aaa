package app

import (
	"flag"
	"fmt"
	"os"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/tooldispatch"
	"github.com/zjrosen/swarmctl/internal/tooldispatch/server"
)

// ToolServerFlags is the command-line contract every cmd/swarmctl-tool-*
// binary is launched with (spec.md §6 "Tool-server subprocess contract").
// Workspace, branch, and session are accepted for parity with the spec's
// documented flag set even though this process only needs AgentID to look
// up the worker row; the workflow engine is the sole writer of those
// fields and already recorded them at launch time.
type ToolServerFlags struct {
	AgentID            string
	Workspace          string
	Branch             string
	Session            string
	Issue              int
	ParentInstanceID   string
	ParentTmuxSession  string
}

// ParseToolServerFlags parses args (os.Args[1:] in RunToolServer) into a
// ToolServerFlags, requiring
// AgentID, Workspace, Branch, and Session per spec.md §6. kind selects
// which of the review-only flags are required.
func ParseToolServerFlags(kind store.Kind, args []string) (*ToolServerFlags, error) {
	fs := flag.NewFlagSet("swarmctl-tool-"+string(kind), flag.ContinueOnError)
	f := &ToolServerFlags{}
	fs.StringVar(&f.AgentID, "agent-id", "", "worker id this process serves")
	fs.StringVar(&f.Workspace, "workspace", "", "worker's worktree path")
	fs.StringVar(&f.Branch, "branch", "", "worker's branch")
	fs.StringVar(&f.Session, "session", "", "worker's terminal session name")
	fs.IntVar(&f.Issue, "issue", 0, "issue number, if any")
	fs.StringVar(&f.ParentInstanceID, "parent-instance-id", "", "parent worker id (review only)")
	fs.StringVar(&f.ParentTmuxSession, "parent-tmux-session", "", "parent worker's session name (review only)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if f.AgentID == "" || f.Workspace == "" || f.Branch == "" || f.Session == "" {
		return nil, fmt.Errorf("--agent-id, --workspace, --branch, and --session are required")
	}
	if kind == store.KindReview && (f.ParentInstanceID == "" || f.ParentTmuxSession == "") {
		return nil, fmt.Errorf("--parent-instance-id and --parent-tmux-session are required for a review tool server")
	}
	return f, nil
}

// RunToolServer bootstraps an App, constructs a tooldispatch.Dispatcher
// bound to its Engine, and serves the stdio tool-call loop for kind until
// stdin closes. Shared by all three cmd/swarmctl-tool-* binaries, which
// differ only in the store.Kind they pass.
func RunToolServer(kind store.Kind) error {
	flags, err := ParseToolServerFlags(kind, os.Args[1:])
	if err != nil {
		return fmt.Errorf("swarmctl-tool-%s: %w", kind, err)
	}

	a, err := Bootstrap()
	if err != nil {
		return fmt.Errorf("swarmctl-tool-%s: bootstrap: %w", kind, err)
	}
	defer func() { _ = a.Close() }()

	dispatcher := tooldispatch.New(a.Engine)
	srv := server.New(dispatcher, flags.AgentID, kind)
	return srv.Serve(os.Stdin, os.Stdout)
}
