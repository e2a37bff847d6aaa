package gitdriver

import "errors"

// Sentinel errors distinguished from git's raw stderr text. swarmerr wraps
// these with a Kind at the call boundary (internal/workflow, tool handlers).
var (
	ErrBranchAlreadyCheckedOut = errors.New("branch already checked out in another worktree")
	ErrPathAlreadyExists       = errors.New("worktree path already exists")
	ErrWorktreeLocked          = errors.New("worktree is locked")
	ErrNotGitRepo              = errors.New("not a git repository")
	ErrDetachedHead            = errors.New("detached HEAD state")
	ErrDiffTimeout             = errors.New("git diff timed out")
	ErrInvalidRemoteURL        = errors.New("invalid remote url")
)
