package gitdriver

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// diffTimeout bounds how long any single diff-family command may run,
// preventing a pathological repo from hanging a worker's review cycle.
const diffTimeout = 5 * time.Second

// Driver implements the GitDriver contract by shelling out to the git
// binary. All operations are context-aware so callers (ToolDispatch
// handlers, the WorkflowEngine cleanup protocol) can bound them.
type Driver struct {
	workDir        string
	supportedHosts []string
}

// New returns a Driver rooted at workDir (the repo root or a worktree
// path). supportedHosts bounds which hosts ValidateRepo's remote parse
// recognizes (spec.md §4.2); an empty set permits every host.
func New(workDir string, supportedHosts []string) *Driver {
	return &Driver{workDir: workDir, supportedHosts: supportedHosts}
}

func (d *Driver) run(ctx context.Context, args ...string) (string, error) {
	//nolint:gosec // G204: args are built from caller-controlled literals, never raw user input
	cmd := exec.CommandContext(ctx, "git", args...)
	if d.workDir != "" {
		cmd.Dir = d.workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: git %s", ErrDiffTimeout, strings.Join(args, " "))
		}
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", parseGitError(stderrStr, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func parseGitError(stderr string, cause error) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "already checked out"):
		return fmt.Errorf("%w: %s", ErrBranchAlreadyCheckedOut, stderr)
	case strings.Contains(lower, "already exists"):
		return fmt.Errorf("%w: %s", ErrPathAlreadyExists, stderr)
	case strings.Contains(lower, "is locked"):
		return fmt.Errorf("%w: %s", ErrWorktreeLocked, stderr)
	case strings.Contains(lower, "not a git repository"):
		return fmt.Errorf("%w: %s", ErrNotGitRepo, stderr)
	default:
		return fmt.Errorf("git error: %s: %w", stderr, cause)
	}
}

// Repo is the result of validating a repository (spec.md §4.2
// validate_repo): its current branch, head commit, working-tree
// cleanliness, and the owner/name parsed from its origin remote. Owner and
// Name are left empty when there is no origin remote, or its host is not
// in the configured supported-hosts set (spec.md Scenario 6: "validate_repo
// on such a repo still succeeds with owner/name empty strings").
type Repo struct {
	Branch     string
	HeadCommit string
	Clean      bool
	Owner      string
	Name       string
}

// ValidateRepo verifies that workDir holds a git repository and reports
// its current branch, head commit, working-tree cleanliness, and parsed
// remote (spec.md §4.2). A path that is not a git repository reports
// ErrNotGitRepo.
func (d *Driver) ValidateRepo(ctx context.Context) (Repo, error) {
	if _, err := d.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return Repo{}, fmt.Errorf("%w: %s", ErrNotGitRepo, d.workDir)
	}

	branch, err := d.GetCurrentBranch(ctx)
	if err != nil && !errors.Is(err, ErrDetachedHead) {
		return Repo{}, err
	}

	head, err := d.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return Repo{}, err
	}

	clean, err := d.WorkingTreeClean(ctx)
	if err != nil {
		return Repo{}, err
	}

	repo := Repo{Branch: branch, HeadCommit: head, Clean: clean}

	remoteURL, err := d.RemoteURL(ctx, "origin")
	if err != nil {
		return Repo{}, err
	}
	if remoteURL != "" {
		if ref, parseErr := ParseRemoteURL(remoteURL, d.supportedHosts); parseErr == nil {
			repo.Owner = ref.Owner
			repo.Name = ref.Repo
		}
	}
	return repo, nil
}

// WorkingTreeClean reports whether the working tree has no uncommitted
// changes (tracked or untracked).
func (d *Driver) WorkingTreeClean(ctx context.Context) (bool, error) {
	out, err := d.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

// CreateWorktree creates a new worktree at path with a new branch, rooted
// at baseBranch (or HEAD if baseBranch is empty).
func (d *Driver) CreateWorktree(ctx context.Context, path, newBranch, baseBranch string) error {
	args := []string{"worktree", "add", "-b", newBranch, path}
	if baseBranch != "" {
		args = append(args, baseBranch)
	}
	_, err := d.run(ctx, args...)
	return err
}

// RemoveWorktree removes the worktree at path, forcing removal if it has
// uncommitted changes the caller has already accounted for.
func (d *Driver) RemoveWorktree(ctx context.Context, path string) error {
	if _, err := d.run(ctx, "worktree", "remove", path); err != nil {
		_, err := d.run(ctx, "worktree", "remove", "--force", path)
		return err
	}
	return nil
}

// PruneWorktrees removes stale worktree administrative files.
func (d *Driver) PruneWorktrees(ctx context.Context) error {
	_, err := d.run(ctx, "worktree", "prune")
	return err
}

// ListWorktrees returns every worktree registered against the repo.
func (d *Driver) ListWorktrees(ctx context.Context) ([]WorktreeInfo, error) {
	out, err := d.run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

func parseWorktreeList(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo
	var current WorktreeInfo

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if current.Path != "" {
				worktrees = append(worktrees, current)
			}
			current = WorktreeInfo{}
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 {
			continue
		}
		switch parts[0] {
		case "worktree":
			current.Path = parts[1]
		case "HEAD":
			current.HEAD = parts[1]
		case "branch":
			if after, found := strings.CutPrefix(parts[1], "refs/heads/"); found {
				current.Branch = after
			} else {
				current.Branch = parts[1]
			}
		}
	}
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}
	return worktrees
}

// BranchExists reports whether a local branch with the given name exists.
func (d *Driver) BranchExists(ctx context.Context, name string) bool {
	_, err := d.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// GetCurrentBranch returns the checked-out branch name, or ErrDetachedHead
// if HEAD does not point to a branch.
func (d *Driver) GetCurrentBranch(ctx context.Context) (string, error) {
	if out, err := d.run(ctx, "branch", "--show-current"); err == nil && out != "" {
		return out, nil
	}
	out, err := d.run(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if strings.Contains(err.Error(), "not a symbolic ref") {
			return "", ErrDetachedHead
		}
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return out, nil
}

// GetMainBranch detects the repository's default branch: config, then
// remote HEAD, then local main/master existence, falling back to "main".
func (d *Driver) GetMainBranch(ctx context.Context) (string, error) {
	if branch, err := d.run(ctx, "config", "init.defaultBranch"); err == nil && branch != "" {
		return branch, nil
	}
	if ref, err := d.run(ctx, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		parts := strings.Split(ref, "/")
		if len(parts) > 0 {
			return parts[len(parts)-1], nil
		}
	}
	if _, err := d.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/main"); err == nil {
		return "main", nil
	}
	if _, err := d.run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/master"); err == nil {
		return "master", nil
	}
	return "main", nil
}

// GetRepoRoot returns the repository's top-level directory.
func (d *Driver) GetRepoRoot(ctx context.Context) (string, error) {
	return d.run(ctx, "rev-parse", "--show-toplevel")
}

// RemoteURL returns the URL configured for the named remote (origin by
// default), or an empty string if no such remote is configured.
func (d *Driver) RemoteURL(ctx context.Context, remote string) (string, error) {
	if remote == "" {
		remote = "origin"
	}
	out, err := d.run(ctx, "remote", "get-url", remote)
	if err != nil {
		if strings.Contains(err.Error(), "No such remote") {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// Diff returns the unified diff of the working tree (and index) against
// ref, bounded by diffTimeout.
func (d *Driver) Diff(ctx context.Context, ref string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, diffTimeout)
	defer cancel()
	return d.run(ctx, "diff", ref)
}

// DiffStat returns the --numstat form of Diff: "additions\tdeletions\tpath"
// per changed file.
func (d *Driver) DiffStat(ctx context.Context, ref string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, diffTimeout)
	defer cancel()
	return d.run(ctx, "diff", "--numstat", ref)
}

// CommitDiff returns the patch introduced by a single commit.
func (d *Driver) CommitDiff(ctx context.Context, hash string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, diffTimeout)
	defer cancel()
	return d.run(ctx, "show", "--format=", hash)
}

// UntrackedFiles lists files present in the working tree but not tracked
// or ignored.
func (d *Driver) UntrackedFiles(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, diffTimeout)
	defer cancel()
	out, err := d.run(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

const commitLogDelimiter = "\x1e"

// CommitLog returns up to limit commits reachable from ref (HEAD if ref is
// empty), newest first, annotated with whether each has reached the
// upstream tracking branch.
func (d *Driver) CommitLog(ctx context.Context, ref string, limit int) ([]CommitInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, diffTimeout)
	defer cancel()

	args := []string{"log", "--format=%H\x1e%h\x1e%s\x1e%an\x1e%aI", "-n", strconv.Itoa(limit)}
	if ref != "" {
		args = append(args, ref)
	}
	out, err := d.run(ctx, args...)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "does not have any commits") {
			return nil, nil
		}
		if ref == "" && (strings.Contains(errStr, "bad revision") || strings.Contains(errStr, "unknown revision")) {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	commits := parseCommitLog(out)
	pushed := d.pushedCommitHashes(ctx)
	for i := range commits {
		_, commits[i].IsPushed = pushed[commits[i].Hash]
	}
	return commits, nil
}

func (d *Driver) pushedCommitHashes(ctx context.Context) map[string]struct{} {
	result := make(map[string]struct{})
	upstream, err := d.run(ctx, "rev-parse", "--abbrev-ref", "@{upstream}")
	if err != nil {
		return result
	}
	out, err := d.run(ctx, "log", "--format=%H", upstream)
	if err != nil {
		return result
	}
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			result[line] = struct{}{}
		}
	}
	return result
}

func parseCommitLog(output string) []CommitInfo {
	var commits []CommitInfo
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, commitLogDelimiter, 5)
		if len(parts) < 5 {
			continue
		}
		date, err := time.Parse(time.RFC3339, parts[4])
		if err != nil {
			date = time.Time{}
		}
		commits = append(commits, CommitInfo{
			Hash:      parts[0],
			ShortHash: parts[1],
			Subject:   parts[2],
			Author:    parts[3],
			Date:      date,
		})
	}
	return commits
}

// ListBranches returns local branches, current branch first, the rest
// sorted alphabetically.
func (d *Driver) ListBranches(ctx context.Context) ([]BranchInfo, error) {
	out, err := d.run(ctx, "branch", "--format=%(HEAD)%(refname:short)")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	if out == "" {
		return nil, nil
	}

	var branches []BranchInfo
	var current *BranchInfo
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		isCurrent := line[0] == '*'
		name := strings.TrimLeft(line, "* ")
		b := BranchInfo{Name: name, IsCurrent: isCurrent}
		if isCurrent {
			current = &b
		} else {
			branches = append(branches, b)
		}
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	if current != nil {
		branches = append([]BranchInfo{*current}, branches...)
	}
	return branches, nil
}
