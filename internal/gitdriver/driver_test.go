package gitdriver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// initTestRepo creates a throwaway git repository with one commit and
// returns its Driver.
func initTestRepo(t *testing.T) (*Driver, string) {
	t.Helper()
	dir := t.TempDir()
	runInit := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v failed: %s", args, out)
	}
	runInit("init", "-b", "main")
	runInit("config", "user.email", "swarmctl@example.com")
	runInit("config", "user.name", "swarmctl")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0644))
	runInit("add", "README.md")
	runInit("commit", "-m", "initial commit")

	return New(dir, nil), dir
}

func TestDriver_ValidateRepo(t *testing.T) {
	d, _ := initTestRepo(t)
	repo, err := d.ValidateRepo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "main", repo.Branch)
	require.True(t, repo.Clean)
	require.NotEmpty(t, repo.HeadCommit)
	require.Empty(t, repo.Owner)
	require.Empty(t, repo.Name)

	notRepo := New(t.TempDir(), nil)
	_, err = notRepo.ValidateRepo(context.Background())
	require.ErrorIs(t, err, ErrNotGitRepo)
}

// TestDriver_ValidateRepo_UnsupportedRemoteHost covers spec.md Scenario 6:
// validate_repo on a repo whose origin remote targets a host outside the
// configured set still succeeds, with owner/name left empty.
func TestDriver_ValidateRepo_UnsupportedRemoteHost(t *testing.T) {
	d, dir := initTestRepo(t)
	cmd := exec.Command("git", "remote", "add", "origin", "https://example.com/foo/bar.git")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	restricted := New(dir, []string{"github.com"})
	repo, err := restricted.ValidateRepo(context.Background())
	require.NoError(t, err)
	require.Empty(t, repo.Owner)
	require.Empty(t, repo.Name)
}

func TestDriver_WorkingTreeClean(t *testing.T) {
	d, dir := initTestRepo(t)
	ctx := context.Background()

	clean, err := d.WorkingTreeClean(ctx)
	require.NoError(t, err)
	require.True(t, clean)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644))
	clean, err = d.WorkingTreeClean(ctx)
	require.NoError(t, err)
	require.False(t, clean)
}

func TestDriver_CreateAndRemoveWorktree(t *testing.T) {
	d, dir := initTestRepo(t)
	ctx := context.Background()

	worktreePath := filepath.Join(filepath.Dir(dir), "wt-1")
	require.NoError(t, d.CreateWorktree(ctx, worktreePath, "swarmctl/wt-1", "main"))
	t.Cleanup(func() { _ = os.RemoveAll(worktreePath) })

	worktrees, err := d.ListWorktrees(ctx)
	require.NoError(t, err)
	require.Len(t, worktrees, 2)

	require.NoError(t, d.RemoveWorktree(ctx, worktreePath))
	worktrees, err = d.ListWorktrees(ctx)
	require.NoError(t, err)
	require.Len(t, worktrees, 1)
}

func TestDriver_GetCurrentBranch(t *testing.T) {
	d, _ := initTestRepo(t)
	branch, err := d.GetCurrentBranch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "main", branch)
}

func TestDriver_GetMainBranch(t *testing.T) {
	d, _ := initTestRepo(t)
	branch, err := d.GetMainBranch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "main", branch)
}

func TestDriver_CommitLog(t *testing.T) {
	d, _ := initTestRepo(t)
	commits, err := d.CommitLog(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Equal(t, "initial commit", commits[0].Subject)
}
