package gitdriver

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNumstat(t *testing.T) {
	out := "3\t0\tadded.go\n0\t5\tremoved.go\n2\t2\tchanged.go\n-\t-\tbinary.png\n"
	summary := parseNumstat(out)

	require.Len(t, summary.Files, 4)
	require.Equal(t, FileChange{Path: "added.go", Insertions: 3, Deletions: 0, Status: "added"}, summary.Files[0])
	require.Equal(t, FileChange{Path: "removed.go", Insertions: 0, Deletions: 5, Status: "deleted"}, summary.Files[1])
	require.Equal(t, FileChange{Path: "changed.go", Insertions: 2, Deletions: 2, Status: "modified"}, summary.Files[2])
	require.Equal(t, FileChange{Path: "binary.png", Insertions: 0, Deletions: 0, Status: "modified"}, summary.Files[3])
	require.Equal(t, 5, summary.TotalInsertions)
	require.Equal(t, 7, summary.TotalDeletions)
}

func TestParseNumstat_Empty(t *testing.T) {
	require.Equal(t, DiffSummary{}, parseNumstat(""))
}

func TestDriver_Summary(t *testing.T) {
	d, dir := initTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "added.txt"), []byte("one\ntwo\nthree\n"), 0644))

	add := exec.Command("git", "add", "added.txt")
	add.Dir = dir
	out, err := add.CombinedOutput()
	require.NoError(t, err, "git add failed: %s", out)

	summary, err := d.Summary(ctx, "HEAD", "")
	require.NoError(t, err)
	require.Len(t, summary.Files, 1)
	require.Equal(t, "added.txt", summary.Files[0].Path)
	require.Equal(t, "added", summary.Files[0].Status)
	require.Equal(t, 3, summary.TotalInsertions)
}
