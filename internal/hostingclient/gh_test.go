package hostingclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFakeGH(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestGHClient_CreatePullRequest_Success(t *testing.T) {
	fake := writeFakeGH(t, "#!/bin/sh\necho '{\"number\":42,\"url\":\"https://example.test/pr/42\"}'\n")
	c := &GHClient{Binary: fake, WorkDir: t.TempDir()}

	result, err := c.CreatePullRequest(context.Background(), PRRequest{
		Title: "add feature", Body: "details", Base: "main", Head: "swarmctl/wt-1",
	})
	require.NoError(t, err)
	require.Equal(t, 42, result.Number)
	require.Equal(t, "https://example.test/pr/42", result.URL)
}

func TestGHClient_CreatePullRequest_CLIFailure(t *testing.T) {
	fake := writeFakeGH(t, "#!/bin/sh\necho 'pull request already exists' >&2\nexit 1\n")
	c := &GHClient{Binary: fake, WorkDir: t.TempDir()}

	_, err := c.CreatePullRequest(context.Background(), PRRequest{
		Title: "add feature", Base: "main", Head: "swarmctl/wt-1",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "pull request already exists")
}

func TestGHClient_CreatePullRequest_MalformedOutput(t *testing.T) {
	fake := writeFakeGH(t, "#!/bin/sh\necho 'not json'\n")
	c := &GHClient{Binary: fake, WorkDir: t.TempDir()}

	_, err := c.CreatePullRequest(context.Background(), PRRequest{
		Title: "add feature", Base: "main", Head: "swarmctl/wt-1",
	})
	require.Error(t, err)
}
