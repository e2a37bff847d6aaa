package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

func TestAnalyzeRepository_Success(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hi\n"), 0644))

	st := newFakeStore()
	w := newWorker("planner-1", store.KindPlanning, store.StatusStarted)
	w.WorktreePath = &dir
	require.NoError(t, st.CreateWorker(context.Background(), w))

	e := newTestEngine(t, st, &fakeGit{}, &fakeTerm{})
	e.RepoInspector = func(_ string) RepoInspector {
		return &fakeInspector{branch: "swarm/planner-1", clean: true}
	}

	report, err := e.AnalyzeRepository(context.Background(), "planner-1", AnalyzeRepositoryRequest{})
	require.NoError(t, err)
	require.Equal(t, "swarm/planner-1", report.Branch)
	require.True(t, report.WorkingClean)
	require.Equal(t, 2, report.FilesScanned)
	require.Equal(t, 1, report.Languages[".go"])
	require.Equal(t, 1, report.Languages[".md"])

	// spec.md §3/§4.6: every invocation, success or failure, produces
	// exactly one ToolEvent.
	events := st.eventsFor("planner-1")
	require.Len(t, events, 1)
	require.Equal(t, "analyze_repository", events[0].ToolName)
	require.True(t, events[0].Success)
	require.False(t, events[0].IsStatusUpdating)
	require.Nil(t, events[0].Error)
}

func TestAnalyzeRepository_WrongKindRecordsFailureEvent(t *testing.T) {
	st := newFakeStore()
	w := newWorker("coder-1", store.KindCoding, store.StatusStarted)
	path := t.TempDir()
	w.WorktreePath = &path
	require.NoError(t, st.CreateWorker(context.Background(), w))

	e := newTestEngine(t, st, &fakeGit{}, &fakeTerm{})

	_, err := e.AnalyzeRepository(context.Background(), "coder-1", AnalyzeRepositoryRequest{})
	require.Error(t, err)
	require.True(t, swarmerr.Is(err, swarmerr.KindWorkflowInvalidState))

	events := st.eventsFor("coder-1")
	require.Len(t, events, 1)
	require.False(t, events[0].Success)
	require.NotNil(t, events[0].Error)
}

func TestAnalyzeRepository_InspectorFailureRecordsEvent(t *testing.T) {
	st := newFakeStore()
	w := newWorker("planner-2", store.KindPlanning, store.StatusStarted)
	path := t.TempDir()
	w.WorktreePath = &path
	require.NoError(t, st.CreateWorker(context.Background(), w))

	e := newTestEngine(t, st, &fakeGit{}, &fakeTerm{})
	boom := swarmerr.New(swarmerr.KindGitCommandFailed, "gitdriver", "boom")
	e.RepoInspector = func(_ string) RepoInspector {
		return &fakeInspector{err: boom}
	}

	_, err := e.AnalyzeRepository(context.Background(), "planner-2", AnalyzeRepositoryRequest{})
	require.Error(t, err)

	events := st.eventsFor("planner-2")
	require.Len(t, events, 1)
	require.False(t, events[0].Success)
	require.NotNil(t, events[0].Error)
}
