package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/config"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

var testCfg = config.Config{TermKillTimeout: time.Second}

func TestCleanup_AllStepsSucceedClearsEveryHandle(t *testing.T) {
	st := newFakeStore()
	w := newWorker("w1", store.KindCoding, store.StatusStarted)
	path, session, lmPid, toolPid := "/work/w1", "w1", 111, 222
	w.WorktreePath, w.SessionName, w.LMPid, w.ToolServerPid = &path, &session, &lmPid, &toolPid
	require.NoError(t, st.CreateWorker(context.Background(), w))

	e := newTestEngine(t, st, &fakeGit{}, &fakeTerm{})
	e.Cfg = &testCfg

	require.NoError(t, e.Cleanup(context.Background(), "w1"))

	got, err := st.GetWorker(context.Background(), "w1")
	require.NoError(t, err)
	require.Equal(t, store.StatusTerminated, got.Status)
	require.Nil(t, got.WorktreePath)
	require.Nil(t, got.SessionName)
	require.Nil(t, got.LMPid)
	require.Nil(t, got.ToolServerPid)
}

// TestCleanup_FailedWorktreeRemovalLeavesHandlePopulated covers spec.md
// §4.5.5/§8: a failed teardown step leaves its handle populated so
// operator tooling can retry, and records a workflow-cleanup-failed
// ToolEvent naming the leaked handle, instead of silently nulling the row.
func TestCleanup_FailedWorktreeRemovalLeavesHandlePopulated(t *testing.T) {
	st := newFakeStore()
	w := newWorker("w1", store.KindCoding, store.StatusStarted)
	path, session := "/work/w1", "w1"
	w.WorktreePath, w.SessionName = &path, &session
	require.NoError(t, st.CreateWorker(context.Background(), w))

	git := &fakeGit{removeErr: swarmerr.New(swarmerr.KindGitCommandFailed, "gitdriver", "worktree busy")}
	e := newTestEngine(t, st, git, &fakeTerm{})
	e.Cfg = &testCfg

	require.NoError(t, e.Cleanup(context.Background(), "w1"))

	got, err := st.GetWorker(context.Background(), "w1")
	require.NoError(t, err)
	require.Equal(t, store.StatusTerminated, got.Status, "worker still moves to terminal status")
	require.NotNil(t, got.WorktreePath, "failed worktree removal must leave the handle populated")
	require.Equal(t, path, *got.WorktreePath)
	require.Nil(t, got.SessionName, "the session step, which succeeded, is still cleared")

	events := st.eventsFor("w1")
	var sawFailure, sawFinal bool
	for _, ev := range events {
		if !ev.Success && ev.Error != nil {
			sawFailure = true
			require.Contains(t, *ev.Error, "worktree_path")
		}
		if ev.IsStatusUpdating && ev.Success {
			sawFinal = true
		}
	}
	require.True(t, sawFailure, "expected a workflow-cleanup-failed ToolEvent naming the worktree_path handle")
	require.True(t, sawFinal, "expected the final status-change ToolEvent recording the terminal status")
}
