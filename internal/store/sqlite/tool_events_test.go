package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
)

func TestStore_LogToolEvent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	w := sampleWorker("worker-1")
	require.NoError(t, s.CreateWorker(ctx, w))

	statusChange := store.StatusWaitingReview
	evt := &store.ToolEvent{
		WorkerID:         "worker-1",
		ToolName:         "submit_for_review",
		Success:          true,
		StatusChange:     &statusChange,
		IsStatusUpdating: true,
	}
	require.NoError(t, s.LogToolEvent(ctx, evt))
	require.NotZero(t, evt.ID)
	require.False(t, evt.Timestamp.IsZero())
}

func TestStore_LogToolEvent_FailureRecordsError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	w := sampleWorker("worker-1")
	require.NoError(t, s.CreateWorker(ctx, w))

	errMsg := "branch name invalid"
	evt := &store.ToolEvent{
		WorkerID: "worker-1",
		ToolName: "create_worktree",
		Success:  false,
		Error:    &errMsg,
	}
	require.NoError(t, s.LogToolEvent(ctx, evt))
}
