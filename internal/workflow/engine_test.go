package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/tracing"
)

func newTestEngine(t *testing.T, st *fakeStore, git *fakeGit, term *fakeTerm) *Engine {
	t.Helper()
	provider, err := tracing.NewProvider(tracing.Config{Enabled: false})
	require.NoError(t, err)
	return &Engine{
		Store:  st,
		Git:    git,
		Term:   term,
		Agent:  fakeAgent{},
		Tracer: provider.Tracer(),
		RepoInspector: func(_ string) RepoInspector {
			return &fakeInspector{branch: "main", clean: true}
		},
	}
}

// TestTransition_IllegalRecordsToolEvent covers spec.md §4.5.4's
// request-review-while-under_review tie-break: the rejection must still
// produce an auditable ToolEvent, not just a returned error.
func TestTransition_IllegalRecordsToolEvent(t *testing.T) {
	st := newFakeStore()
	w := newWorker("w1", store.KindCoding, store.StatusUnderReview)
	require.NoError(t, st.CreateWorker(context.Background(), w))

	e := newTestEngine(t, st, &fakeGit{}, &fakeTerm{})

	err := e.transition(context.Background(), "w1", store.StatusUnderReview, store.StatusWaitingReview, "request_review")
	require.Error(t, err)
	require.True(t, swarmerr.Is(err, swarmerr.KindWorkflowInvalidState))

	events := st.eventsFor("w1")
	require.Len(t, events, 1)
	require.Equal(t, "request_review", events[0].ToolName)
	require.False(t, events[0].Success)
	require.True(t, events[0].IsStatusUpdating)
	require.NotNil(t, events[0].Error)

	got, err := st.GetWorker(context.Background(), "w1")
	require.NoError(t, err)
	require.Equal(t, store.StatusUnderReview, got.Status, "illegal transition must not mutate the worker row")
}

func TestTransition_LegalRecordsSuccessEvent(t *testing.T) {
	st := newFakeStore()
	w := newWorker("w1", store.KindCoding, store.StatusStarted)
	require.NoError(t, st.CreateWorker(context.Background(), w))

	e := newTestEngine(t, st, &fakeGit{}, &fakeTerm{})

	err := e.transition(context.Background(), "w1", store.StatusStarted, store.StatusWaitingReview, "request_review")
	require.NoError(t, err)

	events := st.eventsFor("w1")
	require.Len(t, events, 1)
	require.True(t, events[0].Success)
	require.Equal(t, store.StatusWaitingReview, *events[0].StatusChange)
}
