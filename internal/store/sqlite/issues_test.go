package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
)

func TestStore_CreateAndGetIssueRecord(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	rec := &store.IssueRecord{
		Number:    42,
		RepoOwner: "acme",
		RepoName:  "widgets",
		Title:     "fix the thing",
		State:     "open",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateIssueRecord(ctx, rec))

	found, err := s.GetIssueRecord(ctx, 42, "acme", "widgets")
	require.NoError(t, err)
	require.Equal(t, "fix the thing", found.Title)
	require.Equal(t, "open", found.State)
}

func TestStore_GetIssueRecord_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetIssueRecord(context.Background(), 1, "acme", "widgets")
	require.Error(t, err)
}
