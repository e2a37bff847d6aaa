package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
)

func TestStore_CreateAndGetRelationships(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	parent := sampleWorker("parent-1")
	child := sampleWorker("child-1")
	require.NoError(t, s.CreateWorker(ctx, parent))
	require.NoError(t, s.CreateWorker(ctx, child))

	rel := &store.Relationship{
		ParentID:  "parent-1",
		ChildID:   "child-1",
		Kind:      store.RelationshipSpawnedReview,
		Iteration: 1,
	}
	require.NoError(t, s.CreateRelationship(ctx, rel))
	require.NotZero(t, rel.ID)

	fromParent, err := s.GetRelationships(ctx, "parent-1")
	require.NoError(t, err)
	require.Len(t, fromParent, 1)
	require.Equal(t, store.RelationshipSpawnedReview, fromParent[0].Kind)

	fromChild, err := s.GetRelationships(ctx, "child-1")
	require.NoError(t, err)
	require.Len(t, fromChild, 1)
}

func TestStore_CreateRelationship_DuplicateRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	parent := sampleWorker("parent-1")
	child := sampleWorker("child-1")
	require.NoError(t, s.CreateWorker(ctx, parent))
	require.NoError(t, s.CreateWorker(ctx, child))

	rel := &store.Relationship{
		ParentID: "parent-1", ChildID: "child-1",
		Kind: store.RelationshipCreatedFork, Iteration: 1,
	}
	require.NoError(t, s.CreateRelationship(ctx, rel))

	dup := &store.Relationship{
		ParentID: "parent-1", ChildID: "child-1",
		Kind: store.RelationshipCreatedFork, Iteration: 1,
	}
	err := s.CreateRelationship(ctx, dup)
	require.Error(t, err)
}

func TestStore_UpdateRelationshipMetadata(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	parent := sampleWorker("parent-1")
	child := sampleWorker("child-1")
	require.NoError(t, s.CreateWorker(ctx, parent))
	require.NoError(t, s.CreateWorker(ctx, child))

	rel := &store.Relationship{
		ParentID: "parent-1", ChildID: "child-1",
		Kind: store.RelationshipSpawnedReview, Iteration: 1,
	}
	require.NoError(t, s.CreateRelationship(ctx, rel))

	require.NoError(t, s.UpdateRelationshipMetadata(ctx, rel.ID, `{"decision":"CHANGES REQUESTED"}`))

	got, err := s.GetRelationships(ctx, "parent-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, `{"decision":"CHANGES REQUESTED"}`, got[0].Metadata)
}

func TestStore_UpdateRelationshipMetadata_NotFound(t *testing.T) {
	s := setupTestStore(t)
	err := s.UpdateRelationshipMetadata(context.Background(), 99999, "{}")
	require.Error(t, err)
}
