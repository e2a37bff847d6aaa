package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
)

func TestStore_SetAndGetConfigEntry(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetConfigEntry(ctx, &store.ConfigEntry{Key: "hosting.token", Value: "abc123", Encrypted: true}))

	found, err := s.GetConfigEntry(ctx, "hosting.token")
	require.NoError(t, err)
	require.Equal(t, "abc123", found.Value)
	require.True(t, found.Encrypted)
}

func TestStore_SetConfigEntry_Upsert(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetConfigEntry(ctx, &store.ConfigEntry{Key: "k", Value: "v1"}))
	require.NoError(t, s.SetConfigEntry(ctx, &store.ConfigEntry{Key: "k", Value: "v2"}))

	found, err := s.GetConfigEntry(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v2", found.Value)
}

func TestStore_GetConfigEntry_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetConfigEntry(context.Background(), "missing")
	require.Error(t, err)
}
