package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.WorktreeMax)
	assert.Equal(t, "main", cfg.GitDefault)
	assert.True(t, cfg.CleanupOnError)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("WORKTREE_MAX", "50")
	t.Setenv("GIT_DEFAULT_BRANCH", "develop")
	t.Setenv("CLEANUP_ON_ERROR", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.WorktreeMax)
	assert.Equal(t, "develop", cfg.GitDefault)
	assert.False(t, cfg.CleanupOnError)
}

func TestValidate_WorktreeMaxBounds(t *testing.T) {
	cfg := defaults()
	cfg.WorktreeMax = 0
	assert.Error(t, cfg.Validate())

	cfg.WorktreeMax = 51
	assert.Error(t, cfg.Validate())

	cfg.WorktreeMax = 50
	assert.NoError(t, cfg.Validate())

	cfg.WorktreeMax = 1
	assert.NoError(t, cfg.Validate())
}

func TestLoad_SupportedHosts(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsSupportedHost("github.com"))
	assert.False(t, cfg.IsSupportedHost("gitlab.example.com"))

	t.Setenv("SUPPORTED_HOSTS", "github.com, gitlab.example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsSupportedHost("gitlab.example.com"))
}

func TestIsSupportedHost_EmptyAllowList(t *testing.T) {
	cfg := defaults()
	cfg.SupportedHosts = nil
	assert.True(t, cfg.IsSupportedHost("anything.example.com"))
}
