package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/swarmctl/internal/store"
)

func TestParseToolServerFlags_Coding(t *testing.T) {
	f, err := ParseToolServerFlags(store.KindCoding, []string{
		"--agent-id", "w1", "--workspace", "/tmp/w1", "--branch", "swarm/w1", "--session", "w1",
	})
	require.NoError(t, err)
	require.Equal(t, "w1", f.AgentID)
	require.Equal(t, "/tmp/w1", f.Workspace)
}

func TestParseToolServerFlags_MissingRequired(t *testing.T) {
	_, err := ParseToolServerFlags(store.KindCoding, []string{"--agent-id", "w1"})
	require.Error(t, err)
}

func TestParseToolServerFlags_ReviewRequiresParentFlags(t *testing.T) {
	_, err := ParseToolServerFlags(store.KindReview, []string{
		"--agent-id", "r1", "--workspace", "/tmp/r1", "--branch", "review/r1", "--session", "r1",
	})
	require.Error(t, err)

	f, err := ParseToolServerFlags(store.KindReview, []string{
		"--agent-id", "r1", "--workspace", "/tmp/r1", "--branch", "review/r1", "--session", "r1",
		"--parent-instance-id", "w1", "--parent-tmux-session", "w1",
	})
	require.NoError(t, err)
	require.Equal(t, "w1", f.ParentInstanceID)
}

func TestParseToolServerFlags_Issue(t *testing.T) {
	f, err := ParseToolServerFlags(store.KindCoding, []string{
		"--agent-id", "w1", "--workspace", "/tmp/w1", "--branch", "swarm/w1", "--session", "w1",
		"--issue", "42",
	})
	require.NoError(t, err)
	require.Equal(t, 42, f.Issue)
}
