package termdriver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidSessionName(t *testing.T) {
	require.True(t, isValidSessionName("worker-123_a"))
	require.False(t, isValidSessionName(""))
	require.False(t, isValidSessionName("has space"))
	require.False(t, isValidSessionName("semi;colon"))
	require.False(t, isValidSessionName(strings.Repeat("a", 101)))
}

func TestIsValidCwd(t *testing.T) {
	require.True(t, isValidCwd("/home/worker/repo"))
	require.False(t, isValidCwd("relative/path"))
	require.False(t, isValidCwd("/home/../etc"))
	require.False(t, isValidCwd("/home/$(whoami)"))
}

func TestIsValidEnv(t *testing.T) {
	require.True(t, isValidEnv(map[string]string{"FOO": "bar"}))
	require.False(t, isValidEnv(map[string]string{"FOO;": "bar"}))
	require.False(t, isValidEnv(map[string]string{"FOO": "bar`whoami`"}))
}
