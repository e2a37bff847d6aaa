package gitdriver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSanitizeBranchName_ReplacesInvalidChars(t *testing.T) {
	require.Equal(t, "fix-login-bug", SanitizeBranchName("fix login bug"))
	require.Equal(t, "feature/auth", SanitizeBranchName("feature/auth"))
}

func TestSanitizeBranchName_CollapsesSeparatorRuns(t *testing.T) {
	got := SanitizeBranchName("fix   the    thing!!!")
	require.False(t, strings.Contains(got, "--"))
}

func TestSanitizeBranchName_TruncatesTo250Runes(t *testing.T) {
	long := strings.Repeat("a", 400)
	got := SanitizeBranchName(long)
	require.LessOrEqual(t, len([]rune(got)), maxBranchNameRunes)
}

func TestSanitizeBranchName_NeverEmpty(t *testing.T) {
	require.NotEmpty(t, SanitizeBranchName(""))
	require.NotEmpty(t, SanitizeBranchName("!!!"))
}

// TestSanitizeBranchName_Idempotent checks the round-trip property that
// sanitizing an already-sanitized name is a no-op, for arbitrary input.
func TestSanitizeBranchName_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.String().Draw(t, "raw")
		once := SanitizeBranchName(raw)
		twice := SanitizeBranchName(once)
		require.Equal(t, once, twice)
		require.LessOrEqual(t, len([]rune(once)), maxBranchNameRunes)
		require.NotEmpty(t, once)
	})
}
