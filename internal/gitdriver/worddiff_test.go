package gitdriver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordDiff_HighlightsChangedToken(t *testing.T) {
	old, new_ := WordDiff("the quick brown fox", "the slow brown fox")
	require.NotEmpty(t, old)
	require.NotEmpty(t, new_)

	var oldHasDelete, newHasInsert bool
	for _, s := range old {
		if s.Type == SegmentDeleted {
			oldHasDelete = true
		}
	}
	for _, s := range new_ {
		if s.Type == SegmentAdded {
			newHasInsert = true
		}
	}
	require.True(t, oldHasDelete)
	require.True(t, newHasInsert)
}

func TestWordDiff_EmptyOldLineIsPureAddition(t *testing.T) {
	old, new_ := WordDiff("", "brand new line")
	require.Empty(t, old)
	require.Len(t, new_, 1)
	require.Equal(t, SegmentAdded, new_[0].Type)
}

func TestWordDiff_BothEmpty(t *testing.T) {
	old, new_ := WordDiff("", "")
	require.Nil(t, old)
	require.Nil(t, new_)
}
