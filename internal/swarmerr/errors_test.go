package swarmerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindStoreConnection, "store", "dial failed", cause)
	assert.Contains(t, err.Error(), "dial failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIs_MatchesKind(t *testing.T) {
	err := New(KindGitBranchExists, "git", "branch exists").WithSuggestion("use a different branch name")
	assert.True(t, Is(err, KindGitBranchExists))
	assert.False(t, Is(err, KindGitRepoInvalid))
}

func TestIs_WrappedError(t *testing.T) {
	inner := New(KindStoreNotFound, "store", "worker not found")
	outer := fmt.Errorf("lookup failed: %w", inner)
	assert.True(t, Is(outer, KindStoreNotFound))
}

func TestKindOf_NonSwarmErr(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestWithDetail_Chaining(t *testing.T) {
	err := New(KindCapacity, "workflow", "limit reached").
		WithDetail("limit", 50).
		WithDetail("current", 51)
	assert.Equal(t, 50, err.Details["limit"])
	assert.Equal(t, 51, err.Details["current"])
}
