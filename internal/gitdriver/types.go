// Package gitdriver wraps the git CLI to give each worker an isolated
// worktree and branch, and to compute diffs for review workers. All
// operations shell out to the real git binary; there is no libgit2/go-git
// dependency, matching how the teacher drives git.
package gitdriver

import "time"

// BranchInfo holds information about a git branch.
type BranchInfo struct {
	Name      string
	IsCurrent bool
}

// WorktreeInfo holds information about a git worktree.
type WorktreeInfo struct {
	Path   string
	Branch string
	HEAD   string
}

// CommitInfo holds a single commit's metadata.
type CommitInfo struct {
	Hash      string
	ShortHash string
	Subject   string
	Author    string
	Date      time.Time
	IsPushed  bool
}

// WordSegmentType indicates whether a diff word segment is unchanged,
// added, or deleted.
type WordSegmentType int

const (
	SegmentUnchanged WordSegmentType = iota
	SegmentAdded
	SegmentDeleted
)

// WordSegment is one token-level span of a word diff between two lines.
type WordSegment struct {
	Type WordSegmentType
	Text string
}
