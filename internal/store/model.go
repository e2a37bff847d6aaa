// Package store defines the durable record of workers, their relationships,
// and the tool-call audit log. Store is the single source of truth about
// live workers; every other component reads by id and requests mutation
// through the WorkflowEngine.
package store

import "time"

// Kind identifies which of the three worker roles a Worker plays.
type Kind string

const (
	KindCoding   Kind = "coding"
	KindReview   Kind = "review"
	KindPlanning Kind = "planning"
)

// IsValid reports whether k is one of the three recognized kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindCoding, KindReview, KindPlanning:
		return true
	default:
		return false
	}
}

// Status is the lifecycle state of a Worker.
type Status string

const (
	StatusStarted         Status = "started"
	StatusWaitingReview    Status = "waiting_review"
	StatusUnderReview      Status = "under_review"
	StatusFeedbackReceived Status = "feedback_received"
	StatusCreatingPR       Status = "creating_pr"
	StatusCompleted        Status = "completed"
	StatusTerminated       Status = "terminated"
	StatusFailed           Status = "failed"
)

// IsValid reports whether s is one of the eight recognized statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusStarted, StatusWaitingReview, StatusUnderReview, StatusFeedbackReceived,
		StatusCreatingPR, StatusCompleted, StatusTerminated, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is a terminal status. A terminal worker
// accepts no further tool calls and its status never changes again; the
// Store rejects every patch to a terminated row (see sqlite UpdateWorker).
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusTerminated || s == StatusFailed
}

// RequiresResources reports whether a Worker in status s must have all four
// resource handles populated (spec.md §3 invariant).
func (s Status) RequiresResources() bool {
	switch s {
	case StatusStarted, StatusWaitingReview, StatusUnderReview, StatusFeedbackReceived, StatusCreatingPR:
		return true
	default:
		return false
	}
}

// Worker is the central entity: an isolated AI coding/review/planning
// process with its own workspace, terminal session, and tool-server.
type Worker struct {
	ID     string
	Kind   Kind
	Status Status

	// Resource handles; nil until acquired, and nil again after clean
	// termination.
	WorktreePath  *string
	Branch        *string
	BaseBranch    *string
	SessionName   *string
	LMPid         *int
	ToolServerPid *int

	// Context
	IssueNumber  *int
	SystemPrompt *string
	ParentID     *string
	PRNumber     *int
	PRURL        *string

	CreatedAt    time.Time
	LastActivity time.Time
	TerminatedAt *time.Time
}

// RelationshipKind identifies the nature of a parent/child edge.
type RelationshipKind string

const (
	RelationshipSpawnedReview    RelationshipKind = "spawned_review"
	RelationshipCreatedFork      RelationshipKind = "created_fork"
	RelationshipPlanningToIssue  RelationshipKind = "planning_to_issue"
)

// Relationship is a directed, typed edge between two workers.
type Relationship struct {
	ID        int64
	ParentID  string
	ChildID   string
	Kind      RelationshipKind
	Iteration int
	Metadata  string
	CreatedAt time.Time
}

// ToolEvent is an append-only audit record of one tool invocation attempt.
type ToolEvent struct {
	ID               int64
	WorkerID         string
	ToolName         string
	Success          bool
	Error            *string
	Metadata         string
	GitCommitHash    *string
	StatusChange     *Status
	IsStatusUpdating bool
	Timestamp        time.Time
}

// IssueRecord is an optional cache of a task/issue created by a planning
// worker's create_task tool.
type IssueRecord struct {
	Number     int
	RepoOwner  string
	RepoName   string
	Title      string
	Body       string
	State      string
	Labels     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SyncedAt   time.Time
}

// ConfigEntry is a single key/value row in the user-config cache.
type ConfigEntry struct {
	Key       string
	Value     string
	Encrypted bool
	UpdatedAt time.Time
}

// WorkerPatch describes a partial update to a Worker row. Nil fields are
// left unchanged.
type WorkerPatch struct {
	Status        *Status
	WorktreePath  *string
	Branch        *string
	BaseBranch    *string
	SessionName   *string
	LMPid         *int
	ToolServerPid *int
	IssueNumber   *int
	SystemPrompt  *string
	PRNumber      *int
	PRURL         *string
	LastActivity  *time.Time
	TerminatedAt  *time.Time

	// ClearWorktreePath and friends request the handle be nulled, which a
	// nil pointer in the corresponding field above cannot express (nil
	// there means "leave unchanged").
	ClearWorktreePath  bool
	ClearBranch        bool
	ClearBaseBranch    bool
	ClearSessionName   bool
	ClearLMPid         bool
	ClearToolServerPid bool
}

// OrderBy selects the sort column for ListWorkers.
type OrderBy string

const (
	OrderByCreatedAt    OrderBy = "created_at"
	OrderByLastActivity OrderBy = "last_activity"
)

// Direction selects ascending or descending order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ListFilter narrows ListWorkers results.
type ListFilter struct {
	Kinds     []Kind
	Statuses  []Status
	ParentID  *string
	Limit     int
	Offset    int
	OrderBy   OrderBy
	Direction Direction
}
