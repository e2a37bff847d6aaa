package workflow

import "github.com/zjrosen/swarmctl/internal/store"

// validTransitions encodes the three per-kind state machines of spec.md
// §4.5.1 as a single table, grounded in the teacher's controlplane.go
// validTransitions map: the key is the current status, the value the set
// of statuses a worker of that status may move to next. Kind-specific
// legality (e.g. only a coding worker may reach waiting_review) is
// enforced by the callers that drive each transition, not by this table.
var validTransitions = map[store.Status]map[store.Status]bool{
	store.StatusStarted: {
		store.StatusWaitingReview: true, // coding: request_review
		store.StatusCreatingPR:    true, // coding or review: create_pull_request
		store.StatusCompleted:     true, // planning: create_task
		store.StatusTerminated:    true, // review: request_changes
		store.StatusFailed:        true,
	},
	store.StatusWaitingReview: {
		store.StatusUnderReview: true,
		store.StatusFailed:      true,
	},
	store.StatusUnderReview: {
		store.StatusFeedbackReceived: true,
		store.StatusCompleted:        true, // child's pr created
		store.StatusFailed:           true,
	},
	store.StatusFeedbackReceived: {
		store.StatusStarted: true, // parent resumes
		store.StatusFailed:  true,
	},
	store.StatusCreatingPR: {
		store.StatusCompleted: true,
		store.StatusStarted:   true, // create_pull_request failure, coding reverts
		store.StatusFailed:    true,
	},
	// Terminal states permit no further transition.
	store.StatusCompleted:  {},
	store.StatusTerminated: {},
	store.StatusFailed:     {},
}

// canTransition reports whether from may move to to under the shared
// table above.
func canTransition(from, to store.Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
