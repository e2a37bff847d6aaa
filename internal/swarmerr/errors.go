// Package swarmerr defines the flat, typed error taxonomy shared by every
// orchestrator component. Callers distinguish error kinds by the Kind
// discriminator, never by parsing Error() strings.
package swarmerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind is a typed error discriminator, grouped by owning component.
type Kind string

const (
	// Store
	KindStoreConnection Kind = "store-connection"
	KindStoreConflict   Kind = "store-conflict"
	KindStoreNotFound   Kind = "store-not-found"
	KindStoreTerminal   Kind = "store-terminal-state"
	KindRelationshipExists Kind = "store-relationship-exists"

	// Git
	KindGitRepoInvalid       Kind = "git-repo-invalid"
	KindGitBranchExists      Kind = "git-branch-exists"
	KindGitWorkingTreeDirty  Kind = "git-working-tree-dirty"
	KindGitCommandFailed     Kind = "git-command-failed"
	KindGitInvalidRemote     Kind = "git-invalid-remote"
	KindGitInvalidBranchName Kind = "git-invalid-branch-name"

	// Capacity (shared: worktree pool, workflow fan-out)
	KindCapacity Kind = "capacity"

	// Hosting
	KindHostingRequestFailed Kind = "hosting-request-failed"

	// Terminal mux
	KindTermNotAvailable     Kind = "term-not-available"
	KindTermInvalidName      Kind = "term-invalid-name"
	KindTermInvalidDirectory Kind = "term-invalid-directory"
	KindTermSessionExists    Kind = "term-session-exists"
	KindTermSessionNotFound  Kind = "term-session-not-found"
	KindTermNoTTY            Kind = "term-no-tty"

	// LM / agent subprocess
	KindLMNotFound         Kind = "lm-not-found"
	KindLMLaunchFailed     Kind = "lm-launch-failed"
	KindLMSessionNotFound  Kind = "lm-session-not-found"
	KindLMTimeout          Kind = "lm-timeout"

	// Workflow
	KindWorkflowParentNotFound         Kind = "workflow-parent-not-found"
	KindWorkflowParentInvalidState     Kind = "workflow-parent-invalid-state"
	KindWorkflowInstanceNotFound       Kind = "workflow-instance-not-found"
	KindWorkflowCleanupFailed          Kind = "workflow-cleanup-failed"
	KindWorkflowPRCreationFailed       Kind = "workflow-pr-creation-failed"
	KindWorkflowInvalidState           Kind = "workflow-invalid-state"
	KindWorkflowLaunchFailed           Kind = "workflow-launch-failed"
	KindWorkflowFeedbackDeliveryFailed Kind = "workflow-feedback-delivery-failed"

	// ToolDispatch
	KindUnknownToolCaller Kind = "unknown-tool-caller"
	KindToolForbidden     Kind = "tool-forbidden"
	KindInvalidArguments  Kind = "invalid-arguments"

	// File
	KindFileInvalid Kind = "file-invalid"
)

// Error is a structured, typed error carrying everything a caller needs to
// react programmatically (Kind) and everything an operator needs to react
// manually (Message, Suggestion).
type Error struct {
	Kind      Kind
	Message   string
	Component string
	Details   map[string]any
	Timestamp time.Time
	Suggestion string
	Cause     error
}

// New constructs an Error with the current time and no cause.
func New(kind Kind, component, message string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Component: component,
		Timestamp: time.Now(),
	}
}

// Wrap constructs an Error that attributes an underlying cause.
func Wrap(kind Kind, component, message string, cause error) *Error {
	e := New(kind, component, message)
	e.Cause = cause
	return e
}

// WithSuggestion attaches an operator-facing suggestion and returns the
// receiver for chaining.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithDetail attaches a debugging key/value pair and returns the receiver
// for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

// Unwrap enables errors.Is/errors.As to traverse to the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a *Error with the same Kind, enabling
// errors.Is(err, swarmerr.New(KindStoreNotFound, "", "")) style checks via
// the package-level Is below (the idiomatic entry point).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
