// Package termdriver manages terminal-multiplexer sessions used to host
// interactive worker shells. It shells out to a configured mux binary
// (tmux by default) via argv-only exec.Command invocations — no shell
// interpolation, ever.
package termdriver

import "time"

// SessionInfo describes a live or recently-live mux session.
type SessionInfo struct {
	Name      string
	CreatedAt time.Time
	Cwd       string
	Windows   int
	Alive     bool
}

// CreateSessionRequest is the input to Driver.CreateSession.
type CreateSessionRequest struct {
	Name           string
	Cwd            string
	Env            map[string]string
	InitialCommand string
}

// KillSessionOptions controls Driver.KillSession.
type KillSessionOptions struct {
	GracefulTimeout time.Duration
	Force           bool
}
