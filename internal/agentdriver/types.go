// Package agentdriver starts and stops the subprocesses a worker needs to
// operate: the headless LM CLI and its paired tool server. It tracks only
// process identity and lifetime — parsing the LM's stdout protocol and the
// tool server's request/response protocol belongs to tooldispatch and the
// workflow engine, not here.
package agentdriver

import (
	"os/exec"
	"time"
)

// LMSpec describes how to launch a headless LM CLI process.
type LMSpec struct {
	Binary  string
	Args    []string
	WorkDir string
	Env     []string
}

// ToolServerSpec describes how to launch a worker's tool-server process.
type ToolServerSpec struct {
	Binary  string
	Args    []string
	WorkDir string
	Env     []string
}

// Handle tracks a running subprocess: its PID and an exit channel that
// receives the process's terminal error (nil on clean exit) exactly once.
type Handle struct {
	PID  int
	Exit <-chan error

	cmd *exec.Cmd
}

// TerminateOptions controls Driver's graceful-then-kill shutdown shape.
type TerminateOptions struct {
	GracePeriod time.Duration
}
