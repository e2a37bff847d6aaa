package agentdriver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

// Driver starts and stops LM and tool-server subprocesses.
type Driver struct {
	binaries *binaryAvailability
}

// New returns a ready Driver.
func New() *Driver {
	return &Driver{binaries: newBinaryAvailability()}
}

// StartLM launches a headless LM CLI process.
func (d *Driver) StartLM(ctx context.Context, spec LMSpec) (*Handle, error) {
	if _, err := d.binaries.resolve(spec.Binary); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindLMNotFound, "agentdriver", fmt.Sprintf("LM binary %q not found on PATH", spec.Binary), ErrBinaryNotFound)
	}
	h, err := d.start(ctx, spec.Binary, spec.Args, spec.WorkDir, spec.Env)
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindLMLaunchFailed, "agentdriver", "failed to launch LM process", err)
	}
	log.Info(log.CatAgent, "started LM process", "binary", spec.Binary, "pid", h.PID)
	return h, nil
}

// StartToolServer launches a worker's paired tool-server process.
func (d *Driver) StartToolServer(ctx context.Context, spec ToolServerSpec) (*Handle, error) {
	if _, err := d.binaries.resolve(spec.Binary); err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindLMNotFound, "agentdriver", fmt.Sprintf("tool server binary %q not found on PATH", spec.Binary), ErrBinaryNotFound)
	}
	h, err := d.start(ctx, spec.Binary, spec.Args, spec.WorkDir, spec.Env)
	if err != nil {
		return nil, swarmerr.Wrap(swarmerr.KindLMLaunchFailed, "agentdriver", "failed to launch tool server process", err)
	}
	log.Info(log.CatAgent, "started tool server process", "binary", spec.Binary, "pid", h.PID)
	return h, nil
}

func (d *Driver) start(ctx context.Context, binary string, args []string, workDir string, env []string) (*Handle, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = workDir
	if len(env) > 0 {
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	exit := make(chan error, 1)
	go func() {
		exit <- cmd.Wait()
	}()

	return &Handle{PID: cmd.Process.Pid, Exit: exit, cmd: cmd}, nil
}

// TerminateLM stops an LM process: SIGTERM, wait up to opts.GracePeriod,
// then SIGKILL.
func (d *Driver) TerminateLM(ctx context.Context, h *Handle, opts TerminateOptions) error {
	return d.terminate(ctx, h, opts, "LM")
}

// TerminateToolServer stops a tool-server process using the same
// graceful-then-kill shape as TerminateLM.
func (d *Driver) TerminateToolServer(ctx context.Context, h *Handle, opts TerminateOptions) error {
	return d.terminate(ctx, h, opts, "tool server")
}

// TerminatePID stops a process by PID alone, without a live Handle
// (SIGTERM, wait up to opts.GracePeriod polling for the process's
// disappearance, then SIGKILL). Used by Cleanup when the worker's tool
// server or LM process was started by a different Engine instance than
// the one now cleaning it up — the common case for a process recorded in
// the Store across restarts, since a Handle's exit channel only exists in
// the process that called Start.
func (d *Driver) TerminatePID(ctx context.Context, pid int, opts TerminateOptions) error {
	if pid <= 0 {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return nil
	}

	grace := opts.GracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if proc.Signal(syscall.Signal(0)) != nil {
			return nil
		}
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			deadline = time.Now()
		}
	}

	if proc.Signal(syscall.Signal(0)) != nil {
		return nil
	}
	if err := proc.Kill(); err != nil {
		return swarmerr.Wrap(swarmerr.KindLMTimeout, "agentdriver", "process did not exit within grace period and could not be killed", err)
	}
	return nil
}

func (d *Driver) terminate(ctx context.Context, h *Handle, opts TerminateOptions, label string) error {
	if h == nil || h.cmd == nil || h.cmd.Process == nil {
		return nil
	}

	select {
	case <-h.Exit:
		return nil
	default:
	}

	_ = h.cmd.Process.Signal(syscall.SIGTERM)

	grace := opts.GracePeriod
	if grace <= 0 {
		grace = 5 * time.Second
	}

	select {
	case <-h.Exit:
		log.Info(log.CatAgent, "process exited gracefully", "label", label, "pid", h.PID)
		return nil
	case <-time.After(grace):
	case <-ctx.Done():
	}

	if err := h.cmd.Process.Kill(); err != nil {
		return swarmerr.Wrap(swarmerr.KindLMTimeout, "agentdriver", fmt.Sprintf("%s did not exit within grace period and could not be killed", label), err)
	}
	<-h.Exit
	log.Warn(log.CatAgent, "process force-killed after grace period", "label", label, "pid", h.PID)
	return nil
}
