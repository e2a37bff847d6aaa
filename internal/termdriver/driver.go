package termdriver

import (
	"context"
	"fmt"
	"os/exec"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
)

const defaultMuxBinary = "tmux"

// Driver manages mux sessions by shelling out to a terminal multiplexer
// binary. All arguments are passed argv-only; no command is ever built by
// string-concatenating into a shell.
type Driver struct {
	bin string

	mu     sync.Mutex
	queues map[string]*sync.Mutex
}

// New returns a Driver that invokes binPath (e.g. "tmux", or an absolute
// path to a tmux-compatible binary). If binPath is empty, defaultMuxBinary
// is used.
func New(binPath string) *Driver {
	if binPath == "" {
		binPath = defaultMuxBinary
	}
	return &Driver{bin: binPath, queues: make(map[string]*sync.Mutex)}
}

func (d *Driver) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, d.bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("termdriver: %s %v: %w: %s", d.bin, args, err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// queueFor returns the per-session mutex used to strictly order send_keys
// calls against a single session (spec.md §4.3/§5).
func (d *Driver) queueFor(name string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	q, ok := d.queues[name]
	if !ok {
		q = &sync.Mutex{}
		d.queues[name] = q
	}
	return q
}

func (d *Driver) dropQueue(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.queues, name)
}

func (d *Driver) hasSession(ctx context.Context, name string) bool {
	_, err := d.run(ctx, "has-session", "-t", name)
	return err == nil
}

// CreateSession starts a new mux session.
func (d *Driver) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	if !isValidSessionName(req.Name) {
		return nil, swarmerr.Wrap(swarmerr.KindTermInvalidName, "termdriver", ErrInvalidName.Error(), ErrInvalidName)
	}
	if !isValidCwd(req.Cwd) {
		return nil, swarmerr.Wrap(swarmerr.KindTermInvalidDirectory, "termdriver", ErrInvalidCwd.Error(), ErrInvalidCwd)
	}
	if !isValidEnv(req.Env) {
		return nil, swarmerr.Wrap(swarmerr.KindTermInvalidDirectory, "termdriver", ErrInvalidEnv.Error(), ErrInvalidEnv)
	}
	if d.hasSession(ctx, req.Name) {
		return nil, swarmerr.Wrap(swarmerr.KindTermSessionExists, "termdriver", ErrSessionExists.Error(), ErrSessionExists)
	}

	args := []string{"new-session", "-d", "-s", req.Name, "-c", req.Cwd}
	for k, v := range req.Env {
		args = append(args, "-e", k+"="+v)
	}
	if _, err := d.run(ctx, args...); err != nil {
		return nil, err
	}

	if req.InitialCommand != "" {
		if err := d.sendKeysLocked(ctx, req.Name, req.InitialCommand, true); err != nil {
			return nil, err
		}
	}

	log.Info(log.CatTerm, "created session", "name", req.Name, "cwd", req.Cwd)
	return d.GetSessionInfo(ctx, req.Name)
}

// KillSession sends a shell-exit keystroke, polls for the session's
// disappearance up to opts.GracefulTimeout, then force-kills it.
func (d *Driver) KillSession(ctx context.Context, name string, opts KillSessionOptions) error {
	if !d.hasSession(ctx, name) {
		return swarmerr.Wrap(swarmerr.KindTermSessionNotFound, "termdriver", ErrSessionMissing.Error(), ErrSessionMissing)
	}
	defer d.dropQueue(name)

	if !opts.Force {
		_ = d.sendKeysLocked(ctx, name, "exit", true)

		deadline := time.Now().Add(opts.GracefulTimeout)
		for time.Now().Before(deadline) {
			if !d.hasSession(ctx, name) {
				log.Info(log.CatTerm, "session exited gracefully", "name", name)
				return nil
			}
			time.Sleep(100 * time.Millisecond)
		}
	}

	if _, err := d.run(ctx, "kill-session", "-t", name); err != nil {
		if !d.hasSession(ctx, name) {
			return nil
		}
		return err
	}
	log.Info(log.CatTerm, "session force-killed", "name", name)
	return nil
}

// SendKeys writes text into the session's active pane, strictly ordered
// per session via a per-session mutex-guarded queue. Newlines in text are
// submitted as separate keystrokes.
func (d *Driver) SendKeys(ctx context.Context, name, text string, pressEnter bool) error {
	q := d.queueFor(name)
	q.Lock()
	defer q.Unlock()

	if !d.hasSession(ctx, name) {
		return swarmerr.Wrap(swarmerr.KindTermSessionNotFound, "termdriver", ErrSessionMissing.Error(), ErrSessionMissing)
	}
	return d.sendKeysLocked(ctx, name, text, pressEnter)
}

// sendKeysLocked performs the actual tmux send-keys invocations. Callers
// must already hold the session's queue mutex (or be creating the session,
// before any concurrent sender could observe it).
func (d *Driver) sendKeysLocked(ctx context.Context, name, text string, pressEnter bool) error {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			if _, err := d.run(ctx, "send-keys", "-t", name, "-l", "--", line); err != nil {
				return err
			}
		}
		last := i == len(lines)-1
		if !last || pressEnter {
			if _, err := d.run(ctx, "send-keys", "-t", name, "Enter"); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListSessions lists sessions whose name matches globPattern (empty means
// all sessions).
func (d *Driver) ListSessions(ctx context.Context, globPattern string) ([]*SessionInfo, error) {
	out, err := d.run(ctx, "list-sessions", "-F", sessionInfoFormat)
	if err != nil {
		if strings.TrimSpace(out) == "" || strings.Contains(out, "no server running") || strings.Contains(out, "no current session") {
			return nil, nil
		}
		return nil, err
	}

	var infos []*SessionInfo
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		info, err := parseSessionInfoLine(line)
		if err != nil {
			continue
		}
		if globPattern != "" {
			if ok, _ := matchGlob(globPattern, info.Name); !ok {
				continue
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// GetSessionInfo returns metadata about a single session.
func (d *Driver) GetSessionInfo(ctx context.Context, name string) (*SessionInfo, error) {
	out, err := d.run(ctx, "list-sessions", "-F", sessionInfoFormat, "-f", "#{==:#{session_name},"+name+"}")
	if err != nil || strings.TrimSpace(out) == "" {
		return nil, swarmerr.Wrap(swarmerr.KindTermSessionNotFound, "termdriver", ErrSessionMissing.Error(), ErrSessionMissing)
	}
	line := strings.TrimRight(strings.Split(out, "\n")[0], "\n")
	return parseSessionInfoLine(line)
}

const sessionInfoFormat = "#{session_name}\t#{session_created}\t#{session_path}\t#{session_windows}"

func parseSessionInfoLine(line string) (*SessionInfo, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return nil, fmt.Errorf("termdriver: malformed session info line %q", line)
	}
	createdUnix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, err
	}
	windows, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, err
	}
	return &SessionInfo{
		Name:      fields[0],
		CreatedAt: time.Unix(createdUnix, 0),
		Cwd:       fields[2],
		Windows:   windows,
		Alive:     true,
	}, nil
}

func matchGlob(pattern, name string) (bool, error) {
	return path.Match(pattern, name)
}
