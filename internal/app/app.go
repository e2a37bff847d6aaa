// Package app wires the orchestrator's concrete collaborators together:
// config, the SQLite store, the four driver packages, and the
// WorkflowEngine. Both cmd/swarmctl and the three cmd/swarmctl-tool-*
// binaries call Bootstrap rather than repeating this wiring, grounded in
// the teacher's internal/app package being the single place NewWithConfig
// assembles every service the TUI model needs — this module has no TUI
// layer, so Bootstrap assembles the orchestrator's services instead of a
// tea.Model.
package app

import (
	"context"
	"fmt"

	"github.com/zjrosen/swarmctl/internal/agentdriver"
	"github.com/zjrosen/swarmctl/internal/config"
	"github.com/zjrosen/swarmctl/internal/gitdriver"
	"github.com/zjrosen/swarmctl/internal/hostingclient"
	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/store/sqlite"
	"github.com/zjrosen/swarmctl/internal/termdriver"
	"github.com/zjrosen/swarmctl/internal/tracing"
	"github.com/zjrosen/swarmctl/internal/workflow"
)

// App bundles the process-wide services a running orchestrator needs:
// the Store connection (closed via Close), the WorkflowEngine, and the
// resolved Config every caller needs for incidental values (binary paths,
// worktree limits, and so on).
type App struct {
	Config   *config.Config
	Store    store.Store
	Engine   *workflow.Engine
	Tracing  *tracing.Provider
	closeLog func()
}

// Bootstrap loads configuration, opens the Store, and constructs a ready
// WorkflowEngine. Callers must defer App.Close().
func Bootstrap() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}

	closeLog, err := log.Init(cfg.LogPath, log.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("app: init logging: %w", err)
	}

	st, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	provider, err := tracing.NewProvider(tracing.DefaultConfig())
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("app: init tracing: %w", err)
	}

	git := gitdriver.New(cfg.RepoPath, cfg.SupportedHosts)
	term := termdriver.New(cfg.TermMuxBinary)
	agent := agentdriver.New()

	repoInspector := func(workDir string) workflow.RepoInspector {
		return gitdriver.New(workDir, cfg.SupportedHosts)
	}
	hosting := func(workDir string) workflow.Hosting {
		return hostingclient.NewGHClient(workDir)
	}

	engine := workflow.New(st, git, term, agent, cfg, provider.Tracer(), repoInspector, hosting)

	return &App{
		Config:   cfg,
		Store:    st,
		Engine:   engine,
		Tracing:  provider,
		closeLog: closeLog,
	}, nil
}

// Close releases every resource Bootstrap acquired, in reverse order.
func (a *App) Close() error {
	var errs []error
	if a.Tracing != nil {
		if err := a.Tracing.Shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.closeLog != nil {
		a.closeLog()
	}
	if len(errs) > 0 {
		return fmt.Errorf("app: close: %v", errs)
	}
	return nil
}
