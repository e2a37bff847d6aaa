// Package config provides process-wide configuration for swarmctl.
// Configuration is loaded once at startup from environment variables and
// held immutable for the lifetime of the process; nothing in this package
// reads or mutates config state after Load returns.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/swarmctl/internal/store"
)

// Config holds all configuration for the orchestrator process.
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`

	HostingToken   string        `mapstructure:"hosting_token"`
	HostingAPIURL  string        `mapstructure:"hosting_api_url"`
	HostingTimeout time.Duration `mapstructure:"-"`

	LMModel     string        `mapstructure:"lm_model"`
	LMTimeout   time.Duration `mapstructure:"-"`
	GitTimeout  time.Duration `mapstructure:"-"`
	GitDefault  string        `mapstructure:"git_default_branch"`

	TermSessionPrefix string        `mapstructure:"term_session_prefix"`
	TermKillTimeout   time.Duration `mapstructure:"-"`

	WorktreeBasePath string `mapstructure:"worktree_base_path"`
	WorktreeMax      int    `mapstructure:"worktree_max"`

	CleanupOnError bool `mapstructure:"cleanup_on_error"`

	DatabaseURL string `mapstructure:"database_url"`

	// RepoPath is the canonical repository checkout that worktrees are
	// created against (the directory the GitDriver runs git in). The
	// worktree directories themselves are placed under WorktreeBasePath.
	RepoPath string `mapstructure:"repo_path"`

	// LMBinary is the headless LM CLI launched inside every worker's
	// terminal session (spec.md §4.4 start_lm).
	LMBinary string `mapstructure:"lm_binary"`

	// ToolServerCodingBinary, ToolServerReviewBinary, and
	// ToolServerPlanningBinary are the three per-kind tool-server binaries
	// (spec.md §4.6, SPEC_FULL.md §6: cmd/swarmctl-tool-coding/-review/
	// -planning). Each worker kind's tool server is a distinct executable
	// with its own embedded Engine and Store connection, not one binary
	// branching on an argv flag.
	ToolServerCodingBinary   string `mapstructure:"tool_server_coding_binary"`
	ToolServerReviewBinary   string `mapstructure:"tool_server_review_binary"`
	ToolServerPlanningBinary string `mapstructure:"tool_server_planning_binary"`

	// TermMuxBinary is the terminal-multiplexer binary (tmux by default).
	TermMuxBinary string `mapstructure:"term_mux_binary"`

	// ReviewPromptTemplate seeds every spawned review worker's terminal
	// session (spec.md §9 Open Question: "default review-prompt content
	// ... implementers must source it from configuration").
	ReviewPromptTemplate string `mapstructure:"review_prompt_template"`

	// SupportedHosts bounds which code-hosting hosts ParseRemoteURL
	// recognizes (spec.md §4.2 "host-restricted to the configured set").
	// Bound from a comma-separated SUPPORTED_HOSTS env var, not through
	// mapstructure (Viper does not auto-split a scalar env string into a
	// slice on Unmarshal).
	SupportedHosts []string `mapstructure:"-"`

	// raw millisecond fields bound directly from env; converted to the
	// Duration fields above after Unmarshal.
	HostingTimeoutMS int `mapstructure:"hosting_timeout_ms"`
	LMTimeoutMS      int `mapstructure:"lm_timeout_ms"`
	GitTimeoutMS     int `mapstructure:"git_timeout_ms"`
	TermKillTimeoutMS int `mapstructure:"term_kill_timeout_ms"`
}

// envBindings lists every environment variable consumed by the
// orchestrator, per spec. Each is bound explicitly since Viper does not
// auto-discover env vars without a matching Set/Get call or a prior bind.
var envBindings = []string{
	"database_url",
	"log_level",
	"log_path",
	"hosting_token",
	"hosting_api_url",
	"hosting_timeout_ms",
	"lm_model",
	"lm_timeout_ms",
	"git_timeout_ms",
	"git_default_branch",
	"term_session_prefix",
	"term_kill_timeout_ms",
	"worktree_base_path",
	"worktree_max",
	"cleanup_on_error",
	"repo_path",
	"lm_binary",
	"tool_server_coding_binary",
	"tool_server_review_binary",
	"tool_server_planning_binary",
	"term_mux_binary",
	"review_prompt_template",
	"supported_hosts",
}

// envKey maps a mapstructure key to its SCREAMING_SNAKE_CASE env var name.
func envKey(key string) string {
	out := make([]byte, 0, len(key))
	for _, r := range key {
		if r == '.' {
			out = append(out, '_')
			continue
		}
		if r >= 'a' && r <= 'z' {
			out = append(out, byte(r-'a'+'A'))
			continue
		}
		out = append(out, byte(r))
	}
	return string(out)
}

func defaults() Config {
	return Config{
		LogLevel:          "info",
		LogPath:           ".swarmctl/swarmctl.log",
		HostingAPIURL:     "https://api.github.com",
		HostingTimeoutMS:  30_000,
		LMModel:           "",
		LMTimeoutMS:       60_000,
		GitTimeoutMS:      30_000,
		GitDefault:        "main",
		TermSessionPrefix: "swarm",
		TermKillTimeoutMS: 10_000,
		WorktreeBasePath:  ".swarmctl/worktrees",
		WorktreeMax:       10,
		CleanupOnError:    true,
		DatabaseURL:       "swarmctl.db",
		RepoPath:                 ".",
		LMBinary:                 "claude",
		ToolServerCodingBinary:   "swarmctl-tool-coding",
		ToolServerReviewBinary:   "swarmctl-tool-review",
		ToolServerPlanningBinary: "swarmctl-tool-planning",
		TermMuxBinary:            "tmux",
		ReviewPromptTemplate: "You are reviewing a coding worker's change. Read the diff against the " +
			"base branch, check it against the original task, and either request changes with concrete, " +
			"actionable feedback or approve it by opening a pull request.",
		SupportedHosts: []string{"github.com"},
	}
}

// Load reads configuration from environment variables and documented
// defaults, grounded in the teacher's cmd/root.go Viper-based loader but
// with config-file layering removed: this module has no on-disk config
// surface, only the environment variables of spec.md §6.
func Load() (*Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))

	d := defaults()
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_path", d.LogPath)
	v.SetDefault("hosting_api_url", d.HostingAPIURL)
	v.SetDefault("hosting_timeout_ms", d.HostingTimeoutMS)
	v.SetDefault("lm_timeout_ms", d.LMTimeoutMS)
	v.SetDefault("git_timeout_ms", d.GitTimeoutMS)
	v.SetDefault("git_default_branch", d.GitDefault)
	v.SetDefault("term_session_prefix", d.TermSessionPrefix)
	v.SetDefault("term_kill_timeout_ms", d.TermKillTimeoutMS)
	v.SetDefault("worktree_base_path", d.WorktreeBasePath)
	v.SetDefault("worktree_max", d.WorktreeMax)
	v.SetDefault("cleanup_on_error", d.CleanupOnError)
	v.SetDefault("repo_path", d.RepoPath)
	v.SetDefault("lm_binary", d.LMBinary)
	v.SetDefault("tool_server_coding_binary", d.ToolServerCodingBinary)
	v.SetDefault("tool_server_review_binary", d.ToolServerReviewBinary)
	v.SetDefault("tool_server_planning_binary", d.ToolServerPlanningBinary)
	v.SetDefault("term_mux_binary", d.TermMuxBinary)
	v.SetDefault("review_prompt_template", d.ReviewPromptTemplate)
	v.SetDefault("supported_hosts", strings.Join(d.SupportedHosts, ","))

	for _, key := range envBindings {
		if err := v.BindEnv(key, envKey(key)); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.HostingTimeout = time.Duration(cfg.HostingTimeoutMS) * time.Millisecond
	cfg.LMTimeout = time.Duration(cfg.LMTimeoutMS) * time.Millisecond
	cfg.GitTimeout = time.Duration(cfg.GitTimeoutMS) * time.Millisecond
	cfg.TermKillTimeout = time.Duration(cfg.TermKillTimeoutMS) * time.Millisecond

	if raw := v.GetString("supported_hosts"); raw != "" {
		cfg.SupportedHosts = splitAndTrim(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks bounds that the spec calls out explicitly (§4.7:
// WorktreeMax bounded to [1, 50]).
func (c *Config) Validate() error {
	if c.WorktreeMax < 1 || c.WorktreeMax > 50 {
		return fmt.Errorf("config: worktree_max must be in [1, 50], got %d", c.WorktreeMax)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: database_url is required")
	}
	return nil
}

// IsSupportedHost reports whether host is in the configured allow-list
// (spec.md §4.2: remote URL matching is host-restricted to the configured
// set; an empty allow-list permits every host).
func (c *Config) IsSupportedHost(host string) bool {
	if len(c.SupportedHosts) == 0 {
		return true
	}
	for _, h := range c.SupportedHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// ToolServerBinary returns the configured tool-server executable path for
// the given worker kind (spec.md §4.6: each kind's tool server is a
// separate binary).
func (c *Config) ToolServerBinary(kind store.Kind) string {
	switch kind {
	case store.KindCoding:
		return c.ToolServerCodingBinary
	case store.KindReview:
		return c.ToolServerReviewBinary
	case store.KindPlanning:
		return c.ToolServerPlanningBinary
	default:
		return ""
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
