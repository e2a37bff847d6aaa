package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/workflow"
)

var (
	launchPrompt       string
	launchSystemPrompt string
	launchBaseBranch   string
	launchIssue        int
	launchPlanning     bool
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a coding or planning worker (spec.md §4.5.2)",
	RunE:  runLaunch,
}

func init() {
	workerCmd.AddCommand(launchCmd)

	launchCmd.Flags().StringVar(&launchPrompt, "prompt", "", "task prompt seeded into the worker's session (required)")
	launchCmd.Flags().StringVar(&launchSystemPrompt, "system-prompt", "", "optional system prompt prefix")
	launchCmd.Flags().StringVar(&launchBaseBranch, "base-branch", "", "branch the worker's worktree branches from (defaults to GIT_DEFAULT_BRANCH)")
	launchCmd.Flags().IntVar(&launchIssue, "issue", 0, "associated issue number, if any")
	launchCmd.Flags().BoolVar(&launchPlanning, "planning", false, "launch a planning worker instead of a coding worker")
	_ = launchCmd.MarkFlagRequired("prompt")
}

func runLaunch(_ *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	kind := store.KindCoding
	if launchPlanning {
		kind = store.KindPlanning
	}

	req := workflow.LaunchRequest{
		Kind:         kind,
		Prompt:       launchPrompt,
		SystemPrompt: launchSystemPrompt,
		BaseBranch:   launchBaseBranch,
	}
	if launchIssue > 0 {
		req.IssueNumber = &launchIssue
	}

	w, err := a.Engine.Launch(context.Background(), req)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	fmt.Printf("worker %s (%s) status=%s\n", w.ID, w.Kind, w.Status)
	if w.WorktreePath != nil {
		fmt.Printf("  worktree: %s\n", *w.WorktreePath)
	}
	if w.Branch != nil {
		fmt.Printf("  branch:   %s\n", *w.Branch)
	}
	if w.SessionName != nil {
		fmt.Printf("  session:  %s\n", *w.SessionName)
	}
	return nil
}
