package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <worker-id>",
	Short: "Show a worker's Store row and its relationships",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	workerCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := context.Background()
	w, err := a.Store.GetWorker(ctx, args[0])
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}

	fmt.Printf("id:            %s\n", w.ID)
	fmt.Printf("kind:          %s\n", w.Kind)
	fmt.Printf("status:        %s\n", w.Status)
	printOptString("worktree_path", w.WorktreePath)
	printOptString("branch", w.Branch)
	printOptString("base_branch", w.BaseBranch)
	printOptString("session_name", w.SessionName)
	printOptInt("lm_pid", w.LMPid)
	printOptInt("tool_server_pid", w.ToolServerPid)
	printOptInt("issue_number", w.IssueNumber)
	printOptString("parent_id", w.ParentID)
	printOptInt("pr_number", w.PRNumber)
	printOptString("pr_url", w.PRURL)
	fmt.Printf("created_at:    %s\n", w.CreatedAt.Format("2006-01-02T15:04:05"))
	fmt.Printf("last_activity: %s\n", w.LastActivity.Format("2006-01-02T15:04:05"))
	if w.TerminatedAt != nil {
		fmt.Printf("terminated_at: %s\n", w.TerminatedAt.Format("2006-01-02T15:04:05"))
	}

	rels, err := a.Store.GetRelationships(ctx, w.ID)
	if err != nil {
		return fmt.Errorf("show: relationships: %w", err)
	}
	if len(rels) > 0 {
		fmt.Println("relationships:")
		for _, r := range rels {
			fmt.Printf("  %s -> %s (%s, iteration %d)\n", r.ParentID, r.ChildID, r.Kind, r.Iteration)
		}
	}
	return nil
}

func printOptString(label string, v *string) {
	if v != nil {
		fmt.Printf("%s: %s\n", label, *v)
	}
}

func printOptInt(label string, v *int) {
	if v != nil {
		fmt.Printf("%s: %d\n", label, *v)
	}
}
