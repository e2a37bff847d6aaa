package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zjrosen/swarmctl/internal/store"
)

var (
	listKind   string
	listStatus string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "ls",
	Short: "List workers (spec.md §4.1 list_workers)",
	RunE:  runList,
}

func init() {
	workerCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listKind, "kind", "", "filter by kind: coding, review, planning")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows to return")
}

func runList(_ *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	filter := store.ListFilter{
		Limit:     listLimit,
		OrderBy:   store.OrderByLastActivity,
		Direction: store.Desc,
	}
	if listKind != "" {
		filter.Kinds = []store.Kind{store.Kind(listKind)}
	}
	if listStatus != "" {
		filter.Statuses = []store.Status{store.Status(listStatus)}
	}

	workers, err := a.Store.ListWorkers(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	defer func() { _ = w.Flush() }()
	fmt.Fprintln(w, "ID\tKIND\tSTATUS\tBRANCH\tPARENT\tLAST ACTIVITY")
	for _, wk := range workers {
		branch := "-"
		if wk.Branch != nil {
			branch = *wk.Branch
		}
		parent := "-"
		if wk.ParentID != nil {
			parent = *wk.ParentID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			wk.ID, wk.Kind, wk.Status, branch, parent, wk.LastActivity.Format("2006-01-02T15:04:05"))
	}
	return nil
}
