package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var terminateCmd = &cobra.Command{
	Use:   "terminate <worker-id>",
	Short: "Run the cleanup protocol for a worker (spec.md §4.5.5)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTerminate,
}

func init() {
	workerCmd.AddCommand(terminateCmd)
}

func runTerminate(_ *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.Engine.Cleanup(context.Background(), args[0]); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}
	fmt.Printf("worker %s cleaned up\n", args[0])
	return nil
}
