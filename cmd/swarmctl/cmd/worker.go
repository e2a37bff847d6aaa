package cmd

import (
	"github.com/spf13/cobra"
)

// workerCmd groups the worker lifecycle subcommands (SPEC_FULL.md §1:
// `swarmctl worker ls`, `swarmctl worker show <id>`), mirroring the
// teacher's registry_list.go / workflow_create.go noun-then-verb naming
// (`perles workflow create`, `perles registry list`) rather than flat
// top-level verbs.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Inspect and control workers",
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
