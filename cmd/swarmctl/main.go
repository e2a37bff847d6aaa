// Command swarmctl is the operator-facing entry point for the orchestrator:
// it launches coding/planning workers, lists and inspects their Store
// rows, and tears them down. The workers themselves are driven by their
// own LM CLI and tool-server subprocesses (cmd/swarmctl-tool-*); this
// binary only ever runs the WorkflowEngine's launch/list/cleanup paths.
package main

import (
	"fmt"
	"os"

	"github.com/zjrosen/swarmctl/cmd/swarmctl/cmd"
)

// Build information injected via ldflags at build time.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
