// Command swarmctl-tool-planning is the tool-server subprocess launched
// inside every planning worker's workspace (spec.md §4.4 start_tool_server,
// §4.6 permitted tools: create_task, analyze_repository).
package main

import (
	"fmt"
	"os"

	"github.com/zjrosen/swarmctl/internal/app"
	"github.com/zjrosen/swarmctl/internal/store"
)

func main() {
	if err := app.RunToolServer(store.KindPlanning); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
