// Command swarmctl-tool-review is the tool-server subprocess launched
// inside every review worker's workspace (spec.md §4.4 start_tool_server,
// §4.6 permitted tools: request_changes, create_pull_request). It is
// additionally launched with --parent-instance-id and
// --parent-tmux-session so request_changes can inject feedback back into
// the parent coding worker's terminal session.
package main

import (
	"fmt"
	"os"

	"github.com/zjrosen/swarmctl/internal/app"
	"github.com/zjrosen/swarmctl/internal/store"
)

func main() {
	if err := app.RunToolServer(store.KindReview); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
