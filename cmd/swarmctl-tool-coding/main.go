// Command swarmctl-tool-coding is the tool-server subprocess launched
// inside every coding worker's workspace (spec.md §4.4 start_tool_server,
// §4.6 permitted tools: request_review, create_pull_request). It serves
// exactly one worker for its lifetime, over a newline-delimited JSON-RPC
// protocol on stdin/stdout.
package main

import (
	"fmt"
	"os"

	"github.com/zjrosen/swarmctl/internal/app"
	"github.com/zjrosen/swarmctl/internal/store"
)

func main() {
	if err := app.RunToolServer(store.KindCoding); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
