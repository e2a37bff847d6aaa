// Package server is the stdio-framed tool-server loop every
// cmd/swarmctl-tool-* binary runs, an adapted, trimmed copy of the
// teacher's internal/orchestration/mcp.Server.Serve: newline-delimited
// JSON-RPC 2.0 over stdin/stdout, minus the HTTP transport, broker event
// publishing, and dynamic RegisterTool machinery that subprocess has no
// use for (this server always dispatches through tooldispatch.Dispatcher
// on behalf of exactly one worker, fixed for the subprocess's lifetime).
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/zjrosen/swarmctl/internal/log"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/tooldispatch"
)

// toolCatalog lists the tools/list descriptors per worker kind, matching
// the permission table of spec.md §4.6. The schemas are static JSON
// literals rather than generated, since the set of tools per kind never
// changes at runtime.
var toolCatalog = map[store.Kind][]toolDescriptor{
	store.KindCoding: {
		{Name: "request_review", Description: "Request a review of the current branch.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"description":{"type":"string"}},"required":["description"]}`)},
		{Name: "create_pull_request", Description: "Open a pull request for the current branch.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"},"body":{"type":"string"},"draft":{"type":"boolean"}},"required":["title","body"]}`)},
	},
	store.KindReview: {
		{Name: "request_changes", Description: "Send review feedback back to the parent worker.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"feedback":{"type":"string"}},"required":["feedback"]}`)},
		{Name: "create_pull_request", Description: "Open a pull request for the current branch.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"},"body":{"type":"string"},"draft":{"type":"boolean"}},"required":["title","body"]}`)},
	},
	store.KindPlanning: {
		{Name: "create_task", Description: "Record a new task.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"title":{"type":"string"},"description":{"type":"string"},"priority":{"type":"string"},"estimated_hours":{"type":"number"}},"required":["title","description","priority"]}`)},
		{Name: "analyze_repository", Description: "Report the worker's branch, cleanliness, and a file/language census.",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"scope":{"type":"string"},"depth":{"type":"number"}}}`)},
	},
}

// Server runs the stdio tool-call loop for a single worker.
type Server struct {
	dispatcher *tooldispatch.Dispatcher
	workerID   string
	kind       store.Kind

	reader io.Reader
	writer io.Writer
}

// New returns a Server that dispatches every tools/call against workerID,
// a worker of kind (fixed by which cmd/swarmctl-tool-* binary invoked it).
func New(dispatcher *tooldispatch.Dispatcher, workerID string, kind store.Kind) *Server {
	return &Server{dispatcher: dispatcher, workerID: workerID, kind: kind}
}

// Serve reads newline-delimited JSON-RPC requests from stdin and writes
// responses to stdout until stdin closes or a read error occurs.
func (s *Server) Serve(stdin io.Reader, stdout io.Writer) error {
	s.reader = stdin
	s.writer = stdout

	scanner := bufio.NewScanner(stdin)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			s.send(newErrorResponse(nil, newParseError(err.Error())))
			continue
		}

		if len(req.ID) == 0 || string(req.ID) == "null" {
			// Notification: no response expected. This server has
			// nothing to react to yet (no session lifecycle events),
			// so it's simply ignored.
			continue
		}

		s.handleRequest(&req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading tool-server input: %w", err)
	}
	return nil
}

func (s *Server) handleRequest(req *request) {
	var result any
	var rpcErr *rpcError

	switch req.Method {
	case "initialize":
		result, rpcErr = s.handleInitialize(req.Params)
	case "tools/list":
		result, rpcErr = s.handleToolsList()
	case "tools/call":
		result, rpcErr = s.handleToolsCall(req.Params)
	case "ping":
		result = struct{}{}
	default:
		rpcErr = newMethodNotFound(req.Method)
	}

	if rpcErr != nil {
		s.send(newErrorResponse(req.ID, rpcErr))
		return
	}
	s.send(newResponse(req.ID, result))
}

func (s *Server) handleInitialize(params json.RawMessage) (any, *rpcError) {
	var p initializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, newInvalidParams(err.Error())
		}
	}
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      implementationInfo{Name: "swarmctl-tool-" + string(s.kind), Version: "1"},
	}, nil
}

func (s *Server) handleToolsList() (any, *rpcError) {
	return toolsListResult{Tools: toolCatalog[s.kind]}, nil
}

func (s *Server) handleToolsCall(params json.RawMessage) (any, *rpcError) {
	var p toolCallParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, newInvalidParams(err.Error())
	}

	known := false
	for _, t := range toolCatalog[s.kind] {
		if t.Name == p.Name {
			known = true
			break
		}
	}
	if !known {
		return nil, newToolNotFound(p.Name)
	}

	resp := s.dispatcher.Dispatch(context.Background(), tooldispatch.Request{
		WorkerID:  s.workerID,
		ToolName:  p.Name,
		Arguments: p.Arguments,
	})

	if resp.Err != nil {
		log.Debug(log.CatTool, "tool call failed", "tool", p.Name, "worker_id", s.workerID, "error", resp.Err)
		return errorResult(resp.Err.Error()), nil
	}

	text := fmt.Sprintf("%s succeeded", p.Name)
	if resp.Result == nil {
		return textResult(text), nil
	}
	return structuredResult(text, resp.Result), nil
}

func (s *Server) send(resp *response) {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Error(log.CatTool, "failed to marshal tool-server response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		log.Error(log.CatTool, "failed to write tool-server response", "error", err)
	}
}
