// Package tooldispatch is the in-process tool execution layer every
// tool-server subprocess delegates to, grounded in the teacher's
// internal/orchestration/mcp.Server: a permission table keyed by worker
// kind (spec.md §4.6) plus a handler registry, collapsed here into a
// single Dispatch entry point since this module has no dynamic
// RegisterTool call — the tool set per kind is fixed at compile time.
package tooldispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zjrosen/swarmctl/internal/hostingclient"
	"github.com/zjrosen/swarmctl/internal/store"
	"github.com/zjrosen/swarmctl/internal/swarmerr"
	"github.com/zjrosen/swarmctl/internal/tracing"
	"github.com/zjrosen/swarmctl/internal/workflow"
)

// Request is a single tool invocation, already attributed to the calling
// worker by the tool-server subprocess that only ever serves one worker
// (spec.md §4.6 "worker_id (from the subprocess's invocation context)").
type Request struct {
	WorkerID string
	ToolName string
	Arguments json.RawMessage
}

// Response is Dispatch's uniform result: either Result is populated and
// Err is nil, or vice versa. ToolName is echoed back for the caller's
// framing layer.
type Response struct {
	ToolName string
	Result   any
	Err      error
}

// tools is the compile-time permission table of spec.md §4.6: the tools a
// worker of a given kind may call.
var tools = map[store.Kind][]string{
	store.KindCoding:   {"request_review", "create_pull_request"},
	store.KindReview:   {"request_changes", "create_pull_request"},
	store.KindPlanning: {"create_task", "analyze_repository"},
}

func permitted(kind store.Kind, toolName string) bool {
	for _, name := range tools[kind] {
		if name == toolName {
			return true
		}
	}
	return false
}

// Dispatcher executes tool calls against a workflow.Engine, enforcing the
// per-kind permission table and per-tool argument schema before ever
// reaching the engine (spec.md §4.6 contract).
type Dispatcher struct {
	Engine *workflow.Engine
}

// New returns a ready Dispatcher.
func New(engine *workflow.Engine) *Dispatcher {
	return &Dispatcher{Engine: engine}
}

// Dispatch validates req against the permission table and argument
// schemas, then executes it via the Engine. A ToolEvent is always
// recorded by the Engine method itself (or, for the validation failures
// below that reject before ever reaching the Engine, by logRejection) —
// spec.md §4.6 "always emit a ToolEvent regardless of success".
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	ctx, span := tracing.StartToolSpan(ctx, d.Engine.Tracer, req.ToolName, req.WorkerID)
	defer func() { tracing.EndSpan(span, resp.Err) }()

	w, err := d.Engine.Store.GetWorker(ctx, req.WorkerID)
	if err != nil {
		d.logRejection(ctx, req, swarmerr.KindUnknownToolCaller, err)
		return Response{ToolName: req.ToolName, Err: swarmerr.Wrap(swarmerr.KindUnknownToolCaller, "tooldispatch", "unknown worker", err)}
	}
	if w.Status.IsTerminal() {
		terr := swarmerr.New(swarmerr.KindUnknownToolCaller, "tooldispatch", "worker is terminal").WithDetail("worker_id", req.WorkerID)
		d.logRejection(ctx, req, swarmerr.KindUnknownToolCaller, terr)
		return Response{ToolName: req.ToolName, Err: terr}
	}

	if !permitted(w.Kind, req.ToolName) {
		ferr := swarmerr.New(swarmerr.KindToolForbidden, "tooldispatch", "tool not permitted for worker kind").
			WithDetail("worker_id", req.WorkerID).WithDetail("kind", string(w.Kind)).WithDetail("tool_name", req.ToolName)
		d.logRejection(ctx, req, swarmerr.KindToolForbidden, ferr)
		return Response{ToolName: req.ToolName, Err: ferr}
	}

	args, err := validateArgs(req.ToolName, req.Arguments)
	if err != nil {
		d.logRejection(ctx, req, swarmerr.KindInvalidArguments, err)
		return Response{ToolName: req.ToolName, Err: err}
	}

	result, err := d.execute(ctx, w, req.ToolName, args)
	return Response{ToolName: req.ToolName, Result: result, Err: err}
}

// execute routes a validated call to the matching Engine method.
func (d *Dispatcher) execute(ctx context.Context, w *store.Worker, toolName string, args map[string]any) (any, error) {
	switch toolName {
	case "request_review":
		return d.Engine.RequestReview(ctx, w.ID, stringArg(args, "description"))

	case "create_pull_request":
		return d.Engine.CreatePullRequest(ctx, w.ID, hostingclient.PRRequest{
			Title: stringArg(args, "title"),
			Body:  stringArg(args, "body"),
			Draft: boolArg(args, "draft"),
		})

	case "request_changes":
		return nil, d.Engine.RequestChanges(ctx, w.ID, stringArg(args, "feedback"))

	case "create_task":
		req := workflow.CreateTaskRequest{
			Title:       stringArg(args, "title"),
			Description: stringArg(args, "description"),
			Priority:    stringArg(args, "priority"),
		}
		if hours, ok := float64Arg(args, "estimated_hours"); ok {
			req.EstimatedHours = &hours
		}
		return d.Engine.CreateTask(ctx, w.ID, req)

	case "analyze_repository":
		return d.Engine.AnalyzeRepository(ctx, w.ID, workflow.AnalyzeRepositoryRequest{
			Scope: stringArg(args, "scope"),
			Depth: intArg(args, "depth"),
		})

	default:
		return nil, swarmerr.New(swarmerr.KindUnknownToolCaller, "tooldispatch", "unrecognized tool").WithDetail("tool_name", toolName)
	}
}

// logRejection records a ToolEvent for a call that was rejected before
// reaching the Engine (unknown caller, forbidden tool, bad arguments),
// since those rejections never pass through an Engine method that would
// otherwise record one (spec.md §4.6 "always emit a ToolEvent regardless
// of success").
func (d *Dispatcher) logRejection(ctx context.Context, req Request, kind swarmerr.Kind, rejectErr error) {
	msg := rejectErr.Error()
	evt := &store.ToolEvent{
		WorkerID:         req.WorkerID,
		ToolName:         req.ToolName,
		Success:          false,
		IsStatusUpdating: false,
		Error:            &msg,
		Timestamp:        time.Now(),
	}
	_ = d.Engine.Store.LogToolEvent(ctx, evt)
}
