package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys used across WorkflowEngine and ToolDispatch spans.
const (
	AttrWorkerID     = "worker.id"
	AttrWorkerKind   = "worker.kind"
	AttrWorkerStatus = "worker.status"
	AttrParentID     = "worker.parent_id"
	AttrToolName     = "tool.name"
	AttrStatusChange = "workflow.status_change"
	AttrErrorMessage = "error.message"
)

// Span name prefixes.
const (
	SpanPrefixWorkflow = "workflow."
	SpanPrefixTool     = "tool."
)

// StartWorkflowSpan starts an internal-kind span named
// "workflow.<operation>" with the given worker id attached. Callers end the
// span via EndSpan.
func StartWorkflowSpan(ctx context.Context, tracer trace.Tracer, operation, workerID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, SpanPrefixWorkflow+operation, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String(AttrWorkerID, workerID))
	return ctx, span
}

// StartToolSpan starts a span for a single ToolDispatch call.
func StartToolSpan(ctx context.Context, tracer trace.Tracer, toolName, workerID string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, SpanPrefixTool+toolName, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(
		attribute.String(AttrToolName, toolName),
		attribute.String(AttrWorkerID, workerID),
	)
	return ctx, span
}

// EndSpan records err (if any) on span and closes it. Call via defer
// immediately after a Start* call, wrapping the error return of the
// enclosing function:
//
//	ctx, span := tracing.StartWorkflowSpan(ctx, tracer, "launch", id)
//	defer func() { tracing.EndSpan(span, err) }()
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
