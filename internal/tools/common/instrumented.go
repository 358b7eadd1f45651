package common

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
	"github.com/teemow/calendar-mcp/internal/server"
)

var errToolResult = errors.New("tool returned an error result")

type invocationKey struct{}

// RecordTimezoneFallback notes on the span in ctx that hint was not a known
// zone and the default was used.
func RecordTimezoneFallback(ctx context.Context, hint string) {
	instrumentation.AddSpanEvent(trace.SpanFromContext(ctx), "timezone_fallback",
		attribute.String(instrumentation.SpanAttrTimezone, hint))
}

// SetIntent records the parsed intent of the running tool call on its audit
// record and span. It is a no-op outside InstrumentedToolHandler.
func SetIntent(ctx context.Context, intent, timezone string) {
	if inv, ok := ctx.Value(invocationKey{}).(*instrumentation.ToolInvocation); ok {
		inv.WithIntent(intent)
	}
	trace.SpanFromContext(ctx).SetAttributes(
		instrumentation.NewSpanAttributeBuilder().WithIntent(intent).WithTimezone(timezone).Build()...)
}

// InstrumentedToolHandler wraps a tool handler with a span, metrics and
// audit logging. A result with IsError set counts as a failure.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return InstrumentedToolHandlerWithService(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService is InstrumentedToolHandler for tools
// backed by a Google API. The service and its main operation are added to
// the span and the audit record; the API calls themselves are measured by
// the client.
func InstrumentedToolHandlerWithService(toolName, serviceName, operation string, sc *server.ServerContext, handler mcpserver.ToolHandlerFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		calendarID := ""
		if _, ok := args["calendar_id"]; ok {
			calendarID = CalendarIDArg(args)
		}

		attrs := instrumentation.NewSpanAttributeBuilder()
		if serviceName != "" {
			attrs.WithService(serviceName).WithOperation(operation)
		}
		if calendarID != "" {
			attrs.WithCalendar(calendarID)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, attrs.Build()...)
		defer span.End()

		start := time.Now()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithCalendar(calendarID)
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}
		ctx = context.WithValue(ctx, invocationKey{}, invocation)

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
			instrumentation.SetSpanError(span, errToolResult)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		sc.Metrics().RecordToolInvocationWithCalendar(ctx, toolName, status, calendarID, duration)
		sc.AuditLogger().LogToolInvocation(invocation)

		logging.WithTool(sc.Logger(), toolName).Debug("tool call",
			logging.Status(status),
			logging.RequestID(server.RequestIDFromContext(ctx)),
			slog.String("trace_id", instrumentation.GetTraceID(ctx)),
			slog.Duration(logging.KeyDuration, duration))

		return result, err
	}
}
