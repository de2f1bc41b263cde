package common

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dennisonbertram/mcp-gmail/internal/instrumentation"
	"github.com/dennisonbertram/mcp-gmail/internal/logging"
	"github.com/dennisonbertram/mcp-gmail/internal/server"
)

// ToolHandler is the handler signature the MCP server expects for tools.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with metrics and a structured
// log line per invocation.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrumented(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService is like InstrumentedToolHandler but also
// records the Google service and operation type for more detailed metrics.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandlerWithService("my_tool", "gmail", "list", sc, handler))
func InstrumentedToolHandlerWithService(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return instrumented(toolName, serviceName, operation, sc, handler)
}

func instrumented(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		// The zero Metrics value records nothing, so a nil recorder is fine.
		metrics := sc.Metrics()
		metrics.RecordToolInvocation(ctx, toolName, status, duration)
		if serviceName != "" {
			metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
		}

		slog.Debug("tool invocation",
			logging.Tool(toolName),
			logging.Status(status),
			slog.Duration("duration", duration),
			logging.Err(err),
		)

		return result, err
	}
}
