package mcp

import (
	"context"
	"log/slog"
)

// LogMCPRequest logs an incoming tool call with structured fields
func LogMCPRequest(ctx context.Context, logger *slog.Logger, tool string, mode string, correlationID string) {
	logger.InfoContext(ctx, "mcp_request",
		"component", "mcp-server",
		"tool_name", tool,
		"mode", mode,
		"correlation_id", correlationID,
	)
}

// LogMCPSuccess logs a completed tool call.
// outcome distinguishes a value, a null result and an argument error.
func LogMCPSuccess(ctx context.Context, logger *slog.Logger, tool string, mode string, correlationID string, outcome string, latencyMS int64) {
	logger.InfoContext(ctx, "mcp_success",
		"component", "mcp-server",
		"tool_name", tool,
		"mode", mode,
		"correlation_id", correlationID,
		"outcome", outcome,
		"latency_ms", latencyMS,
	)
}

// LogMCPError logs MCP request errors with context
func LogMCPError(ctx context.Context, logger *slog.Logger, tool string, mode string, correlationID string, errorCode int, errorMsg string) {
	logger.ErrorContext(ctx, "mcp_error",
		"component", "mcp-server",
		"tool_name", tool,
		"mode", mode,
		"correlation_id", correlationID,
		"error_code", errorCode,
		"error_message", errorMsg,
	)
}
