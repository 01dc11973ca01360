package mcp

import (
	"context"
	"encoding/json"
)

// ToolFunc executes one tool. The returned value is any JSON-compatible value;
// a nil value is a valid "no result" outcome, not an error. A non-nil error
// means the server itself failed.
type ToolFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// ToolHandler pairs a tool definition with its implementation.
type ToolHandler struct {
	Tool Tool
	Call ToolFunc
}

// NewToolResult wraps a tool's return value as MCP text content.
func NewToolResult(value interface{}) (*CallToolResult, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, &RPCError{
			Code:    InternalError,
			Message: "Failed to serialize tool result",
			Data:    err.Error(),
		}
	}

	return &CallToolResult{
		Content: []TextContent{
			{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}
