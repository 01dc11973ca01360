package mcp

import (
	"context"
	"fmt"
)

type registeredTool struct {
	handler   ToolHandler
	validator *SchemaValidator
}

// ToolInvoker handles MCP tool invocation with parameter validation
type ToolInvoker struct {
	order []string
	tools map[string]registeredTool
}

// NewToolInvoker compiles the input schema of every handler.
func NewToolInvoker(handlers []ToolHandler) (*ToolInvoker, error) {
	ti := &ToolInvoker{
		tools: make(map[string]registeredTool, len(handlers)),
	}

	for _, h := range handlers {
		if h.Tool.Name == "" {
			return nil, fmt.Errorf("tool name cannot be empty")
		}
		if h.Call == nil {
			return nil, fmt.Errorf("tool %s has no implementation", h.Tool.Name)
		}
		if _, exists := ti.tools[h.Tool.Name]; exists {
			return nil, fmt.Errorf("tool %s is already registered", h.Tool.Name)
		}

		validator, err := NewSchemaValidator(h.Tool.Name, h.Tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", h.Tool.Name, err)
		}

		ti.tools[h.Tool.Name] = registeredTool{handler: h, validator: validator}
		ti.order = append(ti.order, h.Tool.Name)
	}

	return ti, nil
}

// Tools returns tool definitions in registration order.
func (ti *ToolInvoker) Tools() []Tool {
	tools := make([]Tool, 0, len(ti.order))
	for _, name := range ti.order {
		tools = append(tools, ti.tools[name].handler.Tool)
	}
	return tools
}

// InvokeTool validates args against the tool's schema and executes it.
func (ti *ToolInvoker) InvokeTool(ctx context.Context, toolName string, args map[string]interface{}) (*CallToolResult, error) {
	rt, ok := ti.tools[toolName]
	if !ok {
		return nil, &RPCError{
			Code:    ToolNotFound,
			Message: "Unknown tool",
			Data:    toolName,
		}
	}

	if args == nil {
		args = map[string]interface{}{}
	}

	if err := rt.validator.Validate(args); err != nil {
		return nil, ErrorFromValidation(err)
	}

	value, err := rt.handler.Call(ctx, args)
	if err != nil {
		return nil, &RPCError{
			Code:    InternalError,
			Message: fmt.Sprintf("Tool %s failed", toolName),
			Data:    err.Error(),
		}
	}

	return NewToolResult(value)
}
