package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
)

// Tool call outcomes reported to logs, metrics and observers.
const (
	OutcomeResult          = "result"
	OutcomeNoResult        = "no_result"
	OutcomeInvalidArgument = "invalid_arguments"
	OutcomeRPCError        = "rpc_error"
	OutcomeTimeout         = "timeout"
)

// modeKeys are the arguments that select a tool's branch, checked in order.
var modeKeys = []string{"action", "asset_type", "protocol_type", "activity_type"}

// ToolCall describes one finished tools/call for observers.
type ToolCall struct {
	Tool          string
	Mode          string
	Outcome       string
	CorrelationID string
	ErrorCode     int
	Latency       time.Duration
}

// CallObserver is notified after every tools/call.
type CallObserver interface {
	ObserveToolCall(ctx context.Context, call ToolCall)
}

// ServerOptions configures a Server.
type ServerOptions struct {
	Name    string
	Version string

	// CallTimeout bounds a single tools/call.
	CallTimeout time.Duration

	Metrics  *instrumentation.Metrics
	Observer CallObserver
	Logger   *slog.Logger
}

// Server dispatches JSON-RPC requests to MCP methods.
type Server struct {
	invoker  *ToolInvoker
	info     ServerInfo
	timeout  time.Duration
	metrics  *instrumentation.Metrics
	observer CallObserver
	logger   *slog.Logger
}

// NewServer creates a dispatcher over invoker.
func NewServer(invoker *ToolInvoker, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 35 * time.Second
	}
	return &Server{
		invoker:  invoker,
		info:     ServerInfo{Name: opts.Name, Version: opts.Version},
		timeout:  timeout,
		metrics:  opts.Metrics,
		observer: opts.Observer,
		logger:   logger,
	}
}

// Handle processes one request. It returns nil for notifications.
func (s *Server) Handle(ctx context.Context, req *JSONRPCRequest, correlationID string) (resp *JSONRPCResponse) {
	defer func() {
		if r := recover(); r != nil {
			rpcErr := s.recovered("method", req.Method, r)
			resp = nil
			if !req.IsNotification() {
				resp = ErrorReply(req.ID, rpcErr)
			}
		}
	}()

	switch req.Method {
	case MethodInitialize:
		return ResultReply(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    ServerCapabilities{Tools: ToolsCapability{ListChanged: false}},
			ServerInfo:      s.info,
		})

	case MethodInitialized:
		return nil

	case MethodPing:
		return s.reply(req, map[string]interface{}{})

	case MethodListTools, methodListToolsLegacy:
		return s.reply(req, ListToolsResult{Tools: s.invoker.Tools()})

	case MethodCallTool, methodCallToolLegacy:
		params, err := ParseCallToolParams(req.Params)
		if err != nil {
			return ErrorReply(req.ID, FormatMCPError(err))
		}
		return s.callTool(ctx, req.ID, params, correlationID)

	default:
		if req.IsNotification() {
			return nil
		}
		return ErrorReply(req.ID, rpcError(MethodNotFound, "Unknown method", req.Method))
	}
}

func (s *Server) reply(req *JSONRPCRequest, result interface{}) *JSONRPCResponse {
	if req.IsNotification() {
		return nil
	}
	return ResultReply(req.ID, result)
}

type invokeOutcome struct {
	result *CallToolResult
	err    error
}

func (s *Server) callTool(ctx context.Context, id interface{}, params *CallToolParams, correlationID string) *JSONRPCResponse {
	start := time.Now()
	mode := modeOf(params.Arguments)

	LogMCPRequest(ctx, s.logger, params.Name, mode, correlationID)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan invokeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- invokeOutcome{err: s.recovered("tool", params.Name, r)}
			}
		}()
		result, err := s.invoker.InvokeTool(ctx, params.Name, params.Arguments)
		done <- invokeOutcome{result: result, err: err}
	}()

	call := ToolCall{Tool: params.Name, Mode: mode, CorrelationID: correlationID}

	select {
	case out := <-done:
		call.Latency = time.Since(start)

		if out.err != nil {
			rpcErr := FormatMCPError(out.err)
			call.Outcome = OutcomeRPCError
			call.ErrorCode = rpcErr.Code
			LogMCPError(ctx, s.logger, params.Name, mode, correlationID, rpcErr.Code, rpcErr.Message)
			s.finish(ctx, call)
			return ErrorReply(id, rpcErr)
		}

		call.Outcome = classifyResult(out.result)
		LogMCPSuccess(ctx, s.logger, params.Name, mode, correlationID, call.Outcome, call.Latency.Milliseconds())
		s.finish(ctx, call)
		return ResultReply(id, out.result)

	case <-ctx.Done():
		call.Latency = time.Since(start)
		call.Outcome = OutcomeTimeout
		call.ErrorCode = TimeoutExceeded
		LogMCPError(ctx, s.logger, params.Name, mode, correlationID, TimeoutExceeded, "Request timeout")
		s.finish(context.WithoutCancel(ctx), call)
		return ErrorReply(id, rpcError(TimeoutExceeded, fmt.Sprintf("Request timeout (exceeded %s)", s.timeout), map[string]interface{}{
			"timeout_ms": s.timeout.Milliseconds(),
			"elapsed_ms": call.Latency.Milliseconds(),
		}))
	}
}

// recovered turns a panic value into an internal JSON-RPC error.
func (s *Server) recovered(what, name string, r interface{}) *RPCError {
	s.metrics.RecordError("mcp", "panic")
	s.logger.Error("mcp_panic",
		"component", "mcp-server",
		"source", what,
		"name", name,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
	return &RPCError{
		Code:    InternalError,
		Message: fmt.Sprintf("%s %s panicked", what, name),
		Data:    fmt.Sprint(r),
	}
}

func (s *Server) finish(ctx context.Context, call ToolCall) {
	s.metrics.RecordToolCall(call.Tool, call.Outcome, float64(call.Latency.Milliseconds()))
	if s.observer != nil {
		s.observer.ObserveToolCall(ctx, call)
	}
}

// classifyResult inspects the serialized tool value.
func classifyResult(result *CallToolResult) string {
	if result == nil || len(result.Content) == 0 || result.Content[0].Text == "null" {
		return OutcomeNoResult
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(result.Content[0].Text), &fields); err == nil && len(fields) == 1 {
		if _, ok := fields["error"]; ok {
			return OutcomeInvalidArgument
		}
	}
	return OutcomeResult
}

func modeOf(args map[string]interface{}) string {
	for _, key := range modeKeys {
		if v, ok := args[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
