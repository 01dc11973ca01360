package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []ToolCall
}

func (o *recordingObserver) ObserveToolCall(ctx context.Context, call ToolCall) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, call)
}

func (o *recordingObserver) last(t *testing.T) ToolCall {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.calls)
	return o.calls[len(o.calls)-1]
}

func testHandlers() []ToolHandler {
	return []ToolHandler{
		{
			Tool: Tool{
				Name:        "echo",
				Description: "Echo the message back",
				InputSchema: ObjectSchema(map[string]interface{}{
					"message": StringProp("Message to echo"),
					"action":  EnumProp("Mode", "plain", "plain", "upper"),
				}, "message"),
			},
			Call: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				msg := args["message"].(string)
				if args["action"] == "upper" {
					msg = strings.ToUpper(msg)
				}
				return map[string]interface{}{"message": msg}, nil
			},
		},
		{
			Tool: Tool{Name: "nothing", Description: "Always null", InputSchema: ObjectSchema(map[string]interface{}{})},
			Call: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return nil, nil
			},
		},
		{
			Tool: Tool{Name: "refuse", Description: "Missing argument", InputSchema: ObjectSchema(map[string]interface{}{})},
			Call: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return map[string]string{"error": "id parameter is required for refusal"}, nil
			},
		},
		{
			Tool: Tool{Name: "broken", Description: "Fails", InputSchema: ObjectSchema(map[string]interface{}{})},
			Call: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return nil, errors.New("boom")
			},
		},
		{
			Tool: Tool{Name: "slow", Description: "Outlives short deadlines", InputSchema: ObjectSchema(map[string]interface{}{})},
			Call: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				time.Sleep(300 * time.Millisecond)
				return "late", nil
			},
		},
		{
			Tool: Tool{Name: "explode", Description: "Panics", InputSchema: ObjectSchema(map[string]interface{}{})},
			Call: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				var list []interface{}
				return list[3], nil
			},
		},
	}
}

func newTestServer(t *testing.T, timeout time.Duration) (*Server, *recordingObserver, *instrumentation.Metrics) {
	t.Helper()
	invoker, err := NewToolInvoker(testHandlers())
	require.NoError(t, err)

	observer := &recordingObserver{}
	metrics := instrumentation.NewMetrics(prometheus.NewRegistry())
	server := NewServer(invoker, ServerOptions{
		Name:        "demcp-test",
		Version:     "0.0.1",
		CallTimeout: timeout,
		Metrics:     metrics,
		Observer:    observer,
	})
	return server, observer, metrics
}

func request(t *testing.T, id interface{}, method string, params interface{}) *JSONRPCRequest {
	t.Helper()
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: id, Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		require.NoError(t, err)
		req.Params = raw
	}
	return req
}

func TestHandleInitialize(t *testing.T) {
	server, _, _ := newTestServer(t, time.Second)

	resp := server.Handle(context.Background(), request(t, 1, MethodInitialize, nil), "corr-1")
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(InitializeResult)
	require.True(t, ok)
	assert.Equal(t, ProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, ServerInfo{Name: "demcp-test", Version: "0.0.1"}, result.ServerInfo)
}

func TestHandleNotificationsGetNoResponse(t *testing.T) {
	server, _, _ := newTestServer(t, time.Second)

	assert.Nil(t, server.Handle(context.Background(), request(t, nil, MethodInitialized, nil), ""))
	assert.Nil(t, server.Handle(context.Background(), request(t, nil, "notifications/cancelled", nil), ""))
	assert.Nil(t, server.Handle(context.Background(), request(t, nil, MethodPing, nil), ""))
}

func TestHandleUnknownMethod(t *testing.T) {
	server, _, _ := newTestServer(t, time.Second)

	resp := server.Handle(context.Background(), request(t, "abc", "resources/list", nil), "")
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFound, resp.Error.Code)
	assert.Equal(t, "abc", resp.ID)
}

func TestHandleListTools(t *testing.T) {
	server, _, _ := newTestServer(t, time.Second)

	for _, method := range []string{MethodListTools, "list_tools"} {
		resp := server.Handle(context.Background(), request(t, 2, method, nil), "")
		require.Nil(t, resp.Error, method)

		result, ok := resp.Result.(ListToolsResult)
		require.True(t, ok)
		require.Len(t, result.Tools, 6)
		assert.Equal(t, "echo", result.Tools[0].Name)
		assert.Equal(t, "explode", result.Tools[5].Name)
	}
}

func TestHandleCallTool(t *testing.T) {
	server, observer, metrics := newTestServer(t, time.Second)

	resp := server.Handle(context.Background(), request(t, 3, MethodCallTool, CallToolParams{
		Name:      "echo",
		Arguments: map[string]interface{}{"message": "hello", "action": "upper"},
	}), "corr-3")
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(*CallToolResult)
	require.True(t, ok)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.JSONEq(t, `{"message":"HELLO"}`, result.Content[0].Text)

	call := observer.last(t)
	assert.Equal(t, "echo", call.Tool)
	assert.Equal(t, "upper", call.Mode)
	assert.Equal(t, OutcomeResult, call.Outcome)
	assert.Equal(t, "corr-3", call.CorrelationID)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ToolCalls.WithLabelValues("echo", OutcomeResult)))
}

func TestHandleCallToolOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		tool        string
		args        map[string]interface{}
		wantOutcome string
		wantCode    int
		wantText    string
	}{
		{name: "null result", tool: "nothing", wantOutcome: OutcomeNoResult, wantText: "null"},
		{name: "argument error result", tool: "refuse", wantOutcome: OutcomeInvalidArgument,
			wantText: `{"error":"id parameter is required for refusal"}`},
		{name: "unknown tool", tool: "missing", wantOutcome: OutcomeRPCError, wantCode: ToolNotFound},
		{name: "schema violation", tool: "echo", args: map[string]interface{}{"message": 42.0}, wantOutcome: OutcomeRPCError, wantCode: ValidationFailed},
		{name: "bad enum", tool: "echo", args: map[string]interface{}{"message": "x", "action": "shout"}, wantOutcome: OutcomeRPCError, wantCode: ValidationFailed},
		{name: "tool failure", tool: "broken", wantOutcome: OutcomeRPCError, wantCode: InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, observer, _ := newTestServer(t, time.Second)

			resp := server.Handle(context.Background(), request(t, 4, "call_tool", CallToolParams{
				Name: tt.tool, Arguments: tt.args,
			}), "")

			if tt.wantCode != 0 {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.Equal(t, tt.wantCode, observer.last(t).ErrorCode)
			} else {
				require.Nil(t, resp.Error)
				result := resp.Result.(*CallToolResult)
				assert.JSONEq(t, tt.wantText, result.Content[0].Text)
			}
			assert.Equal(t, tt.wantOutcome, observer.last(t).Outcome)
		})
	}
}

func TestHandleCallToolTimeout(t *testing.T) {
	server, observer, _ := newTestServer(t, 50*time.Millisecond)

	resp := server.Handle(context.Background(), request(t, 5, MethodCallTool, CallToolParams{Name: "slow"}), "")
	require.NotNil(t, resp.Error)
	assert.Equal(t, TimeoutExceeded, resp.Error.Code)
	assert.Equal(t, OutcomeTimeout, observer.last(t).Outcome)
}

func TestHandleCallToolRecoversPanic(t *testing.T) {
	server, observer, metrics := newTestServer(t, time.Second)

	var resp *JSONRPCResponse
	require.NotPanics(t, func() {
		resp = server.Handle(context.Background(), request(t, 8, MethodCallTool, CallToolParams{Name: "explode"}), "")
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, InternalError, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "explode")
	assert.Equal(t, OutcomeRPCError, observer.last(t).Outcome)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ErrorsTotal.WithLabelValues("mcp", "panic")))

	// The server keeps serving after a panic.
	resp = server.Handle(context.Background(), request(t, 9, MethodCallTool, CallToolParams{
		Name: "echo", Arguments: map[string]interface{}{"message": "still here"},
	}), "")
	require.Nil(t, resp.Error)
}

func TestHandleCallToolBadParams(t *testing.T) {
	server, _, _ := newTestServer(t, time.Second)

	resp := server.Handle(context.Background(), request(t, 6, MethodCallTool, nil), "")
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)

	resp = server.Handle(context.Background(), request(t, 7, MethodCallTool, map[string]interface{}{"arguments": map[string]interface{}{}}), "")
	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)
}

func TestNewToolInvokerRejectsBadRegistrations(t *testing.T) {
	noop := func(ctx context.Context, args map[string]interface{}) (interface{}, error) { return nil, nil }
	schema := ObjectSchema(map[string]interface{}{})

	_, err := NewToolInvoker([]ToolHandler{{Tool: Tool{InputSchema: schema}, Call: noop}})
	assert.Error(t, err)

	_, err = NewToolInvoker([]ToolHandler{{Tool: Tool{Name: "a", InputSchema: schema}}})
	assert.Error(t, err)

	_, err = NewToolInvoker([]ToolHandler{
		{Tool: Tool{Name: "a", InputSchema: schema}, Call: noop},
		{Tool: Tool{Name: "a", InputSchema: schema}, Call: noop},
	})
	assert.Error(t, err)
}
