package mcp

import (
	"encoding/json"
	"io"
)

// MaxRequestBytes caps the body read for a single JSON-RPC request.
// Anything longer is truncated and fails to decode.
const MaxRequestBytes = 1 << 20

const jsonrpcVersion = "2.0"

func rpcError(code int, message string, data interface{}) *RPCError {
	return &RPCError{Code: code, Message: message, Data: data}
}

// ParseJSONRPCRequest decodes one request object from r and checks its envelope.
// Failures are *RPCError values carrying ParseError or InvalidRequest.
func ParseJSONRPCRequest(r io.Reader) (*JSONRPCRequest, error) {
	var req JSONRPCRequest
	if err := json.NewDecoder(io.LimitReader(r, MaxRequestBytes)).Decode(&req); err != nil {
		return nil, rpcError(ParseError, "Invalid JSON", err.Error())
	}

	switch {
	case req.JSONRPC != jsonrpcVersion:
		return nil, rpcError(InvalidRequest, "Invalid JSON-RPC version (must be '2.0')", req.JSONRPC)
	case req.Method == "":
		return nil, rpcError(InvalidRequest, "Missing 'method' field", nil)
	}
	return &req, nil
}

// ParseCallToolParams reads tools/call params. Missing arguments become an empty map
// so that schema validation sees an object.
func ParseCallToolParams(raw json.RawMessage) (*CallToolParams, error) {
	if len(raw) == 0 {
		return nil, rpcError(InvalidParams, "Missing parameters for tools/call", nil)
	}

	var params CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, rpcError(InvalidParams, "Invalid tools/call parameters", err.Error())
	}
	if params.Name == "" {
		return nil, rpcError(InvalidParams, "Missing 'name' field in tools/call parameters", nil)
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}
	return &params, nil
}

// ResultReply wraps result in a response to id.
func ResultReply(id interface{}, result interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

// ErrorReply wraps rpcErr in a response to id.
func ErrorReply(id interface{}, rpcErr *RPCError) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: jsonrpcVersion, ID: id, Error: rpcErr}
}
