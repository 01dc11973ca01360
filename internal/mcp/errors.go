package mcp

import (
	"errors"
	"fmt"
	"net/http"
)

// FormatMCPError converts any error returned by the dispatcher into a JSON-RPC error.
func FormatMCPError(err error) *RPCError {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrorFromValidation(ve)
	}

	return &RPCError{
		Code:    InternalError,
		Message: fmt.Sprintf("Internal error: %s", err.Error()),
	}
}

// HTTPStatusFromError maps MCP error codes to HTTP status codes
func HTTPStatusFromError(rpcErr *RPCError) int {
	if rpcErr == nil {
		return http.StatusOK
	}

	switch rpcErr.Code {
	case ParseError, InvalidRequest, InvalidParams, ValidationFailed:
		return http.StatusBadRequest
	case MethodNotFound, ToolNotFound:
		return http.StatusNotFound
	case TimeoutExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse builds the plain JSON body used for transport-level failures
// that happen before a JSON-RPC exchange exists (unknown session, bad method).
func ErrorResponse(code int, message string, details interface{}) map[string]interface{} {
	response := map[string]interface{}{
		"error": message,
		"code":  code,
	}

	if details != nil {
		response["details"] = details
	}

	switch code {
	case http.StatusNotFound:
		response["suggestion"] = "Open a new stream with GET /sse and use the endpoint it announces"
	case http.StatusBadRequest:
		response["suggestion"] = "Send a single JSON-RPC 2.0 request object"
	case http.StatusGatewayTimeout:
		response["suggestion"] = "Request took too long. Try again or narrow the query"
	}

	return response
}
