package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// MCPInvokeHandler serves single-shot JSON-RPC over SSE: one request in the
// POST body, one response written back as a single SSE data event.
type MCPInvokeHandler struct {
	server *mcp.Server
	logger *slog.Logger
}

// NewMCPInvokeHandler creates a single-shot handler over server.
func NewMCPInvokeHandler(server *mcp.Server, logger *slog.Logger) *MCPInvokeHandler {
	return &MCPInvokeHandler{
		server: server,
		logger: logger,
	}
}

// ServeHTTP handles POST /mcp/sse requests.
func (h *MCPInvokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	correlationID := GetCorrelationID(r.Context())

	req, err := mcp.ParseJSONRPCRequest(r.Body)
	if err != nil {
		rpcErr := mcp.FormatMCPError(err)
		h.logger.Warn("jsonrpc_parse_failed",
			"correlation_id", correlationID,
			"error_code", rpcErr.Code,
			"error", rpcErr.Message,
		)
		mcp.NewSSEWriter(w).SendError(nil, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}

	resp := h.server.Handle(r.Context(), req, correlationID)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err := mcp.NewSSEWriter(w).SendEvent(resp); err != nil {
		h.logger.Error("sse_write_failed", "error", err, "correlation_id", correlationID)
	}
}
