package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// MessagesPath is where clients post JSON-RPC requests for an SSE session.
const MessagesPath = "/messages/"

const defaultKeepAlive = 15 * time.Second

// SSEHandler serves the session transport: GET /sse opens a stream,
// POST /messages/?session_id= submits requests whose responses are
// written to that stream.
type SSEHandler struct {
	server    *mcp.Server
	sessions  *mcp.SessionStore
	metrics   *instrumentation.Metrics
	logger    *slog.Logger
	keepAlive time.Duration
}

// NewSSEHandler creates a session transport over server.
// A non-positive keepAlive uses 15s.
func NewSSEHandler(server *mcp.Server, sessions *mcp.SessionStore, metrics *instrumentation.Metrics, keepAlive time.Duration, logger *slog.Logger) *SSEHandler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	return &SSEHandler{
		server:    server,
		sessions:  sessions,
		metrics:   metrics,
		logger:    logger.With("component", "sse"),
		keepAlive: keepAlive,
	}
}

// Stream handles GET /sse. It runs until the client disconnects.
func (h *SSEHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sw := mcp.NewSSEWriter(w)

	session := h.sessions.Open()
	h.metrics.SessionOpened()
	defer func() {
		h.sessions.Close(session.ID)
		h.metrics.SessionClosed()
		h.logger.Info("sse_session_closed", "session_id", session.ID)
	}()

	endpoint := MessagesPath + "?session_id=" + url.QueryEscape(session.ID)
	if err := sw.SendNamedEvent("endpoint", endpoint); err != nil {
		h.logger.Warn("sse_write_failed", "session_id", session.ID, "error", err)
		return
	}
	h.logger.Info("sse_session_opened",
		"session_id", session.ID,
		"correlation_id", GetCorrelationID(r.Context()),
	)

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-session.Done():
			return

		case resp := <-session.Outbound:
			payload, err := json.Marshal(resp)
			if err != nil {
				h.metrics.RecordError("sse", "marshal_failed")
				h.logger.Error("sse_marshal_failed", "session_id", session.ID, "error", err)
				continue
			}
			if err := sw.SendNamedEvent("message", string(payload)); err != nil {
				h.logger.Warn("sse_write_failed", "session_id", session.ID, "error", err)
				return
			}

		case <-ticker.C:
			if err := sw.SendComment("keepalive"); err != nil {
				return
			}
		}
	}
}

// Message handles POST /messages/?session_id=<id>.
// The request is acknowledged with 202 and processed asynchronously.
func (h *SSEHandler) Message(w http.ResponseWriter, r *http.Request) {
	correlationID := GetCorrelationID(r.Context())

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, mcp.ErrorResponse(http.StatusBadRequest, "session_id is required", nil))
		return
	}

	session, ok := h.sessions.Get(sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, mcp.ErrorResponse(http.StatusNotFound, "Could not find session", sessionID))
		return
	}

	req, err := mcp.ParseJSONRPCRequest(r.Body)
	if err != nil {
		rpcErr := mcp.FormatMCPError(err)
		writeJSON(w, http.StatusBadRequest, mcp.ErrorResponse(http.StatusBadRequest, rpcErr.Message, rpcErr.Data))
		return
	}

	w.WriteHeader(http.StatusAccepted)

	// The POST returns before the call finishes; the work is bound to the session instead.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	go func() {
		select {
		case <-session.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				h.metrics.RecordError("sse", "panic")
				h.logger.Error("sse_message_panic",
					"session_id", session.ID,
					"correlation_id", correlationID,
					"panic", fmt.Sprint(r),
				)
			}
		}()

		resp := h.server.Handle(ctx, req, correlationID)
		if resp == nil {
			return
		}

		if err := h.sessions.Deliver(session.ID, resp); err != nil {
			h.metrics.RecordError("sse", deliverErrorType(err))
			h.logger.Warn("sse_deliver_failed",
				"session_id", session.ID,
				"correlation_id", correlationID,
				"method", req.Method,
				"error", err,
			)
		}
	}()
}

func deliverErrorType(err error) string {
	if errors.Is(err, mcp.ErrSessionBusy) {
		return "session_busy"
	}
	return "session_gone"
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
