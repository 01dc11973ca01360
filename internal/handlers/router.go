package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
)

// RouterOptions wires the HTTP surface of the MCP server.
type RouterOptions struct {
	Server   *mcp.Server
	Sessions *mcp.SessionStore
	Metrics  *instrumentation.Metrics
	Logger   *slog.Logger

	// Timeout bounds single-shot requests on /mcp/sse.
	Timeout        time.Duration
	AllowedOrigins []string
	KeepAlive      time.Duration
}

// NewRouter builds the chi router serving /health, /sse, /messages/ and /mcp/sse.
func NewRouter(opts RouterOptions) http.Handler {
	sse := NewSSEHandler(opts.Server, opts.Sessions, opts.Metrics, opts.KeepAlive, opts.Logger)
	invoke := NewMCPInvokeHandler(opts.Server, opts.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{CorrelationHeader},
	}).Handler)
	r.Use(CorrelationMiddleware)
	r.Use(LoggingMiddleware(opts.Logger))

	r.Get("/health", HealthCheckHandler())

	// Session transport
	r.Get("/sse", sse.Stream)
	r.Post(MessagesPath, sse.Message)
	r.Post("/messages", sse.Message)

	// Single-shot transport
	r.With(TimeoutMiddleware(opts.Timeout, opts.Logger)).Post("/mcp/sse", invoke.ServeHTTP)

	return r
}
