package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/alberthuang422/demcp-bank/internal/audit"
	"github.com/alberthuang422/demcp-bank/internal/config"
	"github.com/alberthuang422/demcp-bank/internal/debank"
	"github.com/alberthuang422/demcp-bank/internal/handlers"
	"github.com/alberthuang422/demcp-bank/internal/instrumentation"
	"github.com/alberthuang422/demcp-bank/internal/mcp"
	"github.com/alberthuang422/demcp-bank/internal/tools"
)

const (
	serverName    = "demcp-bank"
	serverVersion = "0.1.0"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("mcp_service_starting",
		"addr", cfg.Addr(),
		"timeout_ms", cfg.TimeoutMS,
		"debank_base_url", cfg.DeBankBaseURL,
		"upstream_rps", cfg.UpstreamRPS,
		"audit_enabled", cfg.AuditEnabled(),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("mcp_service_failed", "error", err)
		os.Exit(1)
	}

	logger.Info("mcp_service_stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := instrumentation.NewMetrics(registry)

	client := debank.NewClient(debank.Options{
		BaseURL:           cfg.DeBankBaseURL,
		AccessKey:         cfg.DeBankAccessKey,
		Timeout:           cfg.UpstreamTimeout(),
		RequestsPerSecond: cfg.UpstreamRPS,
		Metrics:           metrics,
		Logger:            logger,
	})

	invoker, err := mcp.NewToolInvoker(tools.New(client).Handlers())
	if err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	serverOpts := mcp.ServerOptions{
		Name:        serverName,
		Version:     serverVersion,
		CallTimeout: cfg.Timeout(),
		Metrics:     metrics,
		Logger:      logger,
	}

	if cfg.AuditEnabled() {
		publisher, err := audit.NewPublisher(audit.Options{
			RedisURL:      cfg.RedisURL,
			RedisPassword: cfg.RedisPassword,
			Stream:        cfg.AuditStream,
			MaxLen:        cfg.AuditMaxLen,
			Metrics:       metrics,
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create audit publisher: %w", err)
		}
		defer publisher.Close()

		serverOpts.Observer = publisher
		logger.Info("audit_publisher_initialized", "stream_key", cfg.AuditStream)
	}

	router := handlers.NewRouter(handlers.RouterOptions{
		Server:         mcp.NewServer(invoker, serverOpts),
		Sessions:       mcp.NewSessionStore(0),
		Metrics:        metrics,
		Logger:         logger,
		Timeout:        cfg.Timeout(),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// No read or write timeout: either one would cut long-lived SSE streams.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.PrometheusPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("mcp_server_listening", "addr", srv.Addr, "status", "healthy")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics_server_listening", "port", cfg.PrometheusPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown_signal_received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// Open SSE streams never go idle; Close cuts them once the deadline passes.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server_shutdown_error", "error", err)
			srv.Close()
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics_shutdown_error", "error", err)
		}
		return nil
	})

	return g.Wait()
}
