package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"mcp-toolbox-go/internal/server"
	"mcp-toolbox-go/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := server.Load()
	if err != nil {
		bootLogger().Fatal().Err(err).Msg("Invalid configuration")
	}

	logger, err := server.NewLogger(cfg, os.Stderr)
	if err != nil {
		bootLogger().Fatal().Err(err).Msg("Invalid logging configuration")
	}

	shutdownTracing, err := telemetry.SetupTracing(ctx, server.Name, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create server")
	}
	defer srv.Close()
	srv.Start(ctx)

	httpServer := newHTTPServer(ctx, cfg.Addr, srv.Handler)

	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("session_store", cfg.SessionStore).
			Bool("require_session", cfg.RequireSession).
			Msg("Starting MCP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newHTTPServer derives request contexts from ctx. Shutdown does not cancel
// request contexts, so open event streams end only when ctx does.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func bootLogger() *zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
	return &logger
}
