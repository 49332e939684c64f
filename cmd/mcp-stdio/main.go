// Command mcp-stdio serves the tools over stdin/stdout for MCP clients that
// launch servers as subprocesses.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"mcp-toolbox-go/internal/server"
	"mcp-toolbox-go/internal/stdio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := server.Load()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// stdout carries the protocol.
	logger, err := server.NewLogger(cfg, os.Stderr)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	registry := server.NewToolRegistry(cfg, nil, logger)
	mcpServer := stdio.NewServer(&mcp.Implementation{Name: server.Name, Version: server.Version}, registry, logger)

	logger.Info().Msg("Serving MCP over stdio")
	if err := stdio.Run(ctx, mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
