// Package stdio exposes the tool registry over the MCP stdio transport using
// the official Go SDK.
package stdio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/tools/fun"
	"mcp-toolbox-go/internal/tools/qrcode"
	"mcp-toolbox-go/internal/tools/roll"
	"mcp-toolbox-go/internal/tools/search"
	"mcp-toolbox-go/internal/tools/weather"
)

// ToolCaller lists and executes tools.
type ToolCaller interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, args json.RawMessage) (*tools.Result, error)
}

// NewServer returns an SDK server exposing every tool in caller. Each tool is
// registered with its typed arguments so the SDK validates input before the
// call reaches the registry.
func NewServer(impl *mcp.Implementation, caller ToolCaller, logger zerolog.Logger) *mcp.Server {
	server := mcp.NewServer(impl, nil)
	logger = logger.With().Str("component", "stdio").Logger()

	defs := make(map[string]tools.Definition)
	for _, def := range caller.Definitions() {
		defs[def.Name] = def
	}

	b := &bridge{server: server, caller: caller, defs: defs, exposed: make(map[string]bool), logger: logger}
	addTool[roll.Args](b, roll.Name)
	addTool[weather.Args](b, weather.Name)
	addTool[search.Args](b, search.Name)
	addTool[fun.NoArgs](b, "get_random_joke")
	addTool[fun.NoArgs](b, "get_cat_fact")
	addTool[fun.NoArgs](b, "get_random_quote")
	addTool[qrcode.Args](b, qrcode.Name)

	for name := range defs {
		if !b.exposed[name] {
			logger.Warn().Str("tool", name).Msg("Tool has no stdio argument binding and is not exposed")
		}
	}

	return server
}

// Run serves on stdin/stdout until ctx is cancelled or the client disconnects.
func Run(ctx context.Context, server *mcp.Server) error {
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

type bridge struct {
	server  *mcp.Server
	caller  ToolCaller
	defs    map[string]tools.Definition
	exposed map[string]bool
	logger  zerolog.Logger
}

func addTool[In any](b *bridge, name string) {
	def, ok := b.defs[name]
	if !ok {
		return
	}
	b.exposed[name] = true

	tool := &mcp.Tool{
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
	}
	if a := def.Annotations; a != nil {
		tool.Annotations = &mcp.ToolAnnotations{
			Title:           a.Title,
			ReadOnlyHint:    a.ReadOnlyHint,
			DestructiveHint: a.DestructiveHint,
			IdempotentHint:  a.IdempotentHint,
			OpenWorldHint:   a.OpenWorldHint,
		}
	}

	mcp.AddTool(b.server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		args, err := json.Marshal(input)
		if err != nil {
			return nil, nil, fmt.Errorf("encode arguments: %w", err)
		}

		result, err := b.caller.Call(ctx, name, args)
		if err != nil {
			code, msg := tools.Describe(err)
			b.logger.Warn().Err(err).Str("tool", name).Msg("Tool call failed")
			return &mcp.CallToolResult{
				Content:           []mcp.Content{&mcp.TextContent{Text: code + ": " + msg}},
				StructuredContent: map[string]any{"error": map[string]string{"code": code, "message": msg}},
				IsError:           true,
			}, nil, nil
		}

		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: result.Text}},
			StructuredContent: result.Structured,
		}, nil, nil
	})
}
