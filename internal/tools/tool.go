package tools

import (
	"context"
	"encoding/json"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Definition describes the tool to MCP clients.
	Definition() Definition

	// Call executes the tool with JSON-encoded arguments. Request-scoped
	// values such as API overrides travel in ctx.
	Call(ctx context.Context, args json.RawMessage) (*Result, error)
}

// Result is the output of a successful tool call.
type Result struct {
	// Text is returned to the caller as a text content block.
	Text string

	// Structured is optional machine-readable output, serialized as
	// structuredContent.
	Structured any
}

// TextResult is a shorthand for a result without structured content.
func TextResult(text string) *Result {
	return &Result{Text: text}
}
