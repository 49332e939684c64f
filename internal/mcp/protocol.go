// Package mcp serves the Model Context Protocol over streamable HTTP.
package mcp

import (
	"encoding/json"
	"slices"

	"mcp-toolbox-go/internal/tools"
)

// Protocol revisions this server speaks, newest first.
var SupportedProtocolVersions = []string{"2025-06-18", "2025-03-26", "2024-11-05"}

// LatestProtocolVersion is offered when the client asks for an unknown one.
var LatestProtocolVersion = SupportedProtocolVersions[0]

func negotiateVersion(requested string) string {
	if slices.Contains(SupportedProtocolVersions, requested) {
		return requested
	}
	return LatestProtocolVersion
}

// Implementation names a client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type initializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      Implementation  `json:"clientInfo"`
}

type toolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type serverCapabilities struct {
	Tools toolsCapability `json:"tools"`
}

type initializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    serverCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

type listToolsResult struct {
	Tools []tools.Definition `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callToolResult struct {
	Content           []content `json:"content"`
	StructuredContent any       `json:"structuredContent,omitempty"`
	IsError           bool      `json:"isError"`
}

type toolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toolSuccess(r *tools.Result) callToolResult {
	return callToolResult{
		Content:           []content{{Type: "text", Text: r.Text}},
		StructuredContent: r.Structured,
	}
}

// toolFailure reports a failed call in-band so the model can see and react
// to it.
func toolFailure(err error) callToolResult {
	code, msg := tools.Describe(err)
	return callToolResult{
		Content:           []content{{Type: "text", Text: code + ": " + msg}},
		StructuredContent: map[string]toolError{"error": {Code: code, Message: msg}},
		IsError:           true,
	}
}
