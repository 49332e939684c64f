// Package search implements the web_search tool backed by the Tavily API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/upstream"
)

// Name is the tool name.
const Name = "web_search"

// DefaultURL is the Tavily search endpoint.
const DefaultURL = "https://api.tavily.com/search"

const maxResults = 5

// Args represents the arguments for the web_search tool.
type Args struct {
	Query string `json:"query" jsonschema:"what to search the web for"`
}

// Config configures the search tool.
type Config struct {
	APIKey string
	URL    string
}

// Tool searches the web.
type Tool struct {
	cfg    Config
	client *upstream.Client
}

// New creates a web_search tool.
func New(cfg Config, client *upstream.Client) *Tool {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return &Tool{cfg: cfg, client: client}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Define[Args](Name, "Web Search", "Search the web for information about the given query", true)
}

// Call implements tools.Tool.
func (t *Tool) Call(ctx context.Context, raw json.RawMessage) (*tools.Result, error) {
	var args Args
	if err := tools.Decode(raw, &args); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return nil, tools.InvalidArguments("query is required")
	}
	if t.cfg.APIKey == "" {
		return nil, &tools.Error{Code: tools.CodeConfigurationMissing, Message: "TAVILY_API_KEY not found in environment variables"}
	}

	payload, err := json.Marshal(map[string]any{
		"query":        query,
		"max_results":  maxResults,
		"search_depth": "advanced",
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)

	body, err := t.client.Do(req)
	if err != nil {
		return nil, &tools.Error{Code: tools.CodeUpstreamFailure, Message: "search request failed: " + err.Error(), Cause: err}
	}

	return tools.TextResult(format(query, body)), nil
}

func format(query string, body []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", query)

	if answer := gjson.GetBytes(body, "answer").String(); answer != "" {
		fmt.Fprintf(&b, "\nAnswer: %s\n", answer)
	}

	n := 0
	gjson.GetBytes(body, "results").ForEach(func(_, result gjson.Result) bool {
		n++
		fmt.Fprintf(&b, "\n%d. %s\n   %s\n", n, result.Get("title").String(), result.Get("url").String())
		if content := strings.TrimSpace(result.Get("content").String()); content != "" {
			fmt.Fprintf(&b, "   %s\n", content)
		}
		return true
	})
	if n == 0 {
		b.WriteString("\nNo results found.\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
