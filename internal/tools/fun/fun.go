// Package fun implements small pass-through tools: jokes, cat facts and
// quotes.
package fun

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/upstream"
)

// Default upstream endpoints.
const (
	DefaultJokeURL    = "https://official-joke-api.appspot.com/random_joke"
	DefaultCatFactURL = "https://catfact.ninja/fact"
	DefaultQuoteURL   = "https://zenquotes.io/api/random"
)

// NoArgs is the argument type of tools that take no input.
type NoArgs struct{}

// fetcher is a tool that GETs a URL and formats a few fields of the JSON
// response.
type fetcher struct {
	def    tools.Definition
	url    string
	client *upstream.Client
	format func(body []byte) (string, bool)
}

// Definition implements tools.Tool.
func (f *fetcher) Definition() tools.Definition {
	return f.def
}

// Call implements tools.Tool.
func (f *fetcher) Call(ctx context.Context, raw json.RawMessage) (*tools.Result, error) {
	var args NoArgs
	if err := tools.Decode(raw, &args); err != nil {
		return nil, err
	}

	body, err := f.client.Get(ctx, f.url)
	if err != nil {
		return nil, &tools.Error{Code: tools.CodeUpstreamFailure, Message: fmt.Sprintf("%s: %v", f.def.Name, err), Cause: err}
	}

	text, ok := f.format(body)
	if !ok {
		return nil, &tools.Error{Code: tools.CodeUpstreamFailure, Message: f.def.Name + ": unexpected response format"}
	}
	return tools.TextResult(text), nil
}

// NewJokeTool returns get_random_joke.
func NewJokeTool(url string, client *upstream.Client) tools.Tool {
	if url == "" {
		url = DefaultJokeURL
	}
	return &fetcher{
		def:    tools.Define[NoArgs]("get_random_joke", "Random Joke", "Get a random joke", true),
		url:    url,
		client: client,
		format: func(body []byte) (string, bool) {
			setup := gjson.GetBytes(body, "setup").String()
			punchline := gjson.GetBytes(body, "punchline").String()
			if setup == "" || punchline == "" {
				return "", false
			}
			return setup + "\n" + punchline, true
		},
	}
}

// NewCatFactTool returns get_cat_fact.
func NewCatFactTool(url string, client *upstream.Client) tools.Tool {
	if url == "" {
		url = DefaultCatFactURL
	}
	return &fetcher{
		def:    tools.Define[NoArgs]("get_cat_fact", "Cat Fact", "Get a random fact about cats", true),
		url:    url,
		client: client,
		format: func(body []byte) (string, bool) {
			fact := strings.TrimSpace(gjson.GetBytes(body, "fact").String())
			return fact, fact != ""
		},
	}
}

// NewQuoteTool returns get_random_quote.
func NewQuoteTool(url string, client *upstream.Client) tools.Tool {
	if url == "" {
		url = DefaultQuoteURL
	}
	return &fetcher{
		def:    tools.Define[NoArgs]("get_random_quote", "Random Quote", "Get a random inspirational quote", true),
		url:    url,
		client: client,
		format: func(body []byte) (string, bool) {
			quote := gjson.GetBytes(body, "0.q").String()
			if quote == "" {
				return "", false
			}
			if author := gjson.GetBytes(body, "0.a").String(); author != "" {
				return fmt.Sprintf("%q - %s", quote, author), true
			}
			return fmt.Sprintf("%q", quote), true
		},
	}
}
