// Package qrcode implements generate_qr_code, which builds an image URL for a
// QR code without fetching it.
package qrcode

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"

	"mcp-toolbox-go/internal/tools"
)

const (
	// Name is the tool name.
	Name        = "generate_qr_code"
	DefaultURL  = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultSize = "200x200"
	maxTextLen  = 900
)

var sizePattern = regexp.MustCompile(`^\d{2,4}x\d{2,4}$`)

// Args are the generate_qr_code arguments.
type Args struct {
	Text string `json:"text" jsonschema:"text or URL to encode"`
	Size string `json:"size,omitempty" jsonschema:"image size as WIDTHxHEIGHT, default 200x200"`
}

// Output is the structured result: the image URL and its size.
type Output struct {
	URL  string `json:"url"`
	Size string `json:"size"`
}

// Tool builds QR code image URLs.
type Tool struct {
	baseURL string
}

// New returns a Tool for the given endpoint, or DefaultURL when empty.
func New(baseURL string) *Tool {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Tool{baseURL: baseURL}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Define[Args](Name, "QR Code", "Generate a QR code image URL for the given text", false)
}

// Call implements tools.Tool. No network request is made.
func (t *Tool) Call(_ context.Context, raw json.RawMessage) (*tools.Result, error) {
	var args Args
	if err := tools.Decode(raw, &args); err != nil {
		return nil, err
	}
	if args.Text == "" {
		return nil, tools.InvalidArguments("text is required")
	}
	if len(args.Text) > maxTextLen {
		return nil, tools.InvalidArguments("text must be at most %d bytes", maxTextLen)
	}
	if args.Size == "" {
		args.Size = DefaultSize
	}
	if !sizePattern.MatchString(args.Size) {
		return nil, tools.InvalidArguments("size must look like 200x200, got %q", args.Size)
	}

	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, &tools.Error{Code: tools.CodeConfigurationMissing, Message: "invalid QR code API URL", Cause: err}
	}
	q := u.Query()
	q.Set("size", args.Size)
	q.Set("data", args.Text)
	u.RawQuery = q.Encode()

	link := u.String()
	return &tools.Result{
		Text:       "QR code: " + link,
		Structured: Output{URL: link, Size: args.Size},
	}, nil
}
