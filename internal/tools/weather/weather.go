// Package weather implements the get_weather tool on top of the OpenWeather
// One Call 3.0 API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/upstream"
)

// Name is the tool name.
const Name = "get_weather"

// DefaultURL is the One Call 3.0 endpoint.
const DefaultURL = "https://api.openweathermap.org/data/3.0/onecall"

// Args represents the arguments for the weather tool.
type Args struct {
	Lat float64 `json:"lat" jsonschema:"latitude, decimal (-90; 90)"`
	Lon float64 `json:"lon" jsonschema:"longitude, decimal (-180; 180)"`
}

// Context keys for storing request-specific values
type contextKey string

const (
	// ContextKeyAPIURL is the key for the API URL in the context
	ContextKeyAPIURL contextKey = "api_url"
	// ContextKeyAPIKey is the key for the API key in the context
	ContextKeyAPIKey contextKey = "api_key"
)

// WithOverrides returns a context carrying a per-request API URL and key.
// Empty values are ignored, and the URL is used only when a key is present.
func WithOverrides(ctx context.Context, apiURL, apiKey string) context.Context {
	if apiURL != "" {
		ctx = context.WithValue(ctx, ContextKeyAPIURL, apiURL)
	}
	if apiKey != "" {
		ctx = context.WithValue(ctx, ContextKeyAPIKey, apiKey)
	}
	return ctx
}

// Config configures the weather tool.
type Config struct {
	APIKey string
	URL    string
}

// WeatherTool is a tool that provides weather information.
type WeatherTool struct {
	cfg    Config
	client *upstream.Client
}

// NewWeatherTool creates a new WeatherTool instance.
func NewWeatherTool(cfg Config, client *upstream.Client) *WeatherTool {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	return &WeatherTool{cfg: cfg, client: client}
}

// Definition implements tools.Tool.
func (t *WeatherTool) Definition() tools.Definition {
	return tools.Define[Args](Name, "Weather",
		"Get current weather and forecast data for a latitude/longitude using the OpenWeather One Call API 3.0.", true)
}

// Call executes the weather tool with the given arguments.
func (t *WeatherTool) Call(ctx context.Context, raw json.RawMessage) (*tools.Result, error) {
	var args Args
	if err := tools.Decode(raw, &args); err != nil {
		return nil, err
	}
	if args.Lat < -90 || args.Lat > 90 {
		return nil, tools.InvalidArguments("lat must be between -90 and 90, got %g", args.Lat)
	}
	if args.Lon < -180 || args.Lon > 180 {
		return nil, tools.InvalidArguments("lon must be between -180 and 180, got %g", args.Lon)
	}

	apiURL, apiKey := t.endpoint(ctx)
	if apiKey == "" {
		return nil, &tools.Error{
			Code:    tools.CodeConfigurationMissing,
			Message: "OPENWEATHER_API_KEY not found in environment variables",
		}
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, &tools.Error{Code: tools.CodeConfigurationMissing, Message: "invalid weather API URL", Cause: err}
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(args.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(args.Lon, 'f', -1, 64))
	q.Set("appid", apiKey)
	u.RawQuery = q.Encode()

	body, err := t.client.Get(ctx, u.String())
	if err != nil {
		return nil, upstreamError(err)
	}

	return &tools.Result{Text: summarize(body) + "\n\n" + string(body)}, nil
}

// endpoint resolves the URL and key for a call. A URL override is honored
// only together with a key override so the configured key never leaves for a
// caller-chosen host.
func (t *WeatherTool) endpoint(ctx context.Context) (apiURL, apiKey string) {
	key, _ := ctx.Value(ContextKeyAPIKey).(string)
	if key == "" {
		return t.cfg.URL, t.cfg.APIKey
	}
	if u, ok := ctx.Value(ContextKeyAPIURL).(string); ok && u != "" {
		return u, key
	}
	return t.cfg.URL, key
}

// summarize extracts a one-line summary of current conditions.
func summarize(body []byte) string {
	current := gjson.GetBytes(body, "current")
	if !current.Exists() {
		return "No current conditions in response."
	}

	parts := []string{}
	if temp := current.Get("temp"); temp.Exists() {
		parts = append(parts, fmt.Sprintf("temperature %.1f K", temp.Float()))
	}
	if desc := current.Get("weather.0.description"); desc.Exists() {
		parts = append(parts, desc.String())
	}
	if hum := current.Get("humidity"); hum.Exists() {
		parts = append(parts, fmt.Sprintf("humidity %d%%", hum.Int()))
	}
	if wind := current.Get("wind_speed"); wind.Exists() {
		parts = append(parts, fmt.Sprintf("wind %.1f m/s", wind.Float()))
	}
	if len(parts) == 0 {
		return "Current conditions unavailable."
	}

	tz := gjson.GetBytes(body, "timezone").String()
	if tz != "" {
		return fmt.Sprintf("Current (%s): %s", tz, strings.Join(parts, ", "))
	}
	return "Current: " + strings.Join(parts, ", ")
}

func upstreamError(err error) error {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return &tools.Error{
			Code:    tools.CodeUpstreamFailure,
			Message: fmt.Sprintf("weather API returned status %d", statusErr.StatusCode),
			Cause:   err,
		}
	}
	return &tools.Error{Code: tools.CodeUpstreamFailure, Message: "weather API request failed: " + err.Error(), Cause: err}
}
