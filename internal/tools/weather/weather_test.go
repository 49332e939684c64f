package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/upstream"
)

const oneCallBody = `{
  "lat": 51.5, "lon": -0.12, "timezone": "Europe/London",
  "current": {"temp": 284.2, "humidity": 81, "wind_speed": 4.6,
              "weather": [{"main": "Rain", "description": "light rain"}]}
}`

func newTool(t *testing.T, cfg Config) *WeatherTool {
	t.Helper()
	return NewWeatherTool(cfg, upstream.New(0, zerolog.Nop()))
}

func TestWeatherTool_Call(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "51.5", r.URL.Query().Get("lat"))
		assert.Equal(t, "-0.12", r.URL.Query().Get("lon"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		w.Write([]byte(oneCallBody))
	}))
	defer srv.Close()

	tool := newTool(t, Config{APIKey: "secret", URL: srv.URL})
	result, err := tool.Call(context.Background(), json.RawMessage(`{"lat":51.5,"lon":-0.12}`))
	require.NoError(t, err)

	assert.Contains(t, result.Text, "Current (Europe/London): temperature 284.2 K, light rain, humidity 81%, wind 4.6 m/s")
	assert.Contains(t, result.Text, `"timezone": "Europe/London"`)
}

func TestWeatherTool_ContextOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "header-key", r.URL.Query().Get("appid"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tool := newTool(t, Config{APIKey: "configured", URL: "http://127.0.0.1:1/unused"})
	ctx := WithOverrides(context.Background(), srv.URL, "header-key")

	result, err := tool.Call(ctx, json.RawMessage(`{"lat":0,"lon":0}`))
	require.NoError(t, err)
	assert.Contains(t, result.Text, "No current conditions")
}

func TestWeatherTool_URLOverrideRequiresKey(t *testing.T) {
	overrideHits := 0
	override := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		overrideHits++
		w.Write([]byte(`{}`))
	}))
	defer override.Close()

	configured := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "SERVER-SECRET", r.URL.Query().Get("appid"))
		w.Write([]byte(oneCallBody))
	}))
	defer configured.Close()

	tool := newTool(t, Config{APIKey: "SERVER-SECRET", URL: configured.URL})
	ctx := WithOverrides(context.Background(), override.URL, "")

	result, err := tool.Call(ctx, json.RawMessage(`{"lat":51.5,"lon":-0.12}`))
	require.NoError(t, err)
	assert.Zero(t, overrideHits, "configured key must not be sent to an overridden host")
	assert.Contains(t, result.Text, "Europe/London")
}

func TestWeatherTool_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	tool := newTool(t, Config{APIKey: "SERVER-SECRET", URL: addr + "/onecall"})
	_, err := tool.Call(context.Background(), json.RawMessage(`{"lat":1,"lon":1}`))
	require.Error(t, err)
	assert.Equal(t, tools.CodeUpstreamFailure, tools.CodeOf(err))

	_, msg := tools.Describe(err)
	assert.NotContains(t, msg, "SERVER-SECRET")
	assert.NotContains(t, err.Error(), "SERVER-SECRET")
}

func TestWeatherTool_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		cfg  Config
		args string
		code string
	}{
		{"missing key", Config{URL: srv.URL}, `{"lat":1,"lon":1}`, tools.CodeConfigurationMissing},
		{"latitude out of range", Config{APIKey: "k", URL: srv.URL}, `{"lat":91,"lon":1}`, tools.CodeInvalidArguments},
		{"longitude out of range", Config{APIKey: "k", URL: srv.URL}, `{"lat":1,"lon":-181}`, tools.CodeInvalidArguments},
		{"city is not an argument", Config{APIKey: "k", URL: srv.URL}, `{"city":"London"}`, tools.CodeInvalidArguments},
		{"upstream rejects", Config{APIKey: "k", URL: srv.URL}, `{"lat":1,"lon":1}`, tools.CodeUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTool(t, tt.cfg).Call(context.Background(), json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Equal(t, tt.code, tools.CodeOf(err))
		})
	}
}

func TestWeatherTool_Definition(t *testing.T) {
	def := newTool(t, Config{}).Definition()
	assert.Equal(t, Name, def.Name)
	assert.ElementsMatch(t, []string{"lat", "lon"}, def.InputSchema.Required)
	require.NotNil(t, def.Annotations.OpenWorldHint)
	assert.True(t, *def.Annotations.OpenWorldHint)
}
