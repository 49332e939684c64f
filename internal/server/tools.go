package server

import (
	"github.com/rs/zerolog"

	"mcp-toolbox-go/internal/dice"
	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/tools/fun"
	"mcp-toolbox-go/internal/tools/qrcode"
	"mcp-toolbox-go/internal/tools/roll"
	"mcp-toolbox-go/internal/tools/search"
	"mcp-toolbox-go/internal/tools/weather"
	"mcp-toolbox-go/internal/upstream"
)

// NewToolRegistry registers every tool the server exposes. observer may be
// nil.
func NewToolRegistry(cfg Config, observer roll.Observer, logger zerolog.Logger) *tools.Registry {
	client := upstream.New(cfg.UpstreamTimeout, logger)

	registry := tools.NewRegistry()
	registry.Register(roll.New(dice.NewRoller(nil), observer))
	registry.Register(weather.NewWeatherTool(weather.Config{APIKey: cfg.OpenWeatherAPIKey, URL: cfg.OpenWeatherURL}, client))
	registry.Register(search.New(search.Config{APIKey: cfg.TavilyAPIKey, URL: cfg.TavilyURL}, client))
	registry.Register(fun.NewJokeTool(cfg.JokeAPIURL, client))
	registry.Register(fun.NewCatFactTool(cfg.CatFactAPIURL, client))
	registry.Register(fun.NewQuoteTool(cfg.QuoteAPIURL, client))
	registry.Register(qrcode.New(cfg.QRCodeAPIURL))

	for _, def := range registry.Definitions() {
		logger.Debug().Str("tool", def.Name).Msg("Registered tool")
	}
	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn().Msg("OPENWEATHER_API_KEY is not set; get_weather needs the X-Weather-API-Key header")
	}
	if cfg.TavilyAPIKey == "" {
		logger.Warn().Msg("TAVILY_API_KEY is not set; web_search will fail")
	}

	return registry
}
