package server

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config contains the server configuration. Every field is read from the
// environment; a .env file in the working directory is loaded first.
type Config struct {
	Addr      string `env:"MCP_ADDR" envDefault:":8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Session configuration
	SessionTimeout  time.Duration `env:"SESSION_TIMEOUT" envDefault:"1h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
	RequireSession  bool          `env:"SESSION_REQUIRED" envDefault:"true"`
	SessionStore    string        `env:"SESSION_STORE" envDefault:"memory"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`

	// Upstream APIs
	OpenWeatherAPIKey string        `env:"OPENWEATHER_API_KEY"`
	OpenWeatherURL    string        `env:"OPENWEATHER_URL"`
	TavilyAPIKey      string        `env:"TAVILY_API_KEY"`
	TavilyURL         string        `env:"TAVILY_URL"`
	JokeAPIURL        string        `env:"JOKE_API_URL"`
	CatFactAPIURL     string        `env:"CAT_FACT_API_URL"`
	QuoteAPIURL       string        `env:"QUOTE_API_URL"`
	QRCodeAPIURL      string        `env:"QR_CODE_API_URL"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// Telemetry
	SystemMetricsInterval time.Duration `env:"SYSTEM_METRICS_INTERVAL" envDefault:"15s"`
	OTLPEndpoint          string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Session store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// DefaultConfig returns the configuration used when no environment variable
// is set.
func DefaultConfig() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("server: invalid config defaults: %v", err))
	}
	return cfg
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.SessionStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.SessionTimeout <= 0 || c.CleanupInterval <= 0 {
		return errors.New("session timeout and cleanup interval must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}
