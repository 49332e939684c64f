// Package server wires configuration, tools, sessions and telemetry into the
// HTTP handler.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"mcp-toolbox-go/internal/mcp"
	"mcp-toolbox-go/internal/session"
	"mcp-toolbox-go/internal/telemetry"
)

// Name and Version identify the server to MCP clients.
const (
	Name    = "mcp-toolbox-go"
	Version = "1.0.0"
)

// Server is the assembled HTTP application.
type Server struct {
	Handler  http.Handler
	Metrics  *telemetry.Metrics
	Sessions *session.Manager

	janitor   *session.Janitor
	collector *telemetry.SystemMetricsCollector
	logger    zerolog.Logger
}

// New creates the server. It connects to Redis when the Redis session store
// is configured.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store, cfg.SessionTimeout, metrics, logger)

	registry := telemetry.NewInstrumentedRegistry(NewToolRegistry(cfg, metrics, logger), metrics, nil)

	mcpHandler := mcp.NewHandler(registry, sessions, mcp.Options{
		Server:         mcp.Implementation{Name: Name, Version: Version},
		Instructions:   "Tools for rolling dice, checking the weather, searching the web and a few fun extras.",
		RequireSession: cfg.RequireSession,
	}, logger)
	sessionHandler := session.NewHandler(sessions, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger.With().Str("component", "http").Logger()))
	r.Use(middleware.Recoverer)
	r.Use(telemetry.HTTPMetricsMiddleware(metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type", "X-CSRF-Token",
			session.HeaderName, "Mcp-Protocol-Version", "Last-Event-ID",
			HeaderWeatherURL, HeaderWeatherKey,
		},
		ExposedHeaders:   []string{"Link", "Content-Type", "Cache-Control", "Connection", session.HeaderName},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok", "name": Name, "version": Version})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/stats", sessionHandler.Stats)
		r.Get("/current", sessionHandler.Current)
	})

	// /sse is kept as an alias for clients configured against the old path.
	for _, path := range []string{"/mcp", "/sse"} {
		r.With(weatherOverrides).Handle(path, mcpHandler)
	}

	return &Server{
		Handler:   r,
		Metrics:   metrics,
		Sessions:  sessions,
		janitor:   session.NewJanitor(sessions, cfg.CleanupInterval, logger),
		collector: telemetry.NewSystemMetricsCollector(metrics, logger, cfg.SystemMetricsInterval),
		logger:    logger,
	}, nil
}

func newStore(ctx context.Context, cfg Config, logger zerolog.Logger) (session.Store, error) {
	if cfg.SessionStore != StoreRedis {
		return session.NewMemoryStore(logger), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store, err := session.NewRedisStore(ctx, client, 2*cfg.CleanupInterval, logger)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("redis session store: %w", err)
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis session store")
	return store, nil
}

// Start runs the background workers until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.janitor.Run(ctx)
	go s.collector.Start(ctx)
}

// Close releases the session store.
func (s *Server) Close() error {
	return s.Sessions.Close()
}
