package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mcp-toolbox-go/internal/tools/weather"
)

// Header names for per-request weather API overrides.
const (
	HeaderWeatherURL = "X-Weather-API-URL"
	HeaderWeatherKey = "X-Weather-API-Key"
)

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("Request completed")
		})
	}
}

// weatherOverrides copies the weather override headers into the request
// context.
func weatherOverrides(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiURL, apiKey := r.Header.Get(HeaderWeatherURL), r.Header.Get(HeaderWeatherKey)
		if apiURL != "" || apiKey != "" {
			r = r.WithContext(weather.WithOverrides(r.Context(), apiURL, apiKey))
		}
		next.ServeHTTP(w, r)
	})
}
