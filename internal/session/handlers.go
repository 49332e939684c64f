package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// Handler serves session introspection endpoints.
type Handler struct {
	manager *Manager
	logger  zerolog.Logger
}

// NewHandler returns a Handler reading from manager.
func NewHandler(manager *Manager, logger zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

type statsResponse struct {
	Stats
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Stats handles GET /sessions/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get session stats")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "failed to get session statistics", Code: CodeStorage})
		return
	}

	render.JSON(w, r, statsResponse{Stats: stats, Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

// Current handles GET /sessions/current and describes the session named by
// the Mcp-Session-Id header.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(HeaderName)
	if id == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "missing " + HeaderName + " header"})
		return
	}

	s, err := h.manager.Validate(r.Context(), id)
	if err != nil {
		code := CodeStorage
		var se *Error
		if errors.As(err, &se) {
			code = se.Code
		}
		render.Status(r, HTTPStatus(err))
		render.JSON(w, r, errorResponse{Error: err.Error(), Code: code})
		return
	}

	render.JSON(w, r, s)
}
