package mcp

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mcp-toolbox-go/internal/jsonrpc"
	"mcp-toolbox-go/internal/session"
)

// handleStream holds a server-sent event stream open for the session. The
// server never initiates requests, so the stream carries only keep-alives.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, nil, jsonrpc.NewError(jsonrpc.InternalError, "Streaming unsupported", nil))
		return
	}

	ctx, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	streamID := uuid.NewString()
	logger := h.logger.With().Str("stream_id", streamID).Logger()
	if s, ok := session.FromContext(ctx); ok {
		logger = logger.With().Str("session_id", s.ID).Logger()
	}

	fmt.Fprintf(w, ": stream %s open; POST messages to %s\n\n", streamID, r.URL.Path)
	flusher.Flush()
	logger.Debug().Msg("Event stream opened")

	ticker := time.NewTicker(h.opts.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Event stream closed")
			return
		case t := <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keep-alive %d\n\n", t.Unix()); err != nil {
				logger.Debug().Err(err).Msg("Event stream write failed")
				return
			}
			flusher.Flush()
		}
	}
}
