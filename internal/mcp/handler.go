package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"mcp-toolbox-go/internal/jsonrpc"
	"mcp-toolbox-go/internal/session"
	"mcp-toolbox-go/internal/tools"
)

const maxMessageBytes = 1 << 20

// ToolCaller lists and executes tools. *tools.Registry satisfies it.
type ToolCaller interface {
	Definitions() []tools.Definition
	Call(ctx context.Context, name string, args json.RawMessage) (*tools.Result, error)
}

// Options configure a Handler.
type Options struct {
	Server         Implementation
	Instructions   string
	RequireSession bool
	KeepAlive      time.Duration
}

// Handler serves the MCP streamable HTTP transport: POST for client
// messages, GET for the server event stream and DELETE to end a session.
type Handler struct {
	tools    ToolCaller
	sessions *session.Manager
	opts     Options
	logger   zerolog.Logger
}

// NewHandler returns a Handler. sessions may be nil to run without session
// tracking, in which case RequireSession is ignored.
func NewHandler(caller ToolCaller, sessions *session.Manager, opts Options, logger zerolog.Logger) *Handler {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = 15 * time.Second
	}
	if sessions == nil {
		opts.RequireSession = false
	}
	return &Handler{
		tools:    caller,
		sessions: sessions,
		opts:     opts,
		logger:   logger.With().Str("component", "mcp_handler").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, r)
	case http.MethodGet:
		h.handleStream(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		h.writeError(w, http.StatusMethodNotAllowed, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Method not allowed", nil))
	}
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Message too large", nil))
			return
		}
		h.writeError(w, http.StatusBadRequest, nil, jsonrpc.NewError(jsonrpc.ParseError, "Could not read request body", nil))
		return
	}

	msg, err := jsonrpc.ParseMessage(body)
	if err != nil {
		var rpcErr *jsonrpc.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = jsonrpc.NewError(jsonrpc.InternalError, err.Error(), nil)
		}
		h.writeError(w, http.StatusBadRequest, nil, rpcErr)
		return
	}

	switch m := msg.(type) {
	case *jsonrpc.Request:
		if m.Method == "initialize" {
			h.initialize(w, r, m)
			return
		}
		ctx, ok := h.resolveSession(w, r)
		if !ok {
			return
		}
		h.writeJSON(w, http.StatusOK, h.dispatch(ctx, m))

	case *jsonrpc.Notification:
		if _, ok := h.resolveSession(w, r); !ok {
			return
		}
		h.logger.Debug().Str("method", m.Method).Msg("Notification received")
		w.WriteHeader(http.StatusAccepted)

	case *jsonrpc.Response:
		w.WriteHeader(http.StatusAccepted)
	}
}

func (h *Handler) initialize(w http.ResponseWriter, r *http.Request, req *jsonrpc.Request) {
	var params initializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			h.writeJSON(w, http.StatusOK, jsonrpc.NewErrorResponse(req.ID,
				jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid initialize params", err.Error())))
			return
		}
	}

	version := negotiateVersion(params.ProtocolVersion)

	if h.sessions != nil {
		s, err := h.sessions.Create(r.Context(), version, session.ClientInfo{
			Name:       params.ClientInfo.Name,
			Version:    params.ClientInfo.Version,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
		if err != nil {
			h.writeJSON(w, http.StatusInternalServerError, jsonrpc.NewErrorResponse(req.ID,
				jsonrpc.NewError(jsonrpc.InternalError, "Failed to create session", nil)))
			return
		}
		w.Header().Set(session.HeaderName, s.ID)
	}

	h.logger.Info().
		Str("client", params.ClientInfo.Name).
		Str("client_version", params.ClientInfo.Version).
		Str("requested_version", params.ProtocolVersion).
		Str("protocol_version", version).
		Msg("Client initialized")

	h.writeJSON(w, http.StatusOK, jsonrpc.NewResult(req.ID, initializeResult{
		ProtocolVersion: version,
		Capabilities:    serverCapabilities{Tools: toolsCapability{ListChanged: false}},
		ServerInfo:      h.opts.Server,
		Instructions:    h.opts.Instructions,
	}))
}

// resolveSession validates the Mcp-Session-Id header and attaches the
// session to the returned context. On failure it has already written the
// response.
func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) (context.Context, bool) {
	ctx := r.Context()
	if h.sessions == nil {
		return ctx, true
	}

	id := r.Header.Get(session.HeaderName)
	if id == "" {
		if !h.opts.RequireSession {
			return ctx, true
		}
		h.writeError(w, http.StatusBadRequest, nil,
			jsonrpc.NewError(jsonrpc.InvalidRequest, "Bad Request: missing "+session.HeaderName+" header", nil))
		return nil, false
	}

	s, err := h.sessions.Validate(ctx, id)
	if err != nil {
		h.logger.Debug().Err(err).Str("session_id", id).Msg("Session validation failed")
		h.writeError(w, session.HTTPStatus(err), nil,
			jsonrpc.NewError(jsonrpc.InvalidRequest, "Session not found or expired; re-initialize", nil))
		return nil, false
	}
	return session.WithSession(ctx, s), true
}

func (h *Handler) dispatch(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	switch req.Method {
	case "ping":
		return jsonrpc.NewResult(req.ID, struct{}{})

	case "tools/list":
		return jsonrpc.NewResult(req.ID, listToolsResult{Tools: h.tools.Definitions()})

	case "tools/call":
		var params callToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.InvalidParams, "Invalid tools/call params: name is required", nil))
		}
		return h.callTool(ctx, req.ID, params)

	default:
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.NewError(jsonrpc.MethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil))
	}
}

func (h *Handler) callTool(ctx context.Context, id json.RawMessage, params callToolParams) *jsonrpc.Response {
	start := time.Now()
	result, err := h.tools.Call(ctx, params.Name, params.Arguments)

	logger := h.logger.With().Str("tool", params.Name).Dur("duration", time.Since(start)).Logger()
	if s, ok := session.FromContext(ctx); ok {
		logger = logger.With().Str("session_id", s.ID).Logger()
	}

	if err != nil {
		if tools.CodeOf(err) == tools.CodeToolNotFound {
			return jsonrpc.NewErrorResponse(id, jsonrpc.NewError(jsonrpc.InvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name), nil))
		}
		logger.Warn().Err(err).Msg("Tool call failed")
		return jsonrpc.NewResult(id, toolFailure(err))
	}

	logger.Debug().Msg("Tool call completed")
	return jsonrpc.NewResult(id, toolSuccess(result))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		h.writeError(w, http.StatusMethodNotAllowed, nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Sessions are disabled", nil))
		return
	}

	id := r.Header.Get(session.HeaderName)
	if id == "" {
		h.writeError(w, http.StatusBadRequest, nil,
			jsonrpc.NewError(jsonrpc.InvalidRequest, "Bad Request: missing "+session.HeaderName+" header", nil))
		return
	}

	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.writeError(w, session.HTTPStatus(err), nil, jsonrpc.NewError(jsonrpc.InvalidRequest, "Session not found", nil))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp *jsonrpc.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Int("status_code", status).Msg("Failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, id json.RawMessage, rpcErr *jsonrpc.Error) {
	h.writeJSON(w, status, jsonrpc.NewErrorResponse(id, rpcErr))
}
