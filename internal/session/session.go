// Package session tracks MCP client sessions created by the initialize
// handshake and identified by the Mcp-Session-Id header.
package session

import (
	"context"
	"time"
)

// HeaderName carries the session ID on every request after initialize.
const HeaderName = "Mcp-Session-Id"

// Session represents an active client session.
type Session struct {
	ID              string     `json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	LastAccess      time.Time  `json:"last_access"`
	ExpiresAt       time.Time  `json:"expires_at"`
	ProtocolVersion string     `json:"protocol_version"`
	Client          ClientInfo `json:"client"`
}

// ClientInfo describes the peer that opened the session.
type ClientInfo struct {
	Name       string `json:"name,omitempty"`
	Version    string `json:"version,omitempty"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch records an access at now and extends the expiry by timeout.
func (s *Session) Touch(now time.Time, timeout time.Duration) {
	s.LastAccess = now
	s.ExpiresAt = now.Add(timeout)
}

// Store persists sessions. Get, Update and Delete return an error matching
// ErrNotFound for unknown IDs.
type Store interface {
	Set(ctx context.Context, session *Session) error
	// Update overwrites a session only if it is still stored.
	Update(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
	Close() error
}

// Observer is notified of session lifecycle events.
type Observer interface {
	SessionCreated()
	SessionEnded(reason string, lifetime time.Duration)
}

// End reasons passed to Observer.SessionEnded.
const (
	ReasonDeleted = "deleted"
	ReasonExpired = "expired"
)

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
