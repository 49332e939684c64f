package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is the idle lifetime of a session.
const DefaultTimeout = time.Hour

// Manager creates, validates and expires sessions.
type Manager struct {
	store    Store
	timeout  time.Duration
	observer Observer
	logger   zerolog.Logger
	now      func() time.Time
}

// NewManager returns a Manager over store. observer may be nil.
func NewManager(store Store, timeout time.Duration, observer Observer, logger zerolog.Logger) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		store:    store,
		timeout:  timeout,
		observer: observer,
		logger:   logger.With().Str("component", "session_manager").Logger(),
		now:      time.Now,
	}
}

// Timeout is the idle lifetime applied on creation and every access.
func (m *Manager) Timeout() time.Duration {
	return m.timeout
}

// Create starts a session for a client that completed initialize.
func (m *Manager) Create(ctx context.Context, protocolVersion string, client ClientInfo) (*Session, error) {
	now := m.now()
	s := &Session{
		ID:              NewID(),
		CreatedAt:       now,
		LastAccess:      now,
		ExpiresAt:       now.Add(m.timeout),
		ProtocolVersion: protocolVersion,
		Client:          client,
	}

	if err := m.store.Set(ctx, s); err != nil {
		m.logger.Error().Err(err).Str("remote_addr", client.RemoteAddr).Msg("Failed to store session")
		return nil, err
	}

	if m.observer != nil {
		m.observer.SessionCreated()
	}

	m.logger.Info().
		Str("session_id", s.ID).
		Str("client", client.Name).
		Str("protocol_version", protocolVersion).
		Time("expires_at", s.ExpiresAt).
		Msg("Session created")

	return s, nil
}

// Validate returns the live session for id and extends its expiry. Expired
// sessions are removed and reported as ErrExpired.
func (m *Manager) Validate(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if s.IsExpired(now) {
		m.expire(ctx, s)
		return nil, &Error{Code: CodeExpired, SessionID: id}
	}

	s.Touch(now, m.timeout)
	if err := m.store.Update(ctx, s); err != nil {
		// Deleted or expired since the Get above.
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		// The session is still valid for this request.
		m.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to refresh session")
	}
	return s, nil
}

// Delete ends a session at the client's request.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	if m.observer != nil {
		m.observer.SessionEnded(ReasonDeleted, m.now().Sub(s.CreatedAt))
	}
	m.logger.Info().Str("session_id", id).Msg("Session deleted")
	return nil
}

// CleanupExpired removes every expired session and returns how many were
// removed.
func (m *Manager) CleanupExpired(ctx context.Context) (int, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return 0, err
	}

	now := m.now()
	removed := 0
	for _, s := range sessions {
		if !s.IsExpired(now) {
			continue
		}
		if m.expire(ctx, s) {
			removed++
		}
	}
	return removed, nil
}

func (m *Manager) expire(ctx context.Context, s *Session) bool {
	if err := m.store.Delete(ctx, s.ID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn().Err(err).Str("session_id", s.ID).Msg("Failed to delete expired session")
		}
		return false
	}
	if m.observer != nil {
		m.observer.SessionEnded(ReasonExpired, s.ExpiresAt.Sub(s.CreatedAt))
	}
	m.logger.Debug().Str("session_id", s.ID).Msg("Session expired")
	return true
}

// Stats summarizes stored sessions.
type Stats struct {
	Total   int    `json:"total_sessions"`
	Active  int    `json:"active_sessions"`
	Expired int    `json:"expired_sessions"`
	Timeout string `json:"session_timeout"`
}

// Stats counts stored sessions by state.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	now := m.now()
	stats := Stats{Total: len(sessions), Timeout: m.timeout.String()}
	for _, s := range sessions {
		if s.IsExpired(now) {
			stats.Expired++
		} else {
			stats.Active++
		}
	}
	return stats, nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}
