package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCleanupInterval is how often the Janitor sweeps expired sessions.
const DefaultCleanupInterval = 5 * time.Minute

// Janitor periodically removes expired sessions.
type Janitor struct {
	manager  *Manager
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitor returns a Janitor sweeping every interval.
func NewJanitor(manager *Manager, interval time.Duration, logger zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &Janitor{
		manager:  manager,
		interval: interval,
		logger:   logger.With().Str("component", "session_janitor").Logger(),
	}
}

// Run sweeps until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info().Dur("interval", j.interval).Msg("Starting session cleanup")

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("Session cleanup stopped")
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			j.RunOnce(sweepCtx)
			cancel()
		}
	}
}

// RunOnce performs a single sweep.
func (j *Janitor) RunOnce(ctx context.Context) int {
	start := time.Now()
	removed, err := j.manager.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("Session cleanup failed")
		return 0
	}

	event := j.logger.Debug()
	if removed > 0 {
		event = j.logger.Info()
	}
	event.Int("deleted_count", removed).Dur("duration", time.Since(start)).Msg("Session cleanup completed")
	return removed
}
