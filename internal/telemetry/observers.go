package telemetry

import (
	"time"

	"mcp-toolbox-go/internal/dice"
)

// SessionCreated implements session.Observer.
func (m *Metrics) SessionCreated() {
	m.MCPSessionsActive.Inc()
	m.MCPSessionsTotal.WithLabelValues("created").Inc()
}

// SessionEnded implements session.Observer.
func (m *Metrics) SessionEnded(reason string, lifetime time.Duration) {
	m.MCPSessionsActive.Dec()
	m.MCPSessionsTotal.WithLabelValues(reason).Inc()
	m.MCPSessionDuration.WithLabelValues(reason).Observe(lifetime.Seconds())
}

// ObserveRoll implements roll.Observer.
func (m *Metrics) ObserveRoll(spec dice.Spec) {
	m.DiceRollsTotal.WithLabelValues(spec.Mode.String()).Inc()
	m.DiceRolledTotal.Add(float64(spec.Count * spec.Repeats))
}

// ObserveNotationError implements roll.Observer.
func (m *Metrics) ObserveNotationError(kind dice.ErrorKind) {
	m.DiceNotationErrors.WithLabelValues(string(kind)).Inc()
}
