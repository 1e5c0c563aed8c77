package monitoring

import (
	"fmt"
	"sync"
	"time"

	"anipick/shared/logging"
)

type Monitor struct {
	mu             sync.RWMutex
	lastRunSuccess bool
	lastRunTime    time.Time
	lastSummary    string
	runs           int
	failures       int
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(summary string, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = true
	m.lastRunTime = time.Now()
	m.lastSummary = summary
	m.runs++
	m.mu.Unlock()

	logging.Info().Str("summary", summary).Dur("duration", duration).Msg("Run completed successfully")
}

// RecordPartialFailure logs a degraded run (e.g. no trailer, no pitch) without
// changing health.
func (m *Monitor) RecordPartialFailure(err error, duration time.Duration) {
	logging.Warn().Err(err).Dur("duration", duration).Msg("Partial failure")
}

func (m *Monitor) RecordCriticalFailure(err error, duration time.Duration) {
	m.mu.Lock()
	m.lastRunSuccess = false
	m.lastRunTime = time.Now()
	m.lastSummary = err.Error()
	m.runs++
	m.failures++
	m.mu.Unlock()

	logging.Error().Err(err).Dur("duration", duration).Msg("Critical failure")
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return true // No runs yet, assume healthy
	}
	return m.lastRunSuccess
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRunTime.IsZero() {
		return "No runs yet"
	}

	if m.lastRunSuccess {
		return fmt.Sprintf("Last run: %s (%s), %d runs, %d failed", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary, m.runs, m.failures)
	}
	return fmt.Sprintf("Last run failed: %s (%s), %d runs, %d failed", m.lastRunTime.Format("Jan 2 15:04"), m.lastSummary, m.runs, m.failures)
}
