package orchestrator

import "sync"

// Metrics tracks per-provider success/failure counters, owned exclusively
// by the orchestrator and updated only under its lock.
type Metrics struct {
	mu      sync.Mutex
	success map[string]uint64
	failure map[string]uint64
}

// NewMetrics creates an empty metrics record.
func NewMetrics() *Metrics {
	return &Metrics{
		success: make(map[string]uint64),
		failure: make(map[string]uint64),
	}
}

// RecordSuccess increments the success counter for providerID.
func (m *Metrics) RecordSuccess(providerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.success[providerID]++
}

// RecordFailure increments the failure counter for providerID.
func (m *Metrics) RecordFailure(providerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure[providerID]++
}

// SuccessCount returns the recorded success count for providerID.
func (m *Metrics) SuccessCount(providerID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.success[providerID]
}

// FailureCount returns the recorded failure count for providerID.
func (m *Metrics) FailureCount(providerID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failure[providerID]
}

// SuccessRate returns success / (success + failure), or 0 when total is 0.
func (m *Metrics) SuccessRate(providerID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	success := float64(m.success[providerID])
	total := success + float64(m.failure[providerID])
	if total == 0 {
		return 0
	}
	return success / total
}
