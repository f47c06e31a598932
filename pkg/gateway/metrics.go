package gateway

import "sync/atomic"

// Metrics tracks gateway activity with lock-free counters.
type Metrics struct {
	activeSessions atomic.Int64
	totalSessions  atomic.Int64
	totalFrames    atomic.Int64
	verified       atomic.Int64
	fake           atomic.Int64
	timeout        atomic.Int64
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// SessionStarted records a new verification session.
func (m *Metrics) SessionStarted() {
	m.activeSessions.Add(1)
	m.totalSessions.Add(1)
}

// SessionEnded records a finished session.
func (m *Metrics) SessionEnded() {
	m.activeSessions.Add(-1)
}

// FrameProcessed records one stepped frame.
func (m *Metrics) FrameProcessed() {
	m.totalFrames.Add(1)
}

// RecordVerdict tallies a terminal outcome.
func (m *Metrics) RecordVerdict(outcome string) {
	switch outcome {
	case "VERIFIED":
		m.verified.Add(1)
	case "FAKE":
		m.fake.Add(1)
	case "TIMEOUT":
		m.timeout.Add(1)
	}
}

// Snapshot returns the current counter values for the metrics endpoint.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"active_sessions": m.activeSessions.Load(),
		"total_sessions":  m.totalSessions.Load(),
		"total_frames":    m.totalFrames.Load(),
		"verified":        m.verified.Load(),
		"fake":            m.fake.Load(),
		"timeout":         m.timeout.Load(),
	}
}
