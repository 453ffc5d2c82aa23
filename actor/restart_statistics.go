package actor

import "time"

// RestartStatistics is the sliding failure-count window of spec §3/§4.H.
type RestartStatistics struct {
	failures []time.Time
}

// NewRestartStatistics returns an empty window.
func NewRestartStatistics() *RestartStatistics {
	return &RestartStatistics{}
}

// RecordFailure appends now and returns the count of failures within
// [now-window, now], evicting anything older first.
func (rs *RestartStatistics) RecordFailure(now time.Time, window time.Duration) int {
	rs.failures = append(rs.failures, now)
	if window <= 0 {
		return len(rs.failures)
	}
	cutoff := now.Add(-window)
	kept := rs.failures[:0]
	for _, t := range rs.failures {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	rs.failures = kept
	return len(rs.failures)
}

// Reset clears the window (spec §4.H: "reset stats" on Stop/Escalate or
// when a restart budget is exhausted).
func (rs *RestartStatistics) Reset() {
	rs.failures = rs.failures[:0]
}
