// Copyright ©2015 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import "sync"

// ParseLog accumulates run-wide statistics across calls to Parse (§5).
// The zero value is not usable; use NewParseLog. A *ParseLog is safe
// for concurrent use by multiple evaluators sharing one Pipeline.
type ParseLog struct {
	mu              sync.Mutex
	totalReads      int
	successfulReads int
	failedReads     int
	failuresByStep  map[string]int
}

// NewParseLog returns a log initialized to zero, with one
// failures-by-step entry pre-populated for each step id in steps, so
// that a summary report always lists every step even if it never
// failed.
func NewParseLog(steps []Step) *ParseLog {
	l := &ParseLog{failuresByStep: make(map[string]int, len(steps))}
	for _, s := range steps {
		l.failuresByStep[s.base().ID] = 0
	}
	return l
}

func (l *ParseLog) recordOK() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalReads++
	l.successfulReads++
}

// recordStepFailure increments the per-step failure counter for a
// single step failure (must-pass or optional); it does not touch
// total_reads or failed_reads, which are incremented exactly once per
// pair by recordOK/recordPairFailure (§3 invariants).
func (l *ParseLog) recordStepFailure(stepID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failuresByStep[stepID]++
}

// recordPairFailure accounts for a pair that aborted on a must-pass
// step failure.
func (l *ParseLog) recordPairFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totalReads++
	l.failedReads++
}

// TotalReads returns the number of read pairs evaluated so far.
func (l *ParseLog) TotalReads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalReads
}

// SuccessfulReads returns the number of read pairs that reached the
// end of the pipeline.
func (l *ParseLog) SuccessfulReads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.successfulReads
}

// FailedReads returns the number of read pairs that failed a
// must-pass step.
func (l *ParseLog) FailedReads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failedReads
}

// FailuresByStep returns a snapshot copy of the per-step failure
// counts.
func (l *ParseLog) FailuresByStep() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.failuresByStep))
	for k, v := range l.failuresByStep {
		out[k] = v
	}
	return out
}

// SuccessRate returns successfulReads/totalReads, or 0 if no reads
// have been processed yet.
func (l *ParseLog) SuccessRate() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.totalReads == 0 {
		return 0
	}
	return float64(l.successfulReads) / float64(l.totalReads)
}

// Snapshot returns the log's counters as a nested map, the same shape
// original_source's get_parse_log dict has, suitable for passing to
// internal/flatten for tabular progress display.
func (l *ParseLog) Snapshot() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	failures := make(map[string]any, len(l.failuresByStep))
	for k, v := range l.failuresByStep {
		failures[k] = v
	}
	successRate := 0.0
	if l.totalReads != 0 {
		successRate = 100 * float64(l.successfulReads) / float64(l.totalReads)
	}
	return map[string]any{
		"total_reads":      l.totalReads,
		"successful_reads": l.successfulReads,
		"failed_reads":     l.failedReads,
		"success_rate":     successRate,
		"failures_by_step": failures,
	}
}
