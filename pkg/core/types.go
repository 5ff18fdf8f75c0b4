/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core statistics types for the instrumentation-verification
harness. Tracks execution, branch-coverage, and failure counters with atomic
updates for thread-safe reporting while the engine runs.
*/

package core

import (
	"sync/atomic"
	"time"
)

// HarnessStats tracks overall harness statistics.
// Uses atomic operations for thread-safe updates.
type HarnessStats struct {
	Executions    int64     `json:"executions"`     // Total number of canary runs
	Crashes       int64     `json:"crashes"`        // Runs terminated by a signal
	Timeouts      int64     `json:"timeouts"`       // Runs killed by the harness timeout
	NoInputs      int64     `json:"no_inputs"`      // Runs that hit the no-input branch
	NovelBranches int64     `json:"novel_branches"` // Branches seen for the first time
	StartTime     time.Time `json:"start_time"`     // When the session started
}

// IncrementExecutions atomically increments the execution counter
func (s *HarnessStats) IncrementExecutions() {
	atomic.AddInt64(&s.Executions, 1)
}

// IncrementCrashes atomically increments the crash counter
func (s *HarnessStats) IncrementCrashes() {
	atomic.AddInt64(&s.Crashes, 1)
}

// IncrementTimeouts atomically increments the timeout counter
func (s *HarnessStats) IncrementTimeouts() {
	atomic.AddInt64(&s.Timeouts, 1)
}

// IncrementNoInputs atomically increments the no-input counter
func (s *HarnessStats) IncrementNoInputs() {
	atomic.AddInt64(&s.NoInputs, 1)
}

// AddNovelBranches atomically adds newly observed branches
func (s *HarnessStats) AddNovelBranches(n int64) {
	atomic.AddInt64(&s.NovelBranches, n)
}

// Snapshot returns a consistent copy of the counters.
func (s *HarnessStats) Snapshot() HarnessStats {
	return HarnessStats{
		Executions:    atomic.LoadInt64(&s.Executions),
		Crashes:       atomic.LoadInt64(&s.Crashes),
		Timeouts:      atomic.LoadInt64(&s.Timeouts),
		NoInputs:      atomic.LoadInt64(&s.NoInputs),
		NovelBranches: atomic.LoadInt64(&s.NovelBranches),
		StartTime:     s.StartTime,
	}
}

// ExecutionsPerSecond returns the average execution rate so far.
func (s *HarnessStats) ExecutionsPerSecond() float64 {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Executions)) / elapsed
}
