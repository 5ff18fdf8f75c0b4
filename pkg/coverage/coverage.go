/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: coverage.go
Description: Branch coverage tracking for the instrumentation-verification
harness. The canary target exposes its code paths through a small closed set of
output branches; this package accumulates which branches have been observed and
reports novelty when a run reaches one not seen before.
*/

package coverage

import (
	"sort"
	"sync"
)

// Branch identifiers for the canary's observable code paths. Three
// classification branches, the no-input branch, the open-failure branch,
// and a crash branch for abnormal termination.
const (
	BranchZero        = "zero"
	BranchOne         = "one"
	BranchOther       = "other"
	BranchNoInput     = "no-input"
	BranchOpenFailure = "open-failure"
	BranchCrash       = "crash"
)

// KnownBranches lists every branch the canary can reach, in report order.
var KnownBranches = []string{
	BranchZero,
	BranchOne,
	BranchOther,
	BranchNoInput,
	BranchOpenFailure,
	BranchCrash,
}

// Map accumulates branch hit counts across runs. Safe for concurrent use.
type Map struct {
	mu   sync.RWMutex
	hits map[string]int
}

// NewMap creates an empty coverage map.
func NewMap() *Map {
	return &Map{hits: make(map[string]int)}
}

// Record registers one hit of the given branch and returns true if the
// branch had never been observed before.
func (m *Map) Record(branch string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, seen := m.hits[branch]
	m.hits[branch]++
	return !seen
}

// MergeAndCountNew folds another map into this one and returns the number
// of branches that were new to the cumulative map, without materializing
// intermediate sets.
func (m *Map) MergeAndCountNew(other *Map) int {
	if other == nil {
		return 0
	}

	other.mu.RLock()
	snapshot := make(map[string]int, len(other.hits))
	for branch, count := range other.hits {
		snapshot[branch] = count
	}
	other.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	novel := 0
	for branch, count := range snapshot {
		if _, seen := m.hits[branch]; !seen {
			novel++
		}
		m.hits[branch] += count
	}
	return novel
}

// Contains reports whether the branch has been observed.
func (m *Map) Contains(branch string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, seen := m.hits[branch]
	return seen
}

// Count returns the number of distinct branches observed.
func (m *Map) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hits)
}

// Hits returns the hit count for one branch.
func (m *Map) Hits(branch string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits[branch]
}

// Branches returns the observed branch identifiers in sorted order.
func (m *Map) Branches() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	branches := make([]string, 0, len(m.hits))
	for branch := range m.hits {
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	return branches
}

// Snapshot returns a copy of the hit counts for reporting.
func (m *Map) Snapshot() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int, len(m.hits))
	for branch, count := range m.hits {
		out[branch] = count
	}
	return out
}
