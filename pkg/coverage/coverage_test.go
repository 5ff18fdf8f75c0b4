/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: coverage_test.go
Description: Unit tests for the branch coverage map. Tests novelty detection,
hit counting, merging, and snapshot isolation under concurrent access.
*/

package coverage_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yae-miko-0627/fuzz-project/pkg/coverage"
)

// TestRecordNovelty tests that only the first observation of a branch is new
func TestRecordNovelty(t *testing.T) {
	m := coverage.NewMap()

	assert.True(t, m.Record(coverage.BranchZero))
	assert.False(t, m.Record(coverage.BranchZero))
	assert.True(t, m.Record(coverage.BranchOne))

	assert.Equal(t, 2, m.Count())
	assert.Equal(t, 2, m.Hits(coverage.BranchZero))
	assert.Equal(t, 1, m.Hits(coverage.BranchOne))
	assert.Equal(t, 0, m.Hits(coverage.BranchCrash))
}

// TestContains tests branch membership
func TestContains(t *testing.T) {
	m := coverage.NewMap()
	m.Record(coverage.BranchOther)

	assert.True(t, m.Contains(coverage.BranchOther))
	assert.False(t, m.Contains(coverage.BranchNoInput))
}

// TestMergeAndCountNew tests merging two maps and counting novel branches
func TestMergeAndCountNew(t *testing.T) {
	base := coverage.NewMap()
	base.Record(coverage.BranchZero)

	other := coverage.NewMap()
	other.Record(coverage.BranchZero)
	other.Record(coverage.BranchOne)
	other.Record(coverage.BranchCrash)

	novel := base.MergeAndCountNew(other)
	assert.Equal(t, 2, novel)
	assert.Equal(t, 3, base.Count())

	// Merging again brings nothing new.
	assert.Equal(t, 0, base.MergeAndCountNew(other))
}

// TestBranchesSorted tests that branch listing is deterministic
func TestBranchesSorted(t *testing.T) {
	m := coverage.NewMap()
	m.Record(coverage.BranchOther)
	m.Record(coverage.BranchCrash)
	m.Record(coverage.BranchOne)

	assert.Equal(t, []string{coverage.BranchCrash, coverage.BranchOne, coverage.BranchOther}, m.Branches())
}

// TestSnapshotIsolation tests that snapshots do not share state with the map
func TestSnapshotIsolation(t *testing.T) {
	m := coverage.NewMap()
	m.Record(coverage.BranchZero)

	snap := m.Snapshot()
	snap[coverage.BranchZero] = 99
	snap[coverage.BranchOne] = 1

	assert.Equal(t, 1, m.Hits(coverage.BranchZero))
	assert.False(t, m.Contains(coverage.BranchOne))
}

// TestConcurrentRecord tests that concurrent recording is safe and every
// branch ends up observed
func TestConcurrentRecord(t *testing.T) {
	m := coverage.NewMap()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, branch := range coverage.KnownBranches {
				m.Record(branch)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(coverage.KnownBranches), m.Count())
	for _, branch := range coverage.KnownBranches {
		assert.Equal(t, 16, m.Hits(branch))
	}
}
