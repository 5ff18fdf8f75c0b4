/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scheduler.go
Description: Energy-based scheduler for the instrumentation-verification
harness. Round-robins the corpus queue while awarding energy to candidates
whose runs reach novel branches and decaying the energy of candidates that
stop producing anything new. A small exploration fraction prefers rarely
selected candidates to break long-term domination.
*/

package core

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// Energy policy parameters. Decay differs with and without novelty so
// stagnant candidates fade faster than productive ones.
const (
	defaultEnergyCap    = 20
	decayNoNovelty      = 0.8
	decayWithNovelty    = 0.95
	exploreFraction     = 0.15
	explorePoolSize     = 8
	shuffleInterval     = 200
	noveltyEnergyReward = 2
)

// EnergyScheduler implements the Scheduler interface with round-robin
// selection plus energy accounting.
type EnergyScheduler struct {
	mu        sync.Mutex
	queue     []string
	corpus    map[string]*interfaces.TestCase
	selects   int
	energyCap int
}

// NewEnergyScheduler creates a new energy scheduler instance.
func NewEnergyScheduler(energyCap int) *EnergyScheduler {
	if energyCap <= 0 {
		energyCap = defaultEnergyCap
	}
	return &EnergyScheduler{
		corpus:    make(map[string]*interfaces.TestCase),
		energyCap: energyCap,
	}
}

// Add inserts a test case into the queue and corpus view.
func (s *EnergyScheduler) Add(tc *interfaces.TestCase) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.corpus[tc.ID]; exists {
		return
	}
	if tc.Energy <= 0 {
		tc.Energy = 1
	}
	s.corpus[tc.ID] = tc
	s.queue = append(s.queue, tc.ID)
}

// Next returns the next candidate, rotating it to the queue tail, or nil
// when the queue is empty. Every shuffleInterval selections the queue is
// shuffled, and with probability exploreFraction a low-cycle candidate is
// preferred over plain rotation.
func (s *EnergyScheduler) Next() *interfaces.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil
	}

	s.selects++
	if s.selects%shuffleInterval == 0 {
		rand.Shuffle(len(s.queue), func(i, j int) {
			s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
		})
	}

	idx := 0
	if rand.Float64() < exploreFraction {
		idx = s.freshestLocked()
	}

	id := s.queue[idx]
	s.queue = append(append(s.queue[:idx:idx], s.queue[idx+1:]...), id)

	tc := s.corpus[id]
	tc.Cycles++
	return tc
}

// freshestLocked returns the queue index of the least-cycled candidate
// among a small sample of the queue head. Callers must hold the lock.
func (s *EnergyScheduler) freshestLocked() int {
	pool := explorePoolSize
	if pool > len(s.queue) {
		pool = len(s.queue)
	}

	indices := make([]int, pool)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(i, j int) bool {
		return s.corpus[s.queue[indices[i]]].Cycles < s.corpus[s.queue[indices[j]]].Cycles
	})
	return indices[0]
}

// Report adjusts the candidate's energy from an execution outcome. Novel
// branches are rewarded and the decay keeps more of the current energy;
// stagnant candidates lose energy faster. Energy never exceeds the cap
// and never drops below one so every candidate keeps a minimal budget.
func (s *EnergyScheduler) Report(tc *interfaces.TestCase, result *interfaces.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cand, ok := s.corpus[tc.ID]
	if !ok {
		return
	}
	cand.Executions++

	decay := decayNoNovelty
	if result.Novelty > 0 {
		decay = decayWithNovelty
		cand.Energy += result.Novelty * noveltyEnergyReward
	}

	cand.Energy = int(math.Max(1, math.Floor(float64(cand.Energy)*decay)))
	if cand.Energy > s.energyCap {
		cand.Energy = s.energyCap
	}
}

// Size returns the number of scheduled candidates.
func (s *EnergyScheduler) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// IsEmpty returns true if no candidates are scheduled.
func (s *EnergyScheduler) IsEmpty() bool {
	return s.Size() == 0
}
