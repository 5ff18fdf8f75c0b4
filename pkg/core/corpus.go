/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: Corpus management for the instrumentation-verification harness.
Provides thread-safe storage and retrieval of test cases with bounded size and
a removal scoring policy that protects seeds and branch-novel inputs.
*/

package core

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// Corpus manages the collection of test cases.
type Corpus struct {
	testCases map[string]*interfaces.TestCase
	mu        sync.RWMutex

	maxSize int
}

// NewCorpus creates a new corpus instance.
func NewCorpus() *Corpus {
	return &Corpus{
		testCases: make(map[string]*interfaces.TestCase),
		maxSize:   10000,
	}
}

// Add adds a test case to the corpus. Adding an existing ID is a no-op.
// When the corpus is full the lowest-scoring members are evicted first.
func (c *Corpus) Add(testCase *interfaces.TestCase) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.testCases[testCase.ID]; exists {
		return
	}
	if len(c.testCases) >= c.maxSize {
		c.evictLocked(len(c.testCases) - c.maxSize + 1)
	}
	c.testCases[testCase.ID] = testCase
}

// Get retrieves a test case by ID, or nil if absent.
func (c *Corpus) Get(id string) *interfaces.TestCase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.testCases[id]
}

// Remove removes a test case, reporting whether it was present.
func (c *Corpus) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.testCases[id]; exists {
		delete(c.testCases, id)
		return true
	}
	return false
}

// Size returns the current number of test cases.
func (c *Corpus) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.testCases)
}

// SetMaxSize bounds the corpus, evicting immediately if necessary.
func (c *Corpus) SetMaxSize(maxSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxSize = maxSize
	if over := len(c.testCases) - maxSize; over > 0 {
		c.evictLocked(over)
	}
}

// GetAll returns all test cases. The slice is a fresh copy; the test
// cases themselves are shared.
func (c *Corpus) GetAll() []*interfaces.TestCase {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*interfaces.TestCase, 0, len(c.testCases))
	for _, tc := range c.testCases {
		out = append(out, tc)
	}
	return out
}

// GetRandom returns up to count randomly chosen test cases.
func (c *Corpus) GetRandom(count int) []*interfaces.TestCase {
	all := c.GetAll()
	if count <= 0 || len(all) == 0 {
		return nil
	}

	rand.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	if count > len(all) {
		count = len(all)
	}
	return all[:count]
}

// evictLocked removes n members with the lowest retention score.
// Callers must hold the write lock.
func (c *Corpus) evictLocked(n int) {
	if n <= 0 {
		return
	}

	members := make([]*interfaces.TestCase, 0, len(c.testCases))
	for _, tc := range c.testCases {
		members = append(members, tc)
	}
	sort.Slice(members, func(i, j int) bool {
		return retentionScore(members[i]) < retentionScore(members[j])
	})

	if n > len(members) {
		n = len(members)
	}
	for i := 0; i < n; i++ {
		delete(c.testCases, members[i].ID)
	}
}

// retentionScore ranks test cases for eviction. Seeds and inputs that
// reached many branches are protected; heavily re-executed inputs with
// nothing new to show go first.
func retentionScore(tc *interfaces.TestCase) int {
	score := tc.Energy * 10
	score -= int(tc.Executions) * 5

	if tc.Branches != nil {
		score += len(tc.Branches.Branches) * 100
	}
	if tc.Generation == 0 {
		score += 500 // seed bonus
	}
	return score
}
