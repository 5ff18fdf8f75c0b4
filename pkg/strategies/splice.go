/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: splice.go
Description: Splice mutation strategy for the instrumentation-verification
harness. Recombines the candidate with another corpus member at random split
points, producing variants that inherit structure from two parents. The corpus
view is refreshed by the engine before each nondeterministic stage.
*/

package strategies

import (
	"math/rand"
	"sync"

	"github.com/yae-miko-0627/fuzz-project/pkg/interfaces"
)

// SpliceMutator recombines a test case with a second corpus member.
type SpliceMutator struct {
	mu     sync.RWMutex
	corpus []*interfaces.TestCase
}

// NewSpliceMutator creates a new splice mutator with an empty corpus view.
func NewSpliceMutator() *SpliceMutator {
	return &SpliceMutator{}
}

// SetCorpus replaces the mutator's view of the corpus. The engine calls
// this before each nondeterministic stage so splices draw from the
// current population.
func (m *SpliceMutator) SetCorpus(corpus []*interfaces.TestCase) {
	m.mu.Lock()
	m.corpus = corpus
	m.mu.Unlock()
}

// Mutate splices the candidate with a randomly chosen corpus member. The
// variant takes a prefix of one parent and a suffix of the other. With no
// second parent available, no variants are produced.
func (m *SpliceMutator) Mutate(testCase *interfaces.TestCase) ([]*interfaces.TestCase, error) {
	m.mu.RLock()
	pool := m.corpus
	m.mu.RUnlock()

	if len(testCase.Data) == 0 || len(pool) == 0 {
		return nil, nil
	}

	other := pool[rand.Intn(len(pool))]
	if other.ID == testCase.ID || len(other.Data) == 0 {
		return nil, nil
	}

	splitA := rand.Intn(len(testCase.Data))
	splitB := rand.Intn(len(other.Data))

	data := make([]byte, 0, splitA+len(other.Data)-splitB)
	data = append(data, testCase.Data[:splitA]...)
	data = append(data, other.Data[splitB:]...)
	if len(data) == 0 {
		return nil, nil
	}

	tc := child(testCase, data, m.Name())
	tc.Metadata["splice_with"] = other.ID
	return []*interfaces.TestCase{tc}, nil
}

// Name returns the name of this mutator.
func (m *SpliceMutator) Name() string { return "SpliceMutator" }

// Description returns a description of this mutator.
func (m *SpliceMutator) Description() string {
	return "Recombines two corpus members at random split points"
}

// Deterministic reports that this mutator is randomized.
func (m *SpliceMutator) Deterministic() bool { return false }
